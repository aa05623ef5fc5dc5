// Package crypto provides the key and primitive service used to build
// SecretNote envelopes.
//
// Keys are opaque [Key] handles bound to one algorithm, a set of usages and
// an extractability flag, in the manner of WebCrypto. The [Provider]
// interface is what the envelope codec depends on; [Engine] is the
// implementation backed by the Go standard library and circl.
//
// # Algorithm Suites
//
// A [Suite] names the algorithms used for one exchange:
//
//   - [DefaultSuite]: RSA-OAEP-2048 (SHA-256) wraps the session key,
//     RSASSA-PKCS1-v1_5-2048 (SHA-256) signs, AES-CBC-128 with PKCS #7
//     padding encrypts, SHA-256 fingerprints.
//
//   - [LegacySuite]: as DefaultSuite with SHA-1 fingerprints, for SNPG v1
//     peers.
//
//   - [PostQuantumSuite]: ML-KEM-768 (NIST FIPS 203) wraps the session key,
//     ML-DSA-65 (NIST FIPS 204) signs, AES-CBC-256 encrypts, BLAKE3
//     fingerprints.
//
// Ed25519 signing keys are also supported.
//
// # ML-KEM Session Wrapping
//
// ML-KEM is a key encapsulation mechanism, not an encryption scheme. To
// give it an Encrypt/Decrypt shape the Engine encapsulates a fresh shared
// secret, derives an AES-256-GCM key with HKDF-SHA-512 (salt SHA-256 of the
// KEM ciphertext, info [HKDFContext]) and seals the data:
//
//	ct_kem (1088) || nonce (12) || AES-256-GCM ciphertext || tag (16)
//
// # Key Formats
//
// Public keys are exported as DER SubjectPublicKeyInfo, private keys as
// DER PKCS #8, symmetric keys as raw bytes. ML-KEM and ML-DSA keys use the
// NIST OIDs with the circl binary key encoding inside.
package crypto
