package crypto

// Algorithm names a primitive the Engine can run.
type Algorithm string

// Asymmetric encryption algorithms.
const (
	RSAOAEP  Algorithm = "RSA-OAEP"
	MLKEM768 Algorithm = "ML-KEM-768"
)

// Signature algorithms.
const (
	RSASSAPKCS1v15 Algorithm = "RSASSA-PKCS1-v1_5"
	Ed25519        Algorithm = "Ed25519"
	MLDSA65        Algorithm = "ML-DSA-65"
)

// Symmetric algorithms.
const (
	AESCBC Algorithm = "AES-CBC"
)

// Digest algorithms.
const (
	SHA1   Algorithm = "SHA-1"
	SHA256 Algorithm = "SHA-256"
	SHA384 Algorithm = "SHA-384"
	SHA512 Algorithm = "SHA-512"
	BLAKE3 Algorithm = "BLAKE3"
)

const (
	// HKDFContext is the context string used when deriving the ML-KEM
	// session wrapping key.
	HKDFContext = "secretnote:session:v1"

	// RSAModulusBits is the modulus length of generated RSA keys.
	RSAModulusBits = 2048

	// AESBlockSize is the AES block size and the required CBC IV length.
	AESBlockSize = 16
	// AESGCMKeySize is the size of the derived AES-256-GCM wrapping key.
	AESGCMKeySize = 32
	// AESNonceSize is the size of an AES-GCM nonce in bytes.
	AESNonceSize = 12
	// AESTagSize is the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16

	// MLKEMCiphertextSize is the size of an ML-KEM-768 ciphertext in bytes.
	MLKEMCiphertextSize = 1088
	// MLKEMSharedKeySize is the size of the ML-KEM-768 shared secret.
	MLKEMSharedKeySize = 32

	// MLDSASignatureSize is the size of an ML-DSA-65 signature in bytes.
	MLDSASignatureSize = 3309
)

// DigestSize returns the output length of a digest algorithm, or 0 if alg
// is not a digest.
func DigestSize(alg Algorithm) int {
	switch alg {
	case SHA1:
		return 20
	case SHA256, BLAKE3:
		return 32
	case SHA384:
		return 48
	case SHA512:
		return 64
	default:
		return 0
	}
}

func isAsymmetric(alg Algorithm) bool {
	return alg == RSAOAEP || alg == MLKEM768
}

func isSigning(alg Algorithm) bool {
	return alg == RSASSAPKCS1v15 || alg == Ed25519 || alg == MLDSA65
}
