package secretnote

import "github.com/secretnote/client-go/internal/crypto"

// Key is an opaque key handle. See [Provider].
type Key = crypto.Key

// KeyPair holds the public and private halves of an asymmetric key.
type KeyPair = crypto.KeyPair

// Provider is the key and primitive service a [Codec] runs on.
type Provider = crypto.Provider

// Suite names the algorithms used to build and read envelopes.
type Suite = crypto.Suite

// Algorithm names a cryptographic primitive.
type Algorithm = crypto.Algorithm

// Algorithms accepted in a [Suite].
const (
	RSAOAEP        = crypto.RSAOAEP
	MLKEM768       = crypto.MLKEM768
	RSASSAPKCS1v15 = crypto.RSASSAPKCS1v15
	Ed25519        = crypto.Ed25519
	MLDSA65        = crypto.MLDSA65
	AESCBC         = crypto.AESCBC
	SHA1           = crypto.SHA1
	SHA256         = crypto.SHA256
	SHA384         = crypto.SHA384
	SHA512         = crypto.SHA512
	BLAKE3         = crypto.BLAKE3
)

// DefaultSuite returns RSA-OAEP-2048, RSASSA-PKCS1-v1_5-2048, AES-CBC-128
// and SHA-256 fingerprints.
func DefaultSuite() Suite { return crypto.DefaultSuite() }

// LegacySuite returns DefaultSuite with SHA-1 fingerprints, as used by
// SNPG v1 peers.
func LegacySuite() Suite { return crypto.LegacySuite() }

// PostQuantumSuite returns ML-KEM-768, ML-DSA-65, AES-CBC-256 and BLAKE3
// fingerprints.
func PostQuantumSuite() Suite { return crypto.PostQuantumSuite() }

// SuiteByName resolves "default", "legacy" or "post-quantum".
func SuiteByName(name string) (Suite, error) { return crypto.SuiteByName(name) }

// NewProvider returns the built-in Provider backed by crypto/rand.
func NewProvider() Provider { return crypto.New() }
