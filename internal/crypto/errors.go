package crypto

import "errors"

var (
	// ErrUnsupportedAlgorithm is returned when an operation is requested for
	// an algorithm the Engine does not implement.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrAlgorithmMismatch is returned when a key is used with an algorithm
	// other than the one it was generated or imported for.
	ErrAlgorithmMismatch = errors.New("key algorithm mismatch")

	// ErrKeyUsage is returned when a key is used for an operation outside
	// its declared usages, or when requested usages do not fit the algorithm.
	ErrKeyUsage = errors.New("key usage not permitted")

	// ErrNotExtractable is returned when exporting a key created as
	// non-extractable.
	ErrNotExtractable = errors.New("key is not extractable")

	// ErrUnsupportedFormat is returned when a key cannot be imported or
	// exported in the requested format.
	ErrUnsupportedFormat = errors.New("unsupported key format")

	// ErrInvalidKey is returned when key bytes cannot be parsed.
	ErrInvalidKey = errors.New("invalid key data")

	// ErrInvalidKeySize is returned when a symmetric key has an invalid length.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidIVSize is returned when a CBC IV is not one block long.
	ErrInvalidIVSize = errors.New("invalid IV size")

	// ErrInvalidNonceSize is returned when the nonce size is invalid.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrInvalidPadding is returned when CBC plaintext padding is malformed.
	ErrInvalidPadding = errors.New("invalid padding")

	// ErrInvalidCiphertextSize is returned when the ciphertext size is invalid.
	ErrInvalidCiphertextSize = errors.New("invalid ciphertext size")

	// ErrEncryptionFailed is returned when encryption fails.
	ErrEncryptionFailed = errors.New("encryption failed")

	// ErrDecryptionFailed is returned when decryption fails.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrSigningFailed is returned when producing a signature fails.
	ErrSigningFailed = errors.New("signing failed")
)
