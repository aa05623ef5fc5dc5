package crypto

import "fmt"

// Suite fixes the algorithms an envelope is built with. Both ends of an
// exchange must agree on the suite.
type Suite struct {
	// Asymmetric wraps the per-message session key.
	Asymmetric Algorithm `yaml:"asymmetric"`
	// Signing signs the plaintext.
	Signing Algorithm `yaml:"signing"`
	// Symmetric encrypts the inner package.
	Symmetric Algorithm `yaml:"symmetric"`
	// SymmetricKeyBits is the session key length.
	SymmetricKeyBits int `yaml:"symmetric_key_bits"`
	// Digest computes key fingerprints.
	Digest Algorithm `yaml:"digest"`
}

// DefaultSuite is RSA-OAEP-2048 and RSASSA-PKCS1-v1_5-2048 over AES-CBC-128,
// fingerprinting with SHA-256.
func DefaultSuite() Suite {
	return Suite{
		Asymmetric:       RSAOAEP,
		Signing:          RSASSAPKCS1v15,
		Symmetric:        AESCBC,
		SymmetricKeyBits: 128,
		Digest:           SHA256,
	}
}

// LegacySuite matches SNPG v1 peers, which fingerprint with SHA-1.
func LegacySuite() Suite {
	s := DefaultSuite()
	s.Digest = SHA1
	return s
}

// PostQuantumSuite uses ML-KEM-768 and ML-DSA-65 with AES-CBC-256 and BLAKE3
// fingerprints.
func PostQuantumSuite() Suite {
	return Suite{
		Asymmetric:       MLKEM768,
		Signing:          MLDSA65,
		Symmetric:        AESCBC,
		SymmetricKeyBits: 256,
		Digest:           BLAKE3,
	}
}

// SuiteByName resolves "default", "legacy" or "post-quantum".
func SuiteByName(name string) (Suite, error) {
	switch name {
	case "", "default":
		return DefaultSuite(), nil
	case "legacy":
		return LegacySuite(), nil
	case "post-quantum", "pq":
		return PostQuantumSuite(), nil
	}
	return Suite{}, fmt.Errorf("%w: suite %q", ErrUnsupportedAlgorithm, name)
}

// Validate checks that every slot holds an algorithm of the right kind.
func (s Suite) Validate() error {
	if !isAsymmetric(s.Asymmetric) {
		return fmt.Errorf("%w: %q is not an asymmetric encryption algorithm", ErrUnsupportedAlgorithm, s.Asymmetric)
	}
	if !isSigning(s.Signing) {
		return fmt.Errorf("%w: %q is not a signature algorithm", ErrUnsupportedAlgorithm, s.Signing)
	}
	if s.Symmetric != AESCBC {
		return fmt.Errorf("%w: %q is not a symmetric algorithm", ErrUnsupportedAlgorithm, s.Symmetric)
	}
	if err := checkAESKeyLen(s.SymmetricKeyBits / 8); err != nil || s.SymmetricKeyBits%8 != 0 {
		return fmt.Errorf("%w: %d-bit session key", ErrInvalidKeySize, s.SymmetricKeyBits)
	}
	if DigestSize(s.Digest) == 0 {
		return fmt.Errorf("%w: %q is not a digest algorithm", ErrUnsupportedAlgorithm, s.Digest)
	}
	return nil
}
