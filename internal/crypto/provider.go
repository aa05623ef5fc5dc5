package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Params selects the algorithm for Encrypt and Decrypt. IV is required for
// AES-CBC and ignored by the asymmetric algorithms.
type Params struct {
	Algorithm Algorithm
	IV        []byte
}

// Provider is the key and primitive service the envelope codec runs on.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Digest hashes data with a digest algorithm.
	Digest(alg Algorithm, data []byte) ([]byte, error)
	// GenerateKey creates a symmetric key of the given size in bits.
	GenerateKey(alg Algorithm, bits int, extractable bool, usages ...KeyUsage) (*Key, error)
	// GenerateKeyPair creates an asymmetric key pair.
	GenerateKeyPair(alg Algorithm, extractable bool, usages ...KeyUsage) (*KeyPair, error)
	// ImportKey parses key bytes in format into a key bound to alg.
	ImportKey(format Format, data []byte, alg Algorithm, extractable bool, usages ...KeyUsage) (*Key, error)
	// ExportKey serializes key in format.
	ExportKey(format Format, key *Key) ([]byte, error)
	// Encrypt encrypts data with key.
	Encrypt(params Params, key *Key, data []byte) ([]byte, error)
	// Decrypt decrypts data with key.
	Decrypt(params Params, key *Key, data []byte) ([]byte, error)
	// Sign signs data with a private signing key.
	Sign(alg Algorithm, key *Key, data []byte) ([]byte, error)
	// Verify checks sig over data. A signature that does not verify is
	// reported as false with a nil error; errors are reserved for misuse
	// such as a wrong key type.
	Verify(alg Algorithm, key *Key, sig, data []byte) (bool, error)
	// RandomBytes returns n bytes from the provider's random source.
	RandomBytes(n int) ([]byte, error)
}

// Engine implements Provider with the Go standard library and circl.
type Engine struct {
	rand io.Reader
}

var _ Provider = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithRandReader replaces the random source. Intended for tests.
func WithRandReader(r io.Reader) Option {
	return func(e *Engine) {
		e.rand = r
	}
}

// New returns an Engine reading randomness from crypto/rand unless
// overridden.
func New(opts ...Option) *Engine {
	e := &Engine{rand: rand.Reader}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RandomBytes implements Provider.
func (e *Engine) RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(e.rand, buf); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return buf, nil
}

// GenerateKey implements Provider.
func (e *Engine) GenerateKey(alg Algorithm, bits int, extractable bool, usages ...KeyUsage) (*Key, error) {
	if alg != AESCBC {
		return nil, fmt.Errorf("%w: %s is not a symmetric algorithm", ErrUnsupportedAlgorithm, alg)
	}
	if err := checkUsages(alg, usages); err != nil {
		return nil, err
	}
	if bits%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits", ErrInvalidKeySize, bits)
	}
	if err := checkAESKeyLen(bits / 8); err != nil {
		return nil, err
	}
	raw, err := e.RandomBytes(bits / 8)
	if err != nil {
		return nil, err
	}
	return newKey(alg, KeyTypeSecret, extractable, usages, raw), nil
}

// GenerateKeyPair implements Provider.
func (e *Engine) GenerateKeyPair(alg Algorithm, extractable bool, usages ...KeyUsage) (*KeyPair, error) {
	if err := checkUsages(alg, usages); err != nil {
		return nil, err
	}

	var pub, priv any
	var err error
	switch alg {
	case RSAOAEP, RSASSAPKCS1v15:
		pub, priv, err = generateRSA(e.rand)
	case Ed25519:
		pub, priv, err = generateEd25519(e.rand)
	case MLKEM768:
		pub, priv, err = generateMLKEM(e.rand)
	case MLDSA65:
		pub, priv, err = generateMLDSA(e.rand)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
	if err != nil {
		return nil, fmt.Errorf("generate %s key pair: %w", alg, err)
	}

	return &KeyPair{
		PublicKey:  newKey(alg, KeyTypePublic, true, usages, pub),
		PrivateKey: newKey(alg, KeyTypePrivate, extractable, usages, priv),
	}, nil
}

// ImportKey implements Provider.
func (e *Engine) ImportKey(format Format, data []byte, alg Algorithm, extractable bool, usages ...KeyUsage) (*Key, error) {
	if err := checkUsages(alg, usages); err != nil {
		return nil, err
	}

	switch format {
	case FormatRaw:
		if alg != AESCBC {
			return nil, fmt.Errorf("%w: raw import of %s", ErrUnsupportedFormat, alg)
		}
		if err := checkAESKeyLen(len(data)); err != nil {
			return nil, err
		}
		return newKey(alg, KeyTypeSecret, extractable, usages, append([]byte(nil), data...)), nil
	case FormatSPKI:
		material, err := parsePublicKey(alg, data)
		if err != nil {
			return nil, err
		}
		return newKey(alg, KeyTypePublic, true, usages, material), nil
	case FormatPKCS8:
		material, err := parsePrivateKey(alg, data)
		if err != nil {
			return nil, err
		}
		return newKey(alg, KeyTypePrivate, extractable, usages, material), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// ExportKey implements Provider.
func (e *Engine) ExportKey(format Format, key *Key) ([]byte, error) {
	if key == nil {
		return nil, ErrInvalidKey
	}
	if !key.extractable {
		return nil, ErrNotExtractable
	}

	switch {
	case format == FormatRaw && key.typ == KeyTypeSecret:
		return append([]byte(nil), key.material.([]byte)...), nil
	case format == FormatSPKI && key.typ == KeyTypePublic:
		return marshalPublicKey(key)
	case format == FormatPKCS8 && key.typ == KeyTypePrivate:
		return marshalPrivateKey(key)
	}
	return nil, fmt.Errorf("%w: %s key as %q", ErrUnsupportedFormat, key.typ, format)
}

// Encrypt implements Provider.
func (e *Engine) Encrypt(params Params, key *Key, data []byte) ([]byte, error) {
	switch params.Algorithm {
	case AESCBC:
		if err := key.require(AESCBC, KeyTypeSecret, UsageEncrypt); err != nil {
			return nil, err
		}
		return encryptAESCBC(key.material.([]byte), params.IV, data)
	case RSAOAEP:
		if err := key.require(RSAOAEP, KeyTypePublic, UsageEncrypt); err != nil {
			return nil, err
		}
		return encryptRSAOAEP(e.rand, key.material, data)
	case MLKEM768:
		if err := key.require(MLKEM768, KeyTypePublic, UsageEncrypt); err != nil {
			return nil, err
		}
		return sealMLKEM(e.rand, key.material, data)
	}
	return nil, fmt.Errorf("%w: encrypt with %s", ErrUnsupportedAlgorithm, params.Algorithm)
}

// Decrypt implements Provider.
func (e *Engine) Decrypt(params Params, key *Key, data []byte) ([]byte, error) {
	switch params.Algorithm {
	case AESCBC:
		if err := key.require(AESCBC, KeyTypeSecret, UsageDecrypt); err != nil {
			return nil, err
		}
		return decryptAESCBC(key.material.([]byte), params.IV, data)
	case RSAOAEP:
		if err := key.require(RSAOAEP, KeyTypePrivate, UsageDecrypt); err != nil {
			return nil, err
		}
		return decryptRSAOAEP(key.material, data)
	case MLKEM768:
		if err := key.require(MLKEM768, KeyTypePrivate, UsageDecrypt); err != nil {
			return nil, err
		}
		return openMLKEM(key.material, data)
	}
	return nil, fmt.Errorf("%w: decrypt with %s", ErrUnsupportedAlgorithm, params.Algorithm)
}

// Sign implements Provider.
func (e *Engine) Sign(alg Algorithm, key *Key, data []byte) ([]byte, error) {
	if !isSigning(alg) {
		return nil, fmt.Errorf("%w: sign with %s", ErrUnsupportedAlgorithm, alg)
	}
	if err := key.require(alg, KeyTypePrivate, UsageSign); err != nil {
		return nil, err
	}

	switch alg {
	case RSASSAPKCS1v15:
		return signRSA(key.material, data)
	case Ed25519:
		return signEd25519(key.material, data)
	default:
		return signMLDSA(key.material, data)
	}
}

// Verify implements Provider.
func (e *Engine) Verify(alg Algorithm, key *Key, sig, data []byte) (bool, error) {
	if !isSigning(alg) {
		return false, fmt.Errorf("%w: verify with %s", ErrUnsupportedAlgorithm, alg)
	}
	if err := key.require(alg, KeyTypePublic, UsageVerify); err != nil {
		return false, err
	}

	switch alg {
	case RSASSAPKCS1v15:
		return verifyRSA(key.material, sig, data), nil
	case Ed25519:
		return verifyEd25519(key.material, sig, data), nil
	default:
		return verifyMLDSA(key.material, sig, data), nil
	}
}
