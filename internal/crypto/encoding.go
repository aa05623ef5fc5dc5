package crypto

import (
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

func parsePublicKey(alg Algorithm, der []byte) (any, error) {
	switch alg {
	case RSAOAEP, RSASSAPKCS1v15:
		pub, err := x509.ParsePKIXPublicKey(der)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not an RSA key", ErrAlgorithmMismatch, pub)
		}
		return rsaPub, nil
	case Ed25519:
		pub, err := x509.ParsePKIXPublicKey(der)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		edPub, ok := pub.(ed25519.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not an Ed25519 key", ErrAlgorithmMismatch, pub)
		}
		return edPub, nil
	case MLKEM768:
		raw, err := parseSPKI(oidMLKEM768, der)
		if err != nil {
			return nil, err
		}
		pub, err := mlkem768.Scheme().UnmarshalBinaryPublicKey(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return pub, nil
	case MLDSA65:
		raw, err := parseSPKI(oidMLDSA65, der)
		if err != nil {
			return nil, err
		}
		var pub mldsa65.PublicKey
		if err := pub.UnmarshalBinary(raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return &pub, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
}

func parsePrivateKey(alg Algorithm, der []byte) (any, error) {
	switch alg {
	case RSAOAEP, RSASSAPKCS1v15:
		priv, err := x509.ParsePKCS8PrivateKey(der)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		rsaPriv, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not an RSA key", ErrAlgorithmMismatch, priv)
		}
		return rsaPriv, nil
	case Ed25519:
		priv, err := x509.ParsePKCS8PrivateKey(der)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		edPriv, ok := priv.(ed25519.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not an Ed25519 key", ErrAlgorithmMismatch, priv)
		}
		return edPriv, nil
	case MLKEM768:
		raw, err := parsePKCS8(oidMLKEM768, der)
		if err != nil {
			return nil, err
		}
		priv, err := mlkem768.Scheme().UnmarshalBinaryPrivateKey(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return priv, nil
	case MLDSA65:
		raw, err := parsePKCS8(oidMLDSA65, der)
		if err != nil {
			return nil, err
		}
		var priv mldsa65.PrivateKey
		if err := priv.UnmarshalBinary(raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return &priv, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
}

func marshalPublicKey(key *Key) ([]byte, error) {
	switch m := key.material.(type) {
	case kem.PublicKey:
		raw, err := m.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return marshalSPKI(oidMLKEM768, raw)
	case *mldsa65.PublicKey:
		raw, err := m.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return marshalSPKI(oidMLDSA65, raw)
	default:
		der, err := x509.MarshalPKIXPublicKey(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return der, nil
	}
}

func marshalPrivateKey(key *Key) ([]byte, error) {
	switch m := key.material.(type) {
	case kem.PrivateKey:
		raw, err := m.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return marshalPKCS8(oidMLKEM768, raw)
	case *mldsa65.PrivateKey:
		raw, err := m.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return marshalPKCS8(oidMLDSA65, raw)
	default:
		der, err := x509.MarshalPKCS8PrivateKey(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return der, nil
	}
}
