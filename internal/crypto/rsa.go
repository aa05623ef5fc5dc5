package crypto

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"
)

func generateRSA(r io.Reader) (any, any, error) {
	priv, err := rsa.GenerateKey(r, RSAModulusBits)
	if err != nil {
		return nil, nil, err
	}
	return &priv.PublicKey, priv, nil
}

// encryptRSAOAEP uses SHA-256 for both the OAEP hash and MGF1, with an
// empty label.
func encryptRSAOAEP(r io.Reader, material any, plaintext []byte) ([]byte, error) {
	pub := material.(*rsa.PublicKey)
	out, err := rsa.EncryptOAEP(sha256.New(), r, pub, plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	return out, nil
}

func decryptRSAOAEP(material any, ciphertext []byte) ([]byte, error) {
	priv := material.(*rsa.PrivateKey)
	out, err := rsa.DecryptOAEP(sha256.New(), nil, priv, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return out, nil
}

func signRSA(material any, data []byte) ([]byte, error) {
	priv := material.(*rsa.PrivateKey)
	hashed := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(nil, priv, crypto.SHA256, hashed[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}
	return sig, nil
}

func verifyRSA(material any, sig, data []byte) bool {
	pub := material.(*rsa.PublicKey)
	hashed := sha256.Sum256(data)
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, hashed[:], sig) == nil
}
