package crypto

import (
	"crypto/ed25519"
	"io"
)

func generateEd25519(r io.Reader) (any, any, error) {
	pub, priv, err := ed25519.GenerateKey(r)
	if err != nil {
		return nil, nil, err
	}
	return pub, priv, nil
}

func signEd25519(material any, data []byte) ([]byte, error) {
	return ed25519.Sign(material.(ed25519.PrivateKey), data), nil
}

func verifyEd25519(material any, sig, data []byte) bool {
	return ed25519.Verify(material.(ed25519.PublicKey), data, sig)
}
