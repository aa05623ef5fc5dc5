package crypto

import (
	"io"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

func generateMLDSA(r io.Reader) (any, any, error) {
	pub, priv, err := mldsa65.GenerateKey(r)
	if err != nil {
		return nil, nil, err
	}
	return pub, priv, nil
}

// signMLDSA produces a deterministic ML-DSA-65 signature with an empty
// context string.
func signMLDSA(material any, data []byte) ([]byte, error) {
	return mldsa65.Scheme().Sign(material.(*mldsa65.PrivateKey), data, nil), nil
}

func verifyMLDSA(material any, sig, data []byte) bool {
	if len(sig) != MLDSASignatureSize {
		return false
	}
	return mldsa65.Verify(material.(*mldsa65.PublicKey), data, nil, sig)
}
