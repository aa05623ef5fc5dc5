package secretnote

import (
	"fmt"

	"github.com/secretnote/client-go/internal/crypto"
)

// Sign produces a detached signature over data.
func (c *Codec) Sign(data []byte, signingKey *Key) ([]byte, error) {
	if signingKey == nil {
		return nil, keyError("signing key", fmt.Errorf("%w: nil key", crypto.ErrInvalidKey))
	}
	sig, err := c.provider.Sign(c.suite.Signing, signingKey, data)
	if err != nil {
		return nil, cryptoError("sign", err)
	}
	return sig, nil
}

// Verify checks a detached signature. Malformed signatures and keys of the
// wrong kind report false.
func (c *Codec) Verify(data, sig []byte, verifyKey *Key) bool {
	if verifyKey == nil {
		return false
	}
	ok, err := c.provider.Verify(c.suite.Signing, verifyKey, sig, data)
	if err != nil {
		c.logger.WithError(err).Debug("signature verification failed")
		return false
	}
	return ok
}
