package secretnote

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/secretnote/client-go/internal/crypto"
	"github.com/secretnote/client-go/internal/framing"
)

// Inner package segment positions.
const (
	segFlags = iota
	segPlaintext
	segSignature
	segVerifyKey
	segSenderKey

	fullInnerSegments    = 5
	compactInnerSegments = 3
)

// DecodedResult is the content of an opened note.
//
// Signed reports that the note carried a signature; SignatureValid reports
// whether it verified. A signature that fails to verify is not an error.
// The verify key and sender key are reported as received: they identify
// who the note claims to be from, and it is up to the caller to decide
// whether those fingerprints are trusted (see Assess).
type DecodedResult struct {
	Plaintext      []byte
	Signed         bool
	SignatureValid bool

	// SenderPublicKey is set when the sender disclosed an encryption key.
	SenderPublicKey      *Key
	PublicKeyFingerprint Fingerprint

	// VerifyKey is nil when the note was unsigned or its verify key could
	// not be imported. VerifyKeyFingerprint is set for every signed note.
	VerifyKey            *Key
	VerifyKeyFingerprint Fingerprint
}

// HasPublicKey reports whether the sender disclosed an encryption key.
func (r *DecodedResult) HasPublicKey() bool {
	return r.SenderPublicKey != nil
}

// Decode opens env with the recipient's private key.
func (c *Codec) Decode(env Envelope, recipient *Key) (*DecodedResult, error) {
	if recipient == nil {
		return nil, keyError("recipient key", fmt.Errorf("%w: nil key", crypto.ErrInvalidKey))
	}
	if recipient.Algorithm() != c.suite.Asymmetric || recipient.Type() != crypto.KeyTypePrivate {
		return nil, keyError("recipient key", fmt.Errorf("%w: %s %s key, want %s private key",
			crypto.ErrAlgorithmMismatch, recipient.Algorithm(), recipient.Type(), c.suite.Asymmetric))
	}

	outer, err := framing.Unpack(env)
	if err != nil {
		return nil, framingError("envelope", err)
	}
	if len(outer) != 2 {
		return nil, validationError("envelope", fmt.Sprintf("expected 2 segments, got %d", len(outer)))
	}
	innerCipher, sessionCipher := outer[0], outer[1]

	sessionPlain, err := c.provider.Decrypt(crypto.Params{Algorithm: recipient.Algorithm()}, recipient, sessionCipher)
	if err != nil {
		return nil, cryptoError("decrypt session package", err)
	}
	session, err := framing.Unpack(sessionPlain)
	if err != nil {
		return nil, framingError("session package", err)
	}
	if len(session) != 2 {
		return nil, validationError("session package", fmt.Sprintf("expected 2 segments, got %d", len(session)))
	}
	if len(session[1]) != ivSize {
		return nil, validationError("session package", fmt.Sprintf("iv is %d bytes, want %d", len(session[1]), ivSize))
	}

	// The session key only ever decrypts this one note.
	sessionKey, err := c.provider.ImportKey(crypto.FormatRaw, session[0], c.suite.Symmetric, false, crypto.UsageDecrypt)
	if err != nil {
		return nil, keyError("import session key", err)
	}

	innerPlain, err := c.provider.Decrypt(crypto.Params{Algorithm: c.suite.Symmetric, IV: session[1]}, sessionKey, innerCipher)
	if err != nil {
		return nil, cryptoError("decrypt inner package", err)
	}
	inner, err := framing.Unpack(innerPlain)
	if err != nil {
		return nil, framingError("inner package", err)
	}

	signed, hasPublicKey, err := checkInner(inner)
	if err != nil {
		return nil, err
	}

	res := &DecodedResult{
		Plaintext: inner[segPlaintext],
		Signed:    signed,
	}

	if signed {
		verifyKeyBytes := inner[segVerifyKey]
		res.VerifyKeyFingerprint, err = fingerprintBytes(c.provider, c.suite.Digest, verifyKeyBytes)
		if err != nil {
			return nil, err
		}
		res.VerifyKey, res.SignatureValid = c.verify(verifyKeyBytes, inner[segSignature], res.Plaintext)
	}

	if hasPublicKey {
		senderKeyBytes := inner[len(inner)-1]
		res.SenderPublicKey, err = c.provider.ImportKey(crypto.FormatSPKI, senderKeyBytes, c.suite.Asymmetric, true, crypto.UsageEncrypt)
		if err != nil {
			return nil, keyError("import sender public key", err)
		}
		res.PublicKeyFingerprint, err = fingerprintBytes(c.provider, c.suite.Digest, senderKeyBytes)
		if err != nil {
			return nil, err
		}
	}

	c.logger.WithFields(logrus.Fields{
		"signed":          res.Signed,
		"signature_valid": res.SignatureValid,
		"has_public_key":  hasPublicKey,
		"plaintext_len":   len(res.Plaintext),
	}).Debug("decoded note")

	return res, nil
}

// verify imports the verify key and checks sig. Import and verification
// failures both report an invalid signature.
func (c *Codec) verify(verifyKeyBytes, sig, plaintext []byte) (*Key, bool) {
	key, err := c.provider.ImportKey(crypto.FormatSPKI, verifyKeyBytes, c.suite.Signing, true, crypto.UsageVerify)
	if err != nil {
		c.logger.WithError(err).Debug("verify key import failed")
		return nil, false
	}
	ok, err := c.provider.Verify(c.suite.Signing, key, sig, plaintext)
	if err != nil {
		c.logger.WithError(err).Debug("signature verification failed")
		return key, false
	}
	return key, ok
}

// checkInner validates the inner package layout against its flags. Both the
// five segment layout and the compact unsigned layout
// [flags, plaintext, senderKey] are accepted.
func checkInner(inner [][]byte) (signed, hasPublicKey bool, err error) {
	if len(inner) < 2 {
		return false, false, validationError("inner package", fmt.Sprintf("expected at least 2 segments, got %d", len(inner)))
	}
	flags := inner[segFlags]
	if len(flags) != 2 {
		return false, false, validationError("inner package", fmt.Sprintf("flags are %d bytes, want 2", len(flags)))
	}

	var problems []string
	for i, f := range flags {
		if f > 1 {
			problems = append(problems, fmt.Sprintf("flag %d has value %d", i, f))
		}
	}
	if len(problems) > 0 {
		return false, false, validationError("inner package", problems...)
	}
	signed, hasPublicKey = flags[0] == 1, flags[1] == 1

	switch {
	case len(inner) == fullInnerSegments:
		if signed {
			if len(inner[segSignature]) == 0 {
				problems = append(problems, "signed note has an empty signature")
			}
			if len(inner[segVerifyKey]) == 0 {
				problems = append(problems, "signed note has an empty verify key")
			}
		} else {
			if len(inner[segSignature]) != 0 {
				problems = append(problems, "unsigned note carries a signature")
			}
			if len(inner[segVerifyKey]) != 0 {
				problems = append(problems, "unsigned note carries a verify key")
			}
		}
	case len(inner) == compactInnerSegments && !signed:
	default:
		problems = append(problems, fmt.Sprintf("%d segments do not match flags signed=%t public_key=%t", len(inner), signed, hasPublicKey))
		return false, false, validationError("inner package", problems...)
	}

	senderKey := inner[len(inner)-1]
	if hasPublicKey && len(senderKey) == 0 {
		problems = append(problems, "public key flag set but sender key is empty")
	}
	if !hasPublicKey && len(senderKey) != 0 {
		problems = append(problems, "sender key present without public key flag")
	}
	if len(problems) > 0 {
		return false, false, validationError("inner package", problems...)
	}
	return signed, hasPublicKey, nil
}
