package secretnote

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/secretnote/client-go/internal/crypto"
	"github.com/secretnote/client-go/internal/framing"
)

// Trace holds the intermediate values of one Encode call. It is meant for
// diagnostics only and its layout may change.
type Trace struct {
	IV              []byte
	SessionKey      []byte
	Signature       []byte
	VerifyKey       []byte
	SenderPublicKey []byte
	Flags           []byte
	InnerPlain      []byte
	InnerCipher     []byte
	SessionPlain    []byte
	SessionCipher   []byte
	Envelope        Envelope
}

// WriteTo writes every traced value as a HexView block.
func (t *Trace) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, s := range []struct {
		name string
		data []byte
	}{
		{"iv", t.IV},
		{"session key", t.SessionKey},
		{"signature", t.Signature},
		{"verify key", t.VerifyKey},
		{"sender public key", t.SenderPublicKey},
		{"flags", t.Flags},
		{"inner package", t.InnerPlain},
		{"inner ciphertext", t.InnerCipher},
		{"session package", t.SessionPlain},
		{"session ciphertext", t.SessionCipher},
		{"envelope", t.Envelope},
	} {
		n, err := fmt.Fprintf(w, "%s:\n%s\n\n", s.name, HexView(s.data, 16))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Encode seals plaintext for recipient. The zero Sender produces an
// anonymous, unsigned note.
func (c *Codec) Encode(plaintext []byte, recipient *Key, sender Sender) (Envelope, error) {
	t, err := c.encode(plaintext, recipient, sender)
	if err != nil {
		return nil, err
	}
	return t.Envelope, nil
}

// EncodeTrace is Encode that also returns every intermediate value.
func (c *Codec) EncodeTrace(plaintext []byte, recipient *Key, sender Sender) (*Trace, error) {
	return c.encode(plaintext, recipient, sender)
}

func (c *Codec) encode(plaintext []byte, recipient *Key, sender Sender) (*Trace, error) {
	if recipient == nil {
		return nil, keyError("recipient key", fmt.Errorf("%w: nil key", crypto.ErrInvalidKey))
	}
	if recipient.Algorithm() != c.suite.Asymmetric || recipient.Type() != crypto.KeyTypePublic {
		return nil, keyError("recipient key", fmt.Errorf("%w: %s %s key, want %s public key",
			crypto.ErrAlgorithmMismatch, recipient.Algorithm(), recipient.Type(), c.suite.Asymmetric))
	}
	if err := c.checkSender(sender); err != nil {
		return nil, err
	}

	t := &Trace{}
	var err error

	t.IV, err = c.provider.RandomBytes(ivSize)
	if err != nil {
		return nil, cryptoError("iv", err)
	}

	sessionKey, err := c.provider.GenerateKey(c.suite.Symmetric, c.suite.SymmetricKeyBits, true,
		crypto.UsageEncrypt, crypto.UsageDecrypt)
	if err != nil {
		return nil, keyError("generate session key", err)
	}
	t.SessionKey, err = c.provider.ExportKey(crypto.FormatRaw, sessionKey)
	if err != nil {
		return nil, keyError("export session key", err)
	}

	signed := sender.SigningKey != nil
	if signed {
		t.VerifyKey, err = c.provider.ExportKey(crypto.FormatSPKI, sender.VerifyKey)
		if err != nil {
			return nil, keyError("export verify key", err)
		}
		t.Signature, err = c.provider.Sign(c.suite.Signing, sender.SigningKey, plaintext)
		if err != nil {
			return nil, cryptoError("sign", err)
		}
	}

	hasPublicKey := sender.PublicKey != nil
	if hasPublicKey {
		t.SenderPublicKey, err = c.provider.ExportKey(crypto.FormatSPKI, sender.PublicKey)
		if err != nil {
			return nil, keyError("export sender public key", err)
		}
	}

	t.Flags = []byte{flagByte(signed), flagByte(hasPublicKey)}

	t.InnerPlain, err = framing.Pack(t.Flags, plaintext, t.Signature, t.VerifyKey, t.SenderPublicKey)
	if err != nil {
		return nil, framingError("inner package", err)
	}

	t.InnerCipher, err = c.provider.Encrypt(crypto.Params{Algorithm: c.suite.Symmetric, IV: t.IV}, sessionKey, t.InnerPlain)
	if err != nil {
		return nil, cryptoError("encrypt inner package", err)
	}

	t.SessionPlain, err = framing.Pack(t.SessionKey, t.IV)
	if err != nil {
		return nil, framingError("session package", err)
	}

	t.SessionCipher, err = c.provider.Encrypt(crypto.Params{Algorithm: recipient.Algorithm()}, recipient, t.SessionPlain)
	if err != nil {
		return nil, cryptoError("encrypt session package", err)
	}

	env, err := framing.Pack(t.InnerCipher, t.SessionCipher)
	if err != nil {
		return nil, framingError("envelope", err)
	}
	t.Envelope = env

	c.logger.WithFields(logrus.Fields{
		"signed":         signed,
		"has_public_key": hasPublicKey,
		"plaintext_len":  len(plaintext),
		"envelope_len":   len(env),
	}).Debug("encoded note")

	return t, nil
}
