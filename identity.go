package secretnote

import (
	"fmt"

	"github.com/secretnote/client-go/internal/crypto"
)

// Identity is a named set of keys. A local identity holds private keys and
// can open notes and sign them; a contact holds only the public halves.
type Identity struct {
	Name    string
	Trusted bool
	Local   bool

	// PublicKey receives notes. Its fingerprint is the identity's address
	// on the relay.
	PublicKey  *Key
	PrivateKey *Key

	VerifyKey  *Key
	SigningKey *Key

	PublicKeyFingerprint Fingerprint
	VerifyKeyFingerprint Fingerprint
}

// GenerateIdentity creates an encryption pair and a signing pair for the
// codec's suite. extractable controls whether the private keys may later
// be exported. New identities are local and trusted.
func (c *Codec) GenerateIdentity(name string, extractable bool) (*Identity, error) {
	enc, err := c.provider.GenerateKeyPair(c.suite.Asymmetric, extractable, crypto.UsageEncrypt, crypto.UsageDecrypt)
	if err != nil {
		return nil, keyError("generate encryption key pair", err)
	}
	sig, err := c.provider.GenerateKeyPair(c.suite.Signing, extractable, crypto.UsageSign, crypto.UsageVerify)
	if err != nil {
		return nil, keyError("generate signing key pair", err)
	}

	id := &Identity{
		Name:       name,
		Trusted:    true,
		Local:      true,
		PublicKey:  enc.PublicKey,
		PrivateKey: enc.PrivateKey,
		VerifyKey:  sig.PublicKey,
		SigningKey: sig.PrivateKey,
	}
	if err := c.fingerprintIdentity(id); err != nil {
		return nil, err
	}

	c.logger.WithField("fingerprint", id.PublicKeyFingerprint.String()).Debug("generated identity")
	return id, nil
}

// fingerprintIdentity fills in the fingerprints of id's public keys.
func (c *Codec) fingerprintIdentity(id *Identity) error {
	var err error
	id.PublicKeyFingerprint, err = c.Fingerprint(id.PublicKey)
	if err != nil {
		return err
	}
	id.VerifyKeyFingerprint = nil
	if id.VerifyKey != nil {
		id.VerifyKeyFingerprint, err = c.Fingerprint(id.VerifyKey)
		if err != nil {
			return err
		}
	}
	return nil
}

// Public returns a copy of id without its private keys.
func (id *Identity) Public() *Identity {
	return &Identity{
		Name:                 id.Name,
		Trusted:              id.Trusted,
		PublicKey:            id.PublicKey,
		VerifyKey:            id.VerifyKey,
		PublicKeyFingerprint: id.PublicKeyFingerprint,
		VerifyKeyFingerprint: id.VerifyKeyFingerprint,
	}
}

// CanSign reports whether id holds a signing key.
func (id *Identity) CanSign() bool {
	return id.SigningKey != nil && id.VerifyKey != nil
}

// CanDecrypt reports whether id holds its private encryption key.
func (id *Identity) CanDecrypt() bool {
	return id.PrivateKey != nil
}

// Sender returns the keys to pass to Encode when sending as id: the note is
// signed when id can sign and discloses id's public key.
func (id *Identity) Sender() Sender {
	s := Sender{PublicKey: id.PublicKey}
	if id.CanSign() {
		s.SigningKey = id.SigningKey
		s.VerifyKey = id.VerifyKey
	}
	return s
}

// ContactFromResult builds an untrusted contact from a note whose sender
// disclosed a public key. The verify key is kept only when the signature
// verified.
func ContactFromResult(name string, res *DecodedResult) (*Identity, error) {
	if res == nil || !res.HasPublicKey() {
		return nil, keyError("contact", fmt.Errorf("%w: note has no sender public key", crypto.ErrInvalidKey))
	}
	id := &Identity{
		Name:                 name,
		PublicKey:            res.SenderPublicKey,
		PublicKeyFingerprint: res.PublicKeyFingerprint,
	}
	if res.SignatureValid && res.VerifyKey != nil {
		id.VerifyKey = res.VerifyKey
		id.VerifyKeyFingerprint = res.VerifyKeyFingerprint
	}
	return id, nil
}
