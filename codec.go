package secretnote

import (
	"encoding/base64"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/secretnote/client-go/internal/crypto"
)

// ivSize is the AES-CBC initialization vector length carried in the
// session package.
const ivSize = crypto.AESBlockSize

// Envelope is an encoded note: pack(innerCipher, sessionCipher).
type Envelope []byte

// String returns the standard base64 form stored on the relay.
func (e Envelope) String() string {
	return base64.StdEncoding.EncodeToString(e)
}

// ParseEnvelope decodes the base64 form produced by Envelope.String.
// Whitespace is ignored so wrapped text can be pasted back in.
func ParseEnvelope(s string) (Envelope, error) {
	raw, err := crypto.FromBase64(s)
	if err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("parse envelope: empty")
	}
	return raw, nil
}

// Sender holds the optional sender-side keys for Encode. Each field is
// independent: SigningKey signs the plaintext and requires VerifyKey,
// PublicKey discloses the sender's encryption identity.
type Sender struct {
	SigningKey *Key
	VerifyKey  *Key
	PublicKey  *Key
}

// Codec builds and opens envelopes with a fixed Provider and Suite.
// A Codec holds no per-call state and is safe for concurrent use.
type Codec struct {
	provider Provider
	suite    Suite
	logger   logrus.FieldLogger
}

// codecConfig holds configuration for a Codec.
type codecConfig struct {
	provider Provider
	suite    Suite
	logger   logrus.FieldLogger
}

// CodecOption configures a Codec.
type CodecOption func(*codecConfig)

// WithProvider replaces the built-in Provider.
func WithProvider(p Provider) CodecOption {
	return func(c *codecConfig) {
		c.provider = p
	}
}

// WithSuite selects the algorithms. Default: DefaultSuite().
func WithSuite(s Suite) CodecOption {
	return func(c *codecConfig) {
		c.suite = s
	}
}

// WithCodecLogger sets the logger used for debug tracing of pipeline steps.
func WithCodecLogger(l logrus.FieldLogger) CodecOption {
	return func(c *codecConfig) {
		c.logger = l
	}
}

// NewCodec creates a Codec. It fails if the suite is not usable.
func NewCodec(opts ...CodecOption) (*Codec, error) {
	cfg := &codecConfig{
		suite: DefaultSuite(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.suite.Validate(); err != nil {
		return nil, keyError("suite", err)
	}
	if cfg.provider == nil {
		cfg.provider = NewProvider()
	}
	if cfg.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.logger = l
	}
	return &Codec{
		provider: cfg.provider,
		suite:    cfg.suite,
		logger:   cfg.logger.WithField("component", "codec"),
	}, nil
}

// Suite returns the codec's algorithm suite.
func (c *Codec) Suite() Suite {
	return c.suite
}

// Provider returns the codec's Provider.
func (c *Codec) Provider() Provider {
	return c.provider
}

// Fingerprint returns the digest of key's SPKI encoding under the suite's
// digest algorithm. key must be a public key.
func (c *Codec) Fingerprint(key *Key) (Fingerprint, error) {
	if key == nil {
		return nil, keyError("fingerprint", fmt.Errorf("%w: nil key", crypto.ErrInvalidKey))
	}
	spki, err := c.provider.ExportKey(crypto.FormatSPKI, key)
	if err != nil {
		return nil, keyError("fingerprint", err)
	}
	return fingerprintBytes(c.provider, c.suite.Digest, spki)
}

// checkSender rejects sender keys that do not belong to the suite.
func (c *Codec) checkSender(s Sender) error {
	if s.SigningKey != nil {
		if s.VerifyKey == nil {
			return keyError("verify key", fmt.Errorf("%w: signing key given without verify key", crypto.ErrInvalidKey))
		}
		if s.SigningKey.Algorithm() != c.suite.Signing {
			return keyError("signing key", fmt.Errorf("%w: %s, want %s", crypto.ErrAlgorithmMismatch, s.SigningKey.Algorithm(), c.suite.Signing))
		}
		if s.VerifyKey.Algorithm() != c.suite.Signing {
			return keyError("verify key", fmt.Errorf("%w: %s, want %s", crypto.ErrAlgorithmMismatch, s.VerifyKey.Algorithm(), c.suite.Signing))
		}
	}
	if s.PublicKey != nil && s.PublicKey.Algorithm() != c.suite.Asymmetric {
		return keyError("sender public key", fmt.Errorf("%w: %s, want %s", crypto.ErrAlgorithmMismatch, s.PublicKey.Algorithm(), c.suite.Asymmetric))
	}
	return nil
}

func flagByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
