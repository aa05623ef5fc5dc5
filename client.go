package secretnote

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/secretnote/client-go/internal/api"
	"github.com/secretnote/client-go/internal/crypto"
	"github.com/secretnote/client-go/internal/delivery"
)

// Client sends and receives notes through a relay.
type Client struct {
	apiClient *api.Client
	codec     *Codec
	cfg       *clientConfig
	logger    logrus.FieldLogger

	mu       sync.Mutex
	closed   bool
	watchers map[*watchSubscription]struct{}
}

// buildAPIClient creates and configures an API client from the given config.
func buildAPIClient(cfg *clientConfig) (*api.Client, error) {
	apiOpts := []api.Option{
		api.WithBaseURL(cfg.baseURL),
		api.WithLogger(cfg.logger),
	}
	if cfg.timeout > 0 {
		apiOpts = append(apiOpts, api.WithTimeout(cfg.timeout))
	}
	if cfg.retries > 0 {
		apiOpts = append(apiOpts, api.WithRetries(cfg.retries))
	}
	if len(cfg.retryOn) > 0 {
		apiOpts = append(apiOpts, api.WithRetryOn(cfg.retryOn))
	}

	apiClient, err := api.New(apiOpts...)
	if err != nil {
		return nil, err
	}

	if cfg.httpClient != nil {
		apiClient.SetHTTPClient(cfg.httpClient)
	}

	return apiClient, nil
}

// New creates a relay client. WithBaseURL is required.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.logger = l
	}
	if cfg.codec == nil {
		codec, err := NewCodec(WithCodecLogger(cfg.logger))
		if err != nil {
			return nil, err //coverage:ignore
		}
		cfg.codec = codec
	}

	apiClient, err := buildAPIClient(cfg)
	if err != nil {
		return nil, err //coverage:ignore
	}

	return &Client{
		apiClient: apiClient,
		codec:     cfg.codec,
		cfg:       cfg,
		logger:    cfg.logger.WithField("component", "client"),
		watchers:  make(map[*watchSubscription]struct{}),
	}, nil
}

// Codec returns the codec the client seals and opens notes with.
func (c *Client) Codec() *Codec {
	return c.codec
}

// checkClosed returns ErrClientClosed if the client has been closed.
func (c *Client) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// Send seals plaintext for recipient and stores it on the relay under the
// recipient's public key fingerprint. A nil sender sends anonymously;
// otherwise the note discloses the sender's public key and is signed when
// the sender holds a signing key. It returns the relay's note ID.
func (c *Client) Send(ctx context.Context, recipient *Identity, plaintext []byte, sender *Identity) (string, error) {
	if err := c.checkClosed(); err != nil {
		return "", err
	}
	if recipient == nil || recipient.PublicKey == nil {
		return "", keyError("recipient", fmt.Errorf("%w: recipient has no public key", crypto.ErrInvalidKey))
	}

	var s Sender
	if sender != nil {
		s = sender.Sender()
	}
	env, err := c.codec.Encode(plaintext, recipient.PublicKey, s)
	if err != nil {
		return "", err
	}

	fp := recipient.PublicKeyFingerprint
	if len(fp) == 0 {
		if fp, err = c.codec.Fingerprint(recipient.PublicKey); err != nil {
			return "", err
		}
	}

	resp, err := c.apiClient.PostNote(ctx, api.PostNoteRequest{
		Fingerprint: fp.Hex(),
		Data:        env.String(),
	})
	if err != nil {
		return "", wrapError(err)
	}

	c.logger.WithFields(logrus.Fields{
		"id":        resp.ID,
		"recipient": fp.String(),
	}).Debug("note sent")
	return resp.ID, nil
}

// Notes lists the unexpired notes addressed to id, newest first.
func (c *Client) Notes(ctx context.Context, id *Identity) ([]*Note, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if id == nil || len(id.PublicKeyFingerprint) == 0 {
		return nil, keyError("identity", fmt.Errorf("%w: identity has no fingerprint", crypto.ErrInvalidKey))
	}

	raw, err := c.apiClient.GetNotes(ctx, id.PublicKeyFingerprint.Hex())
	if err != nil {
		return nil, wrapError(err)
	}

	notes := make([]*Note, 0, len(raw))
	for _, n := range raw {
		note, err := newNoteFromAPI(n)
		if err != nil {
			c.logger.WithError(err).Warn("skipping malformed note")
			continue
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// Open decodes note with id's private key.
func (c *Client) Open(note *Note, id *Identity) (*DecodedResult, error) {
	if id == nil || !id.CanDecrypt() {
		return nil, keyError("identity", fmt.Errorf("%w: identity has no private key", crypto.ErrInvalidKey))
	}
	return c.codec.Decode(note.Envelope, id.PrivateKey)
}

// receive opens a relay note for id, recording any failure on the result.
func (c *Client) receive(raw api.Note, id *Identity) *ReceivedNote {
	note, err := newNoteFromAPI(raw)
	if err != nil {
		return &ReceivedNote{Note: &Note{ID: raw.ID}, Err: err}
	}
	res, err := c.Open(note, id)
	return &ReceivedNote{Note: note, Result: res, Err: err}
}

// newPoller creates a poller with the client's polling settings.
func (c *Client) newPoller() *delivery.Poller {
	return delivery.NewPoller(delivery.Config{
		Fetcher:           c.apiClient,
		InitialInterval:   c.cfg.pollingInitialInterval,
		MaxBackoff:        c.cfg.pollingMaxBackoff,
		BackoffMultiplier: c.cfg.pollingBackoffMultiplier,
		JitterFactor:      c.cfg.pollingJitterFactor,
		Logger:            c.logger,
	})
}

// Close stops all watchers. Further calls on the client return
// ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := make([]*watchSubscription, 0, len(c.watchers))
	for s := range c.watchers {
		subs = append(subs, s)
	}
	c.watchers = nil
	c.mu.Unlock()

	for _, s := range subs {
		s.stop()
	}
	return nil
}
