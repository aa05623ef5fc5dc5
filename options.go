package secretnote

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultWaitTimeout = 60 * time.Second
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retries    int
	retryOn    []int
	logger     logrus.FieldLogger
	codec      *Codec

	// Polling configuration
	pollingInitialInterval   time.Duration
	pollingMaxBackoff        time.Duration
	pollingBackoffMultiplier float64
	pollingJitterFactor      float64
}

// waitConfig holds configuration for waiting on notes.
type waitConfig struct {
	sender    Fingerprint
	signed    bool
	predicate func(*ReceivedNote) bool
	timeout   time.Duration
}

// Option configures the client.
type Option func(*clientConfig)

// WaitOption configures note waiting.
type WaitOption func(*waitConfig)

// WithBaseURL sets the relay base URL. Required.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRetries sets the number of retries for relay calls.
func WithRetries(count int) Option {
	return func(c *clientConfig) {
		c.retries = count
	}
}

// WithRetryOn sets the HTTP status codes that trigger a retry.
// Default: [408, 429, 500, 502, 503, 504]
func WithRetryOn(statusCodes []int) Option {
	return func(c *clientConfig) {
		c.retryOn = statusCodes
	}
}

// WithLogger sets the logger used by the client, its codec and watchers.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithCodec sets the codec used to seal and open notes.
// Default: a codec for DefaultSuite().
func WithCodec(codec *Codec) Option {
	return func(c *clientConfig) {
		c.codec = codec
	}
}

// WithPollingInitialInterval sets the initial polling interval.
// This is the interval used when notes are actively being received.
// Default: 2 seconds
func WithPollingInitialInterval(interval time.Duration) Option {
	return func(c *clientConfig) {
		c.pollingInitialInterval = interval
	}
}

// WithPollingMaxBackoff sets the maximum polling backoff interval.
// Default: 30 seconds
func WithPollingMaxBackoff(maxBackoff time.Duration) Option {
	return func(c *clientConfig) {
		c.pollingMaxBackoff = maxBackoff
	}
}

// WithPollingBackoffMultiplier sets the backoff multiplier for polling.
// After each poll with no new notes, the interval is multiplied by this
// factor.
// Default: 1.5
func WithPollingBackoffMultiplier(multiplier float64) Option {
	return func(c *clientConfig) {
		c.pollingBackoffMultiplier = multiplier
	}
}

// WithPollingJitterFactor sets the jitter factor for polling intervals.
// Default: 0.3 (30%)
func WithPollingJitterFactor(factor float64) Option {
	return func(c *clientConfig) {
		c.pollingJitterFactor = factor
	}
}

// WithSender only accepts notes whose disclosed public key has fingerprint fp.
func WithSender(fp Fingerprint) WaitOption {
	return func(c *waitConfig) {
		c.sender = fp
	}
}

// WithSignedOnly only accepts notes carrying a valid signature.
func WithSignedOnly() WaitOption {
	return func(c *waitConfig) {
		c.signed = true
	}
}

// WithPredicate filters notes by custom predicate.
func WithPredicate(fn func(*ReceivedNote) bool) WaitOption {
	return func(c *waitConfig) {
		c.predicate = fn
	}
}

// WithWaitTimeout sets the timeout for waiting.
func WithWaitTimeout(timeout time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.timeout = timeout
	}
}

// Matches checks if a received note matches the wait criteria. Notes that
// failed to open never match.
func (w *waitConfig) Matches(n *ReceivedNote) bool {
	if n.Err != nil || n.Result == nil {
		return false
	}
	if len(w.sender) > 0 && !w.sender.Equal(n.Result.PublicKeyFingerprint) {
		return false
	}
	if w.signed && !n.Result.SignatureValid {
		return false
	}
	if w.predicate != nil && !w.predicate(n) {
		return false
	}
	return true
}
