package secretnote

import (
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestDefaultConstants(t *testing.T) {
	if defaultTimeout != 30*time.Second {
		t.Errorf("defaultTimeout = %v, want 30s", defaultTimeout)
	}
	if defaultWaitTimeout != 60*time.Second {
		t.Errorf("defaultWaitTimeout = %v, want 60s", defaultWaitTimeout)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	httpClient := &http.Client{Timeout: 99 * time.Second}
	logger := logrus.New()
	codec := &Codec{}

	for _, opt := range []Option{
		WithBaseURL("https://relay.example.com"),
		WithHTTPClient(httpClient),
		WithTimeout(5 * time.Second),
		WithRetries(7),
		WithRetryOn([]int{500, 503}),
		WithLogger(logger),
		WithCodec(codec),
		WithPollingInitialInterval(100 * time.Millisecond),
		WithPollingMaxBackoff(10 * time.Second),
		WithPollingBackoffMultiplier(2.5),
		WithPollingJitterFactor(0.1),
	} {
		opt(cfg)
	}

	if cfg.baseURL != "https://relay.example.com" {
		t.Errorf("baseURL = %s", cfg.baseURL)
	}
	if cfg.httpClient != httpClient {
		t.Error("httpClient was not set")
	}
	if cfg.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.timeout)
	}
	if cfg.retries != 7 {
		t.Errorf("retries = %d, want 7", cfg.retries)
	}
	if len(cfg.retryOn) != 2 || cfg.retryOn[0] != 500 || cfg.retryOn[1] != 503 {
		t.Errorf("retryOn = %v, want [500 503]", cfg.retryOn)
	}
	if cfg.logger != logger {
		t.Error("logger was not set")
	}
	if cfg.codec != codec {
		t.Error("codec was not set")
	}
	if cfg.pollingInitialInterval != 100*time.Millisecond {
		t.Errorf("pollingInitialInterval = %v", cfg.pollingInitialInterval)
	}
	if cfg.pollingMaxBackoff != 10*time.Second {
		t.Errorf("pollingMaxBackoff = %v", cfg.pollingMaxBackoff)
	}
	if cfg.pollingBackoffMultiplier != 2.5 {
		t.Errorf("pollingBackoffMultiplier = %v", cfg.pollingBackoffMultiplier)
	}
	if cfg.pollingJitterFactor != 0.1 {
		t.Errorf("pollingJitterFactor = %v", cfg.pollingJitterFactor)
	}
}

func TestWaitConfig_Matches(t *testing.T) {
	alice := Fingerprint{0xa1}
	signed := &ReceivedNote{
		Note:   &Note{ID: "1"},
		Result: &DecodedResult{Plaintext: []byte("hi"), Signed: true, SignatureValid: true, SenderPublicKey: &Key{}, PublicKeyFingerprint: alice},
	}
	anonymous := &ReceivedNote{
		Note:   &Note{ID: "2"},
		Result: &DecodedResult{Plaintext: []byte("boo")},
	}
	failed := &ReceivedNote{Note: &Note{ID: "3"}, Err: ErrValidation}

	tests := []struct {
		name     string
		opts     []WaitOption
		note     *ReceivedNote
		expected bool
	}{
		{"no filter", nil, anonymous, true},
		{"failed notes never match", nil, failed, false},
		{"sender matches", []WaitOption{WithSender(alice)}, signed, true},
		{"sender mismatch", []WaitOption{WithSender(Fingerprint{0xff})}, signed, false},
		{"sender on anonymous", []WaitOption{WithSender(alice)}, anonymous, false},
		{"signed only", []WaitOption{WithSignedOnly()}, signed, true},
		{"signed only rejects unsigned", []WaitOption{WithSignedOnly()}, anonymous, false},
		{"predicate", []WaitOption{WithPredicate(func(n *ReceivedNote) bool {
			return string(n.Result.Plaintext) == "boo"
		})}, anonymous, true},
		{"predicate rejects", []WaitOption{WithPredicate(func(n *ReceivedNote) bool { return false })}, signed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &waitConfig{}
			for _, opt := range tt.opts {
				opt(cfg)
			}
			if got := cfg.Matches(tt.note); got != tt.expected {
				t.Errorf("Matches() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWithWaitTimeout(t *testing.T) {
	cfg := &waitConfig{}
	WithWaitTimeout(3 * time.Second)(cfg)
	if cfg.timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", cfg.timeout)
	}
}

func TestCodecOptions(t *testing.T) {
	p := NewProvider()
	logger := logrus.New()

	c, err := NewCodec(WithProvider(p), WithSuite(LegacySuite()), WithCodecLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	if c.Provider() != p {
		t.Error("provider was not set")
	}
	if c.Suite() != LegacySuite() {
		t.Errorf("Suite() = %+v, want legacy", c.Suite())
	}

	c, err = NewCodec()
	if err != nil {
		t.Fatal(err)
	}
	if c.Suite() != DefaultSuite() {
		t.Errorf("Suite() = %+v, want default", c.Suite())
	}
	if c.Provider() == nil {
		t.Error("default provider is nil")
	}
}
