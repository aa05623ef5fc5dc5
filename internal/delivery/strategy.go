package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/secretnote/client-go/internal/api"
)

// ErrAlreadyStarted is returned when Start is called on a running strategy.
var ErrAlreadyStarted = errors.New("delivery strategy already started")

// NoteFetcher lists the notes stored for a fingerprint. *api.Client
// satisfies it.
type NoteFetcher interface {
	GetNotes(ctx context.Context, fingerprint string) ([]api.Note, error)
}

// NoteHandler is invoked once per newly seen note. fingerprint is the
// watched fingerprint the note was fetched for.
type NoteHandler func(ctx context.Context, fingerprint string, note api.Note)

// Strategy defines the interface for note delivery mechanisms.
//
// The typical lifecycle is:
//  1. Create a strategy with NewPoller(cfg)
//  2. Call Start(ctx, fingerprints, handler) to begin receiving notes
//  3. Optionally call Add/Remove to change the watched fingerprints
//  4. Call Stop() when done to release resources
//
// All implementations are safe for concurrent use.
type Strategy interface {
	// Start begins watching fingerprints. Start returns immediately;
	// delivery is asynchronous.
	Start(ctx context.Context, fingerprints []string, handler NoteHandler) error

	// Stop shuts down the strategy. After Stop returns, no more notes are
	// delivered. Stop is idempotent.
	Stop() error

	// Add starts watching fingerprint.
	Add(fingerprint string)

	// Remove stops watching fingerprint after the current cycle.
	Remove(fingerprint string)

	// Name returns the strategy name for logging.
	Name() string
}

// Config holds polling configuration.
type Config struct {
	// Fetcher lists notes for a fingerprint.
	Fetcher NoteFetcher

	// InitialInterval is the starting interval between polls.
	// If zero, defaults to DefaultInitialInterval.
	InitialInterval time.Duration

	// MaxBackoff is the maximum interval between polls.
	// If zero, defaults to DefaultMaxBackoff.
	MaxBackoff time.Duration

	// BackoffMultiplier is the factor by which the interval grows after a
	// poll that found nothing new.
	// If zero, defaults to DefaultBackoffMultiplier.
	BackoffMultiplier float64

	// JitterFactor is the maximum random jitter added to intervals, as a
	// fraction of the interval.
	// If zero, defaults to DefaultJitterFactor.
	JitterFactor float64

	// Logger receives poll failures. Defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

// Default polling configuration values.
const (
	DefaultInitialInterval   = 2 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 1.5
	DefaultJitterFactor      = 0.3
)

func (c Config) withDefaults() Config {
	if c.InitialInterval <= 0 {
		c.InitialInterval = DefaultInitialInterval
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if c.JitterFactor <= 0 {
		c.JitterFactor = DefaultJitterFactor
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	return c
}
