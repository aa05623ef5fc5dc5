package delivery

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Poller delivers notes by polling the relay. Each watched fingerprint
// backs off independently while nothing new arrives.
type Poller struct {
	cfg     Config
	watched map[string]*watchedFingerprint
	handler NoteHandler
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.RWMutex
	started bool
}

type watchedFingerprint struct {
	fingerprint string
	seen        map[string]struct{}
	interval    time.Duration
}

var _ Strategy = (*Poller)(nil)

// NewPoller creates a poller. Zero config fields take their defaults.
func NewPoller(cfg Config) *Poller {
	return &Poller{
		cfg:     cfg.withDefaults(),
		watched: make(map[string]*watchedFingerprint),
	}
}

// Name returns the strategy name.
func (p *Poller) Name() string {
	return "polling"
}

// Start begins polling for the given fingerprints.
func (p *Poller) Start(ctx context.Context, fingerprints []string, handler NoteHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}

	p.handler = handler
	for _, fp := range fingerprints {
		p.addLocked(fp)
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.pollLoop(ctx, p.done)
	return nil
}

// Stop stops polling and waits for an in-flight cycle to finish.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = false
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Add starts watching fingerprint. Adding a watched fingerprint is a no-op.
func (p *Poller) Add(fingerprint string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addLocked(fingerprint)
}

func (p *Poller) addLocked(fingerprint string) {
	if _, ok := p.watched[fingerprint]; ok {
		return
	}
	p.watched[fingerprint] = &watchedFingerprint{
		fingerprint: fingerprint,
		seen:        make(map[string]struct{}),
		interval:    p.cfg.InitialInterval,
	}
}

// Remove stops watching fingerprint.
func (p *Poller) Remove(fingerprint string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.watched, fingerprint)
}

func (p *Poller) pollLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	for {
		wait := p.pollAll(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// pollAll polls every watched fingerprint once and returns the shortest
// jittered interval among them.
func (p *Poller) pollAll(ctx context.Context) time.Duration {
	p.mu.RLock()
	list := make([]*watchedFingerprint, 0, len(p.watched))
	for _, w := range p.watched {
		list = append(list, w)
	}
	handler := p.handler
	p.mu.RUnlock()

	if len(list) == 0 {
		return p.cfg.InitialInterval
	}

	var minWait time.Duration
	for _, w := range list {
		if ctx.Err() != nil {
			return 0
		}
		p.poll(ctx, w, handler)
		if wait := p.waitDuration(w); minWait == 0 || wait < minWait {
			minWait = wait
		}
	}
	return minWait
}

// poll fetches notes for one fingerprint. Only the poll loop goroutine
// touches w, so its fields need no locking.
func (p *Poller) poll(ctx context.Context, w *watchedFingerprint, handler NoteHandler) {
	if p.cfg.Fetcher == nil {
		return
	}

	notes, err := p.cfg.Fetcher.GetNotes(ctx, w.fingerprint)
	if err != nil {
		if ctx.Err() == nil {
			p.cfg.Logger.WithError(err).WithField("fingerprint", w.fingerprint).Warn("poll notes failed")
		}
		p.backoff(w)
		return
	}

	present := make(map[string]struct{}, len(notes))
	fresh := 0
	for _, note := range notes {
		present[note.ID] = struct{}{}
		if _, seen := w.seen[note.ID]; seen {
			continue
		}
		w.seen[note.ID] = struct{}{}
		fresh++
		if handler != nil {
			handler(ctx, w.fingerprint, note)
		}
	}

	// Expired notes drop off the relay; forget them so seen stays bounded.
	for id := range w.seen {
		if _, ok := present[id]; !ok {
			delete(w.seen, id)
		}
	}

	if fresh == 0 {
		p.backoff(w)
		return
	}
	p.cfg.Logger.WithFields(logrus.Fields{"fingerprint": w.fingerprint, "new": fresh}).Debug("delivered notes")
	w.interval = p.cfg.InitialInterval
}

func (p *Poller) backoff(w *watchedFingerprint) {
	next := time.Duration(float64(w.interval) * p.cfg.BackoffMultiplier)
	if next > p.cfg.MaxBackoff {
		next = p.cfg.MaxBackoff
	}
	w.interval = next
}

func (p *Poller) waitDuration(w *watchedFingerprint) time.Duration {
	// Add jitter to prevent thundering herd
	jitter := time.Duration(rand.Float64() * p.cfg.JitterFactor * float64(w.interval))
	return w.interval + jitter
}
