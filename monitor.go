package secretnote

import (
	"context"
	"fmt"
	"sync"

	"github.com/secretnote/client-go/internal/api"
	"github.com/secretnote/client-go/internal/crypto"
)

// Subscription represents an active subscription that can be unsubscribed.
type Subscription interface {
	// Unsubscribe stops the subscription and releases resources.
	Unsubscribe()
}

// NoteCallback is called once for every new note. Notes that fail to open
// are delivered with Err set.
type NoteCallback func(n *ReceivedNote)

// watchSubscription implements Subscription for a running poller.
type watchSubscription struct {
	client *Client
	stopFn func() error
	done   chan struct{}
	once   sync.Once
}

func (s *watchSubscription) Unsubscribe() {
	s.client.mu.Lock()
	if s.client.watchers != nil {
		delete(s.client.watchers, s)
	}
	s.client.mu.Unlock()
	s.stop()
}

// stop closes done before stopping the poller so a callback blocked on
// delivery can return.
func (s *watchSubscription) stop() {
	s.once.Do(func() {
		close(s.done)
		_ = s.stopFn()
	})
}

// Watch polls the relay for notes addressed to id and calls fn for each
// new one. Notes already on the relay are delivered on the first poll.
// Polling backs off while nothing new arrives and stops when ctx is done
// or the subscription is cancelled. fn runs on the polling goroutine and
// must not call Unsubscribe itself.
func (c *Client) Watch(ctx context.Context, id *Identity, fn NoteCallback) (Subscription, error) {
	sub, err := c.watch(ctx, id, make(chan struct{}), fn)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (c *Client) watch(ctx context.Context, id *Identity, done chan struct{}, fn NoteCallback) (*watchSubscription, error) {
	if id == nil || !id.CanDecrypt() || len(id.PublicKeyFingerprint) == 0 {
		return nil, keyError("identity", fmt.Errorf("%w: identity cannot receive notes", crypto.ErrInvalidKey))
	}

	poller := c.newPoller()
	sub := &watchSubscription{client: c, stopFn: poller.Stop, done: done}
	handler := func(_ context.Context, _ string, raw api.Note) {
		fn(c.receive(raw, id))
	}

	// Start under c.mu so Close either sees the running poller or makes
	// this call fail.
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClientClosed
	}
	if err := poller.Start(ctx, []string{id.PublicKeyFingerprint.Hex()}, handler); err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("start watcher: %w", err)
	}
	c.watchers[sub] = struct{}{}
	c.mu.Unlock()

	c.logger.WithField("fingerprint", id.PublicKeyFingerprint.String()).Debug("watching for notes")
	return sub, nil
}

// WatchChan is Watch delivering into a channel. The channel is not closed
// when ctx is cancelled; select on ctx.Done() to detect cancellation.
// Polling pauses while the channel buffer is full, so no note is lost to a
// slow reader.
func (c *Client) WatchChan(ctx context.Context, id *Identity) (<-chan *ReceivedNote, error) {
	ch := make(chan *ReceivedNote, 16)
	done := make(chan struct{})
	sub, err := c.watch(ctx, id, done, func(n *ReceivedNote) {
		select {
		case ch <- n:
		case <-ctx.Done():
		case <-done:
		}
	})
	if err != nil {
		return nil, err
	}
	go func() {
		select {
		case <-ctx.Done():
			sub.Unsubscribe()
		case <-done:
		}
	}()
	return ch, nil
}

// WaitForNote waits for a note addressed to id matching the given criteria.
func (c *Client) WaitForNote(ctx context.Context, id *Identity, opts ...WaitOption) (*ReceivedNote, error) {
	cfg := &waitConfig{
		timeout: defaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	notes, err := c.WatchChan(ctx, id)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case n := <-notes:
			if n != nil && cfg.Matches(n) {
				return n, nil
			}
		}
	}
}
