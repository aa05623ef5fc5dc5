package secretnote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/secretnote/client-go/internal/relay"
)

func TestClient_Watch(t *testing.T) {
	_, alice, bob := testIdentities(t)
	c, _ := newRelayClient(t, unlimited)
	ctx := context.Background()

	if _, err := c.Send(ctx, bob.Public(), []byte("already there"), nil); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 4)
	sub, err := c.Watch(ctx, bob, func(n *ReceivedNote) {
		if n.Err != nil {
			t.Errorf("watched note failed to open: %v", n.Err)
			return
		}
		mu.Lock()
		got = append(got, string(n.Result.Plaintext))
		mu.Unlock()
		done <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer sub.Unsubscribe()

	waitSignal(t, done)
	if _, err := c.Send(ctx, bob.Public(), []byte("fresh"), alice); err != nil {
		t.Fatal(err)
	}
	waitSignal(t, done)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != "already there" || got[1] != "fresh" {
		t.Errorf("delivered %q, want [already there fresh]", got)
	}
}

func TestClient_Watch_InvalidIdentity(t *testing.T) {
	_, alice, _ := testIdentities(t)
	c, _ := newRelayClient(t, unlimited)

	for name, id := range map[string]*Identity{
		"nil":         nil,
		"public only": alice.Public(),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := c.Watch(context.Background(), id, func(*ReceivedNote) {}); !errors.Is(err, ErrKey) {
				t.Errorf("Watch() error = %v, want ErrKey", err)
			}
		})
	}
}

func TestClient_Watch_UnsubscribeIdempotent(t *testing.T) {
	_, _, bob := testIdentities(t)
	c, _ := newRelayClient(t, unlimited)

	sub, err := c.Watch(context.Background(), bob, func(*ReceivedNote) {})
	if err != nil {
		t.Fatal(err)
	}
	sub.Unsubscribe()
	sub.Unsubscribe()

	c.mu.Lock()
	n := len(c.watchers)
	c.mu.Unlock()
	if n != 0 {
		t.Errorf("client still tracks %d watchers", n)
	}
}

func TestClient_Close_StopsWatchers(t *testing.T) {
	_, _, bob := testIdentities(t)
	c, _ := newRelayClient(t, unlimited)

	for i := 0; i < 3; i++ {
		if _, err := c.Watch(context.Background(), bob, func(*ReceivedNote) {}); err != nil {
			t.Fatal(err)
		}
	}

	closed := make(chan struct{})
	go func() {
		_ = c.Close()
		close(closed)
	}()
	waitSignal(t, closed)
}

func TestClient_WatchChan(t *testing.T) {
	_, _, bob := testIdentities(t)
	c, _ := newRelayClient(t, unlimited)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notes, err := c.WatchChan(ctx, bob)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Send(ctx, bob.Public(), []byte("via channel"), nil); err != nil {
		t.Fatal(err)
	}

	select {
	case n := <-notes:
		if n.Err != nil || string(n.Result.Plaintext) != "via channel" {
			t.Errorf("received %+v", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for note")
	}
}

func TestClient_WaitForNote(t *testing.T) {
	_, alice, bob := testIdentities(t)
	c, _ := newRelayClient(t, unlimited)
	ctx := context.Background()

	if _, err := c.Send(ctx, bob.Public(), []byte("anonymous"), nil); err != nil {
		t.Fatal(err)
	}
	go func() {
		time.Sleep(50 * time.Millisecond)
		_, _ = c.Send(ctx, bob.Public(), []byte("from alice"), alice)
	}()

	n, err := c.WaitForNote(ctx, bob,
		WithSender(alice.PublicKeyFingerprint),
		WithSignedOnly(),
		WithWaitTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("WaitForNote() error = %v", err)
	}
	if string(n.Result.Plaintext) != "from alice" {
		t.Errorf("Plaintext = %q, want from alice", n.Result.Plaintext)
	}
	if a := Assess(n.Result, []*Identity{alice}); a.Sender != SenderTrusted || a.Signature != SignatureValid {
		t.Errorf("Assess() = %s / %s", a.Sender, a.Signature)
	}
}

func TestClient_WaitForNote_Timeout(t *testing.T) {
	_, _, bob := testIdentities(t)
	c, _ := newRelayClient(t, unlimited)

	_, err := c.WaitForNote(context.Background(), bob, WithWaitTimeout(100*time.Millisecond))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForNote() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestClient_WatchCloseRace(t *testing.T) {
	codec, _, bob := testIdentities(t)

	srv := relay.New(unlimited, nil)
	var fetches atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fetches.Add(1)
		}
		srv.Handler().ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	for i := 0; i < 25; i++ {
		c, err := New(
			WithBaseURL(ts.URL),
			WithCodec(codec),
			WithPollingInitialInterval(5*time.Millisecond),
			WithPollingMaxBackoff(5*time.Millisecond),
		)
		if err != nil {
			t.Fatal(err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = c.Watch(context.Background(), bob, func(*ReceivedNote) {})
		}()
		go func() {
			defer wg.Done()
			_ = c.Close()
		}()
		wg.Wait()
	}

	time.Sleep(50 * time.Millisecond)
	before := fetches.Load()
	time.Sleep(100 * time.Millisecond)
	if after := fetches.Load(); after != before {
		t.Errorf("relay polled %d times after every client was closed", after-before)
	}
}

func TestClient_WatchChan_SlowReader(t *testing.T) {
	_, _, bob := testIdentities(t)
	c, _ := newRelayClient(t, unlimited)

	const total = 40
	for i := 0; i < total; i++ {
		if _, err := c.Send(context.Background(), bob.Public(), []byte(fmt.Sprintf("note %d", i)), nil); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notes, err := c.WatchChan(ctx, bob)
	if err != nil {
		t.Fatal(err)
	}

	// Let the first poll run into the full buffer before reading.
	time.Sleep(200 * time.Millisecond)

	seen := make(map[string]bool)
	for len(seen) < total {
		select {
		case n := <-notes:
			if n.Err != nil {
				t.Fatalf("note %s: %v", n.Note.ID, n.Err)
			}
			seen[string(n.Result.Plaintext)] = true
		case <-time.After(5 * time.Second):
			t.Fatalf("received %d of %d notes", len(seen), total)
		}
	}
}

func TestClient_Close_UnblocksWatchChan(t *testing.T) {
	_, _, bob := testIdentities(t)
	c, _ := newRelayClient(t, unlimited)

	for i := 0; i < 20; i++ {
		if _, err := c.Send(context.Background(), bob.Public(), []byte(fmt.Sprintf("note %d", i)), nil); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := c.WatchChan(context.Background(), bob); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		_ = c.Close()
		close(closed)
	}()
	waitSignal(t, closed)
}

func TestSubscription_Interface(t *testing.T) {
	var _ Subscription = (*watchSubscription)(nil)
}

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}
