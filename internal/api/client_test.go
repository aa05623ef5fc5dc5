package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/secretnote/client-go/internal/apierrors"
)

func newTestClient(t *testing.T, url string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURL(url), WithRetryDelay(time.Millisecond)}, opts...)
	c, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(); !errors.Is(err, ErrMissingBaseURL) {
		t.Errorf("expected ErrMissingBaseURL, got %v", err)
	}
}

func TestNew_WithOptions(t *testing.T) {
	client, err := New(
		WithBaseURL("https://relay.example.com/"),
		WithRetries(5),
		WithTimeout(60*time.Second),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.BaseURL() != "https://relay.example.com" {
		t.Errorf("BaseURL() = %s, want trailing slash trimmed", client.BaseURL())
	}
	if client.retry.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", client.retry.MaxRetries)
	}
	if client.HTTPClient().Timeout != 60*time.Second {
		t.Errorf("timeout = %v, want 60s", client.HTTPClient().Timeout)
	}
}

func TestClient_Do_Retry(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var result struct{ Status string }
	if err := client.Do(context.Background(), "GET", "/test", nil, &result); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if atomic.LoadInt32(&attempts) != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if result.Status != "OK" {
		t.Errorf("Status = %q, want OK", result.Status)
	}
}

func TestClient_Do_RetryExhausted(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(apierrors.ErrorResponse{Status: apierrors.StatusError, Message: "slow down"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, WithRetries(2))

	err := client.Do(context.Background(), "GET", "/test", nil, nil)
	if !errors.Is(err, apierrors.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if atomic.LoadInt32(&attempts) != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestClient_Do_NoRetryOn400(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(apierrors.ErrorResponse{Status: apierrors.StatusError, Message: "invalid fingerprint"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.Do(context.Background(), "POST", "/test", map[string]string{"a": "b"}, nil)
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Message != "invalid fingerprint" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if !errors.Is(err, apierrors.ErrNoteRejected) {
		t.Error("400 should match ErrNoteRejected")
	}
	if atomic.LoadInt32(&attempts) != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestClient_Do_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(t, url, WithRetries(1))

	err := client.Do(context.Background(), "GET", "/test", nil, nil)
	var netErr *apierrors.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
	if netErr.Attempt != 2 {
		t.Errorf("Attempt = %d, want 2", netErr.Attempt)
	}
}

func TestClient_Do_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.Do(ctx, "GET", "/test", nil, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPostNote_GetNotes(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/notes", func(w http.ResponseWriter, r *http.Request) {
		var req PostNoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.Fingerprint != "abcd" || req.Data != "ZGF0YQ==" {
			t.Errorf("unexpected request %+v", req)
		}
		json.NewEncoder(w).Encode(PostNoteResponse{Status: "OK", ID: "id-1"})
	})
	mux.HandleFunc("GET /api/v1/notes/{fingerprint}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("fingerprint") != "abcd" {
			t.Errorf("fingerprint = %q", r.PathValue("fingerprint"))
		}
		json.NewEncoder(w).Encode(NotesResponse{
			Status: "OK",
			Notes:  []Note{{ID: "id-1", CreatedAt: created, ExpiresAt: created.Add(24 * time.Hour), Fingerprint: "abcd", Data: "ZGF0YQ=="}},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)

	resp, err := client.PostNote(context.Background(), PostNoteRequest{Fingerprint: "abcd", Data: "ZGF0YQ=="})
	if err != nil {
		t.Fatalf("PostNote() error = %v", err)
	}
	if resp.ID != "id-1" {
		t.Errorf("ID = %q", resp.ID)
	}

	notes, err := client.GetNotes(context.Background(), "abcd")
	if err != nil {
		t.Fatalf("GetNotes() error = %v", err)
	}
	if len(notes) != 1 || !notes[0].CreatedAt.Equal(created) {
		t.Errorf("GetNotes() = %+v", notes)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"":                              0,
		"3":                             3 * time.Second,
		" 1 ":                           time.Second,
		"-1":                            0,
		"Wed, 21 Oct 2015 07:28:00 GMT": 0,
	}
	for in, want := range tests {
		if got := parseRetryAfter(in); got != want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}
