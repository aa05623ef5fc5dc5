package relay

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/secretnote/client-go/internal/api"
	"github.com/secretnote/client-go/internal/apierrors"
)

// Defaults applied by [Config.withDefaults].
const (
	DefaultAddr            = ":8080"
	DefaultNoteTTL         = 24 * time.Hour
	DefaultCleanupInterval = time.Minute
	DefaultMaxNoteSize     = 32768
	DefaultPostInterval    = time.Hour / 200
	DefaultPostBurst       = 200
	DefaultFetchInterval   = time.Second
	DefaultFetchBurst      = 1
)

// failedMessage is the only message clients see for rejected notes.
const failedMessage = "Failed."

// fingerprintSizes are the digest lengths, in bytes, the relay accepts:
// SHA-1, SHA-256, SHA-384 and SHA-512.
var fingerprintSizes = map[int]bool{20: true, 32: true, 48: true, 64: true}

// Config configures a relay [Server]. Zero values take the defaults above.
type Config struct {
	Addr            string
	NoteTTL         time.Duration
	CleanupInterval time.Duration
	// MaxNoteSize bounds the base64 data field; data must be strictly
	// shorter.
	MaxNoteSize int
	// PostInterval and PostBurst define the per-client token bucket for
	// POST. The defaults allow 200 notes per hour.
	PostInterval time.Duration
	PostBurst    int
	// FetchInterval and FetchBurst define the bucket for GET.
	FetchInterval time.Duration
	FetchBurst    int
	// TrustForwardedFor keys rate limits on the first X-Forwarded-For
	// address instead of the connection address.
	TrustForwardedFor bool
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.NoteTTL <= 0 {
		c.NoteTTL = DefaultNoteTTL
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
	if c.MaxNoteSize <= 0 {
		c.MaxNoteSize = DefaultMaxNoteSize
	}
	if c.PostInterval <= 0 {
		c.PostInterval = DefaultPostInterval
	}
	if c.PostBurst <= 0 {
		c.PostBurst = DefaultPostBurst
	}
	if c.FetchInterval <= 0 {
		c.FetchInterval = DefaultFetchInterval
	}
	if c.FetchBurst <= 0 {
		c.FetchBurst = DefaultFetchBurst
	}
	return c
}

// Server is the note relay.
type Server struct {
	cfg      Config
	store    *Store
	post     *keyLimiter
	fetch    *keyLimiter
	registry *prometheus.Registry
	metrics  *metrics
	logger   logrus.FieldLogger
	handler  http.Handler

	now func() time.Time
}

// New builds a relay. A nil logger discards output.
func New(cfg Config, logger logrus.FieldLogger) *Server {
	cfg = cfg.withDefaults()
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	s := &Server{
		cfg:      cfg,
		store:    NewStore(cfg.NoteTTL),
		post:     newKeyLimiter(cfg.PostInterval, cfg.PostBurst, 0),
		fetch:    newKeyLimiter(cfg.FetchInterval, cfg.FetchBurst, 0),
		registry: newRegistry(),
		logger:   logger.WithField("component", "relay"),
		now:      time.Now,
	}
	s.metrics = newMetrics(s.registry, s.store)

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+api.NotesPath, s.handlePost)
	mux.HandleFunc("GET "+api.NotesPath+"/{fingerprint}", s.handleList)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": apierrors.StatusOK})
	})
	s.handler = s.withRequestID(mux)
	return s
}

// Config returns the effective configuration.
func (s *Server) Config() Config { return s.cfg }

// Store returns the backing note store.
func (s *Server) Store() *Store { return s.store }

// Registry returns the registry served on /metrics.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

// Handler returns the HTTP handler for every relay route.
func (s *Server) Handler() http.Handler { return s.handler }

// Sweep removes expired notes now.
func (s *Server) Sweep() int {
	n := s.store.Sweep(s.now())
	if n > 0 {
		s.metrics.expired.Add(float64(n))
		s.logger.WithField("removed", n).Debug("expired notes swept")
	}
	return n
}

// ListenAndServe listens on cfg.Addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and runs the sweeper until ctx is done,
// then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		ticker := time.NewTicker(s.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", ln.Addr().String()).Info("relay listening")
		errCh <- srv.Serve(ln)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
		if serveErr := <-errCh; !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
			err = serveErr
		}
	}
	stopSweep()
	<-sweepDone
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(s.logger, r)

	if ok, retry := s.post.allow(s.clientKey(r), s.now()); !ok {
		s.rateLimited(w, log, retry)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxNoteSize)+4096)
	var req api.PostNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reject(w, log, reasonTooLarge, err)
			return
		}
		s.reject(w, log, reasonBadRequest, err)
		return
	}

	fp, err := normalizeFingerprint(req.Fingerprint)
	if err != nil {
		s.reject(w, log, reasonFingerprint, err)
		return
	}
	if len(req.Data) >= s.cfg.MaxNoteSize {
		s.reject(w, log, reasonTooLarge, errors.New("data exceeds max note size"))
		return
	}
	if err := checkData(req.Data); err != nil {
		s.reject(w, log, reasonData, err)
		return
	}

	note, created := s.store.Put(fp, req.Data, s.now())
	if created {
		s.metrics.stored.Inc()
	}
	log.WithFields(logrus.Fields{"id": note.ID, "created": created, "size": len(req.Data)}).Debug("note stored")
	writeJSON(w, http.StatusOK, api.PostNoteResponse{Status: apierrors.StatusOK, ID: note.ID})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(s.logger, r)

	if ok, retry := s.fetch.allow(s.clientKey(r), s.now()); !ok {
		s.rateLimited(w, log, retry)
		return
	}

	fp, err := normalizeFingerprint(r.PathValue("fingerprint"))
	if err != nil {
		s.reject(w, log, reasonFingerprint, err)
		return
	}

	notes := s.store.List(fp, s.now())
	s.metrics.fetched.Add(float64(len(notes)))
	log.WithField("count", len(notes)).Debug("notes listed")
	writeJSON(w, http.StatusOK, api.NotesResponse{Status: apierrors.StatusOK, Notes: notes})
}

func (s *Server) reject(w http.ResponseWriter, log logrus.FieldLogger, reason string, err error) {
	s.metrics.rejected.WithLabelValues(reason).Inc()
	log.WithError(err).WithField("reason", reason).Info("request rejected")
	writeJSON(w, http.StatusBadRequest, apierrors.ErrorResponse{Status: apierrors.StatusError, Message: failedMessage})
}

func (s *Server) rateLimited(w http.ResponseWriter, log logrus.FieldLogger, retry time.Duration) {
	s.metrics.rejected.WithLabelValues(reasonRateLimited).Inc()
	secs := int((retry + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	log.WithField("retry_after", secs).Info("rate limited")
	writeJSON(w, http.StatusTooManyRequests, apierrors.ErrorResponse{Status: apierrors.StatusError, Message: "Too many requests."})
}

func (s *Server) clientKey(r *http.Request) string {
	if s.cfg.TrustForwardedFor {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// normalizeFingerprint lowercases a hex fingerprint and checks that it
// decodes to a known digest length.
func normalizeFingerprint(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", err
	}
	if !fingerprintSizes[len(raw)] {
		return "", errors.New("unsupported fingerprint length " + strconv.Itoa(len(raw)))
	}
	return s, nil
}

func checkData(data string) error {
	if data == "" {
		return errors.New("empty data")
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return errors.New("empty data")
	}
	return nil
}

type requestIDKey struct{}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = newRequestID()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestLogger(logger logrus.FieldLogger, r *http.Request) logrus.FieldLogger {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return logger.WithFields(logrus.Fields{
		"request_id": id,
		"method":     r.Method,
		"path":       r.URL.Path,
	})
}

func newRequestID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
