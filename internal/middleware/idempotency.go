package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cigno/platform/internal/model"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "X-Idempotency-Replayed"
	maxIdempotencyKey = 255
	maxIdempotentBody = 1 << 20
)

// IdempotencyStore remembers the responses of create and update requests
// sent with an Idempotency-Key header. Entries are scoped to the caller.
type IdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

type idempotencyEntry struct {
	fingerprint string
	status      int
	headers     http.Header
	body        []byte
	expiresAt   time.Time
	inFlight    bool
	done        chan struct{}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long to keep results (default 24h)
	Cleanup time.Duration // Cleanup interval (default 1h)
}

// NewIdempotencyStore creates a store and starts its cleanup goroutine
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = time.Hour
	}

	store := &IdempotencyStore{
		entries:  make(map[string]*idempotencyEntry),
		ttl:      cfg.TTL,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
	go store.cleanupLoop(cfg.Cleanup)
	return store
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (s *IdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// Len returns the number of remembered keys
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *IdempotencyStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.entries {
		if !entry.inFlight && entry.expiresAt.Before(now) {
			delete(s.entries, key)
		}
	}
}

// scopeKey identifies a key of one caller
func scopeKey(caller, idempotencyKey string) string {
	return caller + "\x00" + idempotencyKey
}

// fingerprint identifies the request a key was first used with
func fingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// idempotencyResponseWriter captures the response for caching
type idempotencyResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *idempotencyResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *idempotencyResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// transportHeaders belong to the exchange rather than to the stored answer;
// outer middleware sets them again on every request
var transportHeaders = map[string]bool{
	"Content-Encoding": true,
	"Content-Length":   true,
	"Vary":             true,
	"X-Request-Id":     true,
	"Retry-After":      true,
	replayedHeader:     true,
}

func isTransportHeader(key string) bool {
	return transportHeaders[key] ||
		strings.HasPrefix(key, "X-Ratelimit-") ||
		strings.HasPrefix(key, "Access-Control-")
}

// handlerHeaders returns the headers the handler added or changed compared
// with the snapshot taken before it ran
func handlerHeaders(before, after http.Header) http.Header {
	out := make(http.Header)
	for k, v := range after {
		if isTransportHeader(k) {
			continue
		}
		if prev, ok := before[k]; ok && slices.Equal(prev, v) {
			continue
		}
		out[k] = append([]string(nil), v...)
	}
	return out
}

func replay(w http.ResponseWriter, entry *idempotencyEntry) {
	for k, v := range entry.headers {
		w.Header()[k] = append([]string(nil), v...)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(entry.status)
	_, _ = w.Write(entry.body)
}

// Idempotency replays the stored response of a POST or PUT repeated with the
// same Idempotency-Key. Only 2xx responses are kept, so a failed request can
// be retried with the same key. Reusing a key for a different request is a
// 409. It must run after Auth so the key is scoped to the user.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get(idempotencyHeader)
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(idempotencyKey) > maxIdempotencyKey {
				model.NewValidationError([]model.FieldError{
					{Field: idempotencyHeader, Message: "must be at most 255 characters"},
				}).WriteJSON(w)
				return
			}

			caller := GetUserID(r.Context())
			if caller == "" {
				caller = clientIP(r)
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIdempotentBody))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					model.NewBadRequestError("request body too large").WriteJSON(w)
					return
				}
				model.NewBadRequestError("invalid request body").WriteJSON(w)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := scopeKey(caller, idempotencyKey)
			fp := fingerprint(r.Method, r.URL.Path, body)

			store.mu.Lock()
			for {
				entry, exists := store.entries[key]
				if exists && !entry.inFlight && !entry.expiresAt.After(store.now()) {
					delete(store.entries, key)
					exists = false
				}
				if !exists {
					break
				}
				if entry.fingerprint != fp {
					store.mu.Unlock()
					model.NewConflictError("Idempotency-Key was already used for a different request").WriteJSON(w)
					return
				}
				if !entry.inFlight {
					store.mu.Unlock()
					replay(w, entry)
					return
				}

				// Wait for the first attempt, then look again: it may have
				// failed and been forgotten, or the key may have been reused
				done := entry.done
				store.mu.Unlock()
				select {
				case <-done:
				case <-r.Context().Done():
					return
				}
				store.mu.Lock()
			}

			entry := &idempotencyEntry{
				fingerprint: fp,
				inFlight:    true,
				done:        make(chan struct{}),
			}
			store.entries[key] = entry
			store.mu.Unlock()

			before := w.Header().Clone()
			irw := &idempotencyResponseWriter{ResponseWriter: w, status: http.StatusOK}
			completed := false
			defer func() {
				store.mu.Lock()
				defer store.mu.Unlock()
				if completed && irw.status >= 200 && irw.status < 300 {
					entry.status = irw.status
					entry.headers = handlerHeaders(before, irw.Header())
					entry.body = irw.body.Bytes()
					entry.expiresAt = store.now().Add(store.ttl)
					entry.inFlight = false
				} else if store.entries[key] == entry {
					delete(store.entries, key)
				}
				close(entry.done)
			}()

			next.ServeHTTP(irw, r)
			completed = true
		})
	}
}
