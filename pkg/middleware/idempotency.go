package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	apperrors "dormitory/pkg/errors"
	httputil "dormitory/pkg/http"
	"dormitory/pkg/logger"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotency-Replayed"
)

// IdempotencyStore tracks write requests by key. Reserve claims a key before
// the handler runs; Complete stores a response for replay and Release drops
// the claim without storing anything.
type IdempotencyStore interface {
	Reserve(key string) (cached *StoredResponse, inFlight bool)
	Complete(key string, response *StoredResponse)
	Release(key string)
	Stop()
}

type StoredResponse struct {
	Status  int
	Headers http.Header
	Body    []byte
}

type idempotencyEntry struct {
	response *StoredResponse
	expires  time.Time
}

type InMemoryIdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]idempotencyEntry
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries: make(map[string]idempotencyEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *InMemoryIdempotencyStore) Reserve(key string) (*StoredResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if entry, ok := s.entries[key]; ok && now.Before(entry.expires) {
		if entry.response == nil {
			return nil, true
		}
		return entry.response, false
	}

	// A pending reservation lives for one ttl so a crashed handler cannot pin a key.
	s.entries[key] = idempotencyEntry{expires: now.Add(s.ttl)}
	return nil, false
}

func (s *InMemoryIdempotencyStore) Complete(key string, response *StoredResponse) {
	s.mu.Lock()
	s.entries[key] = idempotencyEntry{response: response, expires: time.Now().Add(s.ttl)}
	s.mu.Unlock()
}

func (s *InMemoryIdempotencyStore) Release(key string) {
	s.mu.Lock()
	if entry, ok := s.entries[key]; ok && entry.response == nil {
		delete(s.entries, key)
	}
	s.mu.Unlock()
}

func (s *InMemoryIdempotencyStore) sweep() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.mu.Lock()
			for key, entry := range s.entries {
				if now.After(entry.expires) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Len reports how many keys are currently held, pending or completed.
func (s *InMemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(status int) {
	if rw.status != 0 {
		return
	}
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.WriteHeader(http.StatusOK)
	}
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a write whose key was already
// served, and rejects a duplicate that arrives while the first is still
// running. Keys are scoped to method and path. Only 2xx responses are kept.
func Idempotency(store IdempotencyStore, headerName string, log *logger.Logger) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = IdempotencyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerName)
			if key == "" || r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			key = r.Method + " " + r.URL.Path + " " + key

			cached, inFlight := store.Reserve(key)
			switch {
			case inFlight:
				log.Warn("Duplicate request while original in flight",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
				)
				_ = httputil.WriteError(w, apperrors.Conflict("A request with this idempotency key is already being processed"))
				return
			case cached != nil:
				log.Info("Replayed idempotent response",
					"request_id", RequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				replay(w, cached)
				return
			}

			rw := &recordingWriter{ResponseWriter: w}
			defer func() {
				if rw.status >= 200 && rw.status < 300 {
					store.Complete(key, &StoredResponse{
						Status:  rw.status,
						Headers: w.Header().Clone(),
						Body:    bytes.Clone(rw.body.Bytes()),
					})
					return
				}
				store.Release(key)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

func replay(w http.ResponseWriter, stored *StoredResponse) {
	for key, values := range stored.Headers {
		if key == RequestIDHeader {
			continue
		}
		w.Header()[key] = values
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}
