package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dormitory/pkg/config"
	"dormitory/pkg/logger"
	"dormitory/pkg/metrics"
	"dormitory/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type upPinger struct{}

func (upPinger) Ping(ctx context.Context, rp *readpref.ReadPref) error { return nil }

type echoHandler struct{}

func (echoHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/addRoom", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"roomNo":1}`))
	})
	router.GET("/panic", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		panic("boom")
	})
}

func newTestApp(t *testing.T, rateLimit int) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Port:               "0",
		Log:                logger.Discard(),
		RateLimitRequests:  rateLimit,
		RateLimitWindow:    time.Minute,
		RequestTimeout:     time.Second,
		IdempotencyTTL:     time.Minute,
		MaxRequestSize:     1024,
		ShutdownTimeout:    time.Second,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	}

	a := NewApplication(cfg, metrics.New())
	a.SetApp(upPinger{}, echoHandler{})
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a.Handler()
}

func send(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestApplication_Routes(t *testing.T) {
	h := newTestApp(t, 100)

	w := send(h, http.MethodPost, "/addRoom", `{}`, map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	assert.Equal(t, http.StatusUnsupportedMediaType, send(h, http.MethodPost, "/addRoom", `{}`, nil).Code)
	assert.Equal(t, http.StatusNotFound, send(h, http.MethodGet, "/nope", "", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, send(h, http.MethodGet, "/panic", "", nil).Code)

	ready := send(h, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, ready.Code)

	exposition := send(h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, exposition.Code)
	assert.Contains(t, exposition.Body.String(), `dormitory_http_requests_total{method="POST",route="/addRoom",status="201"} 1`)
}

func TestApplication_ProbesBypassRateLimit(t *testing.T) {
	h := newTestApp(t, 1)

	assert.Equal(t, http.StatusNotFound, send(h, http.MethodGet, "/nope", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, send(h, http.MethodGet, "/nope", "", nil).Code)

	for range 3 {
		assert.Equal(t, http.StatusOK, send(h, http.MethodGet, "/health", "", nil).Code)
	}
}

func TestApplication_CORSPreflight(t *testing.T) {
	h := newTestApp(t, 100)

	w := send(h, http.MethodOptions, "/addRoom", "", map[string]string{
		"Origin":                        "http://localhost:5173",
		"Access-Control-Request-Method": http.MethodPost,
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
