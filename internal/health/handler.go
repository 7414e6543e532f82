// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	apperrors "dormitory/pkg/errors"
	httputil "dormitory/pkg/http"
	"dormitory/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type Response struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

type Handler struct {
	db  Pinger
	log *logger.Logger
}

func NewHandler(db Pinger, log *logger.Logger) *Handler {
	return &Handler{
		db:  db,
		log: log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.write(w, "Health", http.StatusOK, Response{Status: "ok"})
}

// Ready reports 503 until the primary answers a ping.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx, readpref.Primary()); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		if writeErr := httputil.WriteError(w, apperrors.Unavailable("MongoDB")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Ready", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	h.write(w, "Ready", http.StatusOK, Response{Status: "ready", Database: "ok"})
}

func (h *Handler) write(w http.ResponseWriter, handler string, status int, body Response) {
	if err := httputil.WriteJSON(w, status, body); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
