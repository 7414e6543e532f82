package handler

import (
	"net/http"

	"dormitory/internal/dashboard/service"
	httputil "dormitory/pkg/http"
	"dormitory/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type DashboardHandler struct {
	service service.DashboardService
	log     *logger.Logger
}

func NewDashboardHandler(service service.DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		log:     log,
	}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	dashboard, err := h.service.Get(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, dashboard); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DashboardHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/getDashboard", h.Get)
}
