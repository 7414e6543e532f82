package handler

import (
	"net/http"

	"dormitory/internal/tenants/service"
	httputil "dormitory/pkg/http"
	"dormitory/pkg/logger"
	"dormitory/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type TenantHandler struct {
	service service.TenantService
	log     *logger.Logger
}

func NewTenantHandler(service service.TenantService, log *logger.Logger) *TenantHandler {
	return &TenantHandler{
		service: service,
		log:     log,
	}
}

func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var tenant model.Tenant
	if err := httputil.DecodeJSON(r.Body, &tenant); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &tenant); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, tenant); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *TenantHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenant, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", tenant)
}

func (h *TenantHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tenants, err := h.service.GetAll(r.Context())
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}
	h.writeSuccess(w, "GetAll", tenants)
}

func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.TenantUpdate
	if err := httputil.DecodeJSON(r.Body, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	tenant, err := h.service.Update(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	h.writeSuccess(w, "Update", tenant)
}

func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenant, err := h.service.Delete(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	h.writeSuccess(w, "Delete", tenant)
}

func (h *TenantHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *TenantHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *TenantHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/getTenants", h.GetAll)
	router.GET("/getTenant/:id", h.GetByID)
	router.POST("/addTenant", h.Create)
	router.PATCH("/editTenant/:id", h.Update)
	router.DELETE("/deleteTenant/:id", h.Delete)
}
