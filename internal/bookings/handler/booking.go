package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dormitory/internal/bookings/service"
	apperrors "dormitory/pkg/errors"
	"dormitory/pkg/export"
	httputil "dormitory/pkg/http"
	"dormitory/pkg/logger"
	"dormitory/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := httputil.DecodeJSON(r.Body, &booking); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	created, err := h.service.Create(r.Context(), &booking)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", booking)
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := h.service.GetAll(r.Context())
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}
	h.writeSuccess(w, "GetAll", bookings)
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.BookingUpdate
	if err := httputil.DecodeJSON(r.Body, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	booking, err := h.service.Update(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	h.writeSuccess(w, "Update", booking)
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Delete(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	h.writeSuccess(w, "Delete", booking)
}

func (h *BookingHandler) Recompute(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Recompute(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Recompute", err)
		return
	}
	h.writeSuccess(w, "Recompute", booking)
}

// Export streams every booking as an Excel workbook.
func (h *BookingHandler) Export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := h.service.GetAll(r.Context())
	if err != nil {
		h.writeError(w, "Export", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, bookings); err != nil {
		h.log.Error("failed to build bookings workbook", "handler", "Export", "count", len(bookings), "error", err)
		h.writeError(w, "Export", apperrors.Internal("Failed to export bookings", err))
		return
	}

	filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().UTC().Format(model.DateLayout))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Error("failed to write workbook", "handler", "Export", "operation", "WriteTo", "error", err)
	}
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/getBookings", h.GetAll)
	router.GET("/getBooking/:id", h.GetByID)
	router.POST("/addBooking", h.Create)
	router.PATCH("/editBooking/:id", h.Update)
	router.DELETE("/deleteBooking/:id", h.Delete)
	router.POST("/recomputeBooking/:id", h.Recompute)
	router.GET("/exportBookings", h.Export)
}
