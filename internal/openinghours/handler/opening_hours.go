package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tavola/internal/openinghours/service"
	httputil "tavola/pkg/http"
	"tavola/pkg/logger"
	"tavola/pkg/model"
	"tavola/pkg/schedule"
)

type OpeningHoursHandler struct {
	service service.OpeningHoursService
	log     *logger.Logger
}

func NewOpeningHoursHandler(service service.OpeningHoursService, log *logger.Logger) *OpeningHoursHandler {
	return &OpeningHoursHandler{
		service: service,
		log:     log,
	}
}

type putResponse struct {
	Document *model.OpeningHours `json:"document"`
	Warnings []schedule.Warning  `json:"warnings,omitempty"`
}

func (h *OpeningHoursHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	doc, err := h.service.Get(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, doc); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "error", err)
	}
}

func (h *OpeningHoursHandler) Put(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var doc model.OpeningHours
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Put", "error", writeErr)
		}
		return
	}

	warnings, err := h.service.Put(r.Context(), &doc)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Put", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, putResponse{Document: &doc, Warnings: warnings}); err != nil {
		h.log.Error("failed to write success response", "handler", "Put", "error", err)
	}
}

// GetNormalized exposes the engine's canonical view of the schedule for
// admin diagnostics, including everything the normalizer dropped.
func (h *OpeningHoursHandler) GetNormalized(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	normalized, warnings, err := h.service.Normalized(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetNormalized", "error", writeErr)
		}
		return
	}

	response := struct {
		Timezone            string                       `json:"timezone"`
		ReservationsEnabled bool                         `json:"reservations_enabled"`
		Week                map[string]model.DaySchedule `json:"week"`
		Exceptions          map[string]model.DaySchedule `json:"exceptions"`
		Slot                model.SlotConfig             `json:"slot"`
		Areas               map[string]model.AreaConfig  `json:"areas"`
		Warnings            []schedule.Warning           `json:"warnings,omitempty"`
	}{
		Timezone:            normalized.Timezone,
		ReservationsEnabled: normalized.ReservationsEnabled,
		Week:                normalized.Week,
		Exceptions:          normalized.Exceptions,
		Slot:                normalized.Slot,
		Areas:               normalized.Areas,
		Warnings:            warnings,
	}

	if err := httputil.WriteSuccess(w, response); err != nil {
		h.log.Error("failed to write success response", "handler", "GetNormalized", "error", err)
	}
}

func (h *OpeningHoursHandler) RegisterAdminRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admin/opening-hours", h.Get)
	router.PUT("/api/v1/admin/opening-hours", h.Put)
	router.GET("/api/v1/admin/opening-hours/normalized", h.GetNormalized)
}
