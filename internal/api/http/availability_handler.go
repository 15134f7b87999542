package http

import (
	"context"
	"net/http"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/service"

	"github.com/gorilla/mux"
)

type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
}

func NewAvailabilityHandler(availabilitySvc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc}
}

func (h *AvailabilityHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/v1/listings/{id}/availability", h.CheckAvailability).Methods(http.MethodGet).Name("CheckAvailability")
	r.HandleFunc("/v1/listings/{id}/blocks", h.BlockDates).Methods(http.MethodPost).Name("BlockDates")
	r.HandleFunc("/v1/listings/{id}/blocks", h.UnblockDates).Methods(http.MethodDelete).Name("UnblockDates")
}

type availabilityResponse struct {
	Available bool                       `json:"available"`
	Conflicts []time.Time                `json:"conflicts"`
	Blocks    []domain.AvailabilityBlock `json:"blocks"`
}

func (h *AvailabilityHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	listingID := mux.Vars(r)["id"]
	q := r.URL.Query()
	if q.Get("start") == "" || q.Get("end") == "" {
		writeError(w, domain.NewValidationError("start and end are required"))
		return
	}
	dates, err := parseDates(q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.availabilitySvc.CheckAvailability(r.Context(), listingID, dates[0], dates[1])
	if err != nil {
		writeError(w, err)
		return
	}
	blocks, err := h.availabilitySvc.GetCalendar(r.Context(), listingID, dates[0], dates[1])
	if err != nil {
		writeError(w, err)
		return
	}

	resp := availabilityResponse{
		Available: res.Available,
		Conflicts: res.Conflicts,
		Blocks:    blocks,
	}
	if resp.Conflicts == nil {
		resp.Conflicts = []time.Time{}
	}
	if resp.Blocks == nil {
		resp.Blocks = []domain.AvailabilityBlock{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AvailabilityHandler) BlockDates(w http.ResponseWriter, r *http.Request) {
	h.changeBlocks(w, r, h.availabilitySvc.BlockDates)
}

func (h *AvailabilityHandler) UnblockDates(w http.ResponseWriter, r *http.Request) {
	h.changeBlocks(w, r, h.availabilitySvc.UnblockDates)
}

type blockFunc func(ctx context.Context, ownerID, listingID string, dates []time.Time) error

func (h *AvailabilityHandler) changeBlocks(w http.ResponseWriter, r *http.Request, fn blockFunc) {
	userID, _ := UserIDFromContext(r.Context())
	var req datesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	dates, err := parseDates(req.Dates...)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := fn(r.Context(), userID, mux.Vars(r)["id"], dates); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
