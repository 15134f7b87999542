package http

import (
	"net/http"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/service"

	"github.com/gorilla/mux"
)

type BookingHandler struct {
	bookingSvc service.BookingService
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

func (h *BookingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/v1/bookings", h.RequestBooking).Methods(http.MethodPost).Name("RequestBooking")
	r.HandleFunc("/v1/bookings", h.ListBookings).Methods(http.MethodGet).Name("ListBookings")
	r.HandleFunc("/v1/bookings/{id}", h.GetBooking).Methods(http.MethodGet).Name("GetBooking")
	r.HandleFunc("/v1/bookings/{id}/accept", h.AcceptBooking).Methods(http.MethodPost).Name("AcceptBooking")
	r.HandleFunc("/v1/bookings/{id}/payment", h.RecordPayment).Methods(http.MethodPost).Name("RecordPayment")
	r.HandleFunc("/v1/bookings/{id}/payment-failure", h.RecordPaymentFailure).Methods(http.MethodPost).Name("RecordPaymentFailure")
	r.HandleFunc("/v1/bookings/{id}/pickup", h.ConfirmPickup).Methods(http.MethodPost).Name("ConfirmPickup")
	r.HandleFunc("/v1/bookings/{id}/return", h.ConfirmReturn).Methods(http.MethodPost).Name("ConfirmReturn")
	r.HandleFunc("/v1/bookings/{id}/complete", h.CompleteBooking).Methods(http.MethodPost).Name("CompleteBooking")
	r.HandleFunc("/v1/bookings/{id}/cancel", h.CancelBooking).Methods(http.MethodPost).Name("CancelBooking")
	r.HandleFunc("/v1/bookings/{id}/issues", h.ReportIssue).Methods(http.MethodPost).Name("ReportIssue")
	r.HandleFunc("/v1/bookings/{id}/dispute", h.OpenDispute).Methods(http.MethodPost).Name("OpenDispute")
	r.HandleFunc("/v1/pricing/quote", h.Quote).Methods(http.MethodPost).Name("QuotePricing")
}

func (h *BookingHandler) RequestBooking(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req requestBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	dates, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	b, err := h.bookingSvc.RequestBooking(r.Context(), userID, domain.BookingRequest{
		ListingID:        req.ListingID,
		StartDate:        dates[0],
		EndDate:          dates[1],
		IncludeInsurance: req.IncludeInsurance,
		CreditCents:      req.CreditCents,
		PaymentRef:       req.PaymentRef,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	page, pageSize, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	filter := domain.BookingFilter{
		UserID:   userID,
		Role:     domain.PartyRole(r.URL.Query().Get("role")),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		if filter.Status, err = domain.ParseBookingStatus(raw); err != nil {
			writeError(w, err)
			return
		}
	}

	bookings, count, err := h.bookingSvc.ListBookings(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	writeJSON(w, http.StatusOK, pageResponse[domain.Booking]{
		Items:      bookings,
		TotalCount: count,
		Page:       page,
		PageSize:   pageSize,
	})
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	b, err := h.bookingSvc.GetBooking(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) AcceptBooking(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	b, err := h.bookingSvc.AcceptBooking(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, ok := h.authorizeParty(w, r)
	if !ok {
		return
	}
	b, err := h.bookingSvc.RecordPayment(r.Context(), id, req.PaymentRef)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) RecordPaymentFailure(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, ok := h.authorizeParty(w, r)
	if !ok {
		return
	}
	b, err := h.bookingSvc.RecordPaymentFailure(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) ConfirmPickup(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	b, err := h.bookingSvc.ConfirmPickup(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	b, res, err := h.bookingSvc.ConfirmReturn(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementResponse{Booking: b, Settlement: res})
}

func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeParty(w, r)
	if !ok {
		return
	}
	b, res, err := h.bookingSvc.CompleteBooking(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementResponse{Booking: b, Settlement: res})
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req reasonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := h.bookingSvc.CancelBooking(r.Context(), userID, mux.Vars(r)["id"], req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) ReportIssue(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req issueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := h.bookingSvc.ReportIssue(r.Context(), userID, mux.Vars(r)["id"], req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) OpenDispute(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req reasonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := h.bookingSvc.OpenDispute(r.Context(), userID, mux.Vars(r)["id"], req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	dates, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.bookingSvc.Quote(r.Context(), req.ListingID, dates[0], dates[1], req.IncludeInsurance, req.CreditCents)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// authorizeParty checks that the caller is the renter or owner of the booking
// in the path, for operations whose service call takes no actor.
func (h *BookingHandler) authorizeParty(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, _ := UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]
	if _, err := h.bookingSvc.GetBooking(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return "", false
	}
	return id, true
}
