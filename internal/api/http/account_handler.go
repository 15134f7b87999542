package http

import (
	"net/http"
	"strconv"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/service"

	"github.com/gorilla/mux"
)

// AccountHandler serves the caller's own ledger and notifications.
type AccountHandler struct {
	ledgerSvc service.LedgerService
	noteSvc   service.NotificationService
}

func NewAccountHandler(ledgerSvc service.LedgerService, noteSvc service.NotificationService) *AccountHandler {
	return &AccountHandler{ledgerSvc: ledgerSvc, noteSvc: noteSvc}
}

func (h *AccountHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/v1/ledger", h.ListTransactions).Methods(http.MethodGet).Name("ListTransactions")
	r.HandleFunc("/v1/notifications", h.ListNotifications).Methods(http.MethodGet).Name("ListNotifications")
	r.HandleFunc("/v1/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost).Name("MarkNotificationRead")
}

func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	page, pageSize, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	txs, count, err := h.ledgerSvc.GetTransactions(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	if txs == nil {
		txs = []domain.LedgerTransaction{}
	}
	writeJSON(w, http.StatusOK, pageResponse[domain.LedgerTransaction]{
		Items:      txs,
		TotalCount: count,
		Page:       page,
		PageSize:   pageSize,
	})
}

func (h *AccountHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	page, pageSize, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	notes, count, err := h.noteSvc.GetNotifications(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, pageResponse[domain.Notification]{
		Items:      notes,
		TotalCount: count,
		Page:       page,
		PageSize:   pageSize,
	})
}

func (h *AccountHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, domain.NewValidationError("notification id must be numeric"))
		return
	}
	if err := h.noteSvc.MarkAsRead(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
