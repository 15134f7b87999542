package http

import (
	"net/http"

	"rentshare-backend/internal/security"

	"github.com/gorilla/mux"
)

// RouteRegistrar is implemented by every handler group.
type RouteRegistrar interface {
	RegisterRoutes(r *mux.Router)
}

// NewRouter wires the handler groups behind logging and authentication.
func NewRouter(tm security.TokenManager, handlers ...RouteRegistrar) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet).Name("Health")

	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	router.Use(LoggingMiddleware, NewAuthMiddleware(tm).Handler)
	return router
}
