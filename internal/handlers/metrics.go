package handlers

import (
	"net/http"

	"github.com/SelinIlya/planning-poker/internal/services"
)

// HandleMetrics returns gateway metrics
func HandleMetrics(hub *services.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hub.GetMetrics())
	}
}
