package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/SelinIlya/planning-poker/internal/services"
)

// HandleHealth returns server health status
func HandleHealth(hub *services.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := hub.GetMetrics()

		status := http.StatusOK
		if snapshot.HealthStatus == "critical" {
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, map[string]any{
			"ok":                 snapshot.HealthStatus != "critical",
			"status":             snapshot.HealthStatus,
			"active_connections": snapshot.ActiveConnections,
			"active_rooms":       snapshot.ActiveRooms,
			"uptime_seconds":     snapshot.UptimeSeconds,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
