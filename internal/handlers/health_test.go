package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SelinIlya/planning-poker/internal/handlers"
	"github.com/SelinIlya/planning-poker/internal/services"
)

func newHub() *services.Hub {
	return services.NewHub(services.NewRoomStore(), services.NewMetrics(), zerolog.Nop())
}

func TestHandleHealth(t *testing.T) {
	t.Run("reports healthy on an idle server", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)

		handlers.HandleHealth(newHub())(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "healthy", body["status"])
		assert.EqualValues(t, 0, body["active_rooms"])
	})
}

func TestHandleMetrics(t *testing.T) {
	t.Run("exposes the counter snapshot as json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

		handlers.HandleMetrics(newHub())(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var snapshot services.MetricsSnapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
		assert.Equal(t, "healthy", snapshot.HealthStatus)
		assert.Zero(t, snapshot.MessagesReceived)
	})
}
