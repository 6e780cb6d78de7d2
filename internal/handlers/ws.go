package handlers

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SelinIlya/planning-poker/internal/security"
	"github.com/SelinIlya/planning-poker/internal/services"
)

// WSHandler terminates client WebSocket connections and hands them to the
// hub. Each connection gets a fresh uuid that serves as its participant id
// for as long as the socket lives.
type WSHandler struct {
	hub     *services.Hub
	origins *security.OriginValidator
	log     zerolog.Logger
}

func NewWSHandler(hub *services.Hub, origins *security.OriginValidator, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:     hub,
		origins: origins,
		log:     log,
	}
}

func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, h.origins.AcceptOptions())
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket accept failed")
		return
	}

	client := services.NewClient(conn, h.hub, uuid.NewString())
	h.hub.Register(client)
	client.Start()
}
