package services

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/SelinIlya/planning-poker/internal/config"
	"github.com/SelinIlya/planning-poker/internal/models"
)

// Hub owns the room store and fans state snapshots out to connected clients.
//
// Every register, disconnect and inbound command is handled on the single
// Run goroutine, so store mutations never interleave and need no locking.
// Commands from one connection keep their arrival order because each read
// pump feeds the inbound channel sequentially; commands from different
// connections are serialized in whatever order the channel delivers them.
type Hub struct {
	store   *RoomStore
	gateway *Gateway
	metrics *Metrics
	log     zerolog.Logger

	// Room membership: roomId -> set of connected clients
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	inbound    chan *ClientMessage
}

func NewHub(store *RoomStore, metrics *Metrics, log zerolog.Logger) *Hub {
	return &Hub{
		store:      store,
		gateway:    NewGateway(store, metrics, log),
		metrics:    metrics,
		log:        log,
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan *ClientMessage, config.HubInboundBufferSize),
	}
}

// Run processes hub events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.metrics.IncrementConnections()
			h.log.Debug().Str("conn", c.ID()).Msg("connection registered")

		case c := <-h.unregister:
			h.handleDisconnect(c)

		case cm := <-h.inbound:
			h.metrics.IncrementMessagesReceived()
			h.handleCommand(cm)

		case <-ctx.Done():
			h.shutdown()
			return
		}
	}
}

// Register announces a new connection to the hub.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a connection from every room it joined and notifies the
// remaining members.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// GetMetrics is safe to call from any goroutine: the snapshot is built from
// atomic counters only and never reaches into the store.
func (h *Hub) GetMetrics() MetricsSnapshot {
	return h.metrics.Snapshot()
}

func (h *Hub) handleCommand(cm *ClientMessage) {
	res := h.gateway.Dispatch(cm.Client.ID(), cm.Data)

	// Membership first: a joiner must receive the snapshot its own join
	// triggered.
	if res.Joined != "" {
		members, ok := h.rooms[res.Joined]
		if !ok {
			members = make(map[*Client]bool)
			h.rooms[res.Joined] = members
		}
		members[cm.Client] = true
	}

	for _, roomID := range res.Broadcast {
		h.broadcastState(roomID)
	}

	if res.Ack != nil {
		h.send(cm.Client, res.Ack)
	}
}

func (h *Hub) handleDisconnect(c *Client) {
	affected := h.store.LeaveAll(c.ID())
	for _, roomID := range affected {
		if members, ok := h.rooms[roomID]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
		// A destroyed room has nobody left to notify.
		if h.store.Exists(roomID) {
			h.broadcastState(roomID)
		} else {
			h.metrics.DecrementRooms()
		}
	}

	h.metrics.DecrementConnections()
	h.log.Debug().Str("conn", c.ID()).Int("rooms", len(affected)).Msg("connection closed")
	c.Close()
}

// broadcastState pushes the room's full public snapshot to every member.
// The snapshot is marshaled once per broadcast, not per recipient.
func (h *Hub) broadcastState(roomID string) {
	members := h.rooms[roomID]
	if len(members) == 0 {
		return
	}

	state := h.store.PublicState(roomID)
	payload, err := json.Marshal(state)
	if err != nil {
		h.metrics.IncrementBroadcastErrors()
		h.log.Error().Err(err).Str("room", roomID).Msg("failed to marshal state")
		return
	}

	data, err := json.Marshal(&models.WSMessage{Type: models.MsgState, RoomID: roomID, Payload: payload})
	if err != nil {
		h.metrics.IncrementBroadcastErrors()
		h.log.Error().Err(err).Str("room", roomID).Msg("failed to marshal envelope")
		return
	}

	for c := range members {
		c.Send(data)
	}
}

func (h *Hub) send(c *Client, msg *models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Str("type", msg.Type).Msg("failed to marshal message")
		return
	}
	c.Send(data)
}

func (h *Hub) shutdown() {
	for _, members := range h.rooms {
		for c := range members {
			c.Close()
		}
	}
	h.rooms = make(map[string]map[*Client]bool)
	h.store.Clear()
	h.log.Info().Msg("hub stopped")
}
