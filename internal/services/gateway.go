package services

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/SelinIlya/planning-poker/internal/models"
	"github.com/SelinIlya/planning-poker/internal/security"
)

// Gateway maps inbound client commands onto store mutations and decides what
// the hub must do afterwards. It enforces the authorization policy:
// host-gated and self-or-host commands that fail their check are dropped
// silently, with no mutation, no ack and no broadcast.
//
// Keeping the dispatcher free of any socket handling means the whole command
// surface is testable against the store alone.
type Gateway struct {
	store   *RoomStore
	metrics *Metrics
	log     zerolog.Logger
}

func NewGateway(store *RoomStore, metrics *Metrics, log zerolog.Logger) *Gateway {
	return &Gateway{
		store:   store,
		metrics: metrics,
		log:     log,
	}
}

// DispatchResult tells the hub what an accepted command changed. Joined is
// the room the connection entered and must be registered before Broadcast is
// processed, so the joiner receives the resulting snapshot too. Ack goes to
// the calling connection only.
type DispatchResult struct {
	Joined    string
	Broadcast []string
	Ack       *models.WSMessage
}

// Dispatch decodes and executes one raw client message. Malformed envelopes,
// unknown types and bad payloads are dropped before they can reach mutation
// logic.
func (g *Gateway) Dispatch(connID string, data []byte) DispatchResult {
	var msg models.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return g.dropMalformed(connID, "", err)
	}
	if !security.IsValidCommandType(msg.Type) {
		return g.dropMalformed(connID, msg.Type, errors.New("unknown command type"))
	}

	switch msg.Type {
	case models.CmdCreateRoom:
		return g.createRoom(connID, msg.Payload)
	case models.CmdJoinRoom:
		return g.joinRoom(connID, msg.Payload)
	case models.CmdSetTask:
		return g.setTask(connID, msg.Payload)
	case models.CmdVote:
		return g.vote(connID, msg.Payload)
	case models.CmdReveal:
		return g.reveal(connID, msg.Payload)
	case models.CmdNewRound, models.CmdResetResults:
		return g.newRound(connID, msg.Type, msg.Payload)
	case models.CmdUpdateParticipant:
		return g.updateParticipant(connID, msg.Payload)
	case models.CmdSetHost:
		return g.setHost(connID, msg.Payload)
	}
	return DispatchResult{}
}

func (g *Gateway) createRoom(connID string, payload json.RawMessage) DispatchResult {
	var p models.CreateRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return g.dropMalformed(connID, models.CmdCreateRoom, err)
	}

	name := security.SanitizeName(p.Name, models.DefaultHostName, security.MaxParticipantNameLength)
	category := security.SanitizeName(p.Category, models.DefaultCategory, security.MaxCategoryLength)

	roomID, state := g.store.CreateRoom(connID, name, category)
	g.metrics.IncrementRooms()
	g.log.Info().Str("room", roomID).Str("conn", connID).Msg("room created")

	return DispatchResult{
		Joined: roomID,
		Ack:    g.ack(models.MsgRoomCreated, roomID, models.RoomCreatedAck{RoomID: roomID, State: state}),
	}
}

func (g *Gateway) joinRoom(connID string, payload json.RawMessage) DispatchResult {
	var p models.JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return g.dropMalformed(connID, models.CmdJoinRoom, err)
	}
	if err := security.ValidateRoomID(p.RoomID); err != nil {
		return DispatchResult{
			Ack: g.ack(models.MsgJoinResult, p.RoomID, models.JoinResultAck{OK: false, Error: models.ErrCodeRoomNotFound}),
		}
	}

	name := security.SanitizeName(p.Name, models.DefaultGuestName, security.MaxParticipantNameLength)
	category := security.SanitizeName(p.Category, models.DefaultCategory, security.MaxCategoryLength)

	if err := g.store.JoinRoom(p.RoomID, connID, name, category); err != nil {
		g.log.Debug().Str("room", p.RoomID).Str("conn", connID).Msg("join rejected, room not found")
		return DispatchResult{
			Ack: g.ack(models.MsgJoinResult, p.RoomID, models.JoinResultAck{OK: false, Error: models.ErrCodeRoomNotFound}),
		}
	}

	g.log.Info().Str("room", p.RoomID).Str("conn", connID).Msg("participant joined")
	return DispatchResult{
		Joined:    p.RoomID,
		Broadcast: []string{p.RoomID},
		Ack:       g.ack(models.MsgJoinResult, p.RoomID, models.JoinResultAck{OK: true, State: g.store.PublicState(p.RoomID)}),
	}
}

func (g *Gateway) setTask(connID string, payload json.RawMessage) DispatchResult {
	var p models.SetTaskPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return g.dropMalformed(connID, models.CmdSetTask, err)
	}
	if !g.store.IsHost(p.RoomID, connID) {
		return g.dropUnauthorized(connID, models.CmdSetTask, p.RoomID)
	}
	g.store.SetTask(p.RoomID, p.Task)
	return DispatchResult{Broadcast: []string{p.RoomID}}
}

func (g *Gateway) vote(connID string, payload json.RawMessage) DispatchResult {
	var p models.VotePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return g.dropMalformed(connID, models.CmdVote, err)
	}
	if !g.store.Exists(p.RoomID) {
		return DispatchResult{}
	}
	g.store.SetVote(p.RoomID, connID, p.Value)
	return DispatchResult{Broadcast: []string{p.RoomID}}
}

func (g *Gateway) reveal(connID string, payload json.RawMessage) DispatchResult {
	var p models.RoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return g.dropMalformed(connID, models.CmdReveal, err)
	}
	if !g.store.IsHost(p.RoomID, connID) {
		return g.dropUnauthorized(connID, models.CmdReveal, p.RoomID)
	}
	g.store.Reveal(p.RoomID)
	g.log.Info().Str("room", p.RoomID).Msg("votes revealed")
	return DispatchResult{Broadcast: []string{p.RoomID}}
}

func (g *Gateway) newRound(connID, cmdType string, payload json.RawMessage) DispatchResult {
	var p models.RoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return g.dropMalformed(connID, cmdType, err)
	}
	if !g.store.IsHost(p.RoomID, connID) {
		return g.dropUnauthorized(connID, cmdType, p.RoomID)
	}
	g.store.NewRound(p.RoomID)
	return DispatchResult{Broadcast: []string{p.RoomID}}
}

func (g *Gateway) updateParticipant(connID string, payload json.RawMessage) DispatchResult {
	var p models.UpdateParticipantPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return g.dropMalformed(connID, models.CmdUpdateParticipant, err)
	}
	if !g.store.IsHost(p.RoomID, connID) && connID != p.TargetID {
		return g.dropUnauthorized(connID, models.CmdUpdateParticipant, p.RoomID)
	}

	// Renames go through the same sanitizer as join/create; a field that
	// does not survive it is treated as not provided.
	name := security.SanitizeField(p.Name, security.MaxParticipantNameLength)
	category := security.SanitizeField(p.Category, security.MaxCategoryLength)

	if !g.store.UpdateParticipant(p.RoomID, p.TargetID, name, category) {
		return DispatchResult{}
	}
	return DispatchResult{Broadcast: []string{p.RoomID}}
}

func (g *Gateway) setHost(connID string, payload json.RawMessage) DispatchResult {
	var p models.SetHostPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return g.dropMalformed(connID, models.CmdSetHost, err)
	}
	if !g.store.IsHost(p.RoomID, connID) {
		return g.dropUnauthorized(connID, models.CmdSetHost, p.RoomID)
	}
	if !g.store.SetHost(p.RoomID, p.TargetID) {
		return DispatchResult{}
	}
	g.log.Info().Str("room", p.RoomID).Str("host", p.TargetID).Msg("host reassigned")
	return DispatchResult{Broadcast: []string{p.RoomID}}
}

func (g *Gateway) ack(msgType, roomID string, payload any) *models.WSMessage {
	data, err := json.Marshal(payload)
	if err != nil {
		g.log.Error().Err(err).Str("type", msgType).Msg("failed to marshal ack payload")
		return nil
	}
	return &models.WSMessage{Type: msgType, RoomID: roomID, Payload: data}
}

func (g *Gateway) dropMalformed(connID, cmdType string, err error) DispatchResult {
	g.metrics.IncrementMalformedCommands()
	g.log.Debug().Err(err).Str("conn", connID).Str("type", cmdType).Msg("dropped malformed command")
	return DispatchResult{}
}

func (g *Gateway) dropUnauthorized(connID, cmdType, roomID string) DispatchResult {
	g.metrics.IncrementAuthDrops()
	g.log.Debug().Str("conn", connID).Str("type", cmdType).Str("room", roomID).Msg("dropped unauthorized command")
	return DispatchResult{}
}
