package models

import "encoding/json"

// WSMessage is the wire envelope in both directions. Payload stays raw until
// the command type is known so each command decodes into its own struct.
type WSMessage struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"roomId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client → Server command types
const (
	CmdCreateRoom        = "create_room"
	CmdJoinRoom          = "join_room"
	CmdSetTask           = "set_task"
	CmdVote              = "vote"
	CmdReveal            = "reveal"
	CmdNewRound          = "new_round"
	CmdResetResults      = "reset_results" // alias of new_round
	CmdUpdateParticipant = "update_participant"
	CmdSetHost           = "set_host"
)

// Server → Client message types
const (
	MsgState       = "state"        // full snapshot push to room members
	MsgRoomCreated = "room_created" // create_room ack, caller only
	MsgJoinResult  = "join_result"  // join_room ack, caller only
)

// Error codes carried in acks.
const ErrCodeRoomNotFound = "ROOM_NOT_FOUND"

type CreateRoomPayload struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type SetTaskPayload struct {
	RoomID string `json:"roomId"`
	Task   string `json:"task"`
}

type VotePayload struct {
	RoomID string `json:"roomId"`
	Value  Vote   `json:"value"`
}

// RoomPayload covers the commands that only address a room: reveal,
// new_round, reset_results.
type RoomPayload struct {
	RoomID string `json:"roomId"`
}

type UpdateParticipantPayload struct {
	RoomID   string `json:"roomId"`
	TargetID string `json:"targetId"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
}

type SetHostPayload struct {
	RoomID   string `json:"roomId"`
	TargetID string `json:"targetId"`
}

type RoomCreatedAck struct {
	RoomID string       `json:"roomId"`
	State  *PublicState `json:"state"`
}

type JoinResultAck struct {
	OK    bool         `json:"ok"`
	Error string       `json:"error,omitempty"`
	State *PublicState `json:"state,omitempty"`
}
