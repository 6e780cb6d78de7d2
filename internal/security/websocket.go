package security

import (
	"github.com/coder/websocket"

	"github.com/SelinIlya/planning-poker/internal/models"
)

// WebSocket command type validation
var validCommandTypes = map[string]bool{
	models.CmdCreateRoom:        true,
	models.CmdJoinRoom:          true,
	models.CmdSetTask:           true,
	models.CmdVote:              true,
	models.CmdReveal:            true,
	models.CmdNewRound:          true,
	models.CmdResetResults:      true,
	models.CmdUpdateParticipant: true,
	models.CmdSetHost:           true,
}

// IsValidCommandType checks if an inbound message type is a known command.
func IsValidCommandType(cmdType string) bool {
	return validCommandTypes[cmdType]
}

// OriginValidator validates WebSocket connection origins
type OriginValidator struct {
	allowedPatterns []string
}

// NewOriginValidator creates a new origin validator
func NewOriginValidator(patterns []string) *OriginValidator {
	return &OriginValidator{
		allowedPatterns: patterns,
	}
}

// AcceptOptions returns websocket.AcceptOptions with the allowed origin
// patterns applied.
func (ov *OriginValidator) AcceptOptions() *websocket.AcceptOptions {
	return &websocket.AcceptOptions{
		OriginPatterns: ov.allowedPatterns,
	}
}
