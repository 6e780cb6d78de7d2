package models

// PublicParticipant is the client-safe view of a room member. Vote is the raw
// value once revealed, the redaction sentinel for a hidden cast vote, and
// null otherwise.
type PublicParticipant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Vote     Vote   `json:"vote"`
}

// PublicState is the full snapshot pushed to every room member after each
// accepted command. Average and ByCategory are derived from revealed numeric
// votes only; Average is null until reveal or when no numeric vote exists.
type PublicState struct {
	RoomID       string              `json:"roomId"`
	HostID       string              `json:"hostId"`
	Task         string              `json:"task"`
	Revealed     bool                `json:"revealed"`
	Participants []PublicParticipant `json:"participants"`
	Average      *float64            `json:"average"`
	ByCategory   map[string]float64  `json:"byCategory"`
}
