package models

// Sentinel identity values substituted for missing or unusable fields.
const (
	DefaultCategory  = "Visitor"
	DefaultHostName  = "Host"
	DefaultGuestName = "Guest"
)

// Participant is one connected user inside a room. Its ID is the connection
// id of the WebSocket that created it.
type Participant struct {
	ID       string
	Name     string
	Category string
	Vote     Vote
}

func NewParticipant(id, name, category string) *Participant {
	if category == "" {
		category = DefaultCategory
	}
	return &Participant{
		ID:       id,
		Name:     name,
		Category: category,
	}
}
