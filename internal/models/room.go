package models

// Room is the canonical, server-private state of one estimation session.
// Participants are keyed by connection id; insertion order is preserved so
// the rendered list stays stable across broadcasts.
type Room struct {
	ID       string
	HostID   string
	Task     string
	Revealed bool

	participants map[string]*Participant
	order        []string
}

func NewRoom(id string, host *Participant) *Room {
	r := &Room{
		ID:           id,
		HostID:       host.ID,
		participants: make(map[string]*Participant),
	}
	r.SetParticipant(host)
	return r
}

// Participant looks up a member by connection id.
func (r *Room) Participant(id string) (*Participant, bool) {
	p, ok := r.participants[id]
	return p, ok
}

func (r *Room) HasParticipant(id string) bool {
	_, ok := r.participants[id]
	return ok
}

// SetParticipant inserts or replaces a member. Replacing keeps the member's
// original position in the display order.
func (r *Room) SetParticipant(p *Participant) {
	if _, ok := r.participants[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	r.participants[p.ID] = p
}

// RemoveParticipant deletes a member and reports whether it was present.
func (r *Room) RemoveParticipant(id string) bool {
	if _, ok := r.participants[id]; !ok {
		return false
	}
	delete(r.participants, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Participants returns the members in join order.
func (r *Room) Participants() []*Participant {
	out := make([]*Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.participants[id])
	}
	return out
}

func (r *Room) Size() int {
	return len(r.participants)
}
