package services

import (
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/SelinIlya/planning-poker/internal/models"
)

// ErrRoomNotFound is the only store failure that crosses the wire; it is
// surfaced through the join_room ack. Every other operation on a missing
// room or participant is a defined no-op.
var ErrRoomNotFound = errors.New("room not found")

const roomIDLength = 8

// RoomStore is the authoritative in-memory repository of rooms plus the
// connection-to-room membership index used for disconnect cleanup.
//
// The store carries no locks: it is owned by the hub's run loop and every
// mutation is executed from that single goroutine, so each operation is
// atomic with respect to all others. Tests drive it single-threaded too.
type RoomStore struct {
	rooms map[string]*models.Room

	// connRooms tracks which rooms a connection is a member of. One
	// connection may hold membership in several rooms at once.
	connRooms map[string]map[string]bool
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms:     make(map[string]*models.Room),
		connRooms: make(map[string]map[string]bool),
	}
}

// CreateRoom creates a room with the creator as sole participant and host,
// and returns the new room id with its public projection.
func (s *RoomStore) CreateRoom(creatorID, name, category string) (string, *models.PublicState) {
	roomID := s.newRoomID()
	room := models.NewRoom(roomID, models.NewParticipant(creatorID, name, category))
	s.rooms[roomID] = room
	s.track(creatorID, roomID)
	return roomID, s.PublicState(roomID)
}

// JoinRoom inserts or overwrites the participant keyed by connID. Rejoining
// resets the participant's identity fields and vote without duplicating the
// entry or losing its display position.
func (s *RoomStore) JoinRoom(roomID, connID, name, category string) error {
	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.SetParticipant(models.NewParticipant(connID, name, category))
	s.track(connID, roomID)
	return nil
}

// SetTask replaces the task label verbatim. Votes and the revealed flag are
// untouched: renaming the task mid-round is allowed.
func (s *RoomStore) SetTask(roomID, task string) {
	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	room.Task = task
}

// SetVote sets a participant's vote. An unset value retracts a cast vote.
// Any participant may vote, revealed or not.
func (s *RoomStore) SetVote(roomID, connID string, value models.Vote) {
	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	p, ok := room.Participant(connID)
	if !ok {
		return
	}
	p.Vote = value
}

// Reveal exposes all votes. Idempotent.
func (s *RoomStore) Reveal(roomID string) {
	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	room.Revealed = true
}

// NewRound hides votes again and clears every participant's vote. Task and
// host are untouched.
func (s *RoomStore) NewRound(roomID string) {
	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	room.Revealed = false
	for _, p := range room.Participants() {
		p.Vote = models.Vote{}
	}
}

// UpdateParticipant applies the provided name/category fields to the target
// participant. Whitespace-only fields are ignored field-by-field. Returns
// false only when the room or target is missing.
func (s *RoomStore) UpdateParticipant(roomID, targetID, name, category string) bool {
	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	p, ok := room.Participant(targetID)
	if !ok {
		return false
	}
	if v := strings.TrimSpace(name); v != "" {
		p.Name = v
	}
	if v := strings.TrimSpace(category); v != "" {
		p.Category = v
	}
	return true
}

// SetHost reassigns the host to a current participant. A host may hand off
// to itself.
func (s *RoomStore) SetHost(roomID, targetID string) bool {
	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	if !room.HasParticipant(targetID) {
		return false
	}
	room.HostID = targetID
	return true
}

func (s *RoomStore) IsHost(roomID, connID string) bool {
	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	return room.HostID == connID
}

func (s *RoomStore) Exists(roomID string) bool {
	_, ok := s.rooms[roomID]
	return ok
}

// LeaveAll removes the connection from every room it belongs to and destroys
// any room left empty. The host seat is never auto-transferred; a departed
// host keeps it until an explicit set_host. Returns the ids of every touched
// room, destroyed or not, so the caller can decide what to broadcast.
func (s *RoomStore) LeaveAll(connID string) []string {
	memberships, ok := s.connRooms[connID]
	if !ok {
		return nil
	}
	affected := make([]string, 0, len(memberships))
	for roomID := range memberships {
		affected = append(affected, roomID)
		room, ok := s.rooms[roomID]
		if !ok {
			continue
		}
		room.RemoveParticipant(connID)
		if room.Size() == 0 {
			delete(s.rooms, roomID)
		}
	}
	delete(s.connRooms, connID)
	return affected
}

// PublicState computes the client-facing projection of a room, or nil when
// the room no longer exists. Pre-reveal, cast votes are replaced by the
// redaction sentinel so the transport never carries a hidden value.
func (s *RoomStore) PublicState(roomID string) *models.PublicState {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil
	}

	members := room.Participants()
	participants := make([]models.PublicParticipant, 0, len(members))
	for _, p := range members {
		vote := p.Vote
		if !room.Revealed {
			vote = vote.Redacted()
		}
		participants = append(participants, models.PublicParticipant{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Vote:     vote,
		})
	}

	state := &models.PublicState{
		RoomID:       room.ID,
		HostID:       room.HostID,
		Task:         room.Task,
		Revealed:     room.Revealed,
		Participants: participants,
		ByCategory:   map[string]float64{},
	}
	if room.Revealed {
		state.Average, state.ByCategory = averages(members)
	}
	return state
}

// Clear drops every room and membership. Called on shutdown.
func (s *RoomStore) Clear() {
	s.rooms = make(map[string]*models.Room)
	s.connRooms = make(map[string]map[string]bool)
}

// averages computes the overall and per-category means of numeric votes,
// rounded to 2 decimal places. Token votes ("?", "break") have no magnitude
// and are excluded from both numerator and denominator; categories with no
// numeric vote are omitted.
func averages(members []*models.Participant) (*float64, map[string]float64) {
	var sum float64
	var count int
	catSum := make(map[string]float64)
	catCount := make(map[string]int)

	for _, p := range members {
		n, ok := p.Vote.Numeric()
		if !ok {
			continue
		}
		sum += n
		count++
		category := p.Category
		if category == "" {
			category = models.DefaultCategory
		}
		catSum[category] += n
		catCount[category]++
	}

	byCategory := make(map[string]float64, len(catSum))
	for category, total := range catSum {
		byCategory[category] = round2(total / float64(catCount[category]))
	}

	var average *float64
	if count > 0 {
		v := round2(sum / float64(count))
		average = &v
	}
	return average, byCategory
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *RoomStore) track(connID, roomID string) {
	set, ok := s.connRooms[connID]
	if !ok {
		set = make(map[string]bool)
		s.connRooms[connID] = set
	}
	set[roomID] = true
}

// newRoomID generates a short room id guaranteed not to collide with any
// live room.
func (s *RoomStore) newRoomID() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:roomIDLength]
		if _, exists := s.rooms[id]; !exists {
			return id
		}
	}
}
