package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SelinIlya/planning-poker/internal/models"
	"github.com/SelinIlya/planning-poker/internal/services"
)

func TestRoomStore_CreateRoom(t *testing.T) {
	t.Run("creator becomes host and sole participant", func(t *testing.T) {
		store := services.NewRoomStore()

		roomID, state := store.CreateRoom("conn-1", "Alice", "Back")

		require.NotNil(t, state)
		assert.Equal(t, roomID, state.RoomID)
		assert.Equal(t, "conn-1", state.HostID)
		assert.False(t, state.Revealed)
		assert.Empty(t, state.Task)
		require.Len(t, state.Participants, 1)
		assert.Equal(t, "Alice", state.Participants[0].Name)
		assert.Equal(t, "Back", state.Participants[0].Category)
		assert.True(t, store.IsHost(roomID, "conn-1"))
	})

	t.Run("room ids are unique across live rooms", func(t *testing.T) {
		store := services.NewRoomStore()

		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
			assert.False(t, seen[roomID])
			seen[roomID] = true
		}
	})
}

func TestRoomStore_JoinRoom(t *testing.T) {
	t.Run("returns room not found for missing room", func(t *testing.T) {
		store := services.NewRoomStore()

		err := store.JoinRoom("nope", "conn-2", "Bob", "QA")

		assert.ErrorIs(t, err, services.ErrRoomNotFound)
	})

	t.Run("adds participant with vote unset", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")

		require.NoError(t, store.JoinRoom(roomID, "conn-2", "Bob", "QA"))

		state := store.PublicState(roomID)
		require.Len(t, state.Participants, 2)
		assert.Equal(t, "Bob", state.Participants[1].Name)
		assert.False(t, state.Participants[1].Vote.IsSet())
	})

	t.Run("host stays a valid member after joins", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")

		require.NoError(t, store.JoinRoom(roomID, "conn-2", "Bob", "QA"))
		require.NoError(t, store.JoinRoom(roomID, "conn-3", "Cleo", "QA"))

		state := store.PublicState(roomID)
		found := false
		for _, p := range state.Participants {
			if p.ID == state.HostID {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("rejoin resets identity without duplicating", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
		require.NoError(t, store.JoinRoom(roomID, "conn-2", "Bob", "QA"))
		store.SetVote(roomID, "conn-2", models.NumberVote(5))

		require.NoError(t, store.JoinRoom(roomID, "conn-2", "Bobby", "Front"))

		state := store.PublicState(roomID)
		require.Len(t, state.Participants, 2)
		assert.Equal(t, "Bobby", state.Participants[1].Name)
		assert.Equal(t, "Front", state.Participants[1].Category)
		assert.False(t, state.Participants[1].Vote.IsSet())
	})

	t.Run("empty category falls back to sentinel", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "")

		state := store.PublicState(roomID)
		assert.Equal(t, models.DefaultCategory, state.Participants[0].Category)
	})
}

func TestRoomStore_SetTask(t *testing.T) {
	t.Run("replaces task without touching votes or revealed", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
		store.SetVote(roomID, "conn-1", models.NumberVote(3))
		store.Reveal(roomID)

		store.SetTask(roomID, "PROJ-42 checkout flow")

		state := store.PublicState(roomID)
		assert.Equal(t, "PROJ-42 checkout flow", state.Task)
		assert.True(t, state.Revealed)
		v, ok := state.Participants[0].Vote.Numeric()
		require.True(t, ok)
		assert.Equal(t, 3.0, v)
	})

	t.Run("no-op on missing room", func(t *testing.T) {
		store := services.NewRoomStore()

		assert.NotPanics(t, func() { store.SetTask("nope", "task") })
	})
}

func TestRoomStore_VoteRedaction(t *testing.T) {
	t.Run("hidden vote never exposes its value", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")

		store.SetVote(roomID, "conn-1", models.NumberVote(8))

		state := store.PublicState(roomID)
		token, ok := state.Participants[0].Vote.Token()
		require.True(t, ok)
		assert.Equal(t, models.RedactionSentinel, token)
		_, numeric := state.Participants[0].Vote.Numeric()
		assert.False(t, numeric)
	})

	t.Run("numeric zero still counts as a cast vote", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")

		store.SetVote(roomID, "conn-1", models.NumberVote(0))

		state := store.PublicState(roomID)
		assert.True(t, state.Participants[0].Vote.IsSet())
		token, _ := state.Participants[0].Vote.Token()
		assert.Equal(t, models.RedactionSentinel, token)
	})

	t.Run("reveal exposes the exact value", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
		store.SetVote(roomID, "conn-1", models.NumberVote(8))

		store.Reveal(roomID)

		state := store.PublicState(roomID)
		v, ok := state.Participants[0].Vote.Numeric()
		require.True(t, ok)
		assert.Equal(t, 8.0, v)
	})

	t.Run("unset vote retracts a cast one", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
		store.SetVote(roomID, "conn-1", models.NumberVote(8))

		store.SetVote(roomID, "conn-1", models.Vote{})

		state := store.PublicState(roomID)
		assert.False(t, state.Participants[0].Vote.IsSet())
	})
}

func TestRoomStore_Averages(t *testing.T) {
	t.Run("rounds overall and per-category averages to 2 decimals", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
		require.NoError(t, store.JoinRoom(roomID, "conn-2", "Bob", "Back"))
		require.NoError(t, store.JoinRoom(roomID, "conn-3", "Cleo", "Back"))
		store.SetVote(roomID, "conn-1", models.NumberVote(1))
		store.SetVote(roomID, "conn-2", models.NumberVote(2))
		store.SetVote(roomID, "conn-3", models.NumberVote(4))

		store.Reveal(roomID)

		state := store.PublicState(roomID)
		require.NotNil(t, state.Average)
		assert.Equal(t, 2.33, *state.Average)
		assert.Equal(t, map[string]float64{"Back": 2.33}, state.ByCategory)
	})

	t.Run("token votes are excluded from numerator and denominator", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
		require.NoError(t, store.JoinRoom(roomID, "conn-2", "Bob", "Back"))
		require.NoError(t, store.JoinRoom(roomID, "conn-3", "Cleo", "Back"))
		store.SetVote(roomID, "conn-1", models.NumberVote(1))
		store.SetVote(roomID, "conn-2", models.TokenVote("?"))
		store.SetVote(roomID, "conn-3", models.NumberVote(8))

		store.Reveal(roomID)

		state := store.PublicState(roomID)
		require.NotNil(t, state.Average)
		assert.Equal(t, 4.5, *state.Average)
	})

	t.Run("no numeric votes yields null average and empty categories", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
		store.SetVote(roomID, "conn-1", models.TokenVote("break"))

		store.Reveal(roomID)

		state := store.PublicState(roomID)
		assert.Nil(t, state.Average)
		assert.Empty(t, state.ByCategory)
	})

	t.Run("no aggregates before reveal", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
		store.SetVote(roomID, "conn-1", models.NumberVote(5))

		state := store.PublicState(roomID)
		assert.Nil(t, state.Average)
		assert.Empty(t, state.ByCategory)
		assert.NotNil(t, state.ByCategory)
	})
}

func TestRoomStore_NewRound(t *testing.T) {
	t.Run("hides and clears votes, keeps task and host", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
		require.NoError(t, store.JoinRoom(roomID, "conn-2", "Bob", "QA"))
		store.SetTask(roomID, "refactor billing")
		store.SetVote(roomID, "conn-1", models.NumberVote(3))
		store.SetVote(roomID, "conn-2", models.NumberVote(5))
		store.Reveal(roomID)

		store.NewRound(roomID)

		state := store.PublicState(roomID)
		assert.False(t, state.Revealed)
		assert.Equal(t, "refactor billing", state.Task)
		assert.Equal(t, "conn-1", state.HostID)
		for _, p := range state.Participants {
			assert.False(t, p.Vote.IsSet())
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
		store.SetVote(roomID, "conn-1", models.NumberVote(3))
		store.Reveal(roomID)

		store.NewRound(roomID)
		once := store.PublicState(roomID)
		store.NewRound(roomID)
		twice := store.PublicState(roomID)

		assert.Equal(t, once, twice)
	})
}

func TestRoomStore_UpdateParticipant(t *testing.T) {
	t.Run("applies trimmed non-empty fields", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")

		ok := store.UpdateParticipant(roomID, "conn-1", "  Alicia  ", "Front")

		assert.True(t, ok)
		state := store.PublicState(roomID)
		assert.Equal(t, "Alicia", state.Participants[0].Name)
		assert.Equal(t, "Front", state.Participants[0].Category)
	})

	t.Run("ignores whitespace-only fields field-by-field", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")

		ok := store.UpdateParticipant(roomID, "conn-1", "   ", "QA")

		assert.True(t, ok)
		state := store.PublicState(roomID)
		assert.Equal(t, "Alice", state.Participants[0].Name)
		assert.Equal(t, "QA", state.Participants[0].Category)
	})

	t.Run("succeeds with both fields omitted", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")

		assert.True(t, store.UpdateParticipant(roomID, "conn-1", "", ""))
	})

	t.Run("returns false for missing room or target", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")

		assert.False(t, store.UpdateParticipant("nope", "conn-1", "X", ""))
		assert.False(t, store.UpdateParticipant(roomID, "ghost", "X", ""))
	})
}

func TestRoomStore_SetHost(t *testing.T) {
	t.Run("reassigns to a current participant", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
		require.NoError(t, store.JoinRoom(roomID, "conn-2", "Bob", "QA"))

		assert.True(t, store.SetHost(roomID, "conn-2"))
		assert.True(t, store.IsHost(roomID, "conn-2"))
		assert.False(t, store.IsHost(roomID, "conn-1"))
	})

	t.Run("host may hand off to itself", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")

		assert.True(t, store.SetHost(roomID, "conn-1"))
		assert.True(t, store.IsHost(roomID, "conn-1"))
	})

	t.Run("rejects non-members and missing rooms", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")

		assert.False(t, store.SetHost(roomID, "ghost"))
		assert.False(t, store.SetHost("nope", "conn-1"))
		assert.True(t, store.IsHost(roomID, "conn-1"))
	})
}

func TestRoomStore_LeaveAll(t *testing.T) {
	t.Run("last participant leaving destroys the room", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")

		affected := store.LeaveAll("conn-1")

		assert.Equal(t, []string{roomID}, affected)
		assert.False(t, store.Exists(roomID))
		assert.Nil(t, store.PublicState(roomID))
	})

	t.Run("host seat is not auto-transferred", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
		require.NoError(t, store.JoinRoom(roomID, "conn-2", "Bob", "QA"))

		store.LeaveAll("conn-1")

		require.True(t, store.Exists(roomID))
		state := store.PublicState(roomID)
		assert.Equal(t, "conn-1", state.HostID)
		require.Len(t, state.Participants, 1)
		assert.Equal(t, "conn-2", state.Participants[0].ID)
	})

	t.Run("removes membership from every joined room", func(t *testing.T) {
		store := services.NewRoomStore()
		roomA, _ := store.CreateRoom("conn-1", "Alice", "Back")
		roomB, _ := store.CreateRoom("conn-2", "Bob", "QA")
		require.NoError(t, store.JoinRoom(roomB, "conn-1", "Alice", "Back"))

		affected := store.LeaveAll("conn-1")

		assert.ElementsMatch(t, []string{roomA, roomB}, affected)
		assert.False(t, store.Exists(roomA))
		require.True(t, store.Exists(roomB))
		assert.Len(t, store.PublicState(roomB).Participants, 1)
	})

	t.Run("unknown connection touches nothing", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")

		assert.Empty(t, store.LeaveAll("ghost"))
		assert.True(t, store.Exists(roomID))
	})
}

func TestRoomStore_ParticipantOrder(t *testing.T) {
	t.Run("join order is stable across rejoins and leaves", func(t *testing.T) {
		store := services.NewRoomStore()
		roomID, _ := store.CreateRoom("conn-1", "Alice", "Back")
		require.NoError(t, store.JoinRoom(roomID, "conn-2", "Bob", "QA"))
		require.NoError(t, store.JoinRoom(roomID, "conn-3", "Cleo", "Front"))

		// Rejoin keeps Bob in second position
		require.NoError(t, store.JoinRoom(roomID, "conn-2", "Bobby", "QA"))

		state := store.PublicState(roomID)
		ids := []string{}
		for _, p := range state.Participants {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []string{"conn-1", "conn-2", "conn-3"}, ids)

		store.LeaveAll("conn-2")
		state = store.PublicState(roomID)
		ids = ids[:0]
		for _, p := range state.Participants {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []string{"conn-1", "conn-3"}, ids)
	})
}

func TestRoomStore_Scenario(t *testing.T) {
	t.Run("create, join, vote, reveal", func(t *testing.T) {
		store := services.NewRoomStore()

		roomID, _ := store.CreateRoom("conn-a", "A", "Back")
		require.NoError(t, store.JoinRoom(roomID, "conn-b", "B", "QA"))

		store.SetVote(roomID, "conn-b", models.NumberVote(5))
		store.SetVote(roomID, "conn-a", models.NumberVote(8))
		store.Reveal(roomID)

		state := store.PublicState(roomID)
		require.NotNil(t, state.Average)
		assert.Equal(t, 6.5, *state.Average)
		assert.Equal(t, map[string]float64{"Back": 8, "QA": 5}, state.ByCategory)
	})
}
