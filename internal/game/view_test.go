package game

import (
	"testing"

	"github.com/33VM/RajaMantri/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roleOf(t *testing.T, s models.GameState, viewer, target string) *models.Role {
	t.Helper()
	p, ok := s.PlayerByID(target)
	require.True(t, ok)
	return VisibleRole(s, viewer, p)
}

func TestVisibleRoleByPhase(t *testing.T) {
	s := mustApply(t, seatedLobby(t), Action{Kind: ActionStart, Actor: "p1"}, identityShuffler{})

	// reveal: own card and the raja
	assert.Equal(t, models.RoleChor.Ptr(), roleOf(t, s, "p3", "p3"))
	assert.Equal(t, models.RoleRaja.Ptr(), roleOf(t, s, "p3", "p1"))
	assert.Nil(t, roleOf(t, s, "p3", "p2"), "mantri hidden until court opens")
	assert.Nil(t, roleOf(t, s, "p2", "p4"))

	// guess: the mantri steps forward
	s = mustApply(t, s, Action{Kind: ActionOpenCourt, Actor: "p1"}, nil)
	assert.Equal(t, models.RoleMantri.Ptr(), roleOf(t, s, "p3", "p2"))
	assert.Nil(t, roleOf(t, s, "p2", "p3"), "mantri cannot see the chor")
	assert.Nil(t, roleOf(t, s, "p2", "p4"))
	assert.Nil(t, roleOf(t, s, "p3", "p4"))

	// result: everything face up
	s = mustApply(t, s, Action{Kind: ActionGuess, Actor: "p2", SuspectID: "p4"}, nil)
	for _, viewer := range ids {
		for _, p := range s.Players {
			assert.Equal(t, p.Role, VisibleRole(s, viewer, p))
		}
	}
	assert.Equal(t, models.RoleSipahi.Ptr(), roleOf(t, s, "outsider", "p4"))
}

func TestVisibleRoleInLobby(t *testing.T) {
	s := seatedLobby(t)
	for _, p := range s.Players {
		assert.Nil(t, VisibleRole(s, p.ID, p))
	}
}

func TestSelectable(t *testing.T) {
	s := toGuess(t)
	pick := func(viewer, target string) bool {
		p, ok := s.PlayerByID(target)
		require.True(t, ok)
		return Selectable(s, viewer, p)
	}

	assert.True(t, pick("p2", "p3"))
	assert.True(t, pick("p2", "p4"))
	assert.False(t, pick("p2", "p1"), "raja")
	assert.False(t, pick("p2", "p2"), "self")
	assert.False(t, pick("p1", "p3"), "only the mantri chooses")

	s.Phase = models.PhaseReveal
	assert.False(t, pick("p2", "p3"))
}

func TestValidateAcceptsReducerOutput(t *testing.T) {
	s := models.NewGameState()
	require.NoError(t, Validate(s))

	s = seatedLobby(t)
	require.NoError(t, Validate(s))

	s = toGuess(t)
	require.NoError(t, Validate(s))

	s = mustApply(t, s, Action{Kind: ActionGuess, Actor: "p2", SuspectID: "p3"}, nil)
	require.NoError(t, Validate(s))
}

func TestValidateReportsViolations(t *testing.T) {
	base := toGuess(t)

	cases := map[string]func(s *models.GameState){
		"duplicate role": func(s *models.GameState) {
			s.Players[3].Role = models.RoleChor.Ptr()
		},
		"mantri mismatch": func(s *models.GameState) {
			s.MantriID = "p4"
		},
		"negative score": func(s *models.GameState) {
			s.Players[0].Score = -5
		},
		"two hosts": func(s *models.GameState) {
			s.Players[1].IsHost = true
		},
		"unknown role": func(s *models.GameState) {
			r := models.Role("JESTER")
			s.Players[2].Role = &r
		},
		"raja wins": func(s *models.GameState) {
			s.Winner = models.RoleRaja.Ptr()
		},
		"duplicate id": func(s *models.GameState) {
			s.Players[3].ID = "p1"
		},
		"too many players": func(s *models.GameState) {
			s.Players = append(s.Players, models.NewPlayer("p5", "Extra", false))
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := base.Clone()
			mutate(&s)
			assert.ErrorIs(t, Validate(s), ErrInvalidState)
		})
	}
}
