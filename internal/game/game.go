// internal/game/game.go
package game

import (
	"fmt"
	"strings"

	"github.com/33VM/RajaMantri/internal/models"
)

// ActionKind enumerates every way the authoritative state can change.
type ActionKind string

const (
	ActionJoin       ActionKind = "join"
	ActionStart      ActionKind = "start"
	ActionOpenCourt  ActionKind = "open_court"
	ActionGuess      ActionKind = "guess"
	ActionNextRound  ActionKind = "next_round"
	ActionLeave      ActionKind = "leave"
	ActionCommentary ActionKind = "commentary"
)

// Action is one input to the reducer. Actor is the peer address of whoever
// triggered it; the host's own actions carry the host's address.
type Action struct {
	Kind  ActionKind
	Actor string

	Name      string // join
	Host      bool   // join: seat as the room host
	SuspectID string // guess
	Round     int    // commentary: the round the text was requested for
	Text      string // commentary
}

func (a Action) String() string {
	return fmt.Sprintf("%s(actor=%s)", a.Kind, a.Actor)
}

// Shuffler is the randomness the reducer needs; *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Apply is the pure reducer: old state + action -> new state. The input is
// never mutated. changed is false when the action is out of phase, malformed
// or not allowed for the actor; in that case next is the input unchanged.
// Start and NextRound are honored from any seated player, OpenCourt only
// from the host, Guess only from the current Mantri.
func Apply(state models.GameState, a Action, rng Shuffler) (next models.GameState, changed bool) {
	switch a.Kind {
	case ActionJoin:
		return join(state, a)
	case ActionStart:
		if state.Phase != models.PhaseLobby || !isSeated(state, a.Actor) {
			return state, false
		}
		return deal(state, rng)
	case ActionOpenCourt:
		if state.Phase != models.PhaseReveal || !isHost(state, a.Actor) {
			return state, false
		}
		next = state.Clone()
		next.Phase = models.PhaseGuess
		return next, true
	case ActionGuess:
		return guess(state, a)
	case ActionNextRound:
		// the next deal waits for the narrator so the two RESULT snapshots
		// of a round are never interleaved with another mutation
		if state.Phase != models.PhaseResult || state.Commentary == CommentaryPlaceholder || !isSeated(state, a.Actor) {
			return state, false
		}
		return deal(state, rng)
	case ActionLeave:
		return leave(state, a)
	case ActionCommentary:
		if state.Phase != models.PhaseResult || a.Round != state.Round || a.Text == "" || state.Commentary == a.Text {
			return state, false
		}
		next = state.Clone()
		next.Commentary = a.Text
		return next, true
	}
	return state, false
}

func join(state models.GameState, a Action) (models.GameState, bool) {
	if a.Actor == "" || state.Full() || isSeated(state, a.Actor) {
		return state, false
	}
	name := strings.TrimSpace(a.Name)
	if name == "" {
		name = fmt.Sprintf("Player %d", len(state.Players)+1)
	}
	next := state.Clone()
	next.Players = append(next.Players, models.NewPlayer(a.Actor, name, a.Host))
	return next, true
}

// deal assigns a uniformly random bijection of roles onto the four seats and
// opens a new round. Scores carry over.
func deal(state models.GameState, rng Shuffler) (models.GameState, bool) {
	if len(state.Players) != models.MaxPlayers {
		return state, false
	}
	roles := models.AllRoles
	rng.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})

	next := state.Clone()
	next.MantriID = ""
	for i := range next.Players {
		next.Players[i].Role = roles[i].Ptr()
		if roles[i] == models.RoleMantri {
			next.MantriID = next.Players[i].ID
		}
	}
	next.Phase = models.PhaseReveal
	next.Commentary = ""
	next.Winner = nil
	next.WinnerName = ""
	next.Round++
	return next, true
}

func guess(state models.GameState, a Action) (models.GameState, bool) {
	if state.Phase != models.PhaseGuess || a.Actor == "" || a.Actor != state.MantriID {
		return state, false
	}
	suspect, ok := state.PlayerByID(a.SuspectID)
	if !ok || !Suspectable(suspect.Role) {
		return state, false
	}
	if _, ok := state.PlayerByRole(models.RoleMantri); !ok {
		return state, false
	}
	if _, ok := state.PlayerByRole(models.RoleChor); !ok {
		return state, false
	}

	correct := suspect.HasRole(models.RoleChor)
	winner := models.RoleChor
	if correct {
		winner = models.RoleMantri
	}

	next := state.Clone()
	for i, p := range next.Players {
		if p.Role == nil {
			continue
		}
		next.Players[i].Score += RoundPoints(*p.Role, correct)
	}
	next.Phase = models.PhaseResult
	next.Winner = winner.Ptr()
	if w, ok := next.PlayerByRole(winner); ok {
		next.WinnerName = w.Name
	}
	next.Commentary = CommentaryPlaceholder
	return next, true
}

func leave(state models.GameState, a Action) (models.GameState, bool) {
	if !isSeated(state, a.Actor) {
		return state, false
	}
	next := state.Clone()
	players := next.Players[:0]
	for _, p := range next.Players {
		if p.ID != a.Actor {
			players = append(players, p)
		}
	}
	next.Players = players
	return next, true
}

func isSeated(state models.GameState, id string) bool {
	_, ok := state.PlayerByID(id)
	return ok
}

func isHost(state models.GameState, id string) bool {
	p, ok := state.PlayerByID(id)
	return ok && p.IsHost
}
