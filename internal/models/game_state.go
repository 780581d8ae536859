// internal/models/game_state.go
package models

// MaxPlayers is the exact table size; the game is not playable with fewer.
const MaxPlayers = 4

// GameState is the full authoritative snapshot pushed by the host.
// Clients replace their copy wholesale on every STATE_UPDATE.
type GameState struct {
	Phase      Phase    `json:"phase"`
	Players    []Player `json:"players"`
	MantriID   string   `json:"mantriId"`
	Commentary string   `json:"commentary"`
	Winner     *Role    `json:"winner"`
	WinnerName string   `json:"winnerName,omitempty"`

	// Round counts deals. Asynchronous commentary is tagged with it so a
	// late result never lands on a later round.
	Round int `json:"round"`
}

// NewGameState returns the initial lobby state.
func NewGameState() GameState {
	return GameState{
		Phase:   PhaseLobby,
		Players: []Player{},
	}
}

// Clone deep-copies the state so the reducer can produce a new value
// without touching the previous snapshot.
func (s GameState) Clone() GameState {
	out := s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		if p.Role != nil {
			p.Role = p.Role.Ptr()
		}
		out.Players[i] = p
	}
	if s.Winner != nil {
		out.Winner = s.Winner.Ptr()
	}
	return out
}

// PlayerByID returns the seated player with the given id.
func (s GameState) PlayerByID(id string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// PlayerByRole returns the player currently holding r.
func (s GameState) PlayerByRole(r Role) (Player, bool) {
	for _, p := range s.Players {
		if p.HasRole(r) {
			return p, true
		}
	}
	return Player{}, false
}

// Full reports whether every seat is taken.
func (s GameState) Full() bool {
	return len(s.Players) >= MaxPlayers
}
