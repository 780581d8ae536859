// internal/game/view.go
package game

import (
	"errors"
	"fmt"

	"github.com/33VM/RajaMantri/internal/models"
)

// VisibleRole returns the role a viewer is allowed to see on a player's card
// in the current phase, or nil if the card is face down.
func VisibleRole(state models.GameState, viewerID string, p models.Player) *models.Role {
	if p.Role == nil {
		return nil
	}
	switch {
	case state.Phase == models.PhaseResult:
		return p.Role
	case p.ID == viewerID:
		return p.Role
	case *p.Role == models.RoleRaja:
		// the Raja announces themself when the cards are read
		return p.Role
	case state.Phase == models.PhaseGuess && *p.Role == models.RoleMantri:
		return p.Role
	}
	return nil
}

// Selectable reports whether viewer may accuse p right now.
func Selectable(state models.GameState, viewerID string, p models.Player) bool {
	if state.Phase != models.PhaseGuess || viewerID != state.MantriID || p.ID == viewerID {
		return false
	}
	return Suspectable(p.Role)
}

var ErrInvalidState = errors.New("invalid game state")

// Validate checks the rules a well-behaved host always upholds. Clients
// run it on every snapshot; the host is trusted, so a failure is reported and
// not enforced.
func Validate(state models.GameState) error {
	var errs []error
	if len(state.Players) > models.MaxPlayers {
		errs = append(errs, fmt.Errorf("%d players seated", len(state.Players)))
	}

	hosts := 0
	ids := make(map[string]bool, len(state.Players))
	roles := make(map[models.Role]string, len(state.Players))
	for _, p := range state.Players {
		if p.IsHost {
			hosts++
		}
		if ids[p.ID] {
			errs = append(errs, fmt.Errorf("duplicate player id %s", p.ID))
		}
		ids[p.ID] = true
		if p.Score < 0 {
			errs = append(errs, fmt.Errorf("player %s has negative score %d", p.ID, p.Score))
		}
		if p.Role == nil {
			continue
		}
		if !p.Role.Valid() {
			errs = append(errs, fmt.Errorf("player %s holds unknown role %q", p.ID, *p.Role))
			continue
		}
		if other, dup := roles[*p.Role]; dup {
			errs = append(errs, fmt.Errorf("role %s held by both %s and %s", *p.Role, other, p.ID))
		}
		roles[*p.Role] = p.ID
	}
	if len(state.Players) > 0 && hosts != 1 {
		errs = append(errs, fmt.Errorf("%d hosts seated", hosts))
	}

	if state.Phase != models.PhaseLobby {
		if holder, ok := roles[models.RoleMantri]; ok && holder != state.MantriID {
			errs = append(errs, fmt.Errorf("mantriId %q does not match holder %s", state.MantriID, holder))
		}
	}
	if state.Winner != nil && *state.Winner != models.RoleMantri && *state.Winner != models.RoleChor {
		errs = append(errs, fmt.Errorf("winner role %q cannot win a round", *state.Winner))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidState, errors.Join(errs...))
}
