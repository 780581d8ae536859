// internal/game/rules.go
package game

import "github.com/33VM/RajaMantri/internal/models"

// Points awarded per role when a round resolves.
const (
	RajaPoints      = 1000
	SipahiPoints    = 500
	MantriPoints    = 800 // only on a correct guess
	ChorPoints      = 0   // when caught
	ChorEscapePoint = 800 // when the Mantri names the wrong player
)

// CommentaryPlaceholder is broadcast with the RESULT phase until the narrator answers.
const CommentaryPlaceholder = "The Royal Scribe is observing..."

// RoundPoints returns what a holder of role earns for a round in which the
// Mantri guessed correctly (correct=true) or not.
func RoundPoints(role models.Role, correct bool) int {
	switch role {
	case models.RoleRaja:
		return RajaPoints
	case models.RoleSipahi:
		return SipahiPoints
	case models.RoleMantri:
		if correct {
			return MantriPoints
		}
		return 0
	case models.RoleChor:
		if correct {
			return ChorPoints
		}
		return ChorEscapePoint
	}
	return 0
}

// Suspectable reports whether a player holding role may be named in a GUESS.
func Suspectable(role *models.Role) bool {
	if role == nil {
		return false
	}
	return *role != models.RoleRaja && *role != models.RoleMantri
}
