// internal/models/role.go
package models

// Role is the secret card a player holds for one round.
type Role string

const (
	RoleRaja   Role = "RAJA"
	RoleMantri Role = "MANTRI"
	RoleChor   Role = "CHOR"
	RoleSipahi Role = "SIPAHI"
)

// AllRoles is the fixed set dealt every round. Order matters only as the
// input to the shuffle.
var AllRoles = [4]Role{RoleRaja, RoleMantri, RoleChor, RoleSipahi}

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleRaja, RoleMantri, RoleChor, RoleSipahi:
		return true
	}
	return false
}

// Ptr returns a pointer to a copy of r, for the nullable role fields.
func (r Role) Ptr() *Role {
	return &r
}

// Phase is the state machine position of a room.
type Phase string

const (
	PhaseLobby  Phase = "LOBBY"
	PhaseReveal Phase = "REVEAL"
	PhaseGuess  Phase = "GUESS"
	PhaseResult Phase = "RESULT"
)

func (p Phase) String() string {
	return string(p)
}
