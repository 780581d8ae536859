// internal/models/player.go
package models

import (
	"github.com/google/uuid"
)

// avatarNamespace scopes avatar seeds so they never collide with other uuid.NewSHA1 uses.
var avatarNamespace = uuid.MustParse("6f1c2a8e-5b0d-4c53-9d3e-7a41b2c9e0f4")

// Player is one seat at the table. ID is the peer address of the participant.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       *Role  `json:"role"` // nil until roles are dealt
	Score      int    `json:"score"`
	AvatarSeed string `json:"avatarSeed"`
	IsHost     bool   `json:"isHost"`
}

// NewPlayer builds an unseated-role player with a zero score.
func NewPlayer(id, name string, isHost bool) Player {
	return Player{
		ID:         id,
		Name:       name,
		AvatarSeed: AvatarSeed(id),
		IsHost:     isHost,
	}
}

// AvatarSeed derives a short, stable token from a peer id for renderers.
func AvatarSeed(id string) string {
	return uuid.NewSHA1(avatarNamespace, []byte(id)).String()[:8]
}

// HasRole reports whether the player currently holds r.
func (p Player) HasRole(r Role) bool {
	return p.Role != nil && *p.Role == r
}
