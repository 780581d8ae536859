// internal/commentary/commentary.go
package commentary

import (
	"context"
	"fmt"

	"github.com/33VM/RajaMantri/internal/models"
)

// Lines shown when the narrator cannot produce its own.
const (
	MissingKeyLine = "Great game! (API Key missing for AI commentary)"
	ErrorLine      = "The Royal Scribe is currently away (AI Error). But great game!"
	EmptyLine      = "What a match!"
)

// Request describes a resolved round.
type Request struct {
	Players    []models.Player
	Winner     models.Role
	MantriName string
	ChorName   string
}

// Commentator narrates a finished round. Implementations never fail: any
// problem resolves to one of the fallback lines.
type Commentator interface {
	Comment(ctx context.Context, req Request) string
}

// RequestFor builds a Request from a state in the RESULT phase. ok is false
// when the round has no winner or the Mantri or Chor seat is empty.
func RequestFor(state models.GameState) (req Request, ok bool) {
	if state.Phase != models.PhaseResult || state.Winner == nil {
		return Request{}, false
	}
	mantri, ok := state.PlayerByRole(models.RoleMantri)
	if !ok {
		return Request{}, false
	}
	chor, ok := state.PlayerByRole(models.RoleChor)
	if !ok {
		return Request{}, false
	}
	return Request{
		Players:    state.Clone().Players,
		Winner:     *state.Winner,
		MantriName: mantri.Name,
		ChorName:   chor.Name,
	}, true
}

// Prompt is the user turn sent to the model.
func Prompt(req Request) string {
	if req.Winner == models.RoleMantri {
		return fmt.Sprintf("The Mantri (%s) caught the Chor (%s) red-handed and the kingdom is safe! "+
			"Celebrate it with a short, witty line like a Bollywood movie announcer or a royal herald. Max 2 sentences.",
			req.MantriName, req.ChorName)
	}
	return fmt.Sprintf("The Mantri (%s) accused the wrong person and the Chor (%s) got away with the loot! "+
		"Roast the Mantri's detective skills in a funny, lighthearted way. Max 2 sentences.",
		req.MantriName, req.ChorName)
}

// Static always answers with the same line.
type Static string

func (s Static) Comment(context.Context, Request) string {
	if s == "" {
		return EmptyLine
	}
	return string(s)
}

// Func adapts a plain function to a Commentator.
type Func func(ctx context.Context, req Request) string

func (f Func) Comment(ctx context.Context, req Request) string {
	return f(ctx, req)
}
