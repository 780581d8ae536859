// internal/console/console.go
package console

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/33VM/RajaMantri/internal/game"
	"github.com/33VM/RajaMantri/internal/models"
)

// CommandKind is one thing a player can type.
type CommandKind string

const (
	CmdStart CommandKind = "start"
	CmdOpen  CommandKind = "open"
	CmdGuess CommandKind = "guess"
	CmdNext  CommandKind = "next"
	CmdQuit  CommandKind = "quit"
	CmdHelp  CommandKind = "help"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoSuchPlayer   = errors.New("no such player")
	ErrNotSelectable  = errors.New("that player cannot be accused")
)

// Command is a parsed input line.
type Command struct {
	Kind CommandKind
	Arg  string
}

var aliases = map[string]CommandKind{
	"start": CmdStart, "s": CmdStart,
	"open": CmdOpen, "o": CmdOpen, "court": CmdOpen,
	"guess": CmdGuess, "g": CmdGuess, "accuse": CmdGuess,
	"next": CmdNext, "n": CmdNext, "restart": CmdNext,
	"quit": CmdQuit, "q": CmdQuit, "exit": CmdQuit,
	"help": CmdHelp, "h": CmdHelp, "?": CmdHelp,
}

// ParseCommand reads one line. Blank lines parse to the zero Command.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, nil
	}
	kind, ok := aliases[strings.ToLower(fields[0])]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	arg := strings.Join(fields[1:], " ")
	if kind == CmdGuess && arg == "" {
		return Command{}, errors.New("guess needs a seat number or a name")
	}
	return Command{Kind: kind, Arg: arg}, nil
}

// Help is printed for CmdHelp.
const Help = `commands:
  start           deal the first round (needs four players)
  open            open the court so the Mantri can guess (host only)
  guess <n|name>  accuse a player by seat number or name (Mantri only)
  next            deal the next round once the scribe has spoken
  quit            leave the room`

// ResolveSuspect turns a seat number (1-based) or a case-insensitive name
// into a player id the viewer may accuse.
func ResolveSuspect(state models.GameState, viewerID, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	var target *models.Player
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(state.Players) {
			target = &state.Players[n-1]
		}
	} else {
		for i := range state.Players {
			if strings.EqualFold(state.Players[i].Name, arg) {
				target = &state.Players[i]
				break
			}
		}
	}
	if target == nil {
		return "", fmt.Errorf("%w: %q", ErrNoSuchPlayer, arg)
	}
	if !game.Selectable(state, viewerID, *target) {
		return "", fmt.Errorf("%w: %s", ErrNotSelectable, target.Name)
	}
	return target.ID, nil
}

var banners = map[models.Phase]string{
	models.PhaseLobby:  "Waiting for players",
	models.PhaseReveal: "The chits are open. The Raja reveals themself.",
	models.PhaseGuess:  "The court is open. The Mantri must find the Chor!",
	models.PhaseResult: "The verdict is in",
}

// Render writes the table as the viewer is allowed to see it.
func Render(w io.Writer, state models.GameState, viewerID string) {
	fmt.Fprintf(w, "\n== %s", banners[state.Phase])
	if state.Round > 0 {
		fmt.Fprintf(w, " (round %d)", state.Round)
	}
	fmt.Fprintln(w, " ==")

	for i, p := range state.Players {
		role := "??????"
		if r := game.VisibleRole(state, viewerID, p); r != nil {
			role = r.String()
		} else if p.Role == nil {
			role = "-"
		}
		var tags []string
		if p.ID == viewerID {
			tags = append(tags, "you")
		}
		if p.IsHost {
			tags = append(tags, "host")
		}
		if game.Selectable(state, viewerID, p) {
			tags = append(tags, "suspect")
		}
		tag := ""
		if len(tags) > 0 {
			tag = " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Fprintf(w, "  %d. %-12s %-7s %6d pts%s\n", i+1, p.Name, role, p.Score, tag)
	}

	switch state.Phase {
	case models.PhaseLobby:
		fmt.Fprintf(w, "  %d/%d seated\n", len(state.Players), models.MaxPlayers)
	case models.PhaseGuess:
		if state.MantriID == viewerID {
			fmt.Fprintln(w, "  You are the Mantri. Type: guess <n|name>")
		}
	case models.PhaseResult:
		if state.Winner != nil {
			fmt.Fprintf(w, "  %s wins the round (%s)\n", state.WinnerName, *state.Winner)
		}
		if state.Commentary != "" {
			fmt.Fprintf(w, "  Scribe: %s\n", state.Commentary)
		}
	}
}
