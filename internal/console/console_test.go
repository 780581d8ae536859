package console

import (
	"bytes"
	"testing"

	"github.com/33VM/RajaMantri/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guessState() models.GameState {
	s := models.NewGameState()
	roles := []models.Role{models.RoleRaja, models.RoleMantri, models.RoleChor, models.RoleSipahi}
	names := []string{"Raj", "Meera", "Chintu", "Sanjay"}
	for i, r := range roles {
		p := models.NewPlayer("id-"+names[i], names[i], i == 0)
		p.Role = r.Ptr()
		p.Score = 100 * i
		s.Players = append(s.Players, p)
	}
	s.Phase = models.PhaseGuess
	s.MantriID = "id-Meera"
	s.Round = 2
	return s
}

func TestParseCommand(t *testing.T) {
	cases := map[string]Command{
		"start":          {Kind: CmdStart},
		"  O ":           {Kind: CmdOpen},
		"guess 3":        {Kind: CmdGuess, Arg: "3"},
		"accuse Mr Bean": {Kind: CmdGuess, Arg: "Mr Bean"},
		"restart":        {Kind: CmdNext},
		"q":              {Kind: CmdQuit},
		"?":              {Kind: CmdHelp},
		"":               {},
	}
	for line, want := range cases {
		got, err := ParseCommand(line)
		require.NoError(t, err, line)
		assert.Equal(t, want, got, line)
	}

	_, err := ParseCommand("dance")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	_, err = ParseCommand("guess")
	assert.Error(t, err)
}

func TestResolveSuspect(t *testing.T) {
	s := guessState()

	id, err := ResolveSuspect(s, "id-Meera", "3")
	require.NoError(t, err)
	assert.Equal(t, "id-Chintu", id)

	id, err = ResolveSuspect(s, "id-Meera", "sanjay")
	require.NoError(t, err)
	assert.Equal(t, "id-Sanjay", id)

	_, err = ResolveSuspect(s, "id-Meera", "1")
	assert.ErrorIs(t, err, ErrNotSelectable, "raja")
	_, err = ResolveSuspect(s, "id-Meera", "Meera")
	assert.ErrorIs(t, err, ErrNotSelectable, "self")
	_, err = ResolveSuspect(s, "id-Raj", "Chintu")
	assert.ErrorIs(t, err, ErrNotSelectable, "not the mantri")
	_, err = ResolveSuspect(s, "id-Meera", "9")
	assert.ErrorIs(t, err, ErrNoSuchPlayer)
	_, err = ResolveSuspect(s, "id-Meera", "Nobody")
	assert.ErrorIs(t, err, ErrNoSuchPlayer)
}

func TestRenderHidesCards(t *testing.T) {
	s := guessState()
	var buf bytes.Buffer
	Render(&buf, s, "id-Chintu")
	out := buf.String()

	assert.Contains(t, out, "court is open")
	assert.Contains(t, out, "(round 2)")
	assert.Contains(t, out, "RAJA")
	assert.Contains(t, out, "MANTRI")
	assert.Contains(t, out, "CHOR", "own card")
	assert.NotContains(t, out, "SIPAHI")
	assert.Contains(t, out, "[you]")
	assert.NotContains(t, out, "You are the Mantri")

	buf.Reset()
	Render(&buf, s, "id-Meera")
	out = buf.String()
	assert.NotContains(t, out, "CHOR")
	assert.Contains(t, out, "You are the Mantri")
	assert.Contains(t, out, "suspect")
}

func TestRenderResult(t *testing.T) {
	s := guessState()
	s.Phase = models.PhaseResult
	s.Winner = models.RoleChor.Ptr()
	s.WinnerName = "Chintu"
	s.Commentary = "The thief strolls away!"

	var buf bytes.Buffer
	Render(&buf, s, "id-Raj")
	out := buf.String()
	assert.Contains(t, out, "SIPAHI")
	assert.Contains(t, out, "CHOR")
	assert.Contains(t, out, "Chintu wins the round (CHOR)")
	assert.Contains(t, out, "Scribe: The thief strolls away!")
}

func TestRenderLobby(t *testing.T) {
	s := models.NewGameState()
	s.Players = append(s.Players, models.NewPlayer("h", "Host", true))
	var buf bytes.Buffer
	Render(&buf, s, "h")
	assert.Contains(t, buf.String(), "1/4 seated")
	assert.Contains(t, buf.String(), "[you, host]")
}
