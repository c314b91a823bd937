package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testLevels has a fixed-layout level with a known match at the bottom
// right, and a random one.
const testLevels = `package levels

level: small: {
	kinds: 4
	seed:  7
	delays: {
		destroy:  0
		collapse: 0
		refill:   0
	}
	layout: [
		"CDCD",
		"DCDC",
		"AABA",
	]
}

level: open: {
	width:  6
	height: 6
	kinds:  5
	seed:   42
}
`

var smallLayout = []string{"CDCD", "DCDC", "AABA"}

// writeLevels writes testLevels to a temp directory.
func writeLevels(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "levels.cue"), []byte(testLevels), 0o644))
	return dir
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "games.db")
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// response is CLIResponse with a typed payload.
type response[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
	GameID string    `json:"game_id"`
}

func decode[T any](t *testing.T, out string) response[T] {
	t.Helper()
	var resp response[T]
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

// newGame creates a game from the small level and returns its ID.
func newGame(t *testing.T, db, levels string) string {
	t.Helper()
	out, err := execute(t, "new", "--db", db, "--level", levels, "--name", "small", "--format", "json")
	require.NoError(t, err)
	resp := decode[NewGameResult](t, out)
	require.Equal(t, "ok", resp.Status)
	require.NotEmpty(t, resp.GameID)
	return resp.GameID
}
