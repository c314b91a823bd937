package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "tilematch", cmd.Use)
	assert.Contains(t, cmd.Long, "replayable move log")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"new", "swap", "show", "trace", "replay", "validate", "test", "serve"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flag    string
		def     string
	}{
		{"new", "db", ""},
		{"new", "level", ""},
		{"new", "name", ""},
		{"new", "seed", "0"},
		{"swap", "db", ""},
		{"swap", "game", ""},
		{"show", "game", ""},
		{"trace", "move", "-1"},
		{"trace", "type", "[]"},
		{"trace", "pass", "-1"},
		{"replay", "game", ""},
		{"test", "update", "false"},
		{"test", "filter", ""},
		{"test", "golden", ""},
		{"serve", "addr", ":8080"},
		{"serve", "db", ""},
	}
	root := NewRootCommand()
	for _, tt := range tests {
		t.Run(tt.command+"/"+tt.flag, func(t *testing.T) {
			sub, _, err := root.Find([]string{tt.command})
			require.NoError(t, err)
			f := sub.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "show", "--db", tempDB(t), "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRequiredFlags(t *testing.T) {
	_, err := execute(t, "new", "--level", writeLevels(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}
