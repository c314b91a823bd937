package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "One swap on a fixed board"
level:
  kinds: 3
  layout: ["ABC", "BCA", "CAB"]
moves:
  - swap: [[0, 0], [1, 0]]
    expect:
      outcome: reverted
assertions:
  - type: board_settled
`

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", scenario.Name)
	assert.Equal(t, 3, scenario.Level["kinds"])
	require.Len(t, scenario.Moves, 1)
	assert.Equal(t, [][]int{{0, 0}, {1, 0}}, scenario.Moves[0].Swap)
	require.NotNil(t, scenario.Moves[0].Expect)
	assert.Equal(t, "reverted", scenario.Moves[0].Expect.Outcome)
	assert.Nil(t, scenario.Moves[0].Expect.Passes)
	assert.Equal(t, AssertBoardSettled, scenario.Assertions[0].Type)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing name",
			yaml: `
description: x
level: {kinds: 3}
moves: [{swap: [[0,0],[1,0]]}]
assertions: [{type: board_settled}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing level",
			yaml: `
name: x
description: x
moves: [{swap: [[0,0],[1,0]]}]
assertions: [{type: board_settled}]
`,
			wantErr: "level is required",
		},
		{
			name: "no moves without settle",
			yaml: `
name: x
description: x
level: {kinds: 3}
assertions: [{type: board_settled}]
`,
			wantErr: "moves list is required",
		},
		{
			name: "malformed swap",
			yaml: `
name: x
description: x
level: {kinds: 3}
moves: [{swap: [[0,0,1],[1,0]]}]
assertions: [{type: board_settled}]
`,
			wantErr: "moves[0]: swap must be",
		},
		{
			name: "bad outcome",
			yaml: `
name: x
description: x
level: {kinds: 3}
moves: [{swap: [[0,0],[1,0]], expect: {outcome: exploded}}]
assertions: [{type: board_settled}]
`,
			wantErr: "outcome must be one of",
		},
		{
			name: "no assertions",
			yaml: `
name: x
description: x
level: {kinds: 3}
moves: [{swap: [[0,0],[1,0]]}]
`,
			wantErr: "assertions list is required",
		},
		{
			name: "trace_count without event",
			yaml: `
name: x
description: x
level: {kinds: 3}
moves: [{swap: [[0,0],[1,0]]}]
assertions: [{type: trace_count, count: 1}]
`,
			wantErr: "event is required for trace_count",
		},
		{
			name: "final_board without rows",
			yaml: `
name: x
description: x
level: {kinds: 3}
moves: [{swap: [[0,0],[1,0]]}]
assertions: [{type: final_board}]
`,
			wantErr: "rows are required",
		},
		{
			name: "unknown assertion",
			yaml: `
name: x
description: x
level: {kinds: 3}
moves: [{swap: [[0,0],[1,0]]}]
assertions: [{type: board_is_pretty}]
`,
			wantErr: `unknown type "board_is_pretty"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_SettleWithoutMoves(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: settle_only
description: x
level: {kinds: 3}
settle: true
assertions: [{type: board_settled}]
`))
	require.NoError(t, err)
	assert.True(t, s.Settle)
	assert.Empty(t, s.Moves)
}

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	for _, name := range []string{"b.yaml", "a.yml", "nested/c.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	files, err := FindScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.yaml"),
	}, files)
}
