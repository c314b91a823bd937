package level

import (
	"testing"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tilematch/internal/engine"
	"github.com/roach88/tilematch/internal/promote"
)

func compileString(t *testing.T, src, name string) (*Level, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return Compile(v.LookupPath(cue.ParsePath("level." + name)))
}

func TestCompile_Defaults(t *testing.T) {
	lvl, err := compileString(t, `level: intro: { width: 8, height: 6, kinds: 5 }`, "intro")
	require.NoError(t, err)

	assert.Equal(t, "intro", lvl.Name)
	assert.Equal(t, 8, lvl.Width)
	assert.Equal(t, 6, lvl.Height)
	assert.Equal(t, 5, lvl.Kinds)
	assert.Equal(t, int64(0), lvl.Seed)
	assert.Equal(t, engine.DefaultMaxPasses, lvl.MaxPasses)
	assert.Equal(t, engine.DefaultDelays(), lvl.Delays)
	assert.Equal(t, promote.DefaultConfig(), lvl.Promotion)
	assert.Empty(t, Validate(lvl))
}

func TestCompile_Overrides(t *testing.T) {
	lvl, err := compileString(t, `
		level: tuned: {
			kinds: 3
			seed: 7
			max_passes: 10
			delays: { collapse: 50 }
			promotion: { promote_sizes: [4] }
			layout: ["ABC", "B.A"]
		}
	`, "tuned")
	require.NoError(t, err)

	assert.Equal(t, 3, lvl.Width, "width comes from the layout")
	assert.Equal(t, 2, lvl.Height)
	assert.Equal(t, int64(7), lvl.Seed)
	assert.Equal(t, 10, lvl.MaxPasses)
	assert.Equal(t, 50*time.Millisecond, lvl.Delays.AfterCollapse)
	assert.Equal(t, 200*time.Millisecond, lvl.Delays.AfterDestroy)
	assert.Equal(t, []int{4}, lvl.Promotion.PromoteSizes)
	assert.Equal(t, []int{4, 7}, lvl.Promotion.HookSizes)
	assert.Empty(t, Validate(lvl))
}

func TestCompile_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing kinds", `level: x: { width: 3, height: 3 }`},
		{"kinds too large", `level: x: { width: 3, height: 3, kinds: 27 }`},
		{"zero width", `level: x: { width: 0, height: 3, kinds: 3 }`},
		{"float seed", `level: x: { width: 3, height: 3, kinds: 3, seed: 1.5 }`},
		{"negative delay", `level: x: { width: 3, height: 3, kinds: 3, delays: { refill: -1 } }`},
		{"unknown field", `level: x: { width: 3, height: 3, kinds: 3, colours: 4 }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileString(t, tt.src, "x")
			require.Error(t, err)
			var ce *CompileError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() *Level {
		return &Level{
			Name: "v", Width: 3, Height: 2, Kinds: 3,
			Promotion: promote.DefaultConfig(), Delays: engine.DefaultDelays(),
			MaxPasses: engine.DefaultMaxPasses,
		}
	}
	tests := []struct {
		name   string
		mutate func(*Level)
		code   string
	}{
		{"no dimensions", func(l *Level) { l.Width = 0 }, ErrDimensions},
		{"too many kinds", func(l *Level) { l.Kinds = 27 }, ErrKinds},
		{"ragged layout", func(l *Level) { l.Layout = []string{"ABC", "AB"} }, ErrLayoutShape},
		{"layout kind", func(l *Level) { l.Layout = []string{"ABC", "ABD"} }, ErrLayoutKind},
		{"layout char", func(l *Level) { l.Layout = []string{"ABC", "AB?"} }, ErrLayoutChar},
		{"size below min", func(l *Level) { l.Promotion.HookSizes = []int{2} }, ErrPromotionSizes},
		{"negative passes", func(l *Level) { l.MaxPasses = -1 }, ErrNegativeSetting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base()
			tt.mutate(l)
			errs := Validate(l)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.code, errs[0].Code)
		})
	}
	assert.Empty(t, Validate(base()))
}

func TestObject_RoundTrip(t *testing.T) {
	lvl, err := compileString(t, `level: gap: { kinds: 3, seed: 9, layout: ["ABC", "B.A", "CAB"] }`, "gap")
	require.NoError(t, err)

	back, err := FromObject(lvl.Object())
	require.NoError(t, err)
	assert.Equal(t, lvl, back)

	h1, err := lvl.Hash()
	require.NoError(t, err)
	back.Seed = 10
	h2, err := back.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestGameConfig(t *testing.T) {
	lvl, err := compileString(t, `level: intro: { width: 4, height: 4, kinds: 4, seed: 3 }`, "intro")
	require.NoError(t, err)

	cfg := lvl.GameConfig("g1", nil)
	assert.Equal(t, "g1", cfg.ID)
	assert.Equal(t, "intro", cfg.Name)
	assert.Equal(t, int64(3), cfg.Seed)

	seed := int64(99)
	assert.Equal(t, int64(99), lvl.GameConfig("g1", &seed).Seed)
	assert.Len(t, lvl.Options(), 1)
}

func TestLoad_Directory(t *testing.T) {
	res, errs := Load("testdata/valid", LoadModeCollectAll)
	require.Empty(t, errs)
	assert.Equal(t, 2, res.FileCount)
	assert.Equal(t, []string{"gap", "intro", "tuned"}, res.Names())

	gap, ok := res.Find("gap")
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), gap.Delays.AfterCollapse)

	tuned, ok := res.Find("tuned")
	require.True(t, ok)
	assert.Equal(t, 50, tuned.MaxPasses)
	assert.Equal(t, 0, tuned.Promotion.LineLength)

	_, ok = res.Find("missing")
	assert.False(t, ok)
}

func TestLoad_CollectsErrors(t *testing.T) {
	res, errs := Load("testdata/invalid", LoadModeCollectAll)
	require.NotNil(t, res)
	assert.Len(t, errs, 2)
	assert.Empty(t, res.Levels)

	_, errs = Load("testdata/invalid", LoadModeFailFast)
	assert.Len(t, errs, 1)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, errs := Load("testdata/nope", LoadModeFailFast)
	require.Len(t, errs, 1)
	var le *LoadError
	require.ErrorAs(t, errs[0], &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}
