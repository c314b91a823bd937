package level

import (
	"fmt"
	"time"

	"github.com/roach88/tilematch/internal/engine"
	"github.com/roach88/tilematch/internal/ir"
	"github.com/roach88/tilematch/internal/promote"
)

// Level is a compiled level definition. Zero-valued optional fields have
// already been replaced with engine defaults by Compile.
type Level struct {
	Name      string
	Width     int
	Height    int
	Kinds     int
	Seed      int64
	MaxPasses int
	Delays    engine.Delays
	Promotion promote.Config

	// Layout, when set, replaces random fill.
	Layout []string
}

// GameConfig returns the engine configuration for a new game with the given
// ID. seed overrides the level seed when non-nil.
func (l *Level) GameConfig(id string, seed *int64) engine.GameConfig {
	cfg := engine.GameConfig{
		ID:        id,
		Name:      l.Name,
		Width:     l.Width,
		Height:    l.Height,
		Kinds:     l.Kinds,
		Seed:      l.Seed,
		Layout:    l.Layout,
		Promotion: l.Promotion,
		MaxPasses: l.MaxPasses,
	}
	if seed != nil {
		cfg.Seed = *seed
	}
	return cfg
}

// Options returns the resolver options the level implies.
func (l *Level) Options() []engine.Option {
	return []engine.Option{engine.WithDelays(l.Delays)}
}

// Object encodes the level as a canonical payload value. FromObject reverses
// it; games store it so they can be rebuilt without the source files.
func (l *Level) Object() ir.Object {
	obj := ir.Object{
		"name":       ir.String(l.Name),
		"width":      ir.Int(l.Width),
		"height":     ir.Int(l.Height),
		"kinds":      ir.Int(l.Kinds),
		"seed":       ir.Int(l.Seed),
		"max_passes": ir.Int(l.MaxPasses),
		"delays": ir.Object{
			"destroy":  ir.Int(l.Delays.AfterDestroy.Milliseconds()),
			"collapse": ir.Int(l.Delays.AfterCollapse.Milliseconds()),
			"refill":   ir.Int(l.Delays.AfterRefill.Milliseconds()),
		},
		"promotion": ir.Object{
			"min_size":      ir.Int(l.Promotion.MinSize),
			"line_length":   ir.Int(l.Promotion.LineLength),
			"promote_sizes": intArray(l.Promotion.PromoteSizes),
			"hook_sizes":    intArray(l.Promotion.HookSizes),
		},
	}
	if len(l.Layout) > 0 {
		obj["layout"] = ir.Strings(l.Layout)
	}
	return obj
}

// Hash returns the content hash of the level.
func (l *Level) Hash() (string, error) {
	return ir.LevelHash(l.Object())
}

// FromObject decodes a level stored with Object.
func FromObject(obj ir.Object) (*Level, error) {
	l := &Level{}
	var ok bool
	if l.Name, ok = obj.GetString("name"); !ok {
		return nil, fmt.Errorf("level object: missing name")
	}
	fields := []struct {
		key string
		dst *int
	}{
		{"width", &l.Width},
		{"height", &l.Height},
		{"kinds", &l.Kinds},
		{"max_passes", &l.MaxPasses},
	}
	for _, f := range fields {
		if *f.dst, ok = obj.GetInt(f.key); !ok {
			return nil, fmt.Errorf("level object: missing %s", f.key)
		}
	}
	seed, ok := obj["seed"].(ir.Int)
	if !ok {
		return nil, fmt.Errorf("level object: missing seed")
	}
	l.Seed = int64(seed)

	delays, ok := obj["delays"].(ir.Object)
	if !ok {
		return nil, fmt.Errorf("level object: missing delays")
	}
	ms := func(key string) time.Duration {
		v, _ := delays.GetInt(key)
		return time.Duration(v) * time.Millisecond
	}
	l.Delays = engine.Delays{
		AfterDestroy:  ms("destroy"),
		AfterCollapse: ms("collapse"),
		AfterRefill:   ms("refill"),
	}

	promo, ok := obj["promotion"].(ir.Object)
	if !ok {
		return nil, fmt.Errorf("level object: missing promotion")
	}
	l.Promotion.MinSize, _ = promo.GetInt("min_size")
	l.Promotion.LineLength, _ = promo.GetInt("line_length")
	var err error
	if l.Promotion.PromoteSizes, err = ints(promo["promote_sizes"]); err != nil {
		return nil, fmt.Errorf("level object: promote_sizes: %w", err)
	}
	if l.Promotion.HookSizes, err = ints(promo["hook_sizes"]); err != nil {
		return nil, fmt.Errorf("level object: hook_sizes: %w", err)
	}

	if raw, present := obj["layout"]; present {
		arr, ok := raw.(ir.Array)
		if !ok {
			return nil, fmt.Errorf("level object: layout is %T", raw)
		}
		for i, v := range arr {
			s, ok := v.(ir.String)
			if !ok {
				return nil, fmt.Errorf("level object: layout[%d] is %T", i, v)
			}
			l.Layout = append(l.Layout, string(s))
		}
	}
	return l, nil
}

func intArray(xs []int) ir.Array {
	arr := make(ir.Array, len(xs))
	for i, x := range xs {
		arr[i] = ir.Int(x)
	}
	return arr
}

func ints(v ir.Value) ([]int, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := v.(ir.Array)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]int, len(arr))
	for i, e := range arr {
		n, ok := e.(ir.Int)
		if !ok {
			return nil, fmt.Errorf("[%d] is %T", i, e)
		}
		out[i] = int(n)
	}
	return out, nil
}
