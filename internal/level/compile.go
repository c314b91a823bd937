package level

import (
	_ "embed"
	"fmt"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/tilematch/internal/engine"
	"github.com/roach88/tilematch/internal/promote"
)

//go:embed schema.cue
var schemaCUE string

// knownFields lists every field #Level declares. Anything else is a typo.
var knownFields = map[string]bool{
	"width": true, "height": true, "kinds": true, "seed": true,
	"max_passes": true, "delays": true, "promotion": true, "layout": true,
}

// source mirrors #Level for Decode. Pointers distinguish absent from zero.
type source struct {
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Kinds     int              `json:"kinds"`
	Seed      int64            `json:"seed"`
	MaxPasses int              `json:"max_passes"`
	Delays    *delaysSource    `json:"delays"`
	Promotion *promotionSource `json:"promotion"`
	Layout    []string         `json:"layout"`
}

type delaysSource struct {
	Destroy  *int `json:"destroy"`
	Collapse *int `json:"collapse"`
	Refill   *int `json:"refill"`
}

type promotionSource struct {
	MinSize      *int  `json:"min_size"`
	LineLength   *int  `json:"line_length"`
	PromoteSizes []int `json:"promote_sizes"`
	HookSizes    []int `json:"hook_sizes"`
}

// Compile parses a CUE value into a Level.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The value should be the level struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`level: intro: { kinds: 5, width: 8, height: 8 }`)
//	lvl, err := Compile(v.LookupPath(cue.ParsePath("level.intro")))
//
// The level name is taken from the last path selector.
func Compile(v cue.Value) (*Level, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		if !knownFields[iter.Label()] {
			return nil, &CompileError{
				Field:   iter.Label(),
				Message: "unknown field",
				Pos:     iter.Value().Pos(),
			}
		}
	}

	schema := v.Context().CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("level schema: %w", err)
	}
	u := schema.LookupPath(cue.ParsePath("#Level")).Unify(v)
	if err := u.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var src source
	if err := u.Decode(&src); err != nil {
		return nil, formatCUEError(err)
	}

	lvl := &Level{
		Width:     src.Width,
		Height:    src.Height,
		Kinds:     src.Kinds,
		Seed:      src.Seed,
		MaxPasses: src.MaxPasses,
		Delays:    engine.DefaultDelays(),
		Promotion: promote.DefaultConfig(),
		Layout:    src.Layout,
	}
	if sel := v.Path().Selectors(); len(sel) > 0 {
		lvl.Name = sel[len(sel)-1].String()
	}
	if lvl.MaxPasses == 0 {
		lvl.MaxPasses = engine.DefaultMaxPasses
	}
	if len(lvl.Layout) > 0 {
		if lvl.Height == 0 {
			lvl.Height = len(lvl.Layout)
		}
		if lvl.Width == 0 {
			lvl.Width = len(lvl.Layout[0])
		}
	}

	if d := src.Delays; d != nil {
		setMillis(&lvl.Delays.AfterDestroy, d.Destroy)
		setMillis(&lvl.Delays.AfterCollapse, d.Collapse)
		setMillis(&lvl.Delays.AfterRefill, d.Refill)
	}
	if p := src.Promotion; p != nil {
		if p.MinSize != nil {
			lvl.Promotion.MinSize = *p.MinSize
		}
		if p.LineLength != nil {
			lvl.Promotion.LineLength = *p.LineLength
		}
		if p.PromoteSizes != nil {
			lvl.Promotion.PromoteSizes = p.PromoteSizes
		}
		if p.HookSizes != nil {
			lvl.Promotion.HookSizes = p.HookSizes
		}
	}
	return lvl, nil
}

func setMillis(dst *time.Duration, ms *int) {
	if ms != nil {
		*dst = time.Duration(*ms) * time.Millisecond
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Field: "cue", Message: err.Error()}
	}

	// Report the first error, with its position when CUE has one.
	firstErr := errs[0]
	ce := &CompileError{Field: "cue", Message: firstErr.Error()}
	if positions := errors.Positions(firstErr); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
