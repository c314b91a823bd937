package level

import (
	"fmt"
	"slices"

	"github.com/roach88/tilematch/internal/board"
)

// Validation error codes (E100-E199)
const (
	ErrDimensions      = "E101" // width/height missing or out of range
	ErrKinds           = "E102" // kinds outside [1,26]
	ErrLayoutShape     = "E103" // layout rows differ in length or from width/height
	ErrLayoutKind      = "E104" // layout uses a kind the level does not have
	ErrLayoutChar      = "E105" // layout character is not a letter or '.'
	ErrPromotionSizes  = "E106" // promotion thresholds inconsistent
	ErrNegativeSetting = "E107" // negative delay or max_passes
)

// ValidationError represents a level validation error.
type ValidationError struct {
	Level   string `json:"level"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s.%s: %s", e.Code, e.Level, e.Field, e.Message)
}

// Validate checks the rules the CUE schema cannot express.
// Returns all errors found (does not fail-fast).
func Validate(l *Level) []ValidationError {
	var errs []ValidationError
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{
			Level:   l.Name,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	if l.Width < 1 || l.Height < 1 {
		add(ErrDimensions, "width", "width and height are required without a layout (got %dx%d)", l.Width, l.Height)
	}
	if l.Kinds < 1 || l.Kinds > board.MaxKinds {
		add(ErrKinds, "kinds", "must be in [1,%d], got %d", board.MaxKinds, l.Kinds)
	}

	if len(l.Layout) > 0 {
		if len(l.Layout) != l.Height {
			add(ErrLayoutShape, "layout", "has %d rows, height is %d", len(l.Layout), l.Height)
		}
		for i, row := range l.Layout {
			if len(row) != l.Width {
				add(ErrLayoutShape, "layout", "row %d has %d columns, width is %d", i, len(row), l.Width)
			}
			for j := 0; j < len(row); j++ {
				ch := row[j]
				switch {
				case ch == '.':
				case ch >= 'A' && ch <= 'Z':
					if int(ch-'A') >= l.Kinds {
						add(ErrLayoutKind, "layout", "row %d uses kind %c but the level has %d kinds", i, ch, l.Kinds)
					}
				default:
					add(ErrLayoutChar, "layout", "row %d has invalid character %q", i, ch)
				}
			}
		}
	}

	p := l.Promotion
	if p.MinSize < 1 {
		add(ErrPromotionSizes, "promotion.min_size", "must be at least 1")
	}
	for _, n := range slices.Concat(p.PromoteSizes, p.HookSizes) {
		if n < p.MinSize {
			add(ErrPromotionSizes, "promotion", "size %d is below min_size %d and can never fire", n, p.MinSize)
		}
	}

	if l.MaxPasses < 0 {
		add(ErrNegativeSetting, "max_passes", "must not be negative")
	}
	if l.Delays.AfterDestroy < 0 || l.Delays.AfterCollapse < 0 || l.Delays.AfterRefill < 0 {
		add(ErrNegativeSetting, "delays", "must not be negative")
	}
	return errs
}
