package query

import (
	"fmt"
	"slices"
)

// Validate checks a Select against the log schema and returns every
// problem found.
func Validate(q Select) []error {
	v := &validator{}
	t, ok := tables[q.From]
	if !ok {
		v.addError("unknown table %q", q.From)
		return v.errs
	}
	for _, c := range q.Columns {
		if !slices.Contains(t.columns, c) {
			v.addError("unknown column %s.%s", q.From, c)
		}
	}
	v.columns = t.columns
	v.table = q.From
	v.validatePredicate(q.Filter)
	return v.errs
}

type validator struct {
	table   string
	columns []string
	errs    []error
}

func (v *validator) addError(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) checkField(field string) {
	if !slices.Contains(v.columns, field) {
		v.addError("unknown column %s.%s", v.table, field)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
	case Equals:
		v.checkField(pred.Field)
		if _, err := toParam(pred.Value); err != nil {
			v.addError("%s: %v", pred.Field, err)
		}
	case In:
		v.checkField(pred.Field)
		for i, val := range pred.Values {
			if _, err := toParam(val); err != nil {
				v.addError("%s[%d]: %v", pred.Field, i, err)
			}
		}
	case Range:
		v.checkField(pred.Field)
		if pred.Min != nil && pred.Max != nil && *pred.Min > *pred.Max {
			v.addError("%s: empty range [%d, %d]", pred.Field, *pred.Min, *pred.Max)
		}
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addError("unsupported predicate type: %T", p)
	}
}
