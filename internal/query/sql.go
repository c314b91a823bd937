package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/tilematch/internal/ir"
)

// Compile converts q to SQL with positional parameters.
//
// The query is validated first; every query ends in ORDER BY on the
// table's logical clock.
func Compile(q Select) (string, []any, error) {
	if errs := Validate(q); len(errs) > 0 {
		return "", nil, fmt.Errorf("invalid query: %w", errors.Join(errs...))
	}
	t := tables[q.From]

	columns := q.Columns
	if len(columns) == 0 {
		columns = t.columns
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(columns, ", "), q.From)

	var params []any
	if q.Filter != nil {
		where, p := compilePredicate(q.Filter)
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
		params = p
	}

	order := make([]string, len(t.order))
	for i, c := range t.order {
		order[i] = c + " ASC"
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(strings.Join(order, ", "))
	return sb.String(), params, nil
}

// compilePredicate renders a validated predicate. Values are never
// interpolated.
func compilePredicate(p Predicate) (string, []any) {
	switch pred := p.(type) {
	case Equals:
		v, _ := toParam(pred.Value)
		return pred.Field + " = ?", []any{v}

	case In:
		if len(pred.Values) == 0 {
			return "1 = 0", nil
		}
		params := make([]any, len(pred.Values))
		for i, val := range pred.Values {
			params[i], _ = toParam(val)
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")
		return fmt.Sprintf("%s IN (%s)", pred.Field, marks), params

	case Range:
		var parts []string
		var params []any
		if pred.Min != nil {
			parts = append(parts, pred.Field+" >= ?")
			params = append(params, *pred.Min)
		}
		if pred.Max != nil {
			parts = append(parts, pred.Field+" <= ?")
			params = append(params, *pred.Max)
		}
		if len(parts) == 0 {
			return "1 = 1", nil
		}
		return strings.Join(parts, " AND "), params

	case And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil
		}
		var parts []string
		var params []any
		for _, sub := range pred.Predicates {
			s, p := compilePredicate(sub)
			if _, nested := sub.(And); nested {
				s = "(" + s + ")"
			}
			parts = append(parts, s)
			params = append(params, p...)
		}
		return strings.Join(parts, " AND "), params
	}
	return "1 = 1", nil
}

// toParam converts a scalar value to a driver parameter.
func toParam(v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.String:
		return string(val), nil
	case ir.Int:
		return int64(val), nil
	case ir.Bool:
		return bool(val), nil
	case nil:
		return nil, fmt.Errorf("null cannot be compared")
	default:
		return nil, fmt.Errorf("%T cannot be used as a parameter", v)
	}
}
