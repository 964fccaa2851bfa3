package stores

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/estateops/propguard"
	"github.com/oarkflow/date"
)

func parseFlexibleTime(s string) (time.Time, error) {
	return date.Parse(s)
}

// scanTime normalizes the driver's representation of a timestamp column.
func scanTime(raw interface{}) time.Time {
	switch v := raw.(type) {
	case time.Time:
		return v
	case string:
		if t, err := parseFlexibleTime(v); err == nil {
			return t
		}
	case []byte:
		if t, err := parseFlexibleTime(string(v)); err == nil {
			return t
		}
	}
	return time.Time{}
}

func scanTimePtr(raw interface{}) *time.Time {
	if raw == nil {
		return nil
	}
	t := scanTime(raw)
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// FilterSQL lowers a ScopeFilter into a SQL predicate over named parameters,
// appending bindings to args. Unrestricted lowers to the empty string; an
// empty id set lowers to a contradiction rather than an IN () clause.
func FilterSQL(f propguard.ScopeFilter, args map[string]any) string {
	n := len(args)
	return filterSQL(f, args, &n)
}

func filterSQL(f propguard.ScopeFilter, args map[string]any, n *int) string {
	switch f.Kind {
	case propguard.FilterUnrestricted:
		return ""
	case propguard.FilterFieldEquals:
		name := fmt.Sprintf("sf%d", *n)
		*n++
		args[name] = f.Value
		return f.Field + " = :" + name
	case propguard.FilterFieldIn:
		if len(f.IDs) == 0 {
			return "1 = 0"
		}
		names := make([]string, 0, len(f.IDs))
		for _, id := range f.IDs {
			name := fmt.Sprintf("sf%d", *n)
			*n++
			args[name] = id
			names = append(names, ":"+name)
		}
		return f.Field + " IN (" + strings.Join(names, ", ") + ")"
	case propguard.FilterAnyOf:
		parts := make([]string, 0, len(f.Parts))
		for _, p := range f.Parts {
			clause := filterSQL(p, args, n)
			if clause == "" {
				// An unrestricted branch makes the whole OR unrestricted.
				return ""
			}
			parts = append(parts, clause)
		}
		if len(parts) == 0 {
			return "1 = 0"
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	}
	return "1 = 0"
}

// whereClause combines the scope predicate with caller-supplied equality
// filters. Caller filter keys must be plain column identifiers; anything
// else is rejected to keep injection out of the extra map.
func whereClause(f propguard.ScopeFilter, extra map[string]any, args map[string]any) (string, error) {
	clauses := make([]string, 0, 1+len(extra))
	if c := FilterSQL(f, args); c != "" {
		clauses = append(clauses, c)
	}
	n := len(args)
	for field, val := range extra {
		if !identRe.MatchString(field) {
			return "", fmt.Errorf("invalid filter field: %q", field)
		}
		name := fmt.Sprintf("xf%d", n)
		n++
		args[name] = val
		clauses = append(clauses, field+" = :"+name)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), nil
}

// matchesExtra applies caller equality filters in the in-memory stores.
func matchesExtra(extra map[string]any, get func(field string) any) bool {
	for field, val := range extra {
		if get(field) != val {
			return false
		}
	}
	return true
}

func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "constraint failed")
}
