package gateway

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/alphaomegateam/taiga-bridge/internal/errors"
)

// AsInt coerces the numeric shapes that JSON decoding and tool arguments
// can produce into an int.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// RequireInt coerces v into an int, accepting numeric strings the way the
// upstream surface always has. Anything else is a ValidationError naming
// the offending field.
func RequireInt(v any, field string) (int, error) {
	if n, ok := AsInt(v); ok {
		return n, nil
	}
	if s, ok := v.(string); ok {
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
	}
	return 0, errors.NewValidation("%s must be an integer", field)
}

// OptionalInt is RequireInt for nullable fields: nil passes through.
func OptionalInt(v any, field string) (*int, error) {
	if v == nil {
		return nil, nil
	}
	n, err := RequireInt(v, field)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// RequireList validates that v is a list (or nil) and returns it verbatim.
func RequireList(v any, field string) (any, error) {
	switch v.(type) {
	case nil, []any, []string:
		return v, nil
	default:
		return nil, errors.NewValidation("%s must be a list", field)
	}
}

// ValidateDueDate checks that v is an ISO calendar date (YYYY-MM-DD) and
// returns it normalized. nil passes through so callers can clear the field.
func ValidateDueDate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, errors.NewValidation("due_date must be in YYYY-MM-DD format")
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, errors.NewValidation("due_date must be in YYYY-MM-DD format")
	}
	return parsed.Format("2006-01-02"), nil
}
