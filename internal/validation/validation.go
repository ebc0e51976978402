// Package validation provides field-level constraint checks applied to
// wizard input values at forward-navigation time.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Common validation errors.
var (
	ErrRequired     = errors.New("value is required")
	ErrPattern      = errors.New("value does not match pattern")
	ErrTooShort     = errors.New("value too short")
	ErrTooLong      = errors.New("value too long")
	ErrBelowMinimum = errors.New("value below minimum")
	ErrAboveMaximum = errors.New("value above maximum")
	ErrNotOneOf     = errors.New("value not among allowed options")
	ErrNotNumeric   = errors.New("value is not numeric")
)

// Required fails on missing values, empty strings, and strings of only
// whitespace.
func Required(value any) error {
	if value == nil {
		return ErrRequired
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return ErrRequired
	}
	return nil
}

// Pattern checks a string value against a compiled regular expression.
// Non-string values fail.
func Pattern(value any, re *regexp.Regexp) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: expected text", ErrPattern)
	}
	if !re.MatchString(s) {
		return fmt.Errorf("%w %s", ErrPattern, re.String())
	}
	return nil
}

// Length checks string length bounds in runes. A zero max means unbounded.
func Length(value any, minLen, maxLen int) error {
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprintf("%v", value)
	}
	n := len([]rune(s))
	if n < minLen {
		return fmt.Errorf("%w: need at least %d characters", ErrTooShort, minLen)
	}
	if maxLen > 0 && n > maxLen {
		return fmt.Errorf("%w: at most %d characters allowed", ErrTooLong, maxLen)
	}
	return nil
}

// Range checks a numeric value against inclusive bounds. Nil bounds are
// unbounded. String values are parsed; unparseable input fails.
func Range(value any, minVal, maxVal *float64) error {
	n, err := toFloat(value)
	if err != nil {
		return err
	}
	if minVal != nil && n < *minVal {
		return fmt.Errorf("%w %v", ErrBelowMinimum, *minVal)
	}
	if maxVal != nil && n > *maxVal {
		return fmt.Errorf("%w %v", ErrAboveMaximum, *maxVal)
	}
	return nil
}

// OneOf checks that the value's string form is among the allowed options.
func OneOf(value any, options []string) error {
	s := fmt.Sprintf("%v", value)
	for _, opt := range options {
		if s == opt {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (allowed: %s)", ErrNotOneOf, s, strings.Join(options, ", "))
}

// toFloat coerces the numeric types a data bag realistically carries.
func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotNumeric, value)
	}
}
