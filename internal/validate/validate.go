// Package validate checks requested instrument setting values against their
// accepted domains. All checks are pure: they read the limits they are given
// and never touch the transport.
package validate

import (
	"fmt"
	"math"
	"strings"
)

// InSet checks value against the accepted symbol set for a setting. Matching
// is case-insensitive; the canonical (instrument) spelling is returned.
func InSet(setting, value string, allowed []string) (string, error) {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return a, nil
		}
	}

	return "", &Error{
		Setting: setting,
		Value:   value,
		Detail:  fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")),
	}
}

// InRange checks min <= v <= max. NaN and infinities are rejected so they
// can never be formatted into a command. The error names the violated bound.
func InRange(setting string, v, min, max float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &Error{
			Setting: setting,
			Value:   fmt.Sprintf("%v", v),
			Detail:  "must be a finite number",
		}
	}
	if v < min {
		return &Error{
			Setting: setting,
			Value:   fmt.Sprintf("%v", v),
			Detail:  fmt.Sprintf("below minimum %v", min),
		}
	}
	if v > max {
		return &Error{
			Setting: setting,
			Value:   fmt.Sprintf("%v", v),
			Detail:  fmt.Sprintf("above maximum %v", max),
		}
	}
	return nil
}

// IntInRange is InRange for integer-coded settings.
func IntInRange(setting string, v, min, max int) error {
	if v < min {
		return &Error{
			Setting: setting,
			Value:   fmt.Sprintf("%d", v),
			Detail:  fmt.Sprintf("below minimum %d", min),
		}
	}
	if v > max {
		return &Error{
			Setting: setting,
			Value:   fmt.Sprintf("%d", v),
			Detail:  fmt.Sprintf("above maximum %d", max),
		}
	}
	return nil
}

// OneOfInts checks membership in a fixed discrete set, such as the dB
// reference impedances a meter accepts.
func OneOfInts(setting string, v int, allowed []int) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}

	parts := make([]string, len(allowed))
	for i, a := range allowed {
		parts[i] = fmt.Sprintf("%d", a)
	}
	return &Error{
		Setting: setting,
		Value:   fmt.Sprintf("%d", v),
		Detail:  fmt.Sprintf("must be one of %s", strings.Join(parts, ", ")),
	}
}

// OrderedPair checks that low < high for a pair of inter-dependent settings.
// Violating combinations are rejected, never silently reordered.
func OrderedPair(lowName string, low float64, highName string, high float64) error {
	if low < high {
		return nil
	}

	return &Error{
		Setting: highName,
		Value:   fmt.Sprintf("%v", high),
		Detail:  fmt.Sprintf("must exceed %s %v", lowName, low),
	}
}
