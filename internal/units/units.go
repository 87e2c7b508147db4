// Package units performs unit-system conversion for dimensioned report
// columns. The unit vocabulary is a closed, table-driven set of
// canonical tokens; anything outside it is an UnsupportedUnitError so a
// bad catalog fails at load instead of producing a silently wrong
// artifact.
package units

import (
	"fmt"
	"strings"
)

// System is the unit system for an entire report run.
type System int

const (
	SI System = iota
	Imperial
)

// String returns the canonical system name.
func (s System) String() string {
	if s == Imperial {
		return "imperial"
	}
	return "SI"
}

// ParseSystem parses a user-supplied system name.
func ParseSystem(s string) (System, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "si", "metric":
		return SI, nil
	case "imperial", "us":
		return Imperial, nil
	default:
		return SI, fmt.Errorf("invalid unit system %q (valid: SI, imperial)", s)
	}
}

// UnsupportedUnitError reports a unit token missing from the
// conversion tables.
type UnsupportedUnitError struct {
	Unit string
}

func (e *UnsupportedUnitError) Error() string {
	return fmt.Sprintf("unsupported unit %q", e.Unit)
}

// pair links an SI token to its imperial counterpart. Factor converts
// an SI magnitude to imperial; the reverse conversion divides.
type pair struct {
	si       string
	imperial string
	factor   float64
}

// Conversion tables. Factors are exact where the definitions are exact
// (international foot, acre, statute mile).
var pairs = []pair{
	{"meter", "foot", 1.0 / 0.3048},
	{"kilometer", "mile", 1.0 / 1.609344},
	{"meter ** 2", "foot ** 2", 1.0 / 0.09290304},
	{"kilometer ** 2", "acre", 1e6 / 4046.8564224},
	{"meter ** 3", "foot ** 3", 1.0 / 0.028316846592},
	{"kilogram", "pound", 1.0 / 0.45359237},
}

// invariant tokens carry no dimension and are identical in both
// systems. Percentages and ratios must never be "converted".
var invariant = map[string]bool{
	"":              true,
	"percent":       true,
	"ratio":         true,
	"count":         true,
	"dimensionless": true,
	"second":        true,
	"year":          true,
}

var bySI = make(map[string]pair)
var byImperial = make(map[string]pair)

func init() {
	// Each token appears in exactly one pair, so every unit round-trips
	// to itself across systems.
	for _, p := range pairs {
		bySI[p.si] = p
		byImperial[p.imperial] = p
	}
}

// Normalize canonicalizes a raw catalog unit token.
func Normalize(token string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(token)), " ")
}

// Known reports whether a token is in the conversion vocabulary,
// including the unit-system-invariant tokens.
func Known(token string) bool {
	token = Normalize(token)
	if invariant[token] {
		return true
	}
	_, si := bySI[token]
	_, imp := byImperial[token]
	return si || imp
}

// Invariant reports whether a token is unit-system-invariant.
func Invariant(token string) bool {
	return invariant[Normalize(token)]
}

// ForSystem returns the token's counterpart in the target system.
// Invariant tokens map to themselves.
func ForSystem(token string, to System) (string, error) {
	token = Normalize(token)
	if invariant[token] {
		return token, nil
	}
	if p, ok := bySI[token]; ok {
		if to == Imperial {
			return p.imperial, nil
		}
		return p.si, nil
	}
	if p, ok := byImperial[token]; ok {
		if to == SI {
			return p.si, nil
		}
		return p.imperial, nil
	}
	return "", &UnsupportedUnitError{Unit: token}
}

// Convert converts a single magnitude from its current unit into the
// target system, returning the converted magnitude and its new unit
// token. Converting a value already in the target system is a no-op.
func Convert(v float64, from string, to System) (float64, string, error) {
	from = Normalize(from)
	if invariant[from] {
		return v, from, nil
	}
	if p, ok := bySI[from]; ok {
		if to == Imperial {
			return v * p.factor, p.imperial, nil
		}
		return v, p.si, nil
	}
	if p, ok := byImperial[from]; ok {
		if to == SI {
			return v / p.factor, p.si, nil
		}
		return v, p.imperial, nil
	}
	return 0, "", &UnsupportedUnitError{Unit: from}
}
