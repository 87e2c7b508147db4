// Package hydro models hierarchic unit codes (HUCs) and their nesting.
// A HUC is a zero-padded digit string whose length encodes its level:
// 2 digits is coarsest, 12 is finest, and every code's parent is its
// own prefix two digits shorter. Ancestry is computed by prefix
// slicing; no parent/child object graph is ever built.
package hydro

import (
	"fmt"
	"strings"
)

// Levels are the canonical HUC nesting levels, coarsest first.
var Levels = []int{2, 4, 6, 8, 10, 12}

// MalformedWatershedCodeError reports a code that is not a valid
// fixed-length, zero-padded digit string.
type MalformedWatershedCodeError struct {
	Code   string
	Reason string
}

func (e *MalformedWatershedCodeError) Error() string {
	return fmt.Sprintf("malformed watershed code %q: %s", e.Code, e.Reason)
}

// ValidLevel reports whether n is a canonical HUC level.
func ValidLevel(n int) bool {
	for _, l := range Levels {
		if l == n {
			return true
		}
	}
	return false
}

// ParseCode validates and canonicalizes a single HUC code.
func ParseCode(s string) (string, error) {
	code := strings.TrimSpace(s)
	if code == "" {
		return "", &MalformedWatershedCodeError{Code: s, Reason: "empty"}
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", &MalformedWatershedCodeError{Code: s, Reason: "contains non-digit characters"}
		}
	}
	if !ValidLevel(len(code)) {
		return "", &MalformedWatershedCodeError{
			Code:   s,
			Reason: fmt.Sprintf("length %d is not a canonical HUC level (2, 4, 6, 8, 10, 12)", len(code)),
		}
	}
	return code, nil
}

// ParseList parses a comma-separated HUC list. Whitespace around
// entries is ignored. All codes must share one level; mixing levels in
// a single selection is rejected because the resulting filter would be
// ambiguous.
func ParseList(s string) ([]string, error) {
	var codes []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := ParseCode(part)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, &MalformedWatershedCodeError{Code: s, Reason: "no codes provided"}
	}
	level := len(codes[0])
	for _, c := range codes[1:] {
		if len(c) != level {
			return nil, &MalformedWatershedCodeError{
				Code:   c,
				Reason: fmt.Sprintf("mixed levels: expected %d digits to match %q", level, codes[0]),
			}
		}
	}
	return codes, nil
}

// AncestorsOf returns every ancestor prefix of a code, immediate
// parent first, ending at the 2-digit root.
func AncestorsOf(code string) ([]string, error) {
	c, err := ParseCode(code)
	if err != nil {
		return nil, err
	}
	var out []string
	for l := len(c) - 2; l >= 2; l -= 2 {
		out = append(out, c[:l])
	}
	return out, nil
}

// ParentAt returns the ancestor of a code at the given level. The
// level must be canonical and no finer than the code itself.
func ParentAt(code string, level int) (string, error) {
	c, err := ParseCode(code)
	if err != nil {
		return "", err
	}
	if !ValidLevel(level) {
		return "", fmt.Errorf("invalid HUC level %d", level)
	}
	if level > len(c) {
		return "", fmt.Errorf("cannot derive level-%d parent from %d-digit code %q", level, len(c), code)
	}
	return c[:level], nil
}

// SQLFilter builds a warehouse predicate selecting rows whose code
// column matches the given codes. Codes at the column's own level use
// a direct IN; coarser codes match by prefix. This is the filter
// external data adapters push down before rows reach the core.
func SQLFilter(codes []string, field string, fieldLen int) (string, error) {
	if len(codes) == 0 {
		return "", fmt.Errorf("no codes provided")
	}
	level := len(codes[0])
	quoted := make([]string, 0, len(codes))
	for _, c := range codes {
		parsed, err := ParseCode(c)
		if err != nil {
			return "", err
		}
		if len(parsed) != level {
			return "", &MalformedWatershedCodeError{Code: c, Reason: "mixed levels in filter"}
		}
		quoted = append(quoted, "'"+parsed+"'")
	}
	if level > fieldLen {
		return "", fmt.Errorf("code level %d exceeds field length %d for %s", level, fieldLen, field)
	}
	in := strings.Join(quoted, ",")
	if level == fieldLen {
		return fmt.Sprintf("%s IN (%s)", field, in), nil
	}
	return fmt.Sprintf("substr(%s,1,%d) IN (%s)", field, level, in), nil
}
