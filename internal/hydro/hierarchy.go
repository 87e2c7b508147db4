package hydro

import (
	"fmt"
	"sort"
)

// Hierarchy is the set of ancestor codes implied by one run's leaf
// codes. It is rebuilt per run from the leaves actually present and
// holds only strings, never row data.
type Hierarchy struct {
	leafLevel int
	levels    map[int][]string
}

// Build derives every canonical-level ancestor implied by the leaf
// set. All leaves must share one level.
func Build(leafCodes []string) (*Hierarchy, error) {
	if len(leafCodes) == 0 {
		return nil, fmt.Errorf("no leaf codes provided")
	}
	leaves := make([]string, 0, len(leafCodes))
	for _, raw := range leafCodes {
		code, err := ParseCode(raw)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, code)
	}
	leafLevel := len(leaves[0])
	for _, c := range leaves[1:] {
		if len(c) != leafLevel {
			return nil, &MalformedWatershedCodeError{
				Code:   c,
				Reason: fmt.Sprintf("leaf level mismatch: expected %d digits", leafLevel),
			}
		}
	}

	seen := make(map[int]map[string]bool)
	for _, l := range Levels {
		if l <= leafLevel {
			seen[l] = make(map[string]bool)
		}
	}
	for _, c := range leaves {
		seen[leafLevel][c] = true
		ancestors, err := AncestorsOf(c)
		if err != nil {
			return nil, err
		}
		for _, a := range ancestors {
			seen[len(a)][a] = true
		}
	}

	h := &Hierarchy{leafLevel: leafLevel, levels: make(map[int][]string)}
	for l, set := range seen {
		codes := make([]string, 0, len(set))
		for c := range set {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		h.levels[l] = codes
	}
	return h, nil
}

// LeafLevel returns the level of the leaves the hierarchy was built
// from.
func (h *Hierarchy) LeafLevel() int { return h.leafLevel }

// AtLevel returns the sorted codes present at a level. The result is
// empty for levels finer than the leaf level.
func (h *Hierarchy) AtLevel(level int) []string {
	return append([]string(nil), h.levels[level]...)
}

// Contains reports whether the hierarchy includes the code at its own
// level.
func (h *Hierarchy) Contains(code string) bool {
	for _, c := range h.levels[len(code)] {
		if c == code {
			return true
		}
	}
	return false
}
