package resolve

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/internal/names"
	"github.com/galtpos/oasara-sub004/pkg/google"
)

const (
	overlapWeight = 0.6
	editWeight    = 0.4
	cityBonus     = 0.1
)

// Score rates how likely a search result is the facility, from 0 to 1.
// Name similarity blends token overlap with an edit-distance ratio; a result
// whose address mentions the facility city earns a small bonus.
func Score(f model.Facility, p google.SearchPlace) float64 {
	a, b := names.Tokens(f.Name), names.Tokens(p.Name)
	s := overlapWeight*tokenOverlap(a, b) +
		editWeight*editRatio(strings.Join(a, " "), strings.Join(b, " "))

	if city := names.Fold(f.City); city != "" && strings.Contains(names.Fold(p.FormattedAddress), city) {
		s += cityBonus
	}
	if s > 1 {
		s = 1
	}
	return s
}

// tokenOverlap is the share of the shorter token set found in the other,
// so "Bumrungrad" fully overlaps "Bumrungrad International".
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(b))
	for _, w := range b {
		set[w] = true
	}
	seen := make(map[string]bool, len(a))
	shared := 0
	for _, w := range a {
		if set[w] && !seen[w] {
			shared++
		}
		seen[w] = true
	}
	shorter := len(set)
	if len(seen) < shorter {
		shorter = len(seen)
	}
	return float64(shared) / float64(shorter)
}

func editRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
