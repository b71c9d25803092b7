// Package dedup reports duplicate facility names and directory coverage.
package dedup

import (
	"sort"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/internal/names"
)

// Options selects how facility names are keyed before grouping.
type Options struct {
	// Normalized keys names by names.Key instead of the stored string.
	Normalized bool
	// Fuzzy merges normalized keys within this Levenshtein distance.
	// Any value above zero implies Normalized.
	Fuzzy int
}

// Member is one facility inside a duplicate group.
type Member struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Group is a set of facilities sharing a name key. Only groups with two or
// more members are reported.
type Group struct {
	Key     string   `json:"key"`
	Members []Member `json:"members"`
}

// IDs lists the member ids in group order.
func (g Group) IDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// Groups returns duplicate groups ordered by key. Members keep input order.
func Groups(facilities []model.Facility, opts Options) []Group {
	normalized := opts.Normalized || opts.Fuzzy > 0

	byKey := make(map[string][]Member)
	for _, f := range facilities {
		key := f.Name
		if normalized {
			key = names.Key(f.Name)
		}
		if key == "" {
			continue
		}
		byKey[key] = append(byKey[key], Member{ID: f.ID, Name: f.Name, City: f.City, Country: f.Country})
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if opts.Fuzzy > 0 {
		byKey, keys = mergeFuzzy(byKey, keys, opts.Fuzzy)
	}

	var groups []Group
	for _, k := range keys {
		if members := byKey[k]; len(members) >= 2 {
			groups = append(groups, Group{Key: k, Members: members})
		}
	}
	return groups
}

// mergeFuzzy joins keys within maxDist of each other (single link). Each
// merged group is named by its smallest key; members follow key order.
func mergeFuzzy(byKey map[string][]Member, keys []string, maxDist int) (map[string][]Member, []string) {
	parent := make([]int, len(keys))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if abs(utf8.RuneCountInString(keys[i])-utf8.RuneCountInString(keys[j])) > maxDist {
				continue
			}
			if levenshtein.ComputeDistance(keys[i], keys[j]) > maxDist {
				continue
			}
			ri, rj := find(i), find(j)
			if ri == rj {
				continue
			}
			// The lower index is the smaller key, so it names the group.
			if ri < rj {
				parent[rj] = ri
			} else {
				parent[ri] = rj
			}
		}
	}

	merged := make(map[string][]Member)
	var roots []string
	for i, k := range keys {
		root := keys[find(i)]
		if _, ok := merged[root]; !ok {
			roots = append(roots, root)
		}
		merged[root] = append(merged[root], byKey[k]...)
	}
	return merged, roots
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
