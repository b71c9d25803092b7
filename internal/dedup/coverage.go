package dedup

import (
	"sort"
	"strings"

	"github.com/galtpos/oasara-sub004/internal/model"
)

// CountryCount is the number of facilities in one country.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// SpecialtyCount is the number of facilities listing one specialty.
type SpecialtyCount struct {
	Specialty string `json:"specialty"`
	Count     int    `json:"count"`
}

// CountrySpecialties is the specialty distribution within one country.
type CountrySpecialties struct {
	Country     string           `json:"country"`
	Specialties []SpecialtyCount `json:"specialties"`
}

// Coverage summarises which contact fields the directory holds.
type Coverage struct {
	Total          int                  `json:"total"`
	WithWebsite    int                  `json:"with_website"`
	WithPhone      int                  `json:"with_phone"`
	WithEmail      int                  `json:"with_email"`
	MissingWebsite []string             `json:"missing_website"`
	MissingPhone   []string             `json:"missing_phone"`
	MissingEmail   []string             `json:"missing_email"`
	Countries      []CountryCount       `json:"countries"`
	Specialties    []CountrySpecialties `json:"specialties"`
}

// Percent returns n as a percentage of total, or 0 for an empty directory.
func Percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

// ComputeCoverage builds coverage statistics. Missing lists hold facility
// labels in input order; countries sort by count descending, then name.
func ComputeCoverage(facilities []model.Facility) Coverage {
	c := Coverage{Total: len(facilities)}
	countries := make(map[string]int)
	specialties := make(map[string]map[string]int)

	for _, f := range facilities {
		if f.HasWebsite() {
			c.WithWebsite++
		} else {
			c.MissingWebsite = append(c.MissingWebsite, f.Label())
		}
		if f.HasPhone() {
			c.WithPhone++
		} else {
			c.MissingPhone = append(c.MissingPhone, f.Label())
		}
		if f.HasEmail() {
			c.WithEmail++
		} else {
			c.MissingEmail = append(c.MissingEmail, f.Label())
		}

		country := strings.TrimSpace(f.Country)
		if country == "" {
			country = "Unknown"
		}
		countries[country]++
		for _, s := range f.Specialties {
			if s = strings.TrimSpace(s); s == "" {
				continue
			}
			if specialties[country] == nil {
				specialties[country] = make(map[string]int)
			}
			specialties[country][s]++
		}
	}

	for name, n := range countries {
		c.Countries = append(c.Countries, CountryCount{Country: name, Count: n})
	}
	sort.Slice(c.Countries, func(i, j int) bool {
		if c.Countries[i].Count != c.Countries[j].Count {
			return c.Countries[i].Count > c.Countries[j].Count
		}
		return c.Countries[i].Country < c.Countries[j].Country
	})

	for _, cc := range c.Countries {
		counts, ok := specialties[cc.Country]
		if !ok {
			continue
		}
		cs := CountrySpecialties{Country: cc.Country}
		for s, n := range counts {
			cs.Specialties = append(cs.Specialties, SpecialtyCount{Specialty: s, Count: n})
		}
		sort.Slice(cs.Specialties, func(i, j int) bool {
			if cs.Specialties[i].Count != cs.Specialties[j].Count {
				return cs.Specialties[i].Count > cs.Specialties[j].Count
			}
			return cs.Specialties[i].Specialty < cs.Specialties[j].Specialty
		})
		c.Specialties = append(c.Specialties, cs)
	}
	return c
}
