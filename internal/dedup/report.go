package dedup

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/galtpos/oasara-sub004/internal/model"
)

const maxListed = 20

// Report is the full duplicate and coverage report.
type Report struct {
	Options  Options  `json:"options"`
	Groups   []Group  `json:"groups"`
	Coverage Coverage `json:"coverage"`
}

// Build groups and measures facilities in one pass over the list.
func Build(facilities []model.Facility, opts Options) Report {
	return Report{
		Options:  opts,
		Groups:   Groups(facilities, opts),
		Coverage: ComputeCoverage(facilities),
	}
}

// Duplicates counts facilities that sit in a duplicate group.
func (r Report) Duplicates() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Members)
	}
	return n
}

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	bad     = color.New(color.FgRed)
	faint   = color.New(color.Faint)
)

// Render writes the report as colored terminal text.
func Render(w io.Writer, r Report) {
	mode := "exact"
	switch {
	case r.Options.Fuzzy > 0:
		mode = fmt.Sprintf("fuzzy (distance <= %d)", r.Options.Fuzzy)
	case r.Options.Normalized:
		mode = "normalized"
	}

	heading.Fprintf(w, "Duplicate names (%s)\n", mode)
	if len(r.Groups) == 0 {
		good.Fprintln(w, "  no duplicates")
	}
	for _, g := range r.Groups {
		warn.Fprintf(w, "  %s", g.Key)
		faint.Fprintf(w, " (%d)\n", len(g.Members))
		for _, m := range g.Members {
			fmt.Fprintf(w, "    %s  %s, %s  %s\n", m.Name, m.City, m.Country, faint.Sprint(m.ID))
		}
	}
	fmt.Fprintln(w)

	c := r.Coverage
	heading.Fprintf(w, "Coverage (%d facilities)\n", c.Total)
	renderField(w, "website", c.WithWebsite, c.Total, c.MissingWebsite)
	renderField(w, "phone", c.WithPhone, c.Total, c.MissingPhone)
	renderField(w, "email", c.WithEmail, c.Total, c.MissingEmail)
	fmt.Fprintln(w)

	heading.Fprintln(w, "Countries")
	for _, cc := range c.Countries {
		fmt.Fprintf(w, "  %-30s %5d\n", cc.Country, cc.Count)
	}
	fmt.Fprintln(w)

	heading.Fprintln(w, "Specialties by country")
	for _, cs := range c.Specialties {
		warn.Fprintf(w, "  %s\n", cs.Country)
		parts := make([]string, len(cs.Specialties))
		for i, s := range cs.Specialties {
			parts[i] = fmt.Sprintf("%s %d", s.Specialty, s.Count)
		}
		fmt.Fprintf(w, "    %s\n", strings.Join(parts, ", "))
	}
}

func renderField(w io.Writer, field string, have, total int, missing []string) {
	pct := Percent(have, total)
	c := good
	switch {
	case pct < 50:
		c = bad
	case pct < 90:
		c = warn
	}
	fmt.Fprintf(w, "  %-8s ", field)
	c.Fprintf(w, "%d/%d (%.1f%%)\n", have, total, pct)

	for i, label := range missing {
		if i == maxListed {
			faint.Fprintf(w, "    ... and %d more\n", len(missing)-maxListed)
			break
		}
		faint.Fprintf(w, "    missing: %s\n", label)
	}
}
