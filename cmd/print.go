package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	labelColor = color.New(color.Faint)
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	failColor  = color.New(color.FgRed)
)

// summaryLine is one "label: value" row of a stage summary.
type summaryLine struct {
	label string
	value int
	tone  *color.Color
}

func line(label string, value int) summaryLine { return summaryLine{label: label, value: value} }

func good(label string, value int) summaryLine {
	return summaryLine{label: label, value: value, tone: okColor}
}

func warn(label string, value int) summaryLine {
	return summaryLine{label: label, value: value, tone: warnColor}
}

func bad(label string, value int) summaryLine {
	return summaryLine{label: label, value: value, tone: failColor}
}

// printSummary writes a titled block of counts. Zero values are never colored.
func printSummary(w io.Writer, title string, lines ...summaryLine) {
	titleColor.Fprintln(w, title)
	for _, l := range lines {
		labelColor.Fprintf(w, "  %-16s ", l.label+":")
		if l.tone != nil && l.value > 0 {
			l.tone.Fprintf(w, "%d\n", l.value)
			continue
		}
		fmt.Fprintf(w, "%d\n", l.value)
	}
}
