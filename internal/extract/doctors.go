package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/internal/scrape"
)

const (
	maxDoctors          = 20
	regexFallbackBelow  = 5
	maxBioRunes         = 500
	defaultSpecialty    = "Medical Professional"
	sourceDoctorElement = "fetch-scraping"
	sourceDoctorRegex   = "regex-extraction"
)

var doctorPaths = []string{"", "/en", "/doctors", "/en/doctors", "/our-team", "/find-a-doctor"}

var (
	doctorCardMatch = classContains("doctor", "physician", "staff", "team")
	specialtyMatch  = classContains("specialty", "department")
	doctorNameRe    = regexp.MustCompile(`(?:Dr\.?\s+|Professor\s+)?([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`)
	drPrefixRe      = regexp.MustCompile(`Dr\.?\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`)
	degreeSuffixRe  = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+),?\s+(MD|M\.D\.|PhD|MBBS)`)
	qualificationRe = regexp.MustCompile(`\bM\.D\.|\b(?:MD|PhD|MBBS|MBChB|FRCS|FACS|FACP|FRCP|MRCS|MRCP|DDS|DMD)\b`)

	yearsRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,2})\+?\s*years?\s*(?:of\s*)?experience`),
		regexp.MustCompile(`(?i)experience\s*(?:of\s*)?(\d{1,2})\+?\s*years?`),
	}

	speaksRe    = regexp.MustCompile(`(?i)language|speak`)
	languageRes = compileWords([]string{
		"English", "Spanish", "French", "German", "Arabic",
		"Chinese", "Japanese", "Korean", "Hindi", "Thai",
		"Turkish", "Portuguese", "Russian", "Italian", "Dutch",
		"Mandarin", "Cantonese", "Bengali", "Urdu", "Malay",
	})
)

type wordRe struct {
	word string
	re   *regexp.Regexp
}

func compileWords(words []string) []wordRe {
	out := make([]wordRe, len(words))
	for i, w := range words {
		out[i] = wordRe{word: w, re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)}
	}
	return out
}

// Doctors walks the doctor paths under base and returns the doctors from the
// first page that yields any.
func Doctors(ctx context.Context, f scrape.Fetcher, base string) []model.Doctor {
	for _, path := range doctorPaths {
		if ctx.Err() != nil {
			return nil
		}
		page, err := f.Fetch(ctx, base+path)
		if err != nil {
			zap.L().Debug("extract: doctors page unavailable", zap.String("url", base+path), zap.Error(err))
			continue
		}
		doc, err := parseHTML(page.HTML)
		if err != nil {
			continue
		}
		if doctors := doctorsFromDoc(doc); len(doctors) > 0 {
			return doctors
		}
	}
	return nil
}

func doctorsFromDoc(doc *html.Node) []model.Doctor {
	seen := make(map[string]bool)
	var out []model.Doctor
	add := func(d model.Doctor) {
		if len(out) >= maxDoctors || seen[d.Name] {
			return
		}
		seen[d.Name] = true
		out = append(out, d)
	}

	for _, el := range findAll(doc, doctorCardMatch) {
		text := textContent(el)
		if !mentionsDoctor(text) {
			continue
		}
		m := doctorNameRe.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		add(model.Doctor{
			Name:            m[1],
			Specialty:       cardSpecialty(el),
			Bio:             strings.TrimSpace(truncate(text, maxBioRunes)),
			Qualifications:  qualifications(text),
			Languages:       languages(text),
			YearsExperience: yearsExperience(text),
			Source:          sourceDoctorElement,
		})
	}

	if len(out) >= regexFallbackBelow {
		return out
	}

	body := bodyText(doc)
	for _, m := range drPrefixRe.FindAllStringSubmatch(body, -1) {
		if len(strings.Fields(m[1])) < 2 {
			continue
		}
		add(regexDoctor(m[1], ""))
	}
	for _, m := range degreeSuffixRe.FindAllStringSubmatch(body, -1) {
		if len(strings.Fields(m[1])) < 2 {
			continue
		}
		add(regexDoctor(m[1], m[2]))
	}
	return out
}

func regexDoctor(name, degree string) model.Doctor {
	d := model.Doctor{
		Name:           name,
		Specialty:      defaultSpecialty,
		Qualifications: []string{},
		Languages:      []string{},
		Source:         sourceDoctorRegex,
	}
	if degree != "" {
		d.Qualifications = []string{normalizeDegree(degree)}
	}
	return d
}

func mentionsDoctor(text string) bool {
	return strings.Contains(text, "Dr.") || strings.Contains(text, "MD") || strings.Contains(text, "Professor")
}

// cardSpecialty takes the last specialty or department label inside a card.
func cardSpecialty(card *html.Node) string {
	nodes := findAll(card, specialtyMatch)
	for i := len(nodes) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(textContent(nodes[i])); s != "" {
			return s
		}
	}
	return defaultSpecialty
}

func normalizeDegree(d string) string {
	if d == "M.D." {
		return "MD"
	}
	return d
}

func qualifications(text string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, q := range qualificationRe.FindAllString(text, -1) {
		q = normalizeDegree(q)
		if !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	return out
}

func languages(text string) []string {
	out := []string{}
	if !speaksRe.MatchString(text) {
		return out
	}
	for _, l := range languageRes {
		if l.re.MatchString(text) {
			out = append(out, l.word)
		}
	}
	return out
}

func yearsExperience(text string) *int {
	for _, re := range yearsRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return &n
			}
		}
	}
	return nil
}
