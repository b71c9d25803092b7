package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/internal/scrape"
)

const (
	maxTestimonials      = 10
	minTestimonialRunes  = 100
	maxTestimonialRunes  = 1000
	anonymousPatient     = "Anonymous"
	sourceWebsiteReviews = "website"
)

var testimonialPaths = []string{"/testimonials", "/en/testimonials", "/reviews", "/patient-stories", ""}

var (
	testimonialMatch = classContains("testimonial", "review", "story")
	authorMatch      = classContains("name", "author")
)

// Testimonials walks the testimonial paths under base and returns the
// reviews from the first page that yields any.
func Testimonials(ctx context.Context, f scrape.Fetcher, base string) []model.Testimonial {
	for _, path := range testimonialPaths {
		if ctx.Err() != nil {
			return nil
		}
		page, err := f.Fetch(ctx, base+path)
		if err != nil {
			zap.L().Debug("extract: testimonials page unavailable", zap.String("url", base+path), zap.Error(err))
			continue
		}
		doc, err := parseHTML(page.HTML)
		if err != nil {
			continue
		}
		if ts := testimonialsFromDoc(doc); len(ts) > 0 {
			return ts
		}
	}
	return nil
}

func testimonialsFromDoc(doc *html.Node) []model.Testimonial {
	seen := make(map[string]bool)
	var out []model.Testimonial
	for _, el := range findAll(doc, testimonialMatch) {
		if len(out) >= maxTestimonials {
			break
		}
		text := strings.TrimSpace(textContent(el))
		if utf8.RuneCountInString(text) <= minTestimonialRunes {
			continue
		}
		text = truncate(text, maxTestimonialRunes)
		if seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, model.Testimonial{
			PatientName: patientName(el),
			ReviewText:  text,
			Source:      sourceWebsiteReviews,
		})
	}
	return out
}

func patientName(el *html.Node) string {
	for _, n := range findAll(el, authorMatch) {
		if s := strings.TrimSpace(textContent(n)); s != "" {
			return s
		}
	}
	return anonymousPatient
}
