package extract

import (
	"context"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/galtpos/oasara-sub004/internal/scrape"
)

const (
	maxEmails        = 3
	defaultMaxPages  = 5
	defaultPageDelay = 500 * time.Millisecond
)

var (
	emailRe        = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	contactLinkRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)contact`),
		regexp.MustCompile(`(?i)inquiry`),
		regexp.MustCompile(`(?i)enquiry`),
		regexp.MustCompile(`(?i)international`),
		regexp.MustCompile(`(?i)patient.*services`),
		regexp.MustCompile(`(?i)about.*us`),
	}
	priorityKeywords = []string{
		"international", "info", "contact", "inquiry", "patient",
		"admissions", "enquiry", "enquiries", "global", "overseas",
	}
	// Asset filenames such as logo@2x.png look like addresses.
	assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}
)

// ScoredEmail is an address found on a facility website with its priority.
type ScoredEmail struct {
	Email string
	Score int
}

// EmailResult is the outcome of scanning one website for contact addresses.
type EmailResult struct {
	Emails       []ScoredEmail
	ContactPages []string
}

// Best returns the highest scoring address, or "".
func (r EmailResult) Best() string {
	if len(r.Emails) == 0 {
		return ""
	}
	return r.Emails[0].Email
}

// EmailFinder discovers contact addresses on a website's homepage and the
// contact-like pages it links to.
type EmailFinder struct {
	fetcher  scrape.Fetcher
	limiter  *rate.Limiter
	maxPages int
	excludes *scrape.PathMatcher
}

// NewEmailFinder creates a finder that spaces page fetches by pageDelay and
// follows at most maxPages contact links. Zero values use the defaults.
func NewEmailFinder(f scrape.Fetcher, pageDelay time.Duration, maxPages int) *EmailFinder {
	if pageDelay <= 0 {
		pageDelay = defaultPageDelay
	}
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &EmailFinder{
		fetcher:  f,
		limiter:  rate.NewLimiter(rate.Every(pageDelay), 1),
		maxPages: maxPages,
		excludes: scrape.NewPathMatcher(nil),
	}
}

// Find scans website. A homepage that cannot be fetched yields an empty
// result; contact pages that fail are skipped.
func (e *EmailFinder) Find(ctx context.Context, website string) EmailResult {
	if err := e.limiter.Wait(ctx); err != nil {
		return EmailResult{}
	}
	page, err := e.fetcher.Fetch(ctx, website)
	if err != nil {
		zap.L().Debug("extract: homepage unavailable", zap.String("url", website), zap.Error(err))
		return EmailResult{}
	}

	best := newEmailSet()
	best.addAll(scanEmails(page.HTML))

	var pages []string
	if doc, err := parseHTML(page.HTML); err == nil {
		pages = e.contactPages(doc, website)
	}
	for _, u := range pages {
		if err := e.limiter.Wait(ctx); err != nil {
			break
		}
		p, err := e.fetcher.Fetch(ctx, u)
		if err != nil {
			zap.L().Debug("extract: contact page unavailable", zap.String("url", u), zap.Error(err))
			continue
		}
		best.addAll(scanEmails(p.HTML))
	}

	return EmailResult{Emails: best.top(maxEmails), ContactPages: pages}
}

// contactPages lists same-site links whose text or href looks like a
// contact page, in document order without duplicates.
func (e *EmailFinder) contactPages(doc *html.Node, website string) []string {
	base, err := url.Parse(website)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, a := range findAll(doc, isTag("a")) {
		href := attr(a, "href")
		if href == "" || !isContactLink(strings.ToLower(textContent(a)), href) {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		full := base.ResolveReference(ref).String()
		if !strings.HasPrefix(full, website) || e.excludes.IsExcluded(full) || seen[full] {
			continue
		}
		seen[full] = true
		out = append(out, full)
		if len(out) == e.maxPages {
			break
		}
	}
	return out
}

func isContactLink(text, href string) bool {
	for _, re := range contactLinkRes {
		if re.MatchString(text) || re.MatchString(href) {
			return true
		}
	}
	return false
}

// scanEmails returns every distinct address in body with a non-negative
// score, lowercased.
func scanEmails(body []byte) []ScoredEmail {
	var out []ScoredEmail
	seen := make(map[string]bool)
	for _, m := range emailRe.FindAllString(string(body), -1) {
		lower := strings.ToLower(m)
		if seen[lower] || isAsset(lower) {
			continue
		}
		seen[lower] = true
		if s := ScoreEmail(lower); s >= 0 {
			out = append(out, ScoredEmail{Email: lower, Score: s})
		}
	}
	return out
}

func isAsset(email string) bool {
	for _, s := range assetSuffixes {
		if strings.HasSuffix(email, s) {
			return true
		}
	}
	return false
}

// ScoreEmail ranks an address for international patient contact.
func ScoreEmail(email string) int {
	lower := strings.ToLower(email)
	score := 0
	for _, kw := range priorityKeywords {
		if strings.Contains(lower, kw) {
			score += 10
			if kw == "international" {
				score += 5
			}
		}
	}
	if strings.Contains(lower, "noreply") {
		score -= 20
	}
	if strings.Contains(lower, "webmaster") {
		score -= 10
	}
	if strings.Contains(lower, "admin") {
		score -= 5
	}
	if strings.Contains(lower, ".org") || strings.Contains(lower, ".edu") {
		score += 3
	}
	return score
}

// emailSet keeps the best score per address in first-seen order.
type emailSet struct {
	order  []string
	scores map[string]int
}

func newEmailSet() *emailSet {
	return &emailSet{scores: make(map[string]int)}
}

func (s *emailSet) addAll(emails []ScoredEmail) {
	for _, e := range emails {
		prev, ok := s.scores[e.Email]
		if !ok {
			s.order = append(s.order, e.Email)
		}
		if !ok || e.Score > prev {
			s.scores[e.Email] = e.Score
		}
	}
}

func (s *emailSet) top(n int) []ScoredEmail {
	out := make([]ScoredEmail, 0, len(s.order))
	for _, e := range s.order {
		out = append(out, ScoredEmail{Email: e, Score: s.scores[e]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
