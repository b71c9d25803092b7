package ingest

import (
	"bytes"
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/galtpos/oasara-sub004/internal/scrape"
)

// TargetCountries are the countries queried on a full directory scrape.
var TargetCountries = []string{
	// Middle East
	"United Arab Emirates", "Saudi Arabia", "Turkey", "Israel", "Jordan", "Lebanon", "Qatar", "Bahrain", "Oman", "Kuwait",
	// Asia-Pacific
	"China", "India", "Thailand", "Singapore", "South Korea", "Japan", "Malaysia", "Indonesia", "Philippines", "Vietnam",
	"Taiwan", "Hong Kong", "Pakistan", "Bangladesh", "Myanmar", "Cambodia",
	// Europe
	"Germany", "Italy", "Spain", "Portugal", "Czech Republic", "Poland", "Hungary", "Austria", "Switzerland", "Greece",
	"Netherlands", "Belgium", "France", "United Kingdom", "Romania", "Bulgaria",
	// Americas
	"Brazil", "Mexico", "Colombia", "Argentina", "Chile", "Peru", "Costa Rica", "Panama", "Dominican Republic",
	"United States", "Canada", "Ecuador", "Uruguay", "Venezuela",
	// Africa
	"Egypt", "South Africa", "Morocco", "Kenya", "Tunisia", "Nigeria", "Ghana",
}

// CountryError records a country whose directory page could not be read.
type CountryError struct {
	Country string `json:"country"`
	Error   string `json:"error"`
}

// DirectoryResult is the outcome of a multi-country directory scrape.
type DirectoryResult struct {
	Records []Record       `json:"records"`
	Errors  []CountryError `json:"errors"`
}

// TopCountries returns up to n countries by record count, largest first.
func (r DirectoryResult) TopCountries(n int) []CountryCount {
	counts := make(map[string]int)
	for _, rec := range r.Records {
		counts[rec.Country]++
	}
	out := make([]CountryCount, 0, len(counts))
	for c, k := range counts {
		out = append(out, CountryCount{Country: c, Count: k})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Country < out[j].Country
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// CountryCount pairs a country with its record count.
type CountryCount struct {
	Country string
	Count   int
}

// Directory scrapes the accreditation directory one country at a time.
type Directory struct {
	fetcher scrape.Fetcher
	baseURL string
	limiter *rate.Limiter
}

// NewDirectory creates a Directory. delay is the pause between countries.
func NewDirectory(f scrape.Fetcher, baseURL string, delay time.Duration) *Directory {
	if delay <= 0 {
		delay = time.Second
	}
	return &Directory{
		fetcher: f,
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// CountryURL is the directory listing URL for one country.
func (d *Directory) CountryURL(country string) string {
	sep := "?"
	if strings.Contains(d.baseURL, "?") {
		sep = "&"
	}
	return d.baseURL + sep + "country=" + url.QueryEscape(country)
}

// Scrape fetches every country in turn. A failing country is recorded and
// skipped; only cancellation stops the run early.
func (d *Directory) Scrape(ctx context.Context, countries []string) (DirectoryResult, error) {
	var res DirectoryResult
	for _, country := range countries {
		if err := d.limiter.Wait(ctx); err != nil {
			return res, eris.Wrap(err, "ingest: directory wait")
		}

		page, err := d.fetcher.Fetch(ctx, d.CountryURL(country))
		if err != nil {
			if ctx.Err() != nil {
				return res, eris.Wrap(ctx.Err(), "ingest: directory fetch")
			}
			zap.L().Warn("ingest: directory country failed",
				zap.String("country", country),
				zap.Error(err),
			)
			res.Errors = append(res.Errors, CountryError{Country: country, Error: err.Error()})
			continue
		}

		recs, err := ParseDirectory(page.HTML, country)
		if err != nil {
			res.Errors = append(res.Errors, CountryError{Country: country, Error: err.Error()})
			continue
		}
		zap.L().Info("ingest: directory country scraped",
			zap.String("country", country),
			zap.Int("facilities", len(recs)),
		)
		res.Records = append(res.Records, recs...)
	}
	return res, nil
}

// ParseDirectory reads ".facility-item" blocks from a directory page. Items
// without a name are dropped.
func ParseDirectory(body []byte, country string) ([]Record, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "ingest: parse directory html")
	}

	var recs []Record
	for _, item := range byClass(doc, "facility-item") {
		rec := Record{
			Name:          fieldText(item, "facility-name"),
			City:          fieldText(item, "facility-city"),
			Country:       country,
			Type:          fieldText(item, "facility-type"),
			Address:       fieldText(item, "facility-address"),
			JCIAccredited: true,
		}
		if rec.Name != "" {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

// byClass returns descendants of n carrying class cls, in document order.
// Matched elements are not searched further.
func byClass(n *html.Node, cls string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && hasClass(c, cls) {
			out = append(out, c)
			continue
		}
		out = append(out, byClass(c, cls)...)
	}
	return out
}

func hasClass(n *html.Node, cls string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, f := range strings.Fields(a.Val) {
				if f == cls {
					return true
				}
			}
		}
	}
	return false
}

// fieldText is the trimmed text of the first descendant with class cls.
func fieldText(n *html.Node, cls string) string {
	found := byClass(n, cls)
	if len(found) == 0 {
		return ""
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(found[0])
	return strings.Join(strings.Fields(b.String()), " ")
}
