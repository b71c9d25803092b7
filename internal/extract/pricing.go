package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/internal/scrape"
)

const (
	maxPrices        = 20
	minPrice         = 100
	maxPrice         = 1_000_000
	priceCurrency    = "USD"
	priceTypeFrom    = "starting_from"
	sourcePriceTable = "price-table"
	sourcePriceText  = "procedure-text"
)

var pricingPaths = []string{"", "/en", "/pricing", "/en/pricing", "/prices", "/treatment-costs"}

// commonProcedures are searched for in page text when no price table exists.
var commonProcedures = []string{
	"Breast Augmentation", "Rhinoplasty", "Liposuction", "Facelift",
	"Hair Transplant", "Dental Implant", "Veneers", "LASIK",
	"IVF", "Knee Replacement", "Hip Replacement", "Bariatric Surgery",
}

var (
	priceCellRe  = regexp.MustCompile(`\$[\d,]+|USD\s*[\d,]+|฿[\d,]+|Baht\s*[\d,]+`)
	digitsRe     = regexp.MustCompile(`[\d,]+`)
	procedureRes = compileProcedures(commonProcedures)
)

func compileProcedures(procs []string) []wordRe {
	out := make([]wordRe, len(procs))
	for i, p := range procs {
		out[i] = wordRe{word: p, re: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p) + `[\s\S]{0,200}?([\d,]+)`)}
	}
	return out
}

// Pricing walks the pricing paths under base and returns the prices from the
// first page that yields any.
func Pricing(ctx context.Context, f scrape.Fetcher, base string) []model.ProcedurePricing {
	for _, path := range pricingPaths {
		if ctx.Err() != nil {
			return nil
		}
		page, err := f.Fetch(ctx, base+path)
		if err != nil {
			zap.L().Debug("extract: pricing page unavailable", zap.String("url", base+path), zap.Error(err))
			continue
		}
		doc, err := parseHTML(page.HTML)
		if err != nil {
			continue
		}
		if prices := pricesFromDoc(doc); len(prices) > 0 {
			if len(prices) > maxPrices {
				prices = prices[:maxPrices]
			}
			return prices
		}
	}
	return nil
}

func pricesFromDoc(doc *html.Node) []model.ProcedurePricing {
	found := make(map[string]bool)
	var out []model.ProcedurePricing

	for _, table := range findAll(doc, isTag("table")) {
		for _, row := range findAll(table, isTag("tr")) {
			procedure, price, ok := priceRow(row)
			if !ok || found[procedure] {
				continue
			}
			found[procedure] = true
			out = append(out, newPrice(procedure, price, sourcePriceTable))
		}
	}

	body := bodyText(doc)
	for _, p := range procedureRes {
		m := p.re.FindStringSubmatch(body)
		if m == nil || found[p.word] {
			continue
		}
		// A match claims the procedure even when the number is not a
		// plausible price.
		found[p.word] = true
		price, err := parseAmount(m[1])
		if err != nil || price <= minPrice || price >= maxPrice {
			continue
		}
		out = append(out, newPrice(p.word, price, sourcePriceText))
	}
	return out
}

// priceRow reads one table row. The procedure is the last descriptive cell
// before the first price cell; the price is the last price cell.
func priceRow(row *html.Node) (procedure string, price float64, ok bool) {
	var havePrice bool
	for _, cell := range findAll(row, isTag("td", "th")) {
		text := strings.TrimSpace(textContent(cell))
		if m := priceCellRe.FindString(text); m != "" {
			if v, err := parseAmount(digitsRe.FindString(m)); err == nil {
				price, havePrice = v, true
			}
			continue
		}
		if n := utf8.RuneCountInString(text); n > 5 && n < 100 && !havePrice {
			procedure = text
		}
	}
	return procedure, price, procedure != "" && havePrice
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func newPrice(procedure string, price float64, source string) model.ProcedurePricing {
	return model.ProcedurePricing{
		ProcedureName: procedure,
		Price:         price,
		Currency:      priceCurrency,
		PriceType:     priceTypeFrom,
		Source:        source,
	}
}
