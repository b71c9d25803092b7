// Package extract pulls doctors, procedure prices, testimonials and contact
// emails out of facility websites by pattern matching static HTML.
package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/internal/scrape"
)

// Facility extracts all content types from website. Pages are memoized for
// the duration of the call, so a path shared by several content types is
// fetched once. Fetch failures never surface as errors; they only shrink
// the result.
func Facility(ctx context.Context, f scrape.Fetcher, website string) model.ExtractionResult {
	base := BaseURL(website)
	memo := scrape.NewMemo(f)

	res := model.ExtractionResult{
		Doctors:      Doctors(ctx, memo, base),
		Pricing:      Pricing(ctx, memo, base),
		Testimonials: Testimonials(ctx, memo, base),
	}

	zap.L().Debug("extract: facility done",
		zap.String("website", base),
		zap.Int("pages", memo.Len()),
		zap.Int("doctors", len(res.Doctors)),
		zap.Int("prices", len(res.Pricing)),
		zap.Int("testimonials", len(res.Testimonials)),
	)
	return res
}

// BaseURL trims whitespace and one trailing slash so paths can be appended.
func BaseURL(website string) string {
	return strings.TrimSuffix(strings.TrimSpace(website), "/")
}
