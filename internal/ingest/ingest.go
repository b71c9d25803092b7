// Package ingest seeds the facility store from files or the accreditation
// directory.
package ingest

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/internal/store"
)

// DefaultBatchSize is the number of facilities per insert statement.
const DefaultBatchSize = 100

// Summary counts an import run.
type Summary struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
	Batches  int `json:"batches"`
}

// SuccessRate is the imported share as a percentage.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Imported) * 100 / float64(s.Total)
}

// Import transforms records and inserts them in batches. A failed batch is
// counted and skipped; cancellation stops between batches.
func Import(ctx context.Context, st store.Store, records []Record, batchSize int) (Summary, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	facilities := make([]model.Facility, len(records))
	for i, r := range records {
		facilities[i] = Transform(r)
	}

	sum := Summary{Total: len(facilities)}
	for start := 0; start < len(facilities); start += batchSize {
		if err := ctx.Err(); err != nil {
			return sum, eris.Wrap(err, "ingest: import")
		}
		end := min(start+batchSize, len(facilities))
		batch := facilities[start:end]
		sum.Batches++

		n, err := st.InsertFacilities(ctx, batch)
		if err != nil {
			zap.L().Error("ingest: batch failed",
				zap.Int("batch", sum.Batches),
				zap.Int("size", len(batch)),
				zap.Error(err),
			)
			sum.Failed += len(batch)
			continue
		}
		zap.L().Info("ingest: batch imported",
			zap.Int("batch", sum.Batches),
			zap.Int("inserted", n),
		)
		sum.Imported += n
	}
	return sum, nil
}
