package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"
)

// Record is one raw facility row from a seed file or the directory.
type Record struct {
	Name          string  `json:"name" yaml:"name"`
	Country       string  `json:"country" yaml:"country"`
	City          string  `json:"city" yaml:"city"`
	Type          string  `json:"type" yaml:"type"`
	Address       string  `json:"address" yaml:"address"`
	Website       string  `json:"website" yaml:"website"`
	Phone         string  `json:"phone" yaml:"phone"`
	Lat           float64 `json:"lat" yaml:"lat"`
	Lng           float64 `json:"lng" yaml:"lng"`
	GoogleRating  float64 `json:"google_rating" yaml:"google_rating"`
	ReviewCount   int     `json:"review_count" yaml:"review_count"`
	JCIAccredited bool    `json:"jci_accredited" yaml:"jci_accredited"`
}

// ReadSeed loads records from a YAML, JSON, CSV or XLSX file, chosen by
// extension. Rows without a name are dropped.
func ReadSeed(ctx context.Context, path string) ([]Record, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" {
		return readXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	switch ext {
	case ".yaml", ".yml":
		return readYAML(f)
	case ".json":
		return readJSON(ctx, f)
	case ".csv":
		return readCSV(ctx, f)
	default:
		return nil, eris.Errorf("ingest: unsupported seed format %q", ext)
	}
}

func readYAML(r io.Reader) ([]Record, error) {
	var recs []Record
	if err := yaml.NewDecoder(r).Decode(&recs); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrap(err, "ingest: decode yaml")
	}
	return named(recs), nil
}

// readJSON streams a top-level array so large exports need not fit twice
// in memory.
func readJSON(ctx context.Context, r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrap(err, "ingest: read json opening token")
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, eris.Errorf("ingest: expected json array, got %v", tok)
	}

	var recs []Record
	for dec.More() {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "ingest: read json")
		}
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, eris.Wrapf(err, "ingest: decode json element %d", len(recs))
		}
		recs = append(recs, rec)
	}
	return named(recs), nil
}

func readCSV(ctx context.Context, r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrap(err, "ingest: read csv header")
	}
	cols := columnIndex(header)

	var recs []Record
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "ingest: read csv")
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read csv row")
		}
		recs = append(recs, cols.record(row))
	}
	return named(recs), nil
}

func readXLSX(path string) ([]Record, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, nil
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}
	cols := columnIndex(cellStrings(sheet.Rows[0]))

	var recs []Record
	for _, row := range sheet.Rows[1:] {
		recs = append(recs, cols.record(cellStrings(row)))
	}
	return named(recs), nil
}

func cellStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		out[i] = c.String()
	}
	return out
}

// columns maps a normalized header name to its column position.
type columns map[string]int

var headerAliases = map[string]string{
	"facility":  "name",
	"latitude":  "lat",
	"longitude": "lng",
	"rating":    "google_rating",
	"reviews":   "review_count",
	"jci":       "jci_accredited",
	"url":       "website",
}

func columnIndex(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if alias, ok := headerAliases[key]; ok {
			key = alias
		}
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func (c columns) get(row []string, key string) string {
	i, ok := c[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c columns) record(row []string) Record {
	rec := Record{
		Name:    c.get(row, "name"),
		Country: c.get(row, "country"),
		City:    c.get(row, "city"),
		Type:    c.get(row, "type"),
		Address: c.get(row, "address"),
		Website: c.get(row, "website"),
		Phone:   c.get(row, "phone"),
	}
	rec.Lat, _ = strconv.ParseFloat(c.get(row, "lat"), 64)
	rec.Lng, _ = strconv.ParseFloat(c.get(row, "lng"), 64)
	rec.GoogleRating, _ = strconv.ParseFloat(c.get(row, "google_rating"), 64)
	rec.ReviewCount, _ = strconv.Atoi(c.get(row, "review_count"))
	rec.JCIAccredited, _ = strconv.ParseBool(c.get(row, "jci_accredited"))
	return rec
}

func named(recs []Record) []Record {
	out := recs[:0]
	for _, r := range recs {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name != "" {
			out = append(out, r)
		}
	}
	return out
}
