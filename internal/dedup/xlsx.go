package dedup

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Sheet names in the report workbook.
const (
	SheetDuplicates  = "Duplicates"
	SheetCoverage    = "Coverage"
	SheetSpecialties = "Specialties"
)

// WriteXLSX saves the report as a workbook at path.
func WriteXLSX(path string, r Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "dedup: save workbook %s", path)
	}
	return nil
}

// EncodeXLSX writes the report workbook to w.
func EncodeXLSX(w io.Writer, r Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "dedup: write workbook")
}

// Workbook lays the report out over three sheets.
func Workbook(r Report) (*xlsx.File, error) {
	f := xlsx.NewFile()

	dup, err := f.AddSheet(SheetDuplicates)
	if err != nil {
		return nil, eris.Wrap(err, "dedup: add duplicates sheet")
	}
	addStrings(dup, "Key", "Facility ID", "Name", "City", "Country")
	for _, g := range r.Groups {
		for _, m := range g.Members {
			addStrings(dup, g.Key, m.ID, m.Name, m.City, m.Country)
		}
	}

	cov, err := f.AddSheet(SheetCoverage)
	if err != nil {
		return nil, eris.Wrap(err, "dedup: add coverage sheet")
	}
	c := r.Coverage
	addStrings(cov, "Field", "With", "Total", "Percent")
	addCount(cov, "website", c.WithWebsite, c.Total)
	addCount(cov, "phone", c.WithPhone, c.Total)
	addCount(cov, "email", c.WithEmail, c.Total)
	cov.AddRow()
	addStrings(cov, "Country", "Facilities")
	for _, cc := range c.Countries {
		row := cov.AddRow()
		row.AddCell().SetString(cc.Country)
		row.AddCell().SetInt(cc.Count)
	}

	sheet, err := f.AddSheet(SheetSpecialties)
	if err != nil {
		return nil, eris.Wrap(err, "dedup: add specialties sheet")
	}
	addStrings(sheet, "Country", "Specialty", "Facilities")
	for _, cs := range c.Specialties {
		for _, s := range cs.Specialties {
			row := sheet.AddRow()
			row.AddCell().SetString(cs.Country)
			row.AddCell().SetString(s.Specialty)
			row.AddCell().SetInt(s.Count)
		}
	}
	return f, nil
}

func addStrings(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func addCount(sheet *xlsx.Sheet, field string, have, total int) {
	row := sheet.AddRow()
	row.AddCell().SetString(field)
	row.AddCell().SetInt(have)
	row.AddCell().SetInt(total)
	row.AddCell().SetFloat(Percent(have, total))
}
