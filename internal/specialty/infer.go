// Package specialty infers facility specialties and popular procedures from
// country and name.
package specialty

import (
	"regexp"

	"github.com/galtpos/oasara-sub004/internal/model"
)

const (
	proceduresPerSpecialty = 2
	maxProcedures          = 5
)

var base = []string{"General Medicine", "Emergency Care"}

// byCountry lists what each destination is known for.
var byCountry = map[string][]string{
	"Thailand":             {"Cosmetic Surgery", "Gender Reassignment", "Dental", "Wellness & Spa Medicine", "Lasik", "IVF"},
	"Turkey":               {"Hair Transplant", "Cosmetic Surgery", "Dental", "Eye Surgery", "IVF", "Bariatric Surgery"},
	"India":                {"Cardiac Surgery", "Orthopedics", "Organ Transplant", "Oncology", "Neurosurgery", "IVF"},
	"Mexico":               {"Dental", "Bariatric Surgery", "Cosmetic Surgery", "Stem Cell Therapy", "Cancer Treatment"},
	"South Korea":          {"Cosmetic Surgery", "Plastic Surgery", "Stem Cell Therapy", "Cancer Treatment", "Robotic Surgery"},
	"Singapore":            {"Cancer Treatment", "Cardiac Surgery", "Neurosurgery", "Robotic Surgery", "Pediatrics"},
	"Brazil":               {"Cosmetic Surgery", "Plastic Surgery", "Dental", "Orthopedics", "Bariatric Surgery"},
	"Colombia":             {"Cosmetic Surgery", "Dental", "Bariatric Surgery", "Ophthalmology", "Plastic Surgery"},
	"United Arab Emirates": {"Cosmetic Surgery", "Orthopedics", "Cardiac Surgery", "Fertility Treatment", "Oncology"},
	"Israel":               {"IVF", "Fertility Treatment", "Cancer Treatment", "Cardiac Surgery", "Neurosurgery", "Robotic Surgery"},
	"Malaysia":             {"Cardiac Surgery", "IVF", "Oncology", "Health Screening", "Orthopedics"},
	"Spain":                {"IVF", "Fertility Treatment", "Ophthalmology", "Cosmetic Surgery", "Organ Transplant"},
	"Czech Republic":       {"IVF", "Cosmetic Surgery", "Dental", "Orthopedics"},
	"Hungary":              {"Dental", "Cosmetic Surgery", "Orthopedics", "IVF"},
	"Poland":               {"Dental", "Cosmetic Surgery", "Orthopedics", "Cardiac Surgery"},
	"Germany":              {"Orthopedics", "Cardiac Surgery", "Cancer Treatment", "Neurosurgery", "Proton Therapy"},
	"United States":        {"Cancer Treatment", "Cardiac Surgery", "Neurosurgery", "Organ Transplant", "Robotic Surgery"},
	"China":                {"Traditional Chinese Medicine", "Cancer Treatment", "Cardiac Surgery", "Stem Cell Therapy"},
	"Japan":                {"Cancer Treatment", "Cardiac Surgery", "Robotic Surgery", "Regenerative Medicine"},
	"Saudi Arabia":         {"Cardiac Surgery", "Orthopedics", "Oncology", "Neurosurgery"},
	"Qatar":                {"Cardiac Surgery", "Orthopedics", "Pediatrics", "Sports Medicine"},
	"Lebanon":              {"Cosmetic Surgery", "Cardiac Surgery", "IVF"},
	"Jordan":               {"Cancer Treatment", "Cardiac Surgery", "Orthopedics", "IVF"},
	"South Africa":         {"Cosmetic Surgery", "Cardiac Surgery", "Orthopedics", "IVF"},
	"Egypt":                {"Ophthalmology", "Cardiac Surgery", "IVF", "Dental"},
	"Australia":            {"Cancer Treatment", "Cardiac Surgery", "IVF", "Orthopedics"},
	"Canada":               {"Cancer Treatment", "Cardiac Surgery", "Neurosurgery", "Orthopedics"},
	"United Kingdom":       {"Cancer Treatment", "Cardiac Surgery", "IVF", "Neurosurgery"},
	"France":               {"Cancer Treatment", "Cardiac Surgery", "IVF", "Neurosurgery"},
	"Italy":                {"Cancer Treatment", "Cardiac Surgery", "IVF", "Pediatrics"},
	"Switzerland":          {"Cancer Treatment", "Cardiac Surgery", "Neurosurgery", "Rehabilitation"},
	"Austria":              {"Orthopedics", "Cardiac Surgery", "Oncology"},
	"Sweden":               {"Cancer Treatment", "Cardiac Surgery", "Orthopedics"},
	"Norway":               {"Cancer Treatment", "Cardiac Surgery", "Neurosurgery"},
	"Denmark":              {"Cancer Treatment", "IVF", "Fertility Treatment"},
	"Taiwan":               {"Cancer Treatment", "Cardiac Surgery", "IVF", "Robotic Surgery"},
	"Chile":                {"Ophthalmology", "Cosmetic Surgery", "Dental"},
	"Argentina":            {"Cosmetic Surgery", "IVF", "Dental"},
	"Uruguay":              {"Cosmetic Surgery", "Dental", "IVF"},
	"Costa Rica":           {"Dental", "Cosmetic Surgery", "Bariatric Surgery", "IVF"},
}

type namePattern struct {
	re          *regexp.Regexp
	specialties []string
}

func pattern(expr string, specialties ...string) namePattern {
	return namePattern{re: regexp.MustCompile(`(?i)` + expr), specialties: specialties}
}

// namePatterns are checked in order against the facility name.
var namePatterns = []namePattern{
	pattern(`dental|tooth|oral`, "Dental", "Oral Surgery"),
	pattern(`heart|cardiac|cardio`, "Cardiac Surgery", "Cardiology", "Cardiovascular"),
	pattern(`cancer|onco|tumor`, "Oncology", "Cancer Treatment", "Radiation Therapy"),
	pattern(`eye|ophth|vision|retina`, "Ophthalmology", "Lasik", "Eye Surgery"),
	pattern(`aesthetic|plastic|beauty|cosmetic`, "Cosmetic Surgery", "Plastic Surgery", "Aesthetic Medicine"),
	pattern(`ortho|bone|joint|spine`, "Orthopedics", "Spine Surgery", "Joint Replacement"),
	pattern(`neuro|brain|neural`, "Neurosurgery", "Neurology"),
	pattern(`women|maternity|fertility|ivf|gyneco`, "IVF", "Fertility Treatment", "Obstetrics & Gynecology"),
	pattern(`children|pediatric|child|kids`, "Pediatrics", "Pediatric Surgery"),
	pattern(`skin|derma`, "Dermatology", "Skin Treatment"),
	pattern(`kidney|renal|dialysis`, "Nephrology", "Dialysis", "Kidney Transplant"),
	pattern(`liver|hepato`, "Hepatology", "Liver Transplant"),
	pattern(`diabetes|endocrin`, "Endocrinology", "Diabetes Treatment"),
	pattern(`weight|bariatric|obesity`, "Bariatric Surgery", "Weight Loss Surgery"),
	pattern(`transplant`, "Organ Transplant", "Transplant Surgery"),
	pattern(`hair`, "Hair Transplant"),
	pattern(`rehabilitation|rehab`, "Rehabilitation", "Physical Therapy"),
	pattern(`emergency|trauma`, "Emergency Medicine", "Trauma Surgery"),
	pattern(`gastro|digestive`, "Gastroenterology", "Digestive Surgery"),
}

// templates are the display procedures offered per specialty.
var templates = map[string][]model.PopularProcedure{
	"Cosmetic Surgery": {
		{Name: "Breast Augmentation", PriceRange: "$3,000 - $5,000", WaitTime: "2-4 weeks"},
		{Name: "Rhinoplasty", PriceRange: "$2,500 - $4,000", WaitTime: "2-3 weeks"},
		{Name: "Liposuction", PriceRange: "$2,000 - $4,500", WaitTime: "1-2 weeks"},
		{Name: "Facelift", PriceRange: "$4,000 - $7,000", WaitTime: "3-4 weeks"},
	},
	"Dental": {
		{Name: "Dental Implants", PriceRange: "$800 - $2,000 per tooth", WaitTime: "1-2 weeks"},
		{Name: "All-on-4 Implants", PriceRange: "$7,000 - $15,000", WaitTime: "2-3 weeks"},
		{Name: "Veneers", PriceRange: "$250 - $500 per tooth", WaitTime: "1 week"},
		{Name: "Crown", PriceRange: "$200 - $400", WaitTime: "3-5 days"},
	},
	"Cardiac Surgery": {
		{Name: "Bypass Surgery", PriceRange: "$10,000 - $20,000", WaitTime: "1-2 weeks"},
		{Name: "Angioplasty", PriceRange: "$5,000 - $10,000", WaitTime: "3-5 days"},
		{Name: "Heart Valve Replacement", PriceRange: "$15,000 - $25,000", WaitTime: "2-3 weeks"},
		{Name: "Pacemaker Implantation", PriceRange: "$4,000 - $7,000", WaitTime: "1 week"},
	},
	"Orthopedics": {
		{Name: "Knee Replacement", PriceRange: "$6,000 - $12,000", WaitTime: "2-3 weeks"},
		{Name: "Hip Replacement", PriceRange: "$7,000 - $13,000", WaitTime: "2-4 weeks"},
		{Name: "Spine Surgery", PriceRange: "$8,000 - $15,000", WaitTime: "2-3 weeks"},
		{Name: "ACL Reconstruction", PriceRange: "$4,000 - $7,000", WaitTime: "1-2 weeks"},
	},
	"IVF": {
		{Name: "IVF Cycle", PriceRange: "$3,000 - $5,000", WaitTime: "4-6 weeks"},
		{Name: "Egg Donation IVF", PriceRange: "$5,000 - $8,000", WaitTime: "6-8 weeks"},
		{Name: "ICSI", PriceRange: "$4,000 - $6,000", WaitTime: "4-6 weeks"},
	},
	"Hair Transplant": {
		{Name: "FUE Hair Transplant", PriceRange: "$2,000 - $5,000", WaitTime: "1-2 weeks"},
		{Name: "DHI Hair Transplant", PriceRange: "$2,500 - $6,000", WaitTime: "1-2 weeks"},
	},
	"Bariatric Surgery": {
		{Name: "Gastric Sleeve", PriceRange: "$4,000 - $8,000", WaitTime: "2-3 weeks"},
		{Name: "Gastric Bypass", PriceRange: "$5,000 - $10,000", WaitTime: "2-4 weeks"},
		{Name: "Gastric Balloon", PriceRange: "$2,000 - $4,000", WaitTime: "1 week"},
	},
	"Oncology": {
		{Name: "Chemotherapy", PriceRange: "$2,000 - $5,000 per cycle", WaitTime: "Immediate"},
		{Name: "Radiation Therapy", PriceRange: "$3,000 - $8,000", WaitTime: "1 week"},
		{Name: "Tumor Removal", PriceRange: "$5,000 - $15,000", WaitTime: "1-2 weeks"},
	},
}

// Result is the inferred classification of one facility.
type Result struct {
	Specialties []string                 `json:"specialties"`
	Procedures  []model.PopularProcedure `json:"popular_procedures"`
}

// Changed reports whether r differs from what f already stores.
func (r Result) Changed(f model.Facility) bool {
	if len(r.Specialties) != len(f.Specialties) || len(r.Procedures) != len(f.PopularProcedures) {
		return true
	}
	for i := range r.Specialties {
		if r.Specialties[i] != f.Specialties[i] {
			return true
		}
	}
	for i := range r.Procedures {
		if r.Procedures[i] != f.PopularProcedures[i] {
			return true
		}
	}
	return false
}

// Infer classifies a facility. Specialties already stored are kept after
// the inferred ones.
func Infer(f model.Facility) Result {
	var out []string
	seen := make(map[string]bool)
	add := func(specs ...string) {
		for _, s := range specs {
			if s != "" && !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}

	add(base...)
	add(byCountry[f.Country]...)
	for _, p := range namePatterns {
		if p.re.MatchString(f.Name) {
			add(p.specialties...)
		}
	}
	add(f.Specialties...)

	return Result{Specialties: out, Procedures: Procedures(out)}
}

// Procedures picks the first two templates of each specialty in order and
// keeps the first five unique names.
func Procedures(specialties []string) []model.PopularProcedure {
	var out []model.PopularProcedure
	seen := make(map[string]bool)
	for _, s := range specialties {
		tpl := templates[s]
		if len(tpl) > proceduresPerSpecialty {
			tpl = tpl[:proceduresPerSpecialty]
		}
		for _, p := range tpl {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			out = append(out, p)
			if len(out) == maxProcedures {
				return out
			}
		}
	}
	return out
}
