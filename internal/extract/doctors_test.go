package extract

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doctorsPage = `<html><body>
<section class="grid">
<div class="doctor-card"><h3>Dr. Somchai Jaidee</h3><p class="department">Surgery</p><p class="specialty">Cardiology</p><p> MD, FACS. 15 years of experience. Speaks English and Thai.</p></div>
<div class="doctor-card"><h3>Professor Anan Wong</h3><p class="specialty">Orthopedics</p></div>
<div class="doctor-card"><h3>Reception</h3></div>
</section>
<p>Also consulting: Dr. Lisa Tan and Mark Evans, MBBS.</p>
<p>Ask Dr. Smith today.</p>
</body></html>`

func TestDoctors_ElementsThenRegexFallback(t *testing.T) {
	site := newSite(map[string]string{"https://hospital.example/doctors": doctorsPage})

	doctors := Doctors(context.Background(), site, "https://hospital.example")
	require.Len(t, doctors, 4)

	first := doctors[0]
	assert.Equal(t, "Somchai Jaidee", first.Name)
	assert.Equal(t, "Cardiology", first.Specialty, "last specialty label wins")
	assert.Equal(t, []string{"MD", "FACS"}, first.Qualifications)
	assert.Equal(t, []string{"English", "Thai"}, first.Languages)
	require.NotNil(t, first.YearsExperience)
	assert.Equal(t, 15, *first.YearsExperience)
	assert.Equal(t, sourceDoctorElement, first.Source)
	assert.True(t, strings.HasPrefix(first.Bio, "Dr. Somchai Jaidee"))

	assert.Equal(t, "Anan Wong", doctors[1].Name)
	assert.Equal(t, "Orthopedics", doctors[1].Specialty)
	assert.Empty(t, doctors[1].Languages)
	assert.Nil(t, doctors[1].YearsExperience)

	assert.Equal(t, "Lisa Tan", doctors[2].Name)
	assert.Equal(t, sourceDoctorRegex, doctors[2].Source)
	assert.Equal(t, defaultSpecialty, doctors[2].Specialty)
	assert.Empty(t, doctors[2].Qualifications)

	assert.Equal(t, "Mark Evans", doctors[3].Name)
	assert.Equal(t, []string{"MBBS"}, doctors[3].Qualifications)
}

func TestDoctors_StopsAtFirstPageWithDoctors(t *testing.T) {
	site := newSite(map[string]string{
		"https://hospital.example":            `<html><body><h1>Welcome</h1></body></html>`,
		"https://hospital.example/doctors":    doctorsPage,
		"https://hospital.example/en/doctors": `<html><body><p>Dr. Other Person</p></body></html>`,
	})

	doctors := Doctors(context.Background(), site, "https://hospital.example")
	require.NotEmpty(t, doctors)
	assert.Equal(t, []string{
		"https://hospital.example",
		"https://hospital.example/en",
		"https://hospital.example/doctors",
	}, site.requested())
}

func TestDoctors_NoFallbackWithFiveElementDoctors(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<html><body>`)
	for _, n := range []string{"Anong", "Boon", "Chai", "Dara", "Ekkachai"} {
		fmt.Fprintf(&b, `<div class="physician"><h3>Dr. %s Srisuk</h3></div>`, n)
	}
	b.WriteString(`<p>Dr. Lisa Tan also visits.</p></body></html>`)
	site := newSite(map[string]string{"https://hospital.example": b.String()})

	doctors := Doctors(context.Background(), site, "https://hospital.example")
	require.Len(t, doctors, 5)
	for _, d := range doctors {
		assert.Equal(t, sourceDoctorElement, d.Source)
		assert.NotEqual(t, "Lisa Tan", d.Name)
	}
}

func TestDoctors_CapsAtTwenty(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<html><body>`)
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `<div class="staff"><h3>Dr. Name%s Family</h3></div>`, strings.Repeat("a", i+1))
	}
	b.WriteString(`</body></html>`)
	site := newSite(map[string]string{"https://hospital.example": b.String()})

	doctors := Doctors(context.Background(), site, "https://hospital.example")
	assert.Len(t, doctors, maxDoctors)
}

func TestDoctors_NoneFound(t *testing.T) {
	site := newSite(map[string]string{"https://hospital.example": `<html><body><p>Ask Dr. Smith today.</p></body></html>`})
	assert.Empty(t, Doctors(context.Background(), site, "https://hospital.example"))
	assert.Len(t, site.requested(), len(doctorPaths))
}

func TestQualifications(t *testing.T) {
	assert.Equal(t, []string{"MD", "PhD"}, qualifications("M.D. from Mahidol, PhD, and MD again"))
	assert.Empty(t, qualifications("CardiologyMD without a boundary"))
}

func TestYearsExperience(t *testing.T) {
	n := yearsExperience("over 20+ years of experience")
	require.NotNil(t, n)
	assert.Equal(t, 20, *n)

	n = yearsExperience("Experience of 8 years in cardiology")
	require.NotNil(t, n)
	assert.Equal(t, 8, *n)

	assert.Nil(t, yearsExperience("joined in 2019"))
}

func TestLanguages_RequiresMention(t *testing.T) {
	assert.Empty(t, languages("Trained in Thailand and England"))
	assert.Equal(t, []string{"English", "Arabic"}, languages("Languages spoken: Arabic, English"))
}

func TestDoctors_CardWithInlineSpecialty(t *testing.T) {
	site := newSite(map[string]string{
		"https://clinic.example": `<html><body><div class="doctor-card">Dr. Jane Smith, Cardiology</div></body></html>`,
	})

	doctors := Doctors(context.Background(), site, "https://clinic.example")
	require.Len(t, doctors, 1)
	assert.Equal(t, "Jane Smith", doctors[0].Name)
	assert.Equal(t, sourceDoctorElement, doctors[0].Source)
	assert.Equal(t, []string{"https://clinic.example"}, site.requested())
}
