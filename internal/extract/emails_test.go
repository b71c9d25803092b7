package extract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emailHome = `<html><body>
<img src="/img/logo@2x.png">
<p>Write to info@hospital.com or noreply@hospital.com. Site issues: webmaster@hospital.com</p>
<nav>
<a href="/contact-us">Contact</a>
<a href="/international-patients">For overseas visitors</a>
<a href="/services">Patient Services</a>
<a href="/contact-us">Contact again</a>
<a href="https://other.example/contact">Partner contact</a>
<a href="/files/contact-form.pdf">Contact form</a>
<a href="/careers">Careers</a>
</nav>
</body></html>`

func TestEmailFinder_Find(t *testing.T) {
	site := newSite(map[string]string{
		"https://hospital.example":                        emailHome,
		"https://hospital.example/contact-us":             `<p>INFO@hospital.com, patient.services@hospital.org</p>`,
		"https://hospital.example/international-patients": `<p>international@hospital.com</p>`,
	})
	finder := NewEmailFinder(site, time.Millisecond, 5)

	res := finder.Find(context.Background(), "https://hospital.example")

	assert.Equal(t, []string{
		"https://hospital.example/contact-us",
		"https://hospital.example/international-patients",
		"https://hospital.example/services",
	}, res.ContactPages)
	assert.Equal(t, []ScoredEmail{
		{Email: "international@hospital.com", Score: 15},
		{Email: "patient.services@hospital.org", Score: 13},
		{Email: "info@hospital.com", Score: 10},
	}, res.Emails)
	assert.Equal(t, "international@hospital.com", res.Best())
}

func TestEmailFinder_MaxPages(t *testing.T) {
	site := newSite(map[string]string{"https://hospital.example": emailHome})
	finder := NewEmailFinder(site, time.Millisecond, 1)

	res := finder.Find(context.Background(), "https://hospital.example")
	assert.Equal(t, []string{"https://hospital.example/contact-us"}, res.ContactPages)
	require.Len(t, res.Emails, 1)
	assert.Equal(t, "info@hospital.com", res.Best())
}

func TestEmailFinder_HomepageFailure(t *testing.T) {
	finder := NewEmailFinder(newSite(nil), time.Millisecond, 5)

	res := finder.Find(context.Background(), "https://hospital.example")
	assert.Empty(t, res.Emails)
	assert.Empty(t, res.ContactPages)
	assert.Equal(t, "", res.Best())
}

func TestEmailFinder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	site := newSite(map[string]string{"https://hospital.example": emailHome})

	res := NewEmailFinder(site, time.Millisecond, 5).Find(ctx, "https://hospital.example")
	assert.Empty(t, res.Emails)
	assert.Empty(t, site.requested())
}

func TestScoreEmail(t *testing.T) {
	tests := []struct {
		email string
		want  int
	}{
		{"international@hospital.com", 15},
		{"info@hospital.com", 10},
		{"international.patient@hospital.org", 28},
		{"noreply@hospital.com", -20},
		{"webmaster@hospital.com", -10},
		{"admin@hospital.com", -5},
		{"dr.lee@hospital.edu", 3},
		{"someone@hospital.com", 0},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreEmail(tt.email))
		})
	}
}

func TestScanEmails_SkipsAssetsAndNegative(t *testing.T) {
	got := scanEmails([]byte(`logo@2x.png icon@3x.WEBP Info@Hospital.com noreply@hospital.com info@hospital.com`))
	assert.Equal(t, []ScoredEmail{{Email: "info@hospital.com", Score: 10}}, got)
}
