package filler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot/internal/config"
	"jobpilot/internal/logging"
	"jobpilot/pkg/models"
)

// fakePage scripts browser behavior for one fill attempt.
type fakePage struct {
	html     string
	location string
	visible  map[string]bool
	disabled map[string]bool

	typed       map[string]string
	uploadedTo  string
	uploadError error
	screenshots []string
	waits       []string
}

func (p *fakePage) HTML() (string, error)         { return p.html, nil }
func (p *fakePage) Location() (string, error)     { return p.location, nil }
func (p *fakePage) IsEnabled(sel string) bool     { return !p.disabled[sel] }
func (p *fakePage) HumanDelay(_, _ time.Duration) {}
func (p *fakePage) ScrollToBottom()               {}

func (p *fakePage) WaitVisible(sel string, _ time.Duration) error {
	p.waits = append(p.waits, sel)
	if p.visible[sel] {
		return nil
	}
	return errors.New("not visible")
}

func (p *fakePage) HumanType(sel, text string) error {
	if p.typed == nil {
		p.typed = map[string]string{}
	}
	p.typed[sel] = text
	return nil
}

func (p *fakePage) HumanClick(string) error { return nil }

func (p *fakePage) Upload(sel, path string) error {
	if p.uploadError != nil {
		return p.uploadError
	}
	p.uploadedTo = sel
	return nil
}

func (p *fakePage) Screenshot(path string) error {
	p.screenshots = append(p.screenshots, path)
	return nil
}

func testFiller(t *testing.T) (*Filler, *config.Config) {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.OutputDir = t.TempDir()
	cfg.User = models.UserData{
		Name:            "Jane Smith",
		Email:           "jane@example.com",
		Phone:           "+15551234567",
		YearsExperience: "7",
		CurrentTitle:    "Engineer",
		Skills:          "Go, SQL",
	}

	logger := logging.New(logging.LevelError, nil, nil)
	f := New(cfg, logger)
	f.adaptive.reviewPause = 0
	return f, cfg
}

func writeResume(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))
	return path
}

const formPage = `
<form>
  <input type="email" id="email" name="email">
  <input type="text" id="first_name" name="first_name">
  <input type="file" id="resume" name="resume">
  <textarea id="cover_letter" name="cover_letter"></textarea>
  <button type="submit">Apply</button>
</form>`

var job = models.JobPosting{Title: "Backend Engineer", Company: "Acme"}

func TestApplyFillsFormAndSucceeds(t *testing.T) {
	f, _ := testFiller(t)
	page := &fakePage{
		html:     formPage,
		location: "https://acme.com/apply",
		visible: map[string]bool{
			"#email":                true,
			"#first_name":           true,
			"#cover_letter":         true,
			"button[type='submit']": true,
		},
	}

	result, err := f.Apply(page, job, writeResume(t))
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 3, result.FieldsFilled)
	assert.True(t, result.ResumeUploaded)
	assert.True(t, result.SubmitFound)

	assert.Equal(t, "jane@example.com", page.typed["#email"])
	assert.Equal(t, "Jane", page.typed["#first_name"])
	assert.Contains(t, page.typed["#cover_letter"], "Backend Engineer")
	assert.Contains(t, page.typed["#cover_letter"], "Acme")
	assert.Equal(t, "input[type='file']", page.uploadedTo)
}

func TestApplySelectorLadderFallsBackToName(t *testing.T) {
	f, _ := testFiller(t)
	page := &fakePage{
		html: `<form><input type="email" name="email"><button type="submit">Apply</button></form>`,
		visible: map[string]bool{
			"[name='email']":        true,
			"button[type='submit']": true,
		},
	}

	result, err := f.Apply(page, job, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "jane@example.com", page.typed["[name='email']"])
}

func TestApplyManualWhenNoForm(t *testing.T) {
	f, _ := testFiller(t)
	page := &fakePage{html: "<html><body><p>Openings</p></body></html>"}

	result, err := f.Apply(page, job, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeManual, result.Outcome)
	assert.Equal(t, 0, result.FieldsFilled)
}

func TestApplyManualWhenNothingFillable(t *testing.T) {
	f, _ := testFiller(t)
	// A form exists but no element ever becomes visible.
	page := &fakePage{html: formPage}

	result, err := f.Apply(page, job, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeManual, result.Outcome)
}

func TestApplyManualWhenSubmitMissing(t *testing.T) {
	f, _ := testFiller(t)
	page := &fakePage{
		html:    `<form><input type="email" id="email" name="email"></form>`,
		visible: map[string]bool{"#email": true},
	}

	result, err := f.Apply(page, job, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeManual, result.Outcome)
	assert.Equal(t, 1, result.FieldsFilled)
	assert.False(t, result.SubmitFound)
}

func TestApplyManualWhenSubmitDisabled(t *testing.T) {
	f, _ := testFiller(t)
	page := &fakePage{
		html: `<form><input type="email" id="email" name="email"><button type="submit">Apply</button></form>`,
		visible: map[string]bool{
			"#email":                true,
			"button[type='submit']": true,
		},
		disabled: map[string]bool{"button[type='submit']": true},
	}

	result, err := f.Apply(page, job, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeManual, result.Outcome)
}

func TestApplyFindsSubmitByButtonText(t *testing.T) {
	f, _ := testFiller(t)
	page := &fakePage{
		html: `<form><input type="email" id="email" name="email"><button>Next</button></form>`,
		visible: map[string]bool{
			"#email": true,
			"//button[contains(translate(text(), 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), 'next')]": true,
		},
	}

	result, err := f.Apply(page, job, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.True(t, result.SubmitFound)
}

func TestApplyFindsSubmitByDataTestAttribute(t *testing.T) {
	f, _ := testFiller(t)
	page := &fakePage{
		html: `<form><input type="email" id="email" name="email"><button data-test="submit-application">Go</button></form>`,
		visible: map[string]bool{
			"#email":                true,
			"[data-test*='submit']": true,
		},
	}

	result, err := f.Apply(page, job, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.True(t, result.SubmitFound)
}

func TestApplyTestModeNeverReportsSuccess(t *testing.T) {
	f, cfg := testFiller(t)
	cfg.TestMode = true
	page := &fakePage{
		html: `<form><input type="email" id="email" name="email"><button type="submit">Apply</button></form>`,
		visible: map[string]bool{
			"#email":                true,
			"button[type='submit']": true,
		},
	}

	result, err := f.Apply(page, job, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeManual, result.Outcome)
	assert.Equal(t, 1, result.FieldsFilled)
	assert.True(t, result.SubmitFound)
}

func TestApplyUploadLadderExhausted(t *testing.T) {
	f, _ := testFiller(t)
	page := &fakePage{
		html: `<form><input type="email" id="email" name="email"><input type="file" name="resume"><button type="submit">Apply</button></form>`,
		visible: map[string]bool{
			"#email":                true,
			"button[type='submit']": true,
		},
		uploadError: errors.New("upload rejected"),
	}

	result, err := f.Apply(page, job, writeResume(t))
	require.NoError(t, err)
	assert.False(t, result.ResumeUploaded)
	// Typed fields still count, so the outcome stands on its own.
	assert.Equal(t, OutcomeSuccess, result.Outcome)
}

func TestNamedStrategiesDelegateToAdaptive(t *testing.T) {
	f, _ := testFiller(t)
	page := &fakePage{
		html:     formPage,
		location: "https://boards.greenhouse.io/acme/jobs/1",
		visible: map[string]bool{
			"#email":                true,
			"#first_name":           true,
			"#cover_letter":         true,
			"button[type='submit']": true,
		},
	}

	result, err := f.Apply(page, job, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	// The greenhouse strategy probes its container selectors first.
	assert.Contains(t, page.waits, "#application_form")
}

func TestStrategySelection(t *testing.T) {
	f, _ := testFiller(t)

	cases := []struct {
		ats  models.ATSType
		want string
	}{
		{models.ATSGreenhouse, "greenhouse"},
		{models.ATSLever, "lever"},
		{models.ATSWorkday, "workday"},
	}
	for _, tc := range cases {
		s, ok := f.strategies[tc.ats]
		require.True(t, ok)
		assert.Equal(t, tc.want, s.Name())
	}
	_, ok := f.strategies[models.ATSCustom]
	assert.False(t, ok)
	assert.Equal(t, "adaptive", f.adaptive.Name())
}
