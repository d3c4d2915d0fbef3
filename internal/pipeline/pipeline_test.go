package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot/internal/browser"
	"jobpilot/internal/career"
	"jobpilot/internal/config"
	"jobpilot/internal/emails"
	"jobpilot/internal/filler"
	"jobpilot/internal/logging"
	"jobpilot/internal/scraper"
	"jobpilot/pkg/models"
)

type fakeBrowser struct {
	navErr  map[string]error
	html    string
	current string
}

func (b *fakeBrowser) Navigate(url string) error {
	if err := b.navErr[url]; err != nil {
		return err
	}
	b.current = url
	return nil
}

func (b *fakeBrowser) Back() error                             { return nil }
func (b *fakeBrowser) HTML() (string, error)                   { return b.html, nil }
func (b *fakeBrowser) Location() (string, error)               { return b.current, nil }
func (b *fakeBrowser) Links() ([]browser.Link, error)          { return nil, nil }
func (b *fakeBrowser) WaitVisible(string, time.Duration) error { return nil }
func (b *fakeBrowser) IsEnabled(string) bool                   { return true }
func (b *fakeBrowser) HumanType(string, string) error          { return nil }
func (b *fakeBrowser) HumanClick(string) error                 { return nil }
func (b *fakeBrowser) Upload(string, string) error             { return nil }
func (b *fakeBrowser) Screenshot(string) error                 { return nil }
func (b *fakeBrowser) HumanDelay(time.Duration, time.Duration) {}
func (b *fakeBrowser) ScrollToBottom()                         {}

type fakeFinder struct {
	url string
	err error
}

func (f *fakeFinder) Find(career.Navigator, models.Company) (string, error) {
	return f.url, f.err
}

type fakeScraper struct {
	jobs  []models.JobPosting
	panic bool
}

func (s *fakeScraper) Scrape(string, string, string) ([]models.JobPosting, error) {
	if s.panic {
		panic("selector blew up")
	}
	return s.jobs, nil
}

func (s *fakeScraper) Details(scraper.Navigator, *models.JobPosting) error { return nil }

type fakeEmails struct {
	page []string
	text []string
}

func (e *fakeEmails) FromPage(emails.Navigator) []string { return e.page }
func (e *fakeEmails) FromText(string) []string           { return e.text }

type fakeResume struct {
	path string
	err  error
}

func (r *fakeResume) Customize(context.Context, models.JobPosting) (string, error) {
	return r.path, r.err
}

type fakeFiller struct {
	result *filler.Result
	err    error
}

func (f *fakeFiller) Apply(filler.Page, models.JobPosting, string) (*filler.Result, error) {
	return f.result, f.err
}

type memLog struct {
	recs []models.ApplicationRecord
}

func (l *memLog) Append(rec models.ApplicationRecord) error {
	l.recs = append(l.recs, rec)
	return nil
}

type memHistory struct {
	applied map[string]bool
	marked  map[string]string
}

func (h *memHistory) HasApplied(link string) (bool, error) { return h.applied[link], nil }
func (h *memHistory) MarkApplied(job models.JobPosting, status string) error {
	if h.marked == nil {
		h.marked = map[string]string{}
	}
	h.marked[job.ApplyLink] = status
	return nil
}

type fixture struct {
	pipeline *Pipeline
	browser  *fakeBrowser
	finder   *fakeFinder
	scraper  *fakeScraper
	emails   *fakeEmails
	resume   *fakeResume
	filler   *fakeFiller
	logbook  *memLog
	history  *memHistory
	sleeps   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)

	fx := &fixture{
		browser: &fakeBrowser{html: "<html></html>"},
		finder:  &fakeFinder{url: "https://acme.com/careers"},
		scraper: &fakeScraper{jobs: []models.JobPosting{{
			Title:     "Backend Engineer",
			Company:   "Acme",
			Location:  "Remote",
			ApplyLink: "https://acme.com/jobs/1/apply",
		}}},
		emails:  &fakeEmails{},
		resume:  &fakeResume{path: "/tmp/resume.pdf"},
		filler:  &fakeFiller{result: &filler.Result{Outcome: filler.OutcomeSuccess, FieldsFilled: 4}},
		logbook: &memLog{},
		history: &memHistory{applied: map[string]bool{}},
	}
	fx.pipeline = New(cfg, logging.New(logging.LevelError, nil, nil),
		fx.browser, fx.finder, fx.scraper, fx.emails, fx.resume, fx.filler,
		fx.logbook, fx.history)
	fx.pipeline.sleep = func(time.Duration) { fx.sleeps++ }
	return fx
}

var acme = models.Company{Name: "Acme", URL: "https://acme.com"}

func TestRunSuccessfulApplication(t *testing.T) {
	fx := newFixture(t)

	summary, err := fx.pipeline.Run(context.Background(), []models.Company{acme})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Applied)
	assert.Zero(t, summary.NoJobs)

	require.Len(t, fx.logbook.recs, 1)
	rec := fx.logbook.recs[0]
	assert.Equal(t, models.StatusSuccess, rec.Status)
	assert.Equal(t, "Acme", rec.CompanyName)
	assert.Equal(t, "https://acme.com/careers", rec.CareerURL)
	assert.Equal(t, "Backend Engineer", rec.JobTitle)
	assert.Equal(t, "/tmp/resume.pdf", rec.ResumePath)
	assert.Equal(t, models.StatusSuccess, fx.history.marked["https://acme.com/jobs/1/apply"])
}

func TestRunNoCareerPageLogsExactlyOneRecord(t *testing.T) {
	fx := newFixture(t)
	fx.finder.url = ""

	summary, err := fx.pipeline.Run(context.Background(), []models.Company{acme})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.NoCareerPage)
	require.Len(t, fx.logbook.recs, 1)
	assert.Equal(t, models.StatusNoCareerPage, fx.logbook.recs[0].Status)
	assert.Empty(t, fx.logbook.recs[0].CareerURL)
}

func TestRunNoJobsStillCapturesEmails(t *testing.T) {
	fx := newFixture(t)
	fx.scraper.jobs = nil
	fx.emails.page = []string{"hr@acme.com"}

	summary, err := fx.pipeline.Run(context.Background(), []models.Company{acme})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.NoJobs)
	assert.Equal(t, 1, summary.EmailsFound)
	require.Len(t, fx.logbook.recs, 1)
	assert.Equal(t, models.StatusNoJobs, fx.logbook.recs[0].Status)
	assert.Equal(t, "hr@acme.com", fx.logbook.recs[0].HREmail)
}

func TestRunSkipsAlreadyAttemptedPostings(t *testing.T) {
	fx := newFixture(t)
	fx.history.applied["https://acme.com/jobs/1/apply"] = true

	_, err := fx.pipeline.Run(context.Background(), []models.Company{acme})
	require.NoError(t, err)

	require.Len(t, fx.logbook.recs, 1)
	rec := fx.logbook.recs[0]
	assert.Equal(t, models.StatusNoJobs, rec.Status)
	assert.Equal(t, "all relevant openings already attempted", rec.Error)
}

func TestRunFallsBackToNextUnattemptedPosting(t *testing.T) {
	fx := newFixture(t)
	fx.scraper.jobs = append(fx.scraper.jobs, models.JobPosting{
		Title: "Platform Engineer", Company: "Acme",
		ApplyLink: "https://acme.com/jobs/2/apply",
	})
	fx.history.applied["https://acme.com/jobs/1/apply"] = true

	_, err := fx.pipeline.Run(context.Background(), []models.Company{acme})
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer", fx.logbook.recs[0].JobTitle)
}

func TestRunManualOutcome(t *testing.T) {
	fx := newFixture(t)
	fx.filler.result = &filler.Result{Outcome: filler.OutcomeManual, Message: "submit button not found"}

	summary, err := fx.pipeline.Run(context.Background(), []models.Company{acme})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Manual)
	rec := fx.logbook.recs[0]
	assert.Equal(t, models.StatusManual, rec.Status)
	assert.Equal(t, "submit button not found", rec.Error)
}

func TestRunJobWithoutApplyLinkFails(t *testing.T) {
	fx := newFixture(t)
	fx.scraper.jobs = []models.JobPosting{{Title: "Backend Engineer", Company: "Acme"}}

	summary, err := fx.pipeline.Run(context.Background(), []models.Company{acme})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	rec := fx.logbook.recs[0]
	assert.Equal(t, models.StatusFailed, rec.Status)
	assert.Equal(t, "no apply link found", rec.Error)
}

func TestRunAppliesToEveryScrapedJob(t *testing.T) {
	fx := newFixture(t)
	fx.scraper.jobs = append(fx.scraper.jobs, models.JobPosting{
		Title: "Platform Engineer", Company: "Acme",
		ApplyLink: "https://acme.com/jobs/2/apply",
	})

	summary, err := fx.pipeline.Run(context.Background(), []models.Company{acme})
	require.NoError(t, err)

	// One record per posting, a single processed company.
	require.Len(t, fx.logbook.recs, 2)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 2, summary.Applied)
	assert.Equal(t, "Backend Engineer", fx.logbook.recs[0].JobTitle)
	assert.Equal(t, "Platform Engineer", fx.logbook.recs[1].JobTitle)
	assert.Equal(t, models.StatusSuccess, fx.history.marked["https://acme.com/jobs/1/apply"])
	assert.Equal(t, models.StatusSuccess, fx.history.marked["https://acme.com/jobs/2/apply"])
}

func TestRunLogsEachJobOutcomeSeparately(t *testing.T) {
	fx := newFixture(t)
	fx.scraper.jobs = append(fx.scraper.jobs, models.JobPosting{
		Title: "Platform Engineer", Company: "Acme",
		ApplyLink: "https://acme.com/jobs/2/apply",
	})
	fx.browser.navErr = map[string]error{
		"https://acme.com/jobs/1/apply": errors.New("connection reset"),
	}

	summary, err := fx.pipeline.Run(context.Background(), []models.Company{acme})
	require.NoError(t, err)

	require.Len(t, fx.logbook.recs, 2)
	assert.Equal(t, models.StatusError, fx.logbook.recs[0].Status)
	assert.Equal(t, models.StatusSuccess, fx.logbook.recs[1].Status)
	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, 1, summary.Errors)
}

func TestRunEmailFallbackFromDescription(t *testing.T) {
	fx := newFixture(t)
	fx.scraper.jobs[0].Description = "Send questions to talent@acme.com"
	fx.emails.text = []string{"talent@acme.com"}

	_, err := fx.pipeline.Run(context.Background(), []models.Company{acme})
	require.NoError(t, err)
	assert.Equal(t, "talent@acme.com", fx.logbook.recs[0].HREmail)
}

func TestRunApplyPageNavigationFailure(t *testing.T) {
	fx := newFixture(t)
	fx.browser.navErr = map[string]error{
		"https://acme.com/jobs/1/apply": errors.New("connection reset"),
	}

	summary, err := fx.pipeline.Run(context.Background(), []models.Company{acme})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Errors)
	rec := fx.logbook.recs[0]
	assert.Equal(t, models.StatusError, rec.Status)
	assert.Equal(t, "connection reset", rec.Error)
}

func TestRunRecoversFromComponentPanic(t *testing.T) {
	fx := newFixture(t)
	fx.scraper.panic = true

	summary, err := fx.pipeline.Run(context.Background(), []models.Company{acme})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Errors)
	rec := fx.logbook.recs[0]
	assert.Equal(t, models.StatusError, rec.Status)
	assert.Contains(t, rec.Error, "selector blew up")
}

func TestRunPausesBetweenCompanies(t *testing.T) {
	fx := newFixture(t)
	list := []models.Company{acme, {Name: "Globex", URL: "https://globex.com"}}

	summary, err := fx.pipeline.Run(context.Background(), list)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	// One pause between two companies, none after the last.
	assert.Equal(t, 1, fx.sleeps)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := fx.pipeline.Run(ctx, []models.Company{acme})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Processed)
	assert.Empty(t, fx.logbook.recs)
}
