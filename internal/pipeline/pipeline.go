// Package pipeline sequences one full run: for each company it finds the
// careers page, harvests contact emails, scrapes and ranks openings, then
// works through every opening in order, tailoring the resume and filling
// the application form. One record is logged per application attempt.
// Companies are processed strictly one at a time.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobpilot/internal/browser"
	"jobpilot/internal/career"
	"jobpilot/internal/config"
	"jobpilot/internal/emails"
	"jobpilot/internal/filler"
	"jobpilot/internal/logging"
	"jobpilot/internal/scraper"
	"jobpilot/pkg/models"
)

// Browser is the full page-driving surface the pipeline hands to its
// components. The chromedp driver satisfies it.
type Browser interface {
	Navigate(url string) error
	Back() error
	HTML() (string, error)
	Location() (string, error)
	Links() ([]browser.Link, error)
	WaitVisible(selector string, timeout time.Duration) error
	IsEnabled(selector string) bool
	HumanType(selector, text string) error
	HumanClick(selector string) error
	Upload(selector, path string) error
	Screenshot(path string) error
	HumanDelay(min, max time.Duration)
	ScrollToBottom()
}

// CareerFinder locates a company's careers page.
type CareerFinder interface {
	Find(nav career.Navigator, company models.Company) (string, error)
}

// JobScraper extracts and enriches job postings.
type JobScraper interface {
	Scrape(html, pageURL, company string) ([]models.JobPosting, error)
	Details(nav scraper.Navigator, job *models.JobPosting) error
}

// EmailExtractor harvests contact addresses.
type EmailExtractor interface {
	FromPage(nav emails.Navigator) []string
	FromText(text string) []string
}

// ResumeCustomizer produces a per-job resume, falling back to the base
// resume path on failure.
type ResumeCustomizer interface {
	Customize(ctx context.Context, job models.JobPosting) (string, error)
}

// FormFiller drives the application form.
type FormFiller interface {
	Apply(page filler.Page, job models.JobPosting, resumePath string) (*filler.Result, error)
}

// Logbook persists application records.
type Logbook interface {
	Append(rec models.ApplicationRecord) error
}

// History remembers which postings were already attempted.
type History interface {
	HasApplied(applyLink string) (bool, error)
	MarkApplied(job models.JobPosting, status string) error
}

// Summary is the tally of one run. Processed and EmailsFound count
// companies; the status counters count log records, so one company can
// contribute several.
type Summary struct {
	Processed    int
	Applied      int
	Manual       int
	Failed       int
	NoJobs       int
	NoCareerPage int
	Errors       int
	EmailsFound  int
	Duration     time.Duration
}

// companyPause separates companies so runs do not hammer anyone. Jobs
// within a company are not paused beyond the form filler's own pacing.
const companyPause = 2 * time.Second

// Pipeline wires the components together for a run.
type Pipeline struct {
	cfg     *config.Config
	logger  *logging.Logger
	browser Browser
	finder  CareerFinder
	scraper JobScraper
	emails  EmailExtractor
	resume  ResumeCustomizer
	filler  FormFiller
	logbook Logbook
	history History

	sleep func(time.Duration)
	now   func() time.Time
}

func New(cfg *config.Config, logger *logging.Logger, b Browser, finder CareerFinder,
	js JobScraper, ee EmailExtractor, rc ResumeCustomizer, ff FormFiller,
	logbook Logbook, history History) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		logger:  logger,
		browser: b,
		finder:  finder,
		scraper: js,
		emails:  ee,
		resume:  rc,
		filler:  ff,
		logbook: logbook,
		history: history,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// Run processes every company in order and returns the run tally. A
// company counts as a success when at least one of its applications
// went through.
func (p *Pipeline) Run(ctx context.Context, list []models.Company) (Summary, error) {
	start := p.now()
	var summary Summary

	for i, company := range list {
		if err := ctx.Err(); err != nil {
			summary.Duration = p.now().Sub(start)
			return summary, err
		}

		p.logger.Section(fmt.Sprintf("Processing %d/%d: %s", i+1, len(list), company.Name))
		recs := p.processCompany(ctx, company)

		applied, attempted, hasEmail := 0, 0, false
		for _, rec := range recs {
			if err := p.logbook.Append(rec); err != nil {
				p.logger.Error("Could not log record for %s: %v", company.Name, err)
			}
			summary.tally(rec)
			if rec.Status == models.StatusSuccess {
				applied++
			}
			if rec.JobTitle != "" {
				attempted++
			}
			if rec.HREmail != "" {
				hasEmail = true
			}
		}
		summary.Processed++
		if hasEmail {
			summary.EmailsFound++
		}
		switch {
		case applied > 0:
			p.logger.Success("%s: %d application(s) submitted", company.Name, applied)
		case attempted > 0:
			p.logger.Failure("%s: no applications submitted", company.Name)
		}

		if i < len(list)-1 {
			p.sleep(companyPause)
		}
	}

	summary.Duration = p.now().Sub(start)
	p.report(summary)
	return summary, nil
}

// processCompany never lets one company's failure break the run; a panic
// in any component becomes an error record.
func (p *Pipeline) processCompany(ctx context.Context, company models.Company) (recs []models.ApplicationRecord) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Panic while processing %s: %v", company.Name, r)
			rec := p.newRecord(company)
			rec.Status = models.StatusError
			rec.Error = fmt.Sprintf("panic: %v", r)
			recs = append(recs, rec)
		}
	}()

	rec := p.newRecord(company)

	careerURL, err := p.finder.Find(p.browser, company)
	if err != nil {
		rec.Status = models.StatusError
		rec.Error = err.Error()
		return []models.ApplicationRecord{rec}
	}
	if careerURL == "" {
		rec.Status = models.StatusNoCareerPage
		return []models.ApplicationRecord{rec}
	}
	rec.CareerURL = careerURL

	if err := p.browser.Navigate(careerURL); err != nil {
		rec.Status = models.StatusError
		rec.Error = err.Error()
		return []models.ApplicationRecord{rec}
	}
	p.browser.ScrollToBottom()

	html, err := p.browser.HTML()
	if err != nil {
		rec.Status = models.StatusError
		rec.Error = err.Error()
		return []models.ApplicationRecord{rec}
	}
	jobs, err := p.scraper.Scrape(html, careerURL, company.Name)
	if err != nil {
		rec.Status = models.StatusError
		rec.Error = err.Error()
		return []models.ApplicationRecord{rec}
	}

	hrEmail := strings.Join(p.emails.FromPage(p.browser), ", ")
	rec.HREmail = hrEmail

	if len(jobs) == 0 {
		rec.Status = models.StatusNoJobs
		return []models.ApplicationRecord{rec}
	}

	for i, job := range jobs {
		if applied, err := p.history.HasApplied(job.ApplyLink); err != nil {
			p.logger.Warn("History lookup failed: %v", err)
		} else if applied {
			p.logger.Info("Skipping already-attempted posting: %s", job.Title)
			continue
		}
		p.logger.Subsection(fmt.Sprintf("Job %d/%d: %s", i+1, len(jobs), job.Title))
		recs = append(recs, p.processJob(ctx, company, careerURL, hrEmail, job))
	}
	if len(recs) == 0 {
		rec.Status = models.StatusNoJobs
		rec.Error = "all relevant openings already attempted"
		return []models.ApplicationRecord{rec}
	}
	return recs
}

// processJob carries one posting through resume tailoring and form
// filling and returns its log record.
func (p *Pipeline) processJob(ctx context.Context, company models.Company, careerURL, hrEmail string, job models.JobPosting) models.ApplicationRecord {
	rec := p.newRecord(company)
	rec.CareerURL = careerURL

	if err := p.scraper.Details(p.browser, &job); err != nil {
		p.logger.Warn("Could not fetch job details for %s: %v", job.Title, err)
	}
	rec.JobTitle = job.Title
	rec.JobLocation = job.Location
	rec.JobDescription = job.Description
	rec.ApplyLink = job.ApplyLink

	rec.HREmail = hrEmail
	if rec.HREmail == "" {
		rec.HREmail = strings.Join(p.emails.FromText(job.Description), ", ")
	}

	resumePath, err := p.resume.Customize(ctx, job)
	if err != nil {
		p.logger.Warn("Using base resume for %s: %v", company.Name, err)
	}
	rec.ResumePath = resumePath

	if job.ApplyLink == "" {
		rec.Status = models.StatusFailed
		rec.Error = "no apply link found"
		return rec
	}
	if err := p.browser.Navigate(job.ApplyLink); err != nil {
		rec.Status = models.StatusError
		rec.Error = err.Error()
		return rec
	}

	result, err := p.filler.Apply(p.browser, job, resumePath)
	if err != nil {
		rec.Error = err.Error()
	}
	switch {
	case result == nil:
		rec.Status = models.StatusFailed
	case result.Outcome == filler.OutcomeSuccess:
		rec.Status = models.StatusSuccess
	case result.Outcome == filler.OutcomeManual:
		rec.Status = models.StatusManual
		if rec.Error == "" {
			rec.Error = result.Message
		}
	default:
		rec.Status = models.StatusFailed
		if rec.Error == "" {
			rec.Error = result.Message
		}
	}

	if err := p.history.MarkApplied(job, rec.Status); err != nil {
		p.logger.Warn("Could not record history for %s: %v", job.Title, err)
	}
	return rec
}

func (p *Pipeline) newRecord(company models.Company) models.ApplicationRecord {
	return models.ApplicationRecord{
		Timestamp:   p.now().Format("2006-01-02 15:04:05"),
		CompanyName: company.Name,
		CompanyURL:  company.URL,
	}
}

func (s *Summary) tally(rec models.ApplicationRecord) {
	switch rec.Status {
	case models.StatusSuccess:
		s.Applied++
	case models.StatusManual:
		s.Manual++
	case models.StatusFailed:
		s.Failed++
	case models.StatusNoJobs:
		s.NoJobs++
	case models.StatusNoCareerPage:
		s.NoCareerPage++
	case models.StatusError:
		s.Errors++
	}
}

func (p *Pipeline) report(s Summary) {
	p.logger.Section("Run Summary")
	p.logger.Info("Companies processed: %d", s.Processed)
	p.logger.Info("Applications submitted: %d", s.Applied)
	p.logger.Info("Manual intervention needed: %d", s.Manual)
	p.logger.Info("Failed: %d", s.Failed)
	p.logger.Info("No relevant jobs: %d", s.NoJobs)
	p.logger.Info("No career page: %d", s.NoCareerPage)
	p.logger.Info("Errors: %d", s.Errors)
	p.logger.Info("Emails found: %d", s.EmailsFound)
	p.logger.Info("Duration: %s", s.Duration.Round(time.Second))
}
