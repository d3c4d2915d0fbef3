// Package filler drives application forms: it maps the page's controls to
// profile data, types values with human pacing, attaches the resume, and
// locates the submit control. Submission itself is never automated; a
// review pause hands the final click to the operator.
package filler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"jobpilot/internal/analyzer"
	"jobpilot/internal/config"
	"jobpilot/internal/logging"
	"jobpilot/internal/mapper"
	"jobpilot/internal/textutil"
	"jobpilot/pkg/models"
)

// Fill outcomes recorded per application attempt.
const (
	OutcomeSuccess = "success"
	OutcomeManual  = "manual_required"
	OutcomeFailed  = "failed"
)

// Result describes what one fill attempt accomplished.
type Result struct {
	Outcome        string
	FieldsFilled   int
	ResumeUploaded bool
	SubmitFound    bool
	Screenshot     string
	Message        string
}

// Page is the slice of browser behavior the filler needs. The chromedp
// driver satisfies it; tests substitute a scripted fake.
type Page interface {
	HTML() (string, error)
	Location() (string, error)
	WaitVisible(selector string, timeout time.Duration) error
	IsEnabled(selector string) bool
	HumanType(selector, text string) error
	HumanClick(selector string) error
	Upload(selector, path string) error
	Screenshot(path string) error
	HumanDelay(min, max time.Duration)
	ScrollToBottom()
}

// Strategy fills the application form for one family of tracking systems.
type Strategy interface {
	Name() string
	Fill(page Page, job models.JobPosting, resumePath string) (*Result, error)
}

// Filler picks a strategy from the detected ATS and runs it.
type Filler struct {
	cfg      *config.Config
	logger   *logging.Logger
	analyzer *analyzer.Analyzer

	strategies map[models.ATSType]Strategy
	adaptive   *AdaptiveStrategy
}

func New(cfg *config.Config, logger *logging.Logger) *Filler {
	a := analyzer.New(cfg, logger)
	adaptive := &AdaptiveStrategy{
		cfg:         cfg,
		logger:      logger,
		analyzer:    a,
		mapper:      mapper.New(cfg, logger),
		reviewPause: defaultReviewPause,
	}
	return &Filler{
		cfg:      cfg,
		logger:   logger,
		analyzer: a,
		adaptive: adaptive,
		strategies: map[models.ATSType]Strategy{
			models.ATSGreenhouse: &greenhouseStrategy{adaptive},
			models.ATSLever:      &leverStrategy{adaptive},
			models.ATSWorkday:    &workdayStrategy{adaptive},
		},
	}
}

// Apply classifies the current page's ATS and fills its application form.
// The resume at resumePath is attached when the form accepts uploads.
func (f *Filler) Apply(page Page, job models.JobPosting, resumePath string) (*Result, error) {
	html, err := page.HTML()
	if err != nil {
		return &Result{Outcome: OutcomeFailed, Message: "could not read application page"}, err
	}
	location, _ := page.Location()

	ats := f.analyzer.ClassifyATS(location, html)
	strategy, ok := f.strategies[ats]
	if !ok {
		strategy = f.adaptive
	}
	f.logger.Info("Filling application with %s strategy (ATS: %s)", strategy.Name(), ats)

	result, err := strategy.Fill(page, job, resumePath)
	if err != nil && result != nil && result.Outcome == OutcomeFailed {
		f.captureFailure(page, job, result)
	}
	return result, err
}

func (f *Filler) captureFailure(page Page, job models.JobPosting, result *Result) {
	name := fmt.Sprintf("failure_%s_%d.png",
		textutil.SanitizeFilename(job.Company), time.Now().Unix())
	path := filepath.Join(f.cfg.OutputDir, name)
	if err := page.Screenshot(path); err != nil {
		f.logger.Warn("Could not capture failure screenshot: %v", err)
		return
	}
	result.Screenshot = path
	f.logger.Info("Failure screenshot saved: %s", path)
}

// AdaptiveStrategy handles any form by inventorying the page and mapping
// controls by keyword. It is both the fallback for unrecognized systems
// and the engine the named strategies delegate to.
type AdaptiveStrategy struct {
	cfg      *config.Config
	logger   *logging.Logger
	analyzer *analyzer.Analyzer
	mapper   *mapper.Mapper

	// How long the operator gets to review a completed form before the
	// run moves on. The submit click is theirs to make.
	reviewPause time.Duration
}

func (s *AdaptiveStrategy) Name() string { return "adaptive" }

const defaultReviewPause = 30 * time.Second

func (s *AdaptiveStrategy) Fill(page Page, job models.JobPosting, resumePath string) (*Result, error) {
	page.ScrollToBottom()

	html, err := page.HTML()
	if err != nil {
		return &Result{Outcome: OutcomeFailed, Message: "could not read application page"}, err
	}

	inv, err := s.analyzer.Inventory(html)
	if err != nil {
		return &Result{Outcome: OutcomeFailed, Message: "could not analyze form"}, err
	}

	if !inv.HasForm() && !inv.HasFileUpload() {
		s.logger.Warn("No fillable form found on page")
		return &Result{Outcome: OutcomeManual, Message: "no fillable form found"}, nil
	}

	result := &Result{}
	mapping := s.mapper.Map(inv, s.cfg.User)

	// Deterministic fill order keeps logs and retries reproducible.
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if s.fillField(page, key, mapping[key]) {
			result.FieldsFilled++
		}
	}

	if filled := s.fillCoverLetter(page, inv, job); filled {
		result.FieldsFilled++
	}

	if inv.HasFileUpload() {
		result.ResumeUploaded = s.uploadResume(page, resumePath)
	}

	if result.FieldsFilled == 0 && !result.ResumeUploaded {
		s.logger.Warn("Could not fill any field automatically")
		result.Outcome = OutcomeManual
		result.Message = "no fields could be filled"
		return result, nil
	}

	result.SubmitFound = s.findSubmit(page)
	if !result.SubmitFound {
		result.Outcome = OutcomeManual
		result.Message = "submit button not found"
		return result, nil
	}

	if s.cfg.TestMode {
		s.logger.Info("Test mode: form filled, submission skipped")
		result.Outcome = OutcomeManual
		result.Message = "test mode, not submitted"
		return result, nil
	}

	s.logger.Info("Form ready. Review and submit within %s...", s.reviewPause)
	time.Sleep(s.reviewPause)

	result.Outcome = OutcomeSuccess
	result.Message = fmt.Sprintf("%d fields filled", result.FieldsFilled)
	return result, nil
}

// fieldSelectors is the ladder tried for each mapped identifier, from
// exact id to partial name match.
func fieldSelectors(key string) []string {
	return []string{
		"#" + key,
		fmt.Sprintf("[name='%s']", key),
		fmt.Sprintf("[id*='%s']", key),
		fmt.Sprintf("[name*='%s']", key),
	}
}

func (s *AdaptiveStrategy) fillField(page Page, key, value string) bool {
	for _, sel := range fieldSelectors(key) {
		if err := page.WaitVisible(sel, 2*time.Second); err != nil {
			continue
		}
		if err := page.HumanType(sel, value); err != nil {
			s.logger.Debug("Typing into %s failed: %v", sel, err)
			continue
		}
		s.logger.Debug("Filled %s", sel)
		page.HumanDelay(0, 0)
		return true
	}
	s.logger.Debug("No visible element for field %q", key)
	return false
}

// fillCoverLetter writes a short note into the first cover-letter
// textarea, personalized with the job and company.
func (s *AdaptiveStrategy) fillCoverLetter(page Page, inv *models.FormElementInventory, job models.JobPosting) bool {
	keywords := s.cfg.CategoryKeywords(config.CategoryCoverLetter)
	for _, ta := range inv.Textareas {
		composite := strings.ToLower(strings.Join([]string{ta.ID, ta.Name, ta.Placeholder, ta.AriaLabel}, " "))
		matched := false
		for _, kw := range keywords {
			if strings.Contains(composite, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		key := ta.ID
		if key == "" {
			key = ta.Name
		}
		if key == "" {
			continue
		}
		letter := coverLetter(job, s.cfg.User)
		if s.fillField(page, key, letter) {
			s.logger.Info("Cover letter filled")
			return true
		}
	}
	return false
}

func coverLetter(job models.JobPosting, user models.UserData) string {
	title := job.Title
	if title == "" {
		title = "this position"
	}
	company := job.Company
	if company == "" {
		company = "your company"
	}
	return fmt.Sprintf(
		"Dear Hiring Team,\n\nI am excited to apply for %s at %s. "+
			"With %s years of experience as a %s, I believe my background in %s makes me a strong fit. "+
			"I would welcome the opportunity to discuss how I can contribute to your team.\n\nBest regards,\n%s",
		title, company, user.YearsExperience, user.CurrentTitle, user.Skills, user.Name)
}

// uploadSelectors are tried in order for the resume attachment.
var uploadSelectors = []string{
	"input[type='file']",
	"input[name*='resume']",
	"input[id*='resume']",
	"input[name*='cv']",
	"input[accept*='pdf']",
}

func (s *AdaptiveStrategy) uploadResume(page Page, resumePath string) bool {
	if resumePath == "" {
		return false
	}
	if _, err := os.Stat(resumePath); err != nil {
		s.logger.Warn("Resume file missing, skipping upload: %s", resumePath)
		return false
	}
	for _, sel := range uploadSelectors {
		if err := page.Upload(sel, resumePath); err != nil {
			continue
		}
		s.logger.Success("Resume uploaded via %s", sel)
		page.HumanDelay(0, 0)
		return true
	}
	s.logger.Warn("Could not attach resume to any file input")
	return false
}

// submitSelectors locate the submission control. Case-insensitive text
// matches via XPath translate first, then attribute patterns.
var submitSelectors = []string{
	"//button[contains(translate(text(), 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), 'submit')]",
	"//button[contains(translate(text(), 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), 'apply')]",
	"//button[contains(translate(text(), 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), 'send')]",
	"//button[contains(translate(text(), 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), 'next')]",
	"//input[@type='submit']",
	"button[type='submit']",
	"[data-test*='submit']",
	"[data-test*='apply']",
	"[id*='submit']",
	"[id*='apply']",
	"[class*='submit']",
	"[class*='apply']",
}

// findSubmit reports whether a visible, enabled submit control exists.
// It never clicks it.
func (s *AdaptiveStrategy) findSubmit(page Page) bool {
	for _, sel := range submitSelectors {
		if err := page.WaitVisible(sel, 2*time.Second); err != nil {
			continue
		}
		if !page.IsEnabled(sel) {
			s.logger.Debug("Submit control %s is disabled", sel)
			continue
		}
		s.logger.Info("Submit button located: %s", sel)
		return true
	}
	return false
}
