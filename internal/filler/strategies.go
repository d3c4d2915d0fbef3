package filler

import (
	"time"

	"jobpilot/pkg/models"
)

// The named strategies give each major tracking system a chance to settle
// its own form container before the adaptive engine takes over. Their
// forms are close enough to generic markup that keyword mapping handles
// the rest.

type greenhouseStrategy struct {
	adaptive *AdaptiveStrategy
}

func (s *greenhouseStrategy) Name() string { return "greenhouse" }

func (s *greenhouseStrategy) Fill(page Page, job models.JobPosting, resumePath string) (*Result, error) {
	waitAny(page, "#application_form", "#main_fields", "form")
	return s.adaptive.Fill(page, job, resumePath)
}

type leverStrategy struct {
	adaptive *AdaptiveStrategy
}

func (s *leverStrategy) Name() string { return "lever" }

func (s *leverStrategy) Fill(page Page, job models.JobPosting, resumePath string) (*Result, error) {
	waitAny(page, ".application-form", "form")
	return s.adaptive.Fill(page, job, resumePath)
}

type workdayStrategy struct {
	adaptive *AdaptiveStrategy
}

func (s *workdayStrategy) Name() string { return "workday" }

func (s *workdayStrategy) Fill(page Page, job models.JobPosting, resumePath string) (*Result, error) {
	// Workday renders its flow client-side; give it longer to appear.
	waitAny(page, "[data-automation-id='applyFlowPage']", "form")
	return s.adaptive.Fill(page, job, resumePath)
}

func waitAny(page Page, selectors ...string) {
	for _, sel := range selectors {
		if err := page.WaitVisible(sel, 5*time.Second); err == nil {
			return
		}
	}
}
