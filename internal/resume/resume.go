// Package resume customizes the operator's resume per job posting. The
// base PDF is read once, rewritten by an AI provider against the job
// description, and rendered back to a fresh PDF. Every failure falls
// back to the base resume so an application is never blocked.
package resume

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"jobpilot/internal/config"
	"jobpilot/internal/logging"
	"jobpilot/internal/textutil"
	"jobpilot/pkg/models"
)

// ErrNoProvider is returned when no AI provider is configured; callers
// fall back to the base resume.
var ErrNoProvider = errors.New("no AI provider configured")

// Provider rewrites resume text from a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Customizer produces per-job resume PDFs.
type Customizer struct {
	cfg      *config.Config
	logger   *logging.Logger
	provider Provider

	baseText string
}

// New builds a Customizer with the configured provider. A missing API
// key is not an error; customization is simply disabled for the run.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Customizer, error) {
	c := &Customizer{cfg: cfg, logger: logger}

	switch cfg.AIProvider {
	case "openai":
		if cfg.OpenAIKey != "" {
			c.provider = newOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAITemperature, cfg.AIMaxTokens)
		}
	case "gemini":
		if cfg.GeminiKey != "" {
			p, err := newGeminiProvider(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.GeminiTemperature, cfg.AIMaxTokens)
			if err != nil {
				return nil, fmt.Errorf("failed to init gemini provider: %w", err)
			}
			c.provider = p
		}
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.AIProvider)
	}

	if c.provider == nil {
		logger.Warn("No API key for provider %q, resume customization disabled", cfg.AIProvider)
	} else {
		logger.Info("Resume customization enabled (%s)", c.provider.Name())
	}
	return c, nil
}

// Customize returns the path of a resume PDF tailored to job. On any
// failure the base resume path is returned along with the error.
func (c *Customizer) Customize(ctx context.Context, job models.JobPosting) (string, error) {
	base := c.cfg.User.BaseResumePath
	if c.provider == nil {
		return base, ErrNoProvider
	}

	if c.baseText == "" {
		text, err := ExtractText(base)
		if err != nil {
			c.logger.Warn("Could not read base resume: %v", err)
			return base, err
		}
		c.baseText = text
	}

	rewritten, err := c.provider.Generate(ctx, buildPrompt(c.baseText, job))
	if err != nil {
		c.logger.Warn("Resume customization failed: %v", err)
		return base, err
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return base, errors.New("provider returned empty resume")
	}

	out := filepath.Join(c.cfg.ModifiedResumesDir, resumeFilename(job))
	if err := RenderPDF(rewritten, out); err != nil {
		c.logger.Warn("Could not render customized resume: %v", err)
		return base, err
	}

	c.logger.Success("Customized resume saved: %s", out)
	return out, nil
}

// resumeFilename builds `<company>_<title>.pdf` with both parts capped
// so paths stay portable.
func resumeFilename(job models.JobPosting) string {
	company := clip(job.Company, 30)
	title := clip(job.Title, 50)
	return textutil.SanitizeFilename(company+"_"+title) + ".pdf"
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}

// descriptionLimit bounds how much of the posting goes into the prompt.
const descriptionLimit = 2000

func buildPrompt(baseResume string, job models.JobPosting) string {
	var b strings.Builder
	b.WriteString("You are a professional resume writer. Customize the following resume for this specific job posting.\n\n")
	fmt.Fprintf(&b, "Job Title: %s\n", job.Title)
	fmt.Fprintf(&b, "Company: %s\n", job.Company)
	fmt.Fprintf(&b, "Job Description: %s\n", textutil.Truncate(job.Description, descriptionLimit, "..."))
	if len(job.Skills) > 0 {
		fmt.Fprintf(&b, "Required Skills: %s\n", strings.Join(job.Skills, ", "))
	}
	b.WriteString("\nOriginal Resume:\n")
	b.WriteString(baseResume)
	b.WriteString("\n\nInstructions:\n")
	b.WriteString("1. Keep all factual information (names, dates, employers, education) accurate.\n")
	b.WriteString("2. Modify approximately 20% of the content to highlight experience relevant to this job.\n")
	b.WriteString("3. Reorder and emphasize skills that match the job requirements.\n")
	b.WriteString("4. Keep the same overall structure and a similar length.\n")
	b.WriteString("5. Return only the customized resume text, no commentary.\n")
	return b.String()
}
