package resume

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot/internal/config"
	"jobpilot/internal/logging"
	"jobpilot/pkg/models"
)

var testJob = models.JobPosting{
	Title:       "Backend Engineer",
	Company:     "Acme, Inc.",
	Description: "Build services in Go.",
	Skills:      []string{"go", "sql"},
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt("RESUME BODY", testJob)

	assert.Contains(t, prompt, "Job Title: Backend Engineer")
	assert.Contains(t, prompt, "Company: Acme, Inc.")
	assert.Contains(t, prompt, "Required Skills: go, sql")
	assert.Contains(t, prompt, "RESUME BODY")
	assert.Contains(t, prompt, "approximately 20%")
}

func TestBuildPromptTruncatesLongDescriptions(t *testing.T) {
	job := testJob
	job.Description = strings.Repeat("x", 5000)
	prompt := buildPrompt("RESUME", job)
	assert.Contains(t, prompt, strings.Repeat("x", 1997)+"...")
	assert.NotContains(t, prompt, strings.Repeat("x", 2001))
}

func TestResumeFilename(t *testing.T) {
	got := resumeFilename(models.JobPosting{
		Title:   "Senior Backend Engineer (Platform / Infrastructure Team)",
		Company: "Very Long Company Name International Holdings",
	})
	assert.True(t, strings.HasSuffix(got, ".pdf"))
	assert.NotContains(t, got, "/")
	assert.NotContains(t, got, " ")
	// company capped at 30, title at 50, plus separator and extension
	assert.LessOrEqual(t, len(got), 30+1+50+4)
}

func TestClipKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "Müll", clip("Müller GmbH", 4))
	assert.Equal(t, "短い", clip("短い", 10))
	assert.True(t, utf8.ValidString(clip(strings.Repeat("é", 40), 30)))
}

func TestRenderPDFWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, RenderPDF("Jane Smith\n\nExperience\nEngineer at Acme", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

// scriptedProvider returns a canned rewrite or error.
type scriptedProvider struct {
	out string
	err error
}

func (p *scriptedProvider) Name() string { return "scripted" }
func (p *scriptedProvider) Generate(context.Context, string) (string, error) {
	return p.out, p.err
}

func testCustomizer(t *testing.T, p Provider) *Customizer {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.ModifiedResumesDir = t.TempDir()
	cfg.User.BaseResumePath = filepath.Join(t.TempDir(), "base_resume.pdf")
	require.NoError(t, RenderPDF("Jane Smith base resume text for testing", cfg.User.BaseResumePath))

	return &Customizer{
		cfg:      cfg,
		logger:   logging.New(logging.LevelError, nil, nil),
		provider: p,
	}
}

func TestCustomizeWritesTailoredPDF(t *testing.T) {
	c := testCustomizer(t, &scriptedProvider{out: "Tailored resume text"})

	path, err := c.Customize(context.Background(), testJob)
	require.NoError(t, err)
	assert.NotEqual(t, c.cfg.User.BaseResumePath, path)
	assert.FileExists(t, path)

	// The base text is extracted once and cached.
	assert.NotEmpty(t, c.baseText)
}

func TestCustomizeFallsBackWhenProviderFails(t *testing.T) {
	c := testCustomizer(t, &scriptedProvider{err: errors.New("quota exceeded")})

	path, err := c.Customize(context.Background(), testJob)
	assert.Error(t, err)
	assert.Equal(t, c.cfg.User.BaseResumePath, path)
}

func TestCustomizeFallsBackWithoutProvider(t *testing.T) {
	c := testCustomizer(t, nil)

	path, err := c.Customize(context.Background(), testJob)
	assert.ErrorIs(t, err, ErrNoProvider)
	assert.Equal(t, c.cfg.User.BaseResumePath, path)
}

func TestExtractTextRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, RenderPDF("Jane Smith Software Engineer", path))

	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Smith")
}

func TestExtractTextMissingFile(t *testing.T) {
	_, err := ExtractText(filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestOpenAIProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"rewritten"}}]}`))
	}))
	defer srv.Close()

	p := newOpenAIProvider("test-key", "gpt-4", 0.7, 2000)
	p.endpoint = srv.URL

	got, err := p.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", got)
}

func TestOpenAIProviderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	p := newOpenAIProvider("bad-key", "gpt-4", 0.7, 2000)
	p.endpoint = srv.URL

	_, err := p.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}
