package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"jobpilot/pkg/models"
)

// FieldCategory is one entry of the ordered field-mapping table: a form
// field whose composite text contains any of Keywords is assigned the user
// data attribute named by Name. Order in the table is match priority.
type FieldCategory struct {
	Name     string
	Keywords []string
}

// ATSSignature pairs an ATS classification with the substring that
// identifies it in a URL or page body. Listed order is match priority.
type ATSSignature struct {
	Type      models.ATSType
	Signature string
}

// Config holds the full application configuration. Values come from the
// environment (a .env file is honored) with defaults for everything.
type Config struct {
	User models.UserData

	// AI provider selection and credentials
	AIProvider        string
	AIMaxTokens       int
	OpenAIKey         string
	OpenAIModel       string
	OpenAITemperature float64
	GeminiKey         string
	GeminiModel       string
	GeminiTemperature float64

	// Browser
	Headless       bool
	SlowMo         time.Duration
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string

	// Human-interaction pacing
	MinDelay       time.Duration
	MaxDelay       time.Duration
	TypingDelayMin time.Duration
	TypingDelayMax time.Duration
	ScrollDelay    time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Heuristic tables
	CareerKeywords    []string
	RelevanceKeywords []string
	SkillVocabulary   []string
	FieldCategories   []FieldCategory
	ATSSignatures     []ATSSignature
	EmailPattern      string

	// Paths
	DataDir            string
	OutputDir          string
	ResumesDir         string
	ModifiedResumesDir string
	CompaniesCSV       string
	ApplicationsLog    string
	EmailExport        string
	HistoryDB          string
	SystemLog          string

	TestMode bool
	LogLevel string
}

const defaultEmailPattern = `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from the environment, applying defaults for
// anything unset. A .env file in the working directory is loaded first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	dataDir := v.GetString("data_dir")
	outputDir := filepath.Join(dataDir, "output")
	resumesDir := filepath.Join(dataDir, "resumes")

	cfg := &Config{
		User: models.UserData{
			Name:            v.GetString("user_name"),
			Email:           v.GetString("user_email"),
			Phone:           v.GetString("user_phone"),
			Address:         v.GetString("user_address"),
			LinkedIn:        v.GetString("user_linkedin"),
			Portfolio:       v.GetString("user_portfolio"),
			YearsExperience: v.GetString("years_experience"),
			CurrentTitle:    v.GetString("current_title"),
			Skills:          v.GetString("user_skills"),
			BaseResumePath:  v.GetString("base_resume_path"),
		},

		AIProvider:        strings.ToLower(v.GetString("ai_provider")),
		AIMaxTokens:       v.GetInt("ai_max_tokens"),
		OpenAIKey:         v.GetString("openai_api_key"),
		OpenAIModel:       v.GetString("openai_model"),
		OpenAITemperature: v.GetFloat64("openai_temperature"),
		GeminiKey:         v.GetString("gemini_api_key"),
		GeminiModel:       v.GetString("gemini_model"),
		GeminiTemperature: v.GetFloat64("gemini_temperature"),

		Headless:       v.GetBool("headless"),
		SlowMo:         time.Duration(v.GetInt("slow_mo")) * time.Millisecond,
		Timeout:        time.Duration(v.GetInt("timeout")) * time.Millisecond,
		ViewportWidth:  v.GetInt("viewport_width"),
		ViewportHeight: v.GetInt("viewport_height"),
		UserAgent:      v.GetString("user_agent"),

		MinDelay:       secondsDuration(v.GetFloat64("min_delay")),
		MaxDelay:       secondsDuration(v.GetFloat64("max_delay")),
		TypingDelayMin: time.Duration(v.GetInt("typing_delay_min")) * time.Millisecond,
		TypingDelayMax: time.Duration(v.GetInt("typing_delay_max")) * time.Millisecond,
		ScrollDelay:    secondsDuration(v.GetFloat64("scroll_delay")),
		MaxRetries:     v.GetInt("max_retries"),
		RetryDelay:     secondsDuration(v.GetFloat64("retry_delay")),

		CareerKeywords:    splitList(v.GetString("career_keywords")),
		RelevanceKeywords: splitList(v.GetString("job_keywords")),
		SkillVocabulary:   splitList(v.GetString("skill_vocabulary")),
		FieldCategories:   fieldCategories(v),
		ATSSignatures:     atsSignatures(),
		EmailPattern:      v.GetString("email_pattern"),

		DataDir:            dataDir,
		OutputDir:          outputDir,
		ResumesDir:         resumesDir,
		ModifiedResumesDir: filepath.Join(outputDir, "modified_resumes"),
		CompaniesCSV:       v.GetString("companies_csv"),
		ApplicationsLog:    v.GetString("applications_log"),
		EmailExport:        v.GetString("email_export"),
		HistoryDB:          v.GetString("history_db"),
		SystemLog:          v.GetString("system_log"),

		TestMode: v.GetBool("test_mode"),
		LogLevel: strings.ToUpper(v.GetString("log_level")),
	}

	if cfg.User.BaseResumePath == "" {
		cfg.User.BaseResumePath = filepath.Join(resumesDir, "base_resume.pdf")
	}
	if cfg.CompaniesCSV == "" {
		cfg.CompaniesCSV = filepath.Join(dataDir, "companies.csv")
	}
	if cfg.ApplicationsLog == "" {
		cfg.ApplicationsLog = filepath.Join(outputDir, "applications_log.xlsx")
	}
	if cfg.EmailExport == "" {
		cfg.EmailExport = filepath.Join(outputDir, "extracted_emails.xlsx")
	}
	if cfg.HistoryDB == "" {
		cfg.HistoryDB = filepath.Join(outputDir, "history.db")
	}
	if cfg.SystemLog == "" {
		cfg.SystemLog = filepath.Join(outputDir, "system_logs.txt")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("user_name", "John Doe")
	v.SetDefault("user_email", "john.doe@example.com")
	v.SetDefault("user_phone", "+1234567890")
	v.SetDefault("user_address", "123 Main St, City, State 12345")
	v.SetDefault("user_linkedin", "https://linkedin.com/in/johndoe")
	v.SetDefault("user_portfolio", "https://johndoe.com")
	v.SetDefault("years_experience", "5")
	v.SetDefault("current_title", "Software Engineer")
	v.SetDefault("user_skills", "Python, JavaScript, React, Node.js, SQL")
	v.SetDefault("base_resume_path", "")

	v.SetDefault("ai_provider", "gemini")
	v.SetDefault("ai_max_tokens", 2000)
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4")
	v.SetDefault("openai_temperature", 0.7)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-1.5-flash")
	v.SetDefault("gemini_temperature", 0.7)

	v.SetDefault("headless", false)
	v.SetDefault("slow_mo", 100)
	v.SetDefault("timeout", 30000)
	v.SetDefault("viewport_width", 1920)
	v.SetDefault("viewport_height", 1080)
	v.SetDefault("user_agent", defaultUserAgent)

	v.SetDefault("min_delay", 1.0)
	v.SetDefault("max_delay", 3.0)
	v.SetDefault("typing_delay_min", 50)
	v.SetDefault("typing_delay_max", 150)
	v.SetDefault("scroll_delay", 0.5)
	v.SetDefault("max_retries", 3)
	v.SetDefault("retry_delay", 2.0)

	v.SetDefault("career_keywords", strings.Join([]string{
		"careers", "jobs", "join us", "work with us", "opportunities",
		"hiring", "employment", "job openings", "open positions", "vacancies",
		"join our team", "we're hiring", "job opportunities", "career opportunities",
	}, ","))
	v.SetDefault("job_keywords", "python,software engineer,developer,backend,full stack,api,web development")
	v.SetDefault("skill_vocabulary", strings.Join([]string{
		"python", "java", "javascript", "react", "node.js", "sql",
		"aws", "docker", "kubernetes", "git", "agile", "scrum",
		"machine learning", "ai", "data science", "backend", "frontend",
		"full stack", "devops", "cloud", "api", "rest", "graphql",
	}, ","))
	v.SetDefault("email_pattern", defaultEmailPattern)

	v.SetDefault("form_keywords_email", "email,e-mail,email address,your email,contact email")
	v.SetDefault("form_keywords_phone", "phone,telephone,mobile,contact number,phone number,cell")
	v.SetDefault("form_keywords_first_name", "first,fname,firstname")
	v.SetDefault("form_keywords_last_name", "last,lname,lastname")
	v.SetDefault("form_keywords_full_name", "name,full")
	v.SetDefault("form_keywords_linkedin", "linkedin,profile")
	v.SetDefault("form_keywords_portfolio", "portfolio,website,github")
	v.SetDefault("form_keywords_address", "address,location,city,state,country")
	v.SetDefault("form_keywords_experience", "experience,years")
	v.SetDefault("form_keywords_resume", "resume,cv,curriculum vitae,upload resume,attach resume")
	v.SetDefault("form_keywords_cover_letter", "cover letter,coverletter,letter")

	v.SetDefault("data_dir", "data")
	v.SetDefault("companies_csv", "")
	v.SetDefault("applications_log", "")
	v.SetDefault("email_export", "")
	v.SetDefault("history_db", "")
	v.SetDefault("system_log", "")

	v.SetDefault("test_mode", false)
	v.SetDefault("log_level", "INFO")
}

// Category names used by the field mapper. The table order here is the
// match priority order; email is tested before phone, and the name
// split-outs before the full-name catch-all.
const (
	CategoryEmail       = "email"
	CategoryPhone       = "phone"
	CategoryFirstName   = "first_name"
	CategoryLastName    = "last_name"
	CategoryFullName    = "full_name"
	CategoryLinkedIn    = "linkedin"
	CategoryPortfolio   = "portfolio"
	CategoryAddress     = "address"
	CategoryExperience  = "experience"
	CategoryResume      = "resume"
	CategoryCoverLetter = "cover_letter"
)

func fieldCategories(v *viper.Viper) []FieldCategory {
	names := []string{
		CategoryEmail, CategoryPhone, CategoryFirstName, CategoryLastName,
		CategoryFullName, CategoryLinkedIn, CategoryPortfolio,
		CategoryAddress, CategoryExperience, CategoryResume, CategoryCoverLetter,
	}
	categories := make([]FieldCategory, 0, len(names))
	for _, name := range names {
		categories = append(categories, FieldCategory{
			Name:     name,
			Keywords: splitList(v.GetString("form_keywords_" + name)),
		})
	}
	return categories
}

// atsSignatures returns the closed classification set in priority order.
// URL signatures are tested first by the analyzer, then content signatures.
func atsSignatures() []ATSSignature {
	return []ATSSignature{
		{models.ATSGreenhouse, "greenhouse"},
		{models.ATSLever, "lever"},
		{models.ATSWorkday, "workday"},
		{models.ATSTaleo, "taleo"},
		{models.ATSSmartRecruiters, "smartrecruiters"},
		{models.ATSAshby, "ashbyhq"},
	}
}

// CategoryKeywords returns the keyword list for a named category, or nil.
func (c *Config) CategoryKeywords(name string) []string {
	for _, cat := range c.FieldCategories {
		if cat.Name == name {
			return cat.Keywords
		}
	}
	return nil
}

// EnsureDirectories creates the data directory tree.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.OutputDir, c.ResumesDir, c.ModifiedResumesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Validate checks the environment before any browser work begins. It
// returns every problem found rather than stopping at the first.
func (c *Config) Validate() []string {
	var errs []string

	if _, err := os.Stat(c.CompaniesCSV); err != nil {
		errs = append(errs, fmt.Sprintf("companies CSV not found: %s", c.CompaniesCSV))
	}
	if _, err := os.Stat(c.User.BaseResumePath); err != nil {
		errs = append(errs, fmt.Sprintf("base resume not found: %s", c.User.BaseResumePath))
	}

	switch c.AIProvider {
	case "openai":
		if c.OpenAIKey == "" {
			errs = append(errs, "OpenAI API key not set (resume customization will be disabled)")
		}
	case "gemini":
		if c.GeminiKey == "" {
			errs = append(errs, "Gemini API key not set (resume customization will be disabled)")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown AI provider: %s (use 'openai' or 'gemini')", c.AIProvider))
	}

	return errs
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func secondsDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
