package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jobpilot/internal/app"
	"jobpilot/internal/applog"
	"jobpilot/internal/browser"
	"jobpilot/internal/career"
	"jobpilot/internal/companies"
	"jobpilot/internal/emails"
	"jobpilot/internal/filler"
	"jobpilot/internal/pipeline"
	"jobpilot/internal/resume"
	"jobpilot/internal/scraper"
)

var (
	runTestMode  bool
	runLimit     int
	runCompanies string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the company list and apply to relevant openings",
	Long: `Run the full pipeline over every company in the companies file:
find the careers page, scrape and rank openings, harvest contact emails,
tailor the resume and fill the application form. One log row is written
per company.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.FromContext(cmd.Context())
		if a == nil {
			return app.ErrNotInitialized
		}
		cfg, logger := a.Config, a.Logger

		if runTestMode {
			cfg.TestMode = true
		}
		if runCompanies != "" {
			cfg.CompaniesCSV = runCompanies
		}

		logger.Section("Job Application Pipeline")
		for _, problem := range cfg.Validate() {
			logger.Warn("%s", problem)
		}

		list, err := companies.Load(cfg.CompaniesCSV)
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Companies file %s not found, writing a starter list", cfg.CompaniesCSV)
			if werr := companies.WriteSample(cfg.CompaniesCSV); werr != nil {
				return fmt.Errorf("%w: %v", app.ErrNoCompanies, werr)
			}
			list, err = companies.Load(cfg.CompaniesCSV)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", app.ErrNoCompanies, err)
		}
		if len(list) == 0 {
			return app.ErrNoCompanies
		}
		if runLimit > 0 && runLimit < len(list) {
			list = list[:runLimit]
		}
		logger.Info("Processing %d company(ies)", len(list))
		if cfg.TestMode {
			logger.Warn("Test mode: forms are filled but never left ready to submit")
		}

		drv, err := browser.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer drv.Close()

		extractor, err := emails.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("invalid email pattern: %w", err)
		}
		customizer, err := resume.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		p := pipeline.New(cfg, logger, drv,
			career.New(cfg, logger),
			scraper.New(cfg, logger),
			extractor,
			customizer,
			filler.New(cfg, logger),
			applog.New(cfg.ApplicationsLog, logger),
			a.Store,
		)

		summary, err := p.Run(cmd.Context(), list)
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Run Complete"))
		fmt.Printf("%s %s\n", labelStyle.Render("Applied:"), valueStyle.Render(fmt.Sprint(summary.Applied)))
		fmt.Printf("%s %s\n", labelStyle.Render("Manual:"), valueStyle.Render(fmt.Sprint(summary.Manual)))
		fmt.Printf("%s %s\n", labelStyle.Render("Log:"), valueStyle.Render(cfg.ApplicationsLog))
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runTestMode, "test", false, "fill forms but never wait for submission")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "process at most N companies (0 = all)")
	runCmd.Flags().StringVar(&runCompanies, "companies", "", "path to a companies CSV (overrides config)")
	rootCmd.AddCommand(runCmd)
}
