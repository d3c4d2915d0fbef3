package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobpilot/internal/app"
	"jobpilot/internal/applog"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics from the application log",
	Long:  "Summarize the application log: outcomes per status, emails found, and the most recent attempts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.FromContext(cmd.Context())
		if a == nil {
			return app.ErrNotInitialized
		}

		log := applog.New(a.Config.ApplicationsLog, a.Logger)
		stats, err := log.Statistics()
		if err != nil {
			return err
		}
		if stats.Total == 0 {
			fmt.Println("No applications logged yet. Start with 'jobpilot run'.")
			return nil
		}

		fmt.Println(titleStyle.Render("Application Statistics"))
		fmt.Printf("\n%s\n", labelStyle.Render("Overview"))
		fmt.Printf("  Total Records: %d\n", stats.Total)
		fmt.Printf("  Applied Successfully: %d\n", stats.Success)
		fmt.Printf("  Manual Intervention: %d\n", stats.Manual)
		fmt.Printf("  Failed: %d\n", stats.Failed)
		fmt.Printf("  No Relevant Jobs: %d\n", stats.NoJobs)
		fmt.Printf("  No Career Page: %d\n", stats.NoCareerPage)
		fmt.Printf("  Errors: %d\n", stats.Errors)

		fmt.Printf("\n%s\n", labelStyle.Render("Contacts"))
		fmt.Printf("  Records With Emails: %d\n", stats.EmailsFound)
		fmt.Printf("  Companies Seen: %d\n", stats.CompaniesSeen)

		recent, err := a.Store.Recent(5)
		if err != nil {
			return err
		}
		if len(recent) > 0 {
			fmt.Printf("\n%s\n", labelStyle.Render("Recent Attempts"))
			for _, e := range recent {
				fmt.Printf("  %s - %s (%s)\n", e.Company, e.JobTitle, e.Status)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
