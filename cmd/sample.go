package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobpilot/internal/app"
	"jobpilot/internal/companies"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Create a starter companies file",
	Long:  "Write a sample companies CSV to the configured path so a first run has something to process.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.FromContext(cmd.Context())
		if a == nil {
			return app.ErrNotInitialized
		}

		if err := companies.WriteSample(a.Config.CompaniesCSV); err != nil {
			return err
		}
		fmt.Println(titleStyle.Render("Sample companies file created"))
		fmt.Printf("%s %s\n", labelStyle.Render("Path:"), valueStyle.Render(a.Config.CompaniesCSV))
		fmt.Println("Edit it with your target companies, then run 'jobpilot run'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
}
