package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobpilot/internal/app"
	"jobpilot/internal/applog"
)

var exportOutput string

var exportEmailsCmd = &cobra.Command{
	Use:   "export-emails",
	Short: "Export harvested HR emails to a spreadsheet",
	Long:  "Write every logged record that carries a contact email to a separate xlsx workbook for outreach.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.FromContext(cmd.Context())
		if a == nil {
			return app.ErrNotInitialized
		}

		out := exportOutput
		if out == "" {
			out = a.Config.EmailExport
		}

		log := applog.New(a.Config.ApplicationsLog, a.Logger)
		count, err := log.ExportEmails(out)
		if err != nil {
			return err
		}
		if count == 0 {
			fmt.Println("No emails in the log yet.")
			return nil
		}
		fmt.Printf("%s %s\n", labelStyle.Render("Exported:"), valueStyle.Render(fmt.Sprintf("%d contact(s)", count)))
		fmt.Printf("%s %s\n", labelStyle.Render("File:"), valueStyle.Render(out))
		return nil
	},
}

func init() {
	exportEmailsCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output xlsx path (defaults to the configured export path)")
	rootCmd.AddCommand(exportEmailsCmd)
}
