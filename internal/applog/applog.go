// Package applog persists the application log as an xlsx workbook, one
// row per company/job attempt. The workbook is the run's source of truth
// for statistics and the email export.
package applog

import (
	"fmt"
	"os"
	"strings"

	"baliance.com/gooxml/spreadsheet"

	"jobpilot/internal/logging"
	"jobpilot/internal/textutil"
	"jobpilot/pkg/models"
)

// header is the fixed column order of the log sheet.
var header = []string{
	"Timestamp",
	"Company Name",
	"Company URL",
	"Career Page URL",
	"Job Title",
	"Job Location",
	"Job Description",
	"Apply Link",
	"HR Email",
	"Status",
	"Error",
	"Resume Path",
}

// descriptionLimit keeps log rows readable; full descriptions live in
// the prompt, not the spreadsheet.
const descriptionLimit = 500

// Log reads and appends the persisted application workbook.
type Log struct {
	path   string
	logger *logging.Logger
}

func New(path string, logger *logging.Logger) *Log {
	return &Log{path: path, logger: logger}
}

// Append adds one record, preserving everything already logged. The xlsx
// format cannot be appended in place, so the workbook is read and
// rewritten whole.
func (l *Log) Append(rec models.ApplicationRecord) error {
	records, err := l.Records()
	if err != nil {
		return err
	}
	rec.JobDescription = textutil.Truncate(rec.JobDescription, descriptionLimit, "...")
	records = append(records, rec)

	if err := l.write(records); err != nil {
		return err
	}
	l.logger.Info("Logged application: %s - %s (%s)", rec.CompanyName, rec.JobTitle, rec.Status)
	return nil
}

func (l *Log) write(records []models.ApplicationRecord) error {
	wb := spreadsheet.New()
	sheet := wb.AddSheet()
	sheet.SetName("Applications")

	headerRow := sheet.AddRow()
	for _, h := range header {
		headerRow.AddCell().SetString(h)
	}

	for _, rec := range records {
		row := sheet.AddRow()
		for _, value := range []string{
			rec.Timestamp, rec.CompanyName, rec.CompanyURL, rec.CareerURL,
			rec.JobTitle, rec.JobLocation, rec.JobDescription, rec.ApplyLink,
			rec.HREmail, rec.Status, rec.Error, rec.ResumePath,
		} {
			row.AddCell().SetString(value)
		}
	}

	if err := wb.SaveToFile(l.path); err != nil {
		return fmt.Errorf("failed to save application log: %w", err)
	}
	return nil
}

// Records returns every logged record. A missing file is an empty log.
func (l *Log) Records() ([]models.ApplicationRecord, error) {
	if _, err := os.Stat(l.path); err != nil {
		return nil, nil
	}
	wb, err := spreadsheet.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open application log: %w", err)
	}
	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, nil
	}

	var records []models.ApplicationRecord
	for i, row := range sheets[0].Rows() {
		if i == 0 {
			continue
		}
		cells := row.Cells()
		get := func(idx int) string {
			if idx < len(cells) {
				return cells[idx].GetString()
			}
			return ""
		}
		records = append(records, models.ApplicationRecord{
			Timestamp:      get(0),
			CompanyName:    get(1),
			CompanyURL:     get(2),
			CareerURL:      get(3),
			JobTitle:       get(4),
			JobLocation:    get(5),
			JobDescription: get(6),
			ApplyLink:      get(7),
			HREmail:        get(8),
			Status:         get(9),
			Error:          get(10),
			ResumePath:     get(11),
		})
	}
	return records, nil
}

// Stats summarizes a run's log for the console report.
type Stats struct {
	Total         int
	Success       int
	Manual        int
	Failed        int
	NoJobs        int
	NoCareerPage  int
	Errors        int
	EmailsFound   int
	CompaniesSeen int
}

// Statistics tallies the log by status. Matching is on the status text
// after the bracketed tag so older logs with different tags still count.
func (l *Log) Statistics() (Stats, error) {
	records, err := l.Records()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(records)}
	companies := map[string]bool{}
	for _, rec := range records {
		switch {
		case strings.Contains(rec.Status, "Applied Successfully"):
			stats.Success++
		case strings.Contains(rec.Status, "Manual Intervention"):
			stats.Manual++
		case strings.Contains(rec.Status, "No Relevant Jobs"):
			stats.NoJobs++
		case strings.Contains(rec.Status, "Career Page Not Found"):
			stats.NoCareerPage++
		case strings.Contains(rec.Status, "Error Occurred"):
			stats.Errors++
		case strings.Contains(rec.Status, "Failed"):
			stats.Failed++
		}
		if rec.HREmail != "" {
			stats.EmailsFound++
		}
		if rec.CompanyName != "" {
			companies[rec.CompanyName] = true
		}
	}
	stats.CompaniesSeen = len(companies)
	return stats, nil
}

// ExportEmails writes a contact workbook with one row per logged record
// that carries an email. It returns the number of rows exported.
func (l *Log) ExportEmails(path string) (int, error) {
	records, err := l.Records()
	if err != nil {
		return 0, err
	}

	wb := spreadsheet.New()
	sheet := wb.AddSheet()
	sheet.SetName("Contacts")

	headerRow := sheet.AddRow()
	for _, h := range []string{"Company Name", "HR Email", "Job Title", "Career Page URL"} {
		headerRow.AddCell().SetString(h)
	}

	count := 0
	for _, rec := range records {
		if rec.HREmail == "" {
			continue
		}
		row := sheet.AddRow()
		row.AddCell().SetString(rec.CompanyName)
		row.AddCell().SetString(rec.HREmail)
		row.AddCell().SetString(rec.JobTitle)
		row.AddCell().SetString(rec.CareerURL)
		count++
	}

	if err := wb.SaveToFile(path); err != nil {
		return 0, fmt.Errorf("failed to save email export: %w", err)
	}
	l.logger.Success("Exported %d email contact(s) to %s", count, path)
	return count, nil
}
