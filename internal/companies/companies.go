// Package companies loads the target-company list and can generate a
// starter file for first runs.
package companies

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jobpilot/pkg/models"
)

// sampleCompanies seed a fresh install so the pipeline has something to
// chew on before the operator curates a real list.
var sampleCompanies = []models.Company{
	{Name: "Google", URL: "https://www.google.com"},
	{Name: "Microsoft", URL: "https://www.microsoft.com"},
	{Name: "Amazon", URL: "https://www.amazon.com"},
	{Name: "Meta", URL: "https://www.meta.com"},
	{Name: "Apple", URL: "https://www.apple.com"},
}

// Load reads the company list from a CSV with a `name,url` header. Rows
// missing either value are skipped rather than failing the run.
func Load(path string) ([]models.Company, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open companies file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse companies file %s: %w", path, err)
	}

	var companies []models.Company
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		url := strings.TrimSpace(row[1])
		if name == "" || url == "" {
			continue
		}
		if !strings.HasPrefix(url, "http") {
			url = "https://" + url
		}
		companies = append(companies, models.Company{Name: name, URL: url})
	}
	return companies, nil
}

func isHeader(row []string) bool {
	return len(row) >= 2 &&
		strings.EqualFold(strings.TrimSpace(row[0]), "name") &&
		strings.EqualFold(strings.TrimSpace(row[1]), "url")
}

// WriteSample creates a starter companies file. An existing file is left
// untouched.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("companies file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create companies file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "url"}); err != nil {
		return err
	}
	for _, c := range sampleCompanies {
		if err := w.Write([]string{c.Name, c.URL}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
