package companies

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot/pkg/models"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"name,url\nAcme,https://acme.com\nGlobex,globex.com\n,missing.com\nNoURL,\n"), 0644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []models.Company{
		{Name: "Acme", URL: "https://acme.com"},
		{Name: "Globex", URL: "https://globex.com"},
	}, got)
}

func TestLoadWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte("Acme,https://acme.com\n"), 0644))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", got[0].Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestWriteSampleThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, WriteSample(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "Google", got[0].Name)
	assert.Equal(t, "Apple", got[4].Name)
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,url\n"), 0644))
	assert.Error(t, WriteSample(path))
}
