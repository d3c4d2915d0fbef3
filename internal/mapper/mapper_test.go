package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot/internal/config"
	"jobpilot/internal/logging"
	"jobpilot/pkg/models"
)

var testUser = models.UserData{
	Name:            "Jane Smith",
	Email:           "jane@example.com",
	Phone:           "+15551234567",
	Address:         "42 Elm St",
	LinkedIn:        "https://linkedin.com/in/janesmith",
	Portfolio:       "https://janesmith.dev",
	YearsExperience: "7",
}

func newMapper(t *testing.T) *Mapper {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return New(cfg, logging.New(logging.LevelError, nil, nil))
}

func input(id, name, placeholder string) models.FormElement {
	return models.FormElement{Type: "text", ID: id, Name: name, Placeholder: placeholder}
}

func TestMapAssignsCategories(t *testing.T) {
	inv := &models.FormElementInventory{
		Inputs: []models.FormElement{
			input("email", "email", ""),
			input("", "phone_number", ""),
			input("first_name", "", ""),
			input("last_name", "", ""),
			input("", "linkedin_url", ""),
			input("", "", "Portfolio or website"),
			input("years", "years", "Years of experience"),
		},
	}

	got := newMapper(t).Map(inv, testUser)

	assert.Equal(t, models.FieldMapping{
		"email":        "jane@example.com",
		"phone_number": "+15551234567",
		"first_name":   "Jane",
		"last_name":    "Smith",
		"linkedin_url": "https://linkedin.com/in/janesmith",
		"years":        "7",
	}, got)
}

func TestMapSpecificNameBeatsFullName(t *testing.T) {
	inv := &models.FormElementInventory{
		Inputs: []models.FormElement{
			input("first_name", "first_name", ""),
			input("full_name", "full_name", ""),
		},
	}
	got := newMapper(t).Map(inv, testUser)
	assert.Equal(t, "Jane", got["first_name"])
	assert.Equal(t, "Jane Smith", got["full_name"])
}

func TestMapSkipsUnaddressableFields(t *testing.T) {
	inv := &models.FormElementInventory{
		Inputs: []models.FormElement{
			// Matches the email keywords but has no id or name to
			// target it with.
			{Type: "email", Placeholder: "Your email"},
		},
	}
	got := newMapper(t).Map(inv, testUser)
	assert.Empty(t, got)
}

func TestMapOmitsEmptyValues(t *testing.T) {
	soloName := testUser
	soloName.Name = "Cher"
	inv := &models.FormElementInventory{
		Inputs: []models.FormElement{
			input("first_name", "", ""),
			input("last_name", "", ""),
		},
	}
	got := newMapper(t).Map(inv, soloName)
	assert.Equal(t, "Cher", got["first_name"])
	_, ok := got["last_name"]
	assert.False(t, ok)
}

func TestMapUnmatchedFieldsOmitted(t *testing.T) {
	inv := &models.FormElementInventory{
		Inputs: []models.FormElement{
			input("favorite_color", "favorite_color", ""),
		},
	}
	got := newMapper(t).Map(inv, testUser)
	assert.Empty(t, got)
}

func TestMapCoverLetterTextareaNotTyped(t *testing.T) {
	inv := &models.FormElementInventory{
		Textareas: []models.FormElement{
			input("cover_letter", "cover_letter", ""),
		},
	}
	got := newMapper(t).Map(inv, testUser)
	assert.Empty(t, got)
}
