// Package mapper assigns form controls to user profile values by keyword
// matching. It is pure string work over an inventory snapshot.
package mapper

import (
	"strings"

	"jobpilot/internal/config"
	"jobpilot/internal/logging"
	"jobpilot/pkg/models"
)

// Mapper matches form fields against the configured category keyword
// tables. Categories are tested in table order, so the more specific
// ones (first/last name) claim a field before the full-name catch-all.
type Mapper struct {
	categories []config.FieldCategory
	logger     *logging.Logger
}

func New(cfg *config.Config, logger *logging.Logger) *Mapper {
	return &Mapper{categories: cfg.FieldCategories, logger: logger}
}

// Map assigns each fillable control to a user data value. Controls with
// neither id nor name cannot be addressed and are skipped; controls whose
// matched value is empty are omitted so the filler never types blanks.
func (m *Mapper) Map(inv *models.FormElementInventory, user models.UserData) models.FieldMapping {
	mapping := models.FieldMapping{}

	fields := make([]models.FormElement, 0, len(inv.Inputs)+len(inv.Textareas))
	fields = append(fields, inv.Inputs...)
	fields = append(fields, inv.Textareas...)

	for _, field := range fields {
		key := field.ID
		if key == "" {
			key = field.Name
		}
		if key == "" {
			continue
		}
		if _, taken := mapping[key]; taken {
			continue
		}

		category := m.classify(field)
		if category == "" {
			continue
		}
		value := valueFor(category, user)
		if value == "" {
			continue
		}
		mapping[key] = value
	}

	m.logger.Info("Mapped %d form fields", len(mapping))
	return mapping
}

// classify returns the first category whose keywords appear in the
// field's composite identifying text, or "".
func (m *Mapper) classify(field models.FormElement) string {
	composite := strings.ToLower(strings.Join([]string{
		field.ID, field.Name, field.Placeholder, field.AriaLabel,
	}, " "))

	for _, cat := range m.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(composite, kw) {
				return cat.Name
			}
		}
	}
	return ""
}

// valueFor resolves a category to the profile value typed into matching
// fields. Resume and cover letter are attachment categories with no
// typed value; the filler handles those separately.
func valueFor(category string, user models.UserData) string {
	switch category {
	case config.CategoryEmail:
		return user.Email
	case config.CategoryPhone:
		return user.Phone
	case config.CategoryFirstName:
		return user.FirstName()
	case config.CategoryLastName:
		return user.LastName()
	case config.CategoryFullName:
		return user.Name
	case config.CategoryLinkedIn:
		return user.LinkedIn
	case config.CategoryPortfolio:
		return user.Portfolio
	case config.CategoryAddress:
		return user.Address
	case config.CategoryExperience:
		return user.YearsExperience
	default:
		return ""
	}
}
