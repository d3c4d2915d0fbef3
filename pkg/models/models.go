package models

import "strings"

// UserData is the operator's profile, loaded once at startup from
// configuration and read-only for the rest of the run.
type UserData struct {
	Name            string
	Email           string
	Phone           string
	Address         string
	LinkedIn        string
	Portfolio       string
	YearsExperience string
	CurrentTitle    string
	Skills          string
	BaseResumePath  string
}

// FirstName returns the first whitespace-separated token of the full name.
func (u UserData) FirstName() string {
	parts := strings.Fields(u.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// LastName returns the final token of the full name, or "" for
// single-token names.
func (u UserData) LastName() string {
	parts := strings.Fields(u.Name)
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-1]
}

// JobPosting is a scraped job listing. Equality is structural; duplicates
// are suppressed by full-field match during scraping.
type JobPosting struct {
	Title          string
	Location       string
	Description    string
	Skills         []string
	ApplyLink      string // absolute URL or empty
	Company        string
	RelevanceScore int
}

// Equal reports structural equality, used for duplicate suppression.
func (j JobPosting) Equal(o JobPosting) bool {
	if j.Title != o.Title || j.Location != o.Location || j.Description != o.Description ||
		j.ApplyLink != o.ApplyLink || j.Company != o.Company {
		return false
	}
	if len(j.Skills) != len(o.Skills) {
		return false
	}
	for i := range j.Skills {
		if j.Skills[i] != o.Skills[i] {
			return false
		}
	}
	return true
}

// ATSType classifies the application tracking system hosting a page.
type ATSType string

const (
	ATSGreenhouse      ATSType = "greenhouse"
	ATSLever           ATSType = "lever"
	ATSWorkday         ATSType = "workday"
	ATSTaleo           ATSType = "taleo"
	ATSSmartRecruiters ATSType = "smartrecruiters"
	ATSAshby           ATSType = "ashby"
	ATSCustom          ATSType = "custom"
	ATSUnknown         ATSType = "unknown"
)

// FormElement describes one interactive control found on a page.
type FormElement struct {
	Type        string
	Name        string
	ID          string
	Placeholder string
	AriaLabel   string
	Class       string
	Required    bool
}

// SelectElement is a dropdown with its option texts.
type SelectElement struct {
	FormElement
	Options []string
}

// ButtonElement is a clickable control with its visible text.
type ButtonElement struct {
	Text  string
	Type  string
	ID    string
	Class string
}

// LabelElement associates text with a control.
type LabelElement struct {
	Text  string
	For   string
	Class string
}

// FormElementInventory is a snapshot of a page's interactive controls.
// Built fresh on each analysis and discarded after use.
type FormElementInventory struct {
	Inputs     []FormElement
	Textareas  []FormElement
	Selects    []SelectElement
	FileInputs []FormElement
	Buttons    []ButtonElement
	Labels     []LabelElement
}

// HasForm reports whether the page has anything fillable.
func (inv *FormElementInventory) HasForm() bool {
	return len(inv.Inputs) > 0 || len(inv.Textareas) > 0
}

// HasFileUpload reports whether a file input was found.
func (inv *FormElementInventory) HasFileUpload() bool {
	return len(inv.FileInputs) > 0
}

// HasSubmitButton reports whether any button was found.
func (inv *FormElementInventory) HasSubmitButton() bool {
	return len(inv.Buttons) > 0
}

// FieldMapping assigns form field identifiers to user data values.
// Keys are unique; it is produced once per fill attempt and consumed
// immediately.
type FieldMapping map[string]string

// Application statuses written to the log. The bracketed tags are part of
// the persisted format; statistics match on the substrings after them.
const (
	StatusSuccess      = "[SUCCESS] Applied Successfully"
	StatusManual       = "[MANUAL] Manual Intervention Required"
	StatusFailed       = "[FAILED] Failed"
	StatusNoJobs       = "[INFO] No Relevant Jobs Found"
	StatusNoCareerPage = "[WARNING] Career Page Not Found"
	StatusError        = "[ERROR] Error Occurred"
)

// ApplicationRecord is one row of the persisted application log.
type ApplicationRecord struct {
	Timestamp      string
	CompanyName    string
	CompanyURL     string
	CareerURL      string
	JobTitle       string
	JobLocation    string
	JobDescription string
	ApplyLink      string
	HREmail        string
	Status         string
	Error          string
	ResumePath     string
}

// Company is one row of the companies input file.
type Company struct {
	Name string
	URL  string
}
