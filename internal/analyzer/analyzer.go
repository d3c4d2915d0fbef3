// Package analyzer inspects application-page markup: it inventories the
// interactive form controls and classifies the hosting ATS. It works on
// HTML snapshots and never touches the browser itself.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobpilot/internal/config"
	"jobpilot/internal/logging"
	"jobpilot/pkg/models"
)

// Analyzer extracts form structure from page markup.
type Analyzer struct {
	signatures []config.ATSSignature
	logger     *logging.Logger
}

func New(cfg *config.Config, logger *logging.Logger) *Analyzer {
	return &Analyzer{signatures: cfg.ATSSignatures, logger: logger}
}

// skippedInputTypes are input types with no fillable value.
var skippedInputTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
}

// Inventory parses html and returns every interactive control found,
// grouped by kind. File inputs are split out from text inputs because
// they are handled by upload, not typing.
func (a *Analyzer) Inventory(html string) (*models.FormElementInventory, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	inv := &models.FormElementInventory{}

	doc.Find("input").Each(func(_ int, s *goquery.Selection) {
		typ := strings.ToLower(s.AttrOr("type", "text"))
		if skippedInputTypes[typ] {
			return
		}
		el := formElement(s, typ)
		if typ == "file" {
			inv.FileInputs = append(inv.FileInputs, el)
			return
		}
		inv.Inputs = append(inv.Inputs, el)
	})

	doc.Find("textarea").Each(func(_ int, s *goquery.Selection) {
		inv.Textareas = append(inv.Textareas, formElement(s, "textarea"))
	})

	doc.Find("select").Each(func(_ int, s *goquery.Selection) {
		sel := models.SelectElement{FormElement: formElement(s, "select")}
		s.Find("option").Each(func(_ int, o *goquery.Selection) {
			sel.Options = append(sel.Options, strings.TrimSpace(o.Text()))
		})
		inv.Selects = append(inv.Selects, sel)
	})

	doc.Find("button, input[type='submit'], input[type='button']").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			text = s.AttrOr("value", "")
		}
		inv.Buttons = append(inv.Buttons, models.ButtonElement{
			Text:  text,
			Type:  strings.ToLower(s.AttrOr("type", "")),
			ID:    s.AttrOr("id", ""),
			Class: s.AttrOr("class", ""),
		})
	})

	doc.Find("label").Each(func(_ int, s *goquery.Selection) {
		inv.Labels = append(inv.Labels, models.LabelElement{
			Text:  strings.TrimSpace(s.Text()),
			For:   s.AttrOr("for", ""),
			Class: s.AttrOr("class", ""),
		})
	})

	a.logger.Info("Form analysis: %d inputs, %d textareas, %d selects, %d file inputs, %d buttons",
		len(inv.Inputs), len(inv.Textareas), len(inv.Selects), len(inv.FileInputs), len(inv.Buttons))

	return inv, nil
}

func formElement(s *goquery.Selection, typ string) models.FormElement {
	_, required := s.Attr("required")
	return models.FormElement{
		Type:        typ,
		Name:        s.AttrOr("name", ""),
		ID:          s.AttrOr("id", ""),
		Placeholder: s.AttrOr("placeholder", ""),
		AriaLabel:   s.AttrOr("aria-label", ""),
		Class:       s.AttrOr("class", ""),
		Required:    required,
	}
}

// ClassifyATS identifies the tracking system hosting the page. URL
// signatures win over page-content signatures; a readable page that
// matches nothing is "custom", and "unknown" is reserved for pages that
// could not be read at all.
func (a *Analyzer) ClassifyATS(pageURL, html string) models.ATSType {
	if pageURL == "" && html == "" {
		return models.ATSUnknown
	}

	lowerURL := strings.ToLower(pageURL)
	for _, sig := range a.signatures {
		if strings.Contains(lowerURL, sig.Signature) {
			a.logger.Info("ATS detected from URL: %s", sig.Type)
			return sig.Type
		}
	}

	lowerHTML := strings.ToLower(html)
	for _, sig := range a.signatures {
		if strings.Contains(lowerHTML, sig.Signature) {
			a.logger.Info("ATS detected from page content: %s", sig.Type)
			return sig.Type
		}
	}

	return models.ATSCustom
}
