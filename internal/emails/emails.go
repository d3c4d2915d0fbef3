// Package emails harvests contact addresses from pages: mailto links,
// visible text and raw markup, plus a hop to the first contact-looking
// page whose harvest is merged in.
package emails

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobpilot/internal/browser"
	"jobpilot/internal/config"
	"jobpilot/internal/logging"
)

// Navigator is the browser slice needed for the contact-page hop.
type Navigator interface {
	Navigate(url string) error
	HTML() (string, error)
	Links() ([]browser.Link, error)
	Back() error
}

// Extractor finds and validates email addresses in page content.
type Extractor struct {
	logger  *logging.Logger
	pattern *regexp.Regexp
}

func New(cfg *config.Config, logger *logging.Logger) (*Extractor, error) {
	pattern, err := regexp.Compile(cfg.EmailPattern)
	if err != nil {
		return nil, err
	}
	return &Extractor{logger: logger, pattern: pattern}, nil
}

// Asset suffixes that the address regex picks up from image and script
// references. Anything ending in one of these is not a mailbox.
var assetSuffixes = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".css", ".js", ".ico",
}

// Unattended mailboxes and non-recruiting departments. Matched anywhere
// in the address, so dept@sales.acme.com is dropped too.
var unwantedMarkers = []string{
	"noreply", "no-reply", "donotreply", "support",
	"info", "sales", "marketing", "press",
}

// Placeholder domains and retina-image names the address regex picks up.
var invalidMarkers = []string{
	"example.com", "test.com", "sample.com", "@2x.", "@3x.",
}

// Link keywords that may lead to a page carrying contact addresses.
var contactKeywords = []string{"contact", "about", "team", "support"}

// FromHTML extracts every valid address from markup: mailto hrefs first,
// then the visible text, then the raw markup for addresses hidden in
// attributes. The result is deduplicated and sorted.
func (e *Extractor) FromHTML(html string) []string {
	found := map[string]bool{}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find("a[href^='mailto:']").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			addr := strings.TrimPrefix(href, "mailto:")
			if q := strings.Index(addr, "?"); q >= 0 {
				addr = addr[:q]
			}
			e.collect(found, addr)
		})
		for _, m := range e.pattern.FindAllString(doc.Text(), -1) {
			e.collect(found, m)
		}
	}
	for _, m := range e.pattern.FindAllString(html, -1) {
		e.collect(found, m)
	}

	return sorted(found)
}

// FromText extracts valid addresses from plain text such as a job
// description.
func (e *Extractor) FromText(text string) []string {
	found := map[string]bool{}
	for _, m := range e.pattern.FindAllString(text, -1) {
		e.collect(found, m)
	}
	return sorted(found)
}

// FromPage extracts addresses from the current page and from the first
// contact-looking page linked off it, returning the union. The hop
// navigates back so the caller's position is preserved.
func (e *Extractor) FromPage(nav Navigator) []string {
	found := map[string]bool{}

	html, err := nav.HTML()
	if err != nil {
		e.logger.Warn("Could not read page for email extraction: %v", err)
	} else {
		for _, addr := range e.FromHTML(html) {
			found[addr] = true
		}
	}
	for _, addr := range e.fromContactPage(nav) {
		found[addr] = true
	}

	emails := sorted(found)
	if len(emails) > 0 {
		e.logger.Info("Found %d email(s)", len(emails))
	}
	return emails
}

// fromContactPage follows the first link whose text or target mentions a
// contact keyword and harvests that page too.
func (e *Extractor) fromContactPage(nav Navigator) []string {
	links, err := nav.Links()
	if err != nil {
		return nil
	}
	for _, link := range links {
		lower := strings.ToLower(link.Text + " " + link.Href)
		if !containsAny(lower, contactKeywords) || !strings.HasPrefix(link.Href, "http") {
			continue
		}
		var emails []string
		if err := nav.Navigate(link.Href); err == nil {
			if contactHTML, err := nav.HTML(); err == nil {
				emails = e.FromHTML(contactHTML)
			}
			if err := nav.Back(); err != nil {
				e.logger.Warn("Could not return from contact page: %v", err)
			}
		}
		// Only the first candidate is followed.
		return emails
	}
	return nil
}

func (e *Extractor) collect(found map[string]bool, candidate string) {
	addr := strings.ToLower(strings.TrimSpace(candidate))
	if e.valid(addr) {
		found[addr] = true
	}
}

// valid filters out assets, placeholder domains and unwanted
// department mailboxes.
func (e *Extractor) valid(addr string) bool {
	if !e.pattern.MatchString(addr) {
		return false
	}
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(addr, suffix) {
			return false
		}
	}
	if containsAny(addr, invalidMarkers) || containsAny(addr, unwantedMarkers) {
		return false
	}
	return true
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func sorted(found map[string]bool) []string {
	if len(found) == 0 {
		return nil
	}
	out := make([]string, 0, len(found))
	for addr := range found {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}
