// Package career locates a company's careers page from its homepage. It
// tries homepage links first, then well-known URL paths, then a search
// engine lookup as a last resort.
package career

import (
	"fmt"
	"net/url"
	"strings"

	"jobpilot/internal/browser"
	"jobpilot/internal/config"
	"jobpilot/internal/logging"
	"jobpilot/internal/textutil"
	"jobpilot/pkg/models"
)

// Navigator is the slice of browser behavior discovery needs.
type Navigator interface {
	Navigate(url string) error
	HTML() (string, error)
	Location() (string, error)
	Links() ([]browser.Link, error)
}

// Finder implements the tiered careers-page discovery.
type Finder struct {
	cfg    *config.Config
	logger *logging.Logger
}

func New(cfg *config.Config, logger *logging.Logger) *Finder {
	return &Finder{cfg: cfg, logger: logger}
}

// commonPaths are probed relative to the company root when the homepage
// has no obvious careers link.
var commonPaths = []string{
	"/careers",
	"/careers/",
	"/jobs",
	"/jobs/",
	"/join-us",
	"/join_us",
	"/about/careers",
	"/company/careers",
	"/work-with-us",
	"/employment",
	"/opportunities",
	"/hiring",
}

// Find returns the careers page URL for the company, or "" when none of
// the discovery tiers produce one.
func (f *Finder) Find(nav Navigator, company models.Company) (string, error) {
	f.logger.Subsection(fmt.Sprintf("Finding career page for %s", company.Name))

	if found := f.fromHomepageLinks(nav, company); found != "" {
		return found, nil
	}
	if found := f.fromCommonPaths(nav, company); found != "" {
		return found, nil
	}
	if found := f.fromSearch(nav, company); found != "" {
		return found, nil
	}

	f.logger.Warn("No career page found for %s", company.Name)
	return "", nil
}

// fromHomepageLinks scans the homepage anchors for career-flavored text
// or hrefs. Only absolute links qualify; the browser resolves relative
// hrefs, so anything else is javascript: or mailto: noise.
func (f *Finder) fromHomepageLinks(nav Navigator, company models.Company) string {
	if err := nav.Navigate(company.URL); err != nil {
		f.logger.Warn("Could not load homepage %s: %v", company.URL, err)
		return ""
	}
	links, err := nav.Links()
	if err != nil {
		f.logger.Warn("Could not collect links from %s: %v", company.URL, err)
		return ""
	}

	for _, link := range links {
		if !strings.HasPrefix(link.Href, "http") {
			continue
		}
		text := strings.ToLower(link.Text)
		href := strings.ToLower(link.Href)
		for _, kw := range f.cfg.CareerKeywords {
			if strings.Contains(text, kw) || strings.Contains(href, strings.ReplaceAll(kw, " ", "-")) {
				f.logger.Success("Career link on homepage: %s", link.Href)
				return link.Href
			}
		}
	}
	return ""
}

// fromCommonPaths probes the usual careers URLs. A probe counts as a hit
// when the landed page mentions at least two distinct career keywords,
// which filters out soft 404s that return the homepage.
func (f *Finder) fromCommonPaths(nav Navigator, company models.Company) string {
	base := strings.TrimRight(company.URL, "/")
	for _, path := range commonPaths {
		candidate := base + path
		if err := nav.Navigate(candidate); err != nil {
			continue
		}
		html, err := nav.HTML()
		if err != nil {
			continue
		}
		if countKeywords(html, f.cfg.CareerKeywords) >= 2 {
			landed, err := nav.Location()
			if err != nil || landed == "" {
				landed = candidate
			}
			f.logger.Success("Career page at common path: %s", landed)
			return landed
		}
	}
	return ""
}

// fromSearch asks a search engine for the company's careers page and
// takes the first result on the company's own domain.
func (f *Finder) fromSearch(nav Navigator, company models.Company) string {
	domain := textutil.ExtractDomain(company.URL)
	if domain == "" {
		return ""
	}
	query := url.QueryEscape(fmt.Sprintf("site:%s careers OR jobs", domain))
	if err := nav.Navigate("https://www.google.com/search?q=" + query); err != nil {
		f.logger.Warn("Search lookup failed: %v", err)
		return ""
	}
	links, err := nav.Links()
	if err != nil {
		return ""
	}

	for _, link := range links {
		target := resolveSearchResult(link.Href)
		if target == "" || !strings.Contains(strings.ToLower(target), strings.ToLower(domain)) {
			continue
		}
		lower := strings.ToLower(target)
		for _, kw := range f.cfg.CareerKeywords {
			if strings.Contains(lower, strings.ReplaceAll(kw, " ", "-")) || strings.Contains(lower, strings.ReplaceAll(kw, " ", "")) {
				f.logger.Success("Career page via search: %s", target)
				return target
			}
		}
	}
	return ""
}

// resolveSearchResult unwraps Google's /url?q= redirect links and passes
// direct result links through.
func resolveSearchResult(href string) string {
	if idx := strings.Index(href, "/url?q="); idx >= 0 {
		rest := href[idx+len("/url?q="):]
		if amp := strings.Index(rest, "&"); amp >= 0 {
			rest = rest[:amp]
		}
		if unescaped, err := url.QueryUnescape(rest); err == nil {
			return unescaped
		}
		return rest
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return ""
}

func countKeywords(html string, keywords []string) int {
	lower := strings.ToLower(html)
	count := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}
