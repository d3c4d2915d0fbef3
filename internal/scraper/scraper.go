// Package scraper pulls job listings out of careers-page markup. Career
// sites share no structure, so extraction runs a cascade of strategies
// from most to least precise and keeps whatever the first productive one
// yields.
package scraper

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobpilot/internal/config"
	"jobpilot/internal/logging"
	"jobpilot/internal/textutil"
	"jobpilot/pkg/models"
)

// maxJobs caps how many listings a single page may contribute.
const maxJobs = 20

// Navigator is the browser slice needed to fetch a job's detail page.
type Navigator interface {
	Navigate(url string) error
	HTML() (string, error)
}

// Scraper extracts, tags and ranks job postings.
type Scraper struct {
	cfg    *config.Config
	logger *logging.Logger
}

func New(cfg *config.Config, logger *logging.Logger) *Scraper {
	return &Scraper{cfg: cfg, logger: logger}
}

// jobCardClass matches container classes that conventionally wrap one
// listing.
var jobCardClass = regexp.MustCompile(`(?i)(job|position|opening|vacanc|listing|career)`)

// jobHrefHint marks anchors that likely point at a posting.
var jobHrefHint = []string{"job", "apply", "position", "opening"}

// Scrape extracts job postings from the page at pageURL with the given
// markup. Relative links are resolved against pageURL, duplicates are
// dropped, skills are tagged and the result is ranked by relevance.
func (s *Scraper) Scrape(html, pageURL, company string) ([]models.JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(pageURL)

	jobs := s.fromJobCards(doc, base, company)
	if len(jobs) == 0 {
		jobs = s.fromJobLinks(doc, base, company)
	}
	if len(jobs) == 0 {
		jobs = s.fromHeadings(doc, company)
	}

	jobs = dedupe(jobs)
	if len(jobs) > maxJobs {
		jobs = jobs[:maxJobs]
	}
	for i := range jobs {
		jobs[i].Skills = s.tagSkills(jobs[i])
	}
	jobs = s.rank(jobs)

	s.logger.Info("Scraped %d job postings from %s", len(jobs), pageURL)
	return jobs, nil
}

// fromJobCards finds container elements whose class names look like job
// cards and pulls a structured posting out of each.
func (s *Scraper) fromJobCards(doc *goquery.Document, base *url.URL, company string) []models.JobPosting {
	var jobs []models.JobPosting
	doc.Find("div, li, article").Each(func(_ int, card *goquery.Selection) {
		class, ok := card.Attr("class")
		if !ok || !jobCardClass.MatchString(class) {
			return
		}
		// Outermost match wins; nested matches would duplicate it.
		if card.ParentsFiltered("[class]").FilterFunction(func(_ int, p *goquery.Selection) bool {
			return jobCardClass.MatchString(p.AttrOr("class", ""))
		}).Length() > 0 {
			return
		}

		title := cardTitle(card)
		if title == "" {
			return
		}
		job := models.JobPosting{
			Title:    title,
			Company:  company,
			Location: strings.TrimSpace(card.Find("[class*='location']").First().Text()),
		}
		if href, ok := card.Find("a[href]").First().Attr("href"); ok {
			job.ApplyLink = resolveURL(base, href)
		}
		job.Description = firstRunes(textutil.Clean(card.Text()), 500)
		jobs = append(jobs, job)
	})
	return jobs
}

func cardTitle(card *goquery.Selection) string {
	for _, sel := range []string{"h1", "h2", "h3", "h4", "h5", "h6", "a", "strong"} {
		if text := strings.TrimSpace(card.Find(sel).First().Text()); len(text) > 3 {
			return text
		}
	}
	return ""
}

// fromJobLinks falls back to anchors whose targets hint at a posting.
func (s *Scraper) fromJobLinks(doc *goquery.Document, base *url.URL, company string) []models.JobPosting {
	var jobs []models.JobPosting
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		lower := strings.ToLower(href)
		hinted := false
		for _, hint := range jobHrefHint {
			if strings.Contains(lower, hint) {
				hinted = true
				break
			}
		}
		if !hinted {
			return
		}
		text := strings.TrimSpace(a.Text())
		if len(text) < 5 || len(text) > 100 {
			return
		}
		jobs = append(jobs, models.JobPosting{
			Title:     text,
			Company:   company,
			ApplyLink: resolveURL(base, href),
		})
	})
	return jobs
}

// fromHeadings is the last resort: headings sized like job titles, with
// the apply link taken from the nearest anchor in the same container.
func (s *Scraper) fromHeadings(doc *goquery.Document, company string) []models.JobPosting {
	var jobs []models.JobPosting
	doc.Find("h2, h3").Each(func(_ int, h *goquery.Selection) {
		text := strings.TrimSpace(h.Text())
		if len(text) < 10 || len(text) >= 100 {
			return
		}
		job := models.JobPosting{Title: text, Company: company}
		if href, ok := h.Parent().Find("a[href]").First().Attr("href"); ok && strings.HasPrefix(href, "http") {
			job.ApplyLink = href
		}
		jobs = append(jobs, job)
	})
	return jobs
}

// firstRunes keeps the leading n characters of s.
func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Details loads a posting's own page and replaces the card snippet with
// the fuller description found there.
func (s *Scraper) Details(nav Navigator, job *models.JobPosting) error {
	if job.ApplyLink == "" {
		return nil
	}
	if err := nav.Navigate(job.ApplyLink); err != nil {
		return err
	}
	html, err := nav.HTML()
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}

	var text string
	for _, sel := range []string{"main", "article", "[class*='description']", "body"} {
		if text = textutil.Clean(doc.Find(sel).First().Text()); len(text) > len(job.Description) {
			break
		}
	}
	if len(text) > len(job.Description) {
		job.Description = textutil.Truncate(text, 2000, "...")
		job.Skills = s.tagSkills(*job)
	}
	return nil
}

// tagSkills returns the vocabulary skills mentioned in the posting.
func (s *Scraper) tagSkills(job models.JobPosting) []string {
	haystack := strings.ToLower(job.Title + " " + job.Description)
	var skills []string
	for _, skill := range s.cfg.SkillVocabulary {
		if strings.Contains(haystack, skill) {
			skills = append(skills, skill)
		}
	}
	return skills
}

// rank scores each posting by relevance keyword hits, drops zero-score
// postings when a keyword list is configured, and sorts best first. The
// sort is stable so page order breaks ties.
func (s *Scraper) rank(jobs []models.JobPosting) []models.JobPosting {
	if len(s.cfg.RelevanceKeywords) == 0 {
		return jobs
	}
	kept := jobs[:0]
	for _, job := range jobs {
		haystack := strings.ToLower(job.Title + " " + job.Description)
		score := 0
		for _, kw := range s.cfg.RelevanceKeywords {
			if strings.Contains(haystack, kw) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		job.RelevanceScore = score
		kept = append(kept, job)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})
	return kept
}

func dedupe(jobs []models.JobPosting) []models.JobPosting {
	var out []models.JobPosting
	for _, job := range jobs {
		dup := false
		for _, seen := range out {
			if job.Equal(seen) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, job)
		}
	}
	return out
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
