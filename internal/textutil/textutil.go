// Package textutil provides text cleaning and normalization helpers used
// across the pipeline.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	specialRe    = regexp.MustCompile(`[^\w\s.,!?@-]`)
	invalidFnRe  = regexp.MustCompile(`[<>:"/\\|?*]`)
	domainRe     = regexp.MustCompile(`https?://(?:www\.)?([^/]+)`)
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)

	companySuffixes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s+Inc\.?$`),
		regexp.MustCompile(`(?i)\s+LLC\.?$`),
		regexp.MustCompile(`(?i)\s+Ltd\.?$`),
		regexp.MustCompile(`(?i)\s+Corporation$`),
		regexp.MustCompile(`(?i)\s+Corp\.?$`),
		regexp.MustCompile(`(?i)\s+Co\.?$`),
	}
)

// Clean collapses whitespace and strips special characters, keeping basic
// punctuation.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = specialRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// FoldDiacritics removes combining marks so that accented names compare
// equal to their ASCII spellings.
func FoldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeCompanyName strips common legal suffixes and diacritics.
func NormalizeCompanyName(name string) string {
	if name == "" {
		return ""
	}
	name = FoldDiacritics(name)
	for _, re := range companySuffixes {
		name = re.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(name)
}

// SanitizeFilename removes characters invalid in filenames, replaces
// spaces with underscores and caps the length at 200.
func SanitizeFilename(name string) string {
	s := invalidFnRe.ReplaceAllString(name, "")
	s = strings.ReplaceAll(s, " ", "_")
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// Truncate cuts text to maxLen, appending the suffix when cut.
func Truncate(text string, maxLen int, suffix string) string {
	if text == "" || len(text) <= maxLen {
		return text
	}
	if maxLen <= len(suffix) {
		return text[:maxLen]
	}
	return text[:maxLen-len(suffix)] + suffix
}

// ExtractDomain pulls the host out of an http(s) URL, without the www
// prefix. Returns "" when the URL does not parse.
func ExtractDomain(url string) string {
	m := domainRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true,
}

// ExtractKeywords lowercases the text and returns its distinct words of at
// least minLength characters, stop words removed, in first-seen order.
func ExtractKeywords(text string, minLength int) []string {
	if text == "" {
		return nil
	}
	text = nonWordRe.ReplaceAllString(strings.ToLower(text), " ")

	seen := make(map[string]bool)
	var keywords []string
	for _, word := range strings.Fields(text) {
		if len(word) < minLength || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	return keywords
}
