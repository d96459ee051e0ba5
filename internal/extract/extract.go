// Package extract provides stateless pattern extraction over raw HTML and
// text: LinkedIn company URLs, job titles with role classification, and
// funding mentions. Every function is a pure function of its input.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var linkedInCompanyRe = regexp.MustCompile(`https?://(?:[a-z]{2,3}\.)?linkedin\.com/company/[A-Za-z0-9\-_%.]+`)

// LinkedInCompanyURLs returns every distinct LinkedIn company-page URL
// found in the input, normalized, in order of first appearance.
func LinkedInCompanyURLs(s string) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, m := range linkedInCompanyRe.FindAllString(s, -1) {
		u := NormalizeLinkedInURL(m)
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

// NormalizeLinkedInURL canonicalizes a LinkedIn company URL: https scheme,
// www host, no trailing slash or query.
func NormalizeLinkedInURL(u string) string {
	u = strings.TrimSpace(u)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimSuffix(u, "/")
	if i := strings.Index(u, "linkedin.com"); i >= 0 {
		u = "https://www." + u[i:]
	}
	return u
}

var salesKeywords = []string{
	"account executive", "sales", "sdr", "bdr", "account manager", "revenue",
}

var marketingKeywords = []string{
	"marketing", "growth", "demand gen", "content", "seo", "brand",
}

var bdKeywords = []string{
	"business development", "partnership", "partner manager", "alliances",
}

var roleKeywords = func() []string {
	all := append([]string{}, salesKeywords...)
	all = append(all, marketingKeywords...)
	all = append(all, bdKeywords...)
	all = append(all,
		"engineer", "developer", "designer", "manager", "director", "analyst",
		"specialist", "lead", "coordinator", "consultant", "recruiter",
		"head of", "vp ", "vice president", "chief", "officer", "representative",
	)
	return all
}()

// LooksLikeJobTitle reports whether a candidate string resembles a posted
// job title rather than page chrome.
func LooksLikeJobTitle(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 3 || len(s) > 80 {
		return false
	}
	lower := strings.ToLower(s)
	for _, bad := range []string{"cookie", "privacy", "terms", "©", "sign in", "log in", "learn more"} {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	for _, kw := range roleKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FilterJobTitles keeps candidates that look like job titles, deduplicated,
// preserving input order.
func FilterJobTitles(candidates []string) []string {
	seen := make(map[string]bool)
	var titles []string
	for _, c := range candidates {
		c = strings.Join(strings.Fields(c), " ")
		key := strings.ToLower(c)
		if seen[key] || !LooksLikeJobTitle(c) {
			continue
		}
		seen[key] = true
		titles = append(titles, c)
	}
	return titles
}

// ClassifyRole reports which hiring-signal buckets a job title falls into.
func ClassifyRole(title string) (sales, marketing, bd bool) {
	lower := strings.ToLower(title)
	for _, kw := range bdKeywords {
		if strings.Contains(lower, kw) {
			bd = true
			break
		}
	}
	for _, kw := range marketingKeywords {
		if strings.Contains(lower, kw) {
			marketing = true
			break
		}
	}
	if !bd { // "business development" contains no sales keyword, but guard overlap
		for _, kw := range salesKeywords {
			if strings.Contains(lower, kw) {
				sales = true
				break
			}
		}
	}
	return sales, marketing, bd
}

// FundingMention is one funding fact extracted from text.
type FundingMention struct {
	Round     string
	AmountUSD int64
	Date      time.Time
}

var roundRe = regexp.MustCompile(`(?i)\b(pre-seed|seed|series [a-f]|ipo|debt financing|venture round|growth round)\b`)

var amountRe = regexp.MustCompile(`(?i)[$€£]\s?(\d+(?:\.\d+)?)\s?(billion|million|bn|mm|m|k)\b`)

// FundingMentions scans text for funding-round language and returns typed
// mentions. Sentences with a round type but no amount still count; the
// amount and date stay zero.
func FundingMentions(text string) []FundingMention {
	var mentions []FundingMention
	for _, sentence := range splitSentences(text) {
		round := roundRe.FindString(sentence)
		amount := ParseAmountUSD(sentence)
		if round == "" && amount == 0 {
			continue
		}
		mentions = append(mentions, FundingMention{
			Round:     normalizeRound(round),
			AmountUSD: amount,
			Date:      FirstDate(sentence),
		})
	}
	return mentions
}

func normalizeRound(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}

// splitSentences breaks text at sentence boundaries. A period between
// digits is a decimal point ("$12.5 million"), not a boundary.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i, r := range runes {
		boundary := r == '\n' || r == '!' || r == ';'
		if r == '.' {
			prevDigit := i > 0 && runes[i-1] >= '0' && runes[i-1] <= '9'
			nextDigit := i+1 < len(runes) && runes[i+1] >= '0' && runes[i+1] <= '9'
			boundary = !(prevDigit && nextDigit)
		}
		if boundary {
			if s := strings.TrimSpace(string(runes[start:i])); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// ParseAmountUSD reads the first monetary amount in the text, e.g.
// "$12.5 million" → 12500000. Returns 0 when no amount is present.
func ParseAmountUSD(text string) int64 {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch strings.ToLower(m[2]) {
	case "billion", "bn":
		val *= 1e9
	case "million", "mm", "m":
		val *= 1e6
	case "k":
		val *= 1e3
	}
	return int64(val)
}

var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
	"Jan 2006",
	"2006",
}

var dateRe = regexp.MustCompile(`\b(?:\d{4}-\d{2}-\d{2}|(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+(?:\d{1,2},\s+)?\d{4})\b`)

// FirstDate returns the first parseable date in the text, or the zero time.
func FirstDate(text string) time.Time {
	m := dateRe.FindString(text)
	if m == "" {
		return time.Time{}
	}
	return ParseDate(m)
}

// ParseDate parses a date in any of the supported layouts.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(strings.ReplaceAll(s, ".", ""))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
