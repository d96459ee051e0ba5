package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/expo-enrich/internal/extract"
	"github.com/sells-group/expo-enrich/internal/fusion"
	"github.com/sells-group/expo-enrich/internal/model"
)

// SearchResult is one entry from a search results page.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// WebSearchProvider is the injected search capability. The pipeline never
// probes for ambient capabilities at runtime; a provider is chosen at
// construction time.
type WebSearchProvider interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// HTTPSearchProvider scrapes a public search-engine results page.
type HTTPSearchProvider struct {
	fetcher Fetcher
	baseURL string
}

// NewHTTPSearchProvider creates an HTML search-results provider.
func NewHTTPSearchProvider(f Fetcher, baseURL string) *HTTPSearchProvider {
	return &HTTPSearchProvider{fetcher: f, baseURL: baseURL}
}

// Search fetches the results page and extracts result links and snippets.
func (p *HTTPSearchProvider) Search(ctx context.Context, query string) ([]SearchResult, error) {
	u := p.baseURL + "?q=" + url.QueryEscape(query)
	body, status, err := p.fetcher.Get(ctx, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "search: fetch results page")
	}
	if status >= 400 {
		return nil, eris.Errorf("search: status %d", status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "search: parse results page")
	}

	var results []SearchResult
	doc.Find(".result").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find(".result__a").First()
		href, _ := link.Attr("href")
		results = append(results, SearchResult{
			Title:   strings.TrimSpace(link.Text()),
			URL:     href,
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").Text()),
		})
	})
	return results, nil
}

// DisabledSearchProvider is the no-capability implementation. It reports
// no results and never fabricates signal.
type DisabledSearchProvider struct{}

// Search always returns no results.
func (DisabledSearchProvider) Search(context.Context, string) ([]SearchResult, error) {
	return nil, nil
}

// SearchSource wraps a WebSearchProvider as the last-resort tier for one
// dimension.
type SearchSource struct {
	provider    WebSearchProvider
	dim         model.Dimension
	recencyDays int
	now         func() time.Time
}

// NewSearchSource creates the search tier for a dimension.
func NewSearchSource(provider WebSearchProvider, dim model.Dimension, recencyDays int) *SearchSource {
	return &SearchSource{provider: provider, dim: dim, recencyDays: recencyDays, now: time.Now}
}

func (s *SearchSource) Name() string { return fusion.SourceSearch }

// Gather runs a dimension-specific query and extracts signal from result
// titles and snippets.
func (s *SearchSource) Gather(ctx context.Context, company model.Company) (*model.SourceOutcome, error) {
	if company.Name == "" {
		return nil, eris.New("web_search: company has no name")
	}

	results, err := s.provider.Search(ctx, s.query(company))
	if err != nil {
		return nil, eris.Wrap(err, "web_search: query")
	}

	outcome := &model.SourceOutcome{Source: fusion.SourceSearch}
	if len(results) == 0 {
		return outcome, nil
	}

	switch s.dim {
	case model.DimensionLinkedIn:
		for _, r := range results {
			if urls := extract.LinkedInCompanyURLs(r.URL + " " + r.Snippet); len(urls) > 0 {
				outcome.Found = true
				outcome.LinkedInURL = urls[0]
				break
			}
		}

	case model.DimensionJobs:
		var candidates []string
		for _, r := range results {
			candidates = append(candidates, r.Title, r.Snippet)
		}
		titles := extract.FilterJobTitles(candidates)
		outcome.Found = len(titles) > 0
		outcome.JobTitles = titles
		for _, t := range titles {
			sales, marketing, bd := extract.ClassifyRole(t)
			outcome.HasSales = outcome.HasSales || sales
			outcome.HasMarketing = outcome.HasMarketing || marketing
			outcome.HasBD = outcome.HasBD || bd
		}

	case model.DimensionFunding:
		cutoff := s.now().AddDate(0, 0, -s.recencyDays)
		for _, r := range results {
			for _, m := range extract.FundingMentions(r.Title + ". " + r.Snippet) {
				outcome.Found = true
				outcome.Rounds = append(outcome.Rounds, model.FundingRound{
					Type:      m.Round,
					AmountUSD: m.AmountUSD,
					Date:      m.Date,
				})
				outcome.TotalFundingUSD += m.AmountUSD
				if m.Date.After(outcome.LastFundingDate) {
					outcome.LastFundingDate = m.Date
				}
				if !m.Date.IsZero() && m.Date.After(cutoff) {
					outcome.HasRecentFunding = true
				}
			}
		}
	}

	return outcome, nil
}

func (s *SearchSource) query(company model.Company) string {
	switch s.dim {
	case model.DimensionLinkedIn:
		return fmt.Sprintf("%q site:linkedin.com/company", company.Name)
	case model.DimensionJobs:
		return fmt.Sprintf("%q hiring jobs", company.Name)
	default:
		return fmt.Sprintf("%q funding round raised", company.Name)
	}
}
