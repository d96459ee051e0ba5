package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/expo-enrich/internal/extract"
	"github.com/sells-group/expo-enrich/internal/fusion"
	"github.com/sells-group/expo-enrich/internal/model"
)

var careerPaths = []string{"careers", "jobs", "careers/jobs", "join-us"}

var pressPaths = []string{"press", "news", "blog", "about"}

var linkPaths = []string{"", "about", "contact"}

// WebsiteOptions configures the company-website sources.
type WebsiteOptions struct {
	MaxConcurrent int
}

// fetchAll fans out over candidate pages with a fixed concurrency cap.
// Individual page failures are skipped; ordering of results follows the
// candidate order so extraction stays deterministic.
func fetchAll(ctx context.Context, f Fetcher, urls []string, maxConcurrent int) []*page {
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}

	pages := make([]*page, len(urls))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			p, err := fetchPage(gCtx, f, u)
			if err != nil {
				zap.L().Debug("scrape: candidate page failed",
					zap.String("url", u),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			pages[i] = p
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := pages[:0]
	for _, p := range pages {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// CareerPageSource scrapes a company's career pages for posted job titles.
type CareerPageSource struct {
	fetcher Fetcher
	opts    WebsiteOptions
}

// NewCareerPageSource creates the career-page jobs tier.
func NewCareerPageSource(f Fetcher, opts WebsiteOptions) *CareerPageSource {
	return &CareerPageSource{fetcher: f, opts: opts}
}

func (s *CareerPageSource) Name() string { return fusion.SourceCareerPage }

// Gather fetches candidate career pages and extracts job titles.
func (s *CareerPageSource) Gather(ctx context.Context, company model.Company) (*model.SourceOutcome, error) {
	if company.Website == "" {
		return nil, eris.New("career_page: company has no website")
	}

	pages := fetchAll(ctx, s.fetcher, candidateURLs(company.Website, careerPaths), s.opts.MaxConcurrent)
	if len(pages) == 0 {
		return nil, eris.Errorf("career_page: no reachable pages for %s", company.Website)
	}

	var candidates []string
	for _, p := range pages {
		candidates = append(candidates, textCandidates(p.doc)...)
	}
	titles := extract.FilterJobTitles(candidates)

	outcome := &model.SourceOutcome{
		Source:    fusion.SourceCareerPage,
		Found:     len(titles) > 0,
		JobTitles: titles,
	}
	for _, t := range titles {
		sales, marketing, bd := extract.ClassifyRole(t)
		outcome.HasSales = outcome.HasSales || sales
		outcome.HasMarketing = outcome.HasMarketing || marketing
		outcome.HasBD = outcome.HasBD || bd
	}
	return outcome, nil
}

// PressPageSource scrapes press and news pages for funding mentions.
// First-party press releases are the most reliable scraped funding signal.
type PressPageSource struct {
	fetcher     Fetcher
	opts        WebsiteOptions
	recencyDays int
	now         func() time.Time
}

// NewPressPageSource creates the press-page funding tier.
func NewPressPageSource(f Fetcher, opts WebsiteOptions, recencyDays int) *PressPageSource {
	return &PressPageSource{fetcher: f, opts: opts, recencyDays: recencyDays, now: time.Now}
}

func (s *PressPageSource) Name() string { return fusion.SourcePressPage }

// Gather fetches press/news pages and extracts funding rounds.
func (s *PressPageSource) Gather(ctx context.Context, company model.Company) (*model.SourceOutcome, error) {
	if company.Website == "" {
		return nil, eris.New("press_page: company has no website")
	}

	pages := fetchAll(ctx, s.fetcher, candidateURLs(company.Website, pressPaths), s.opts.MaxConcurrent)
	if len(pages) == 0 {
		return nil, eris.Errorf("press_page: no reachable pages for %s", company.Website)
	}

	outcome := &model.SourceOutcome{Source: fusion.SourcePressPage}
	cutoff := s.now().AddDate(0, 0, -s.recencyDays)

	for _, p := range pages {
		for _, m := range extract.FundingMentions(p.doc.Text()) {
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

	return outcome, nil
}

// WebsiteLinkSource scans a company's own pages for a LinkedIn company
// link — the highest-trust discovery tier, since companies link their own
// profiles.
type WebsiteLinkSource struct {
	fetcher Fetcher
	opts    WebsiteOptions
}

// NewWebsiteLinkSource creates the website LinkedIn-discovery tier.
func NewWebsiteLinkSource(f Fetcher, opts WebsiteOptions) *WebsiteLinkSource {
	return &WebsiteLinkSource{fetcher: f, opts: opts}
}

func (s *WebsiteLinkSource) Name() string { return fusion.SourceWebsite }

// Gather fetches the homepage and about/contact pages and extracts the
// first LinkedIn company URL.
func (s *WebsiteLinkSource) Gather(ctx context.Context, company model.Company) (*model.SourceOutcome, error) {
	if company.Website == "" {
		return nil, eris.New("website: company has no website")
	}

	pages := fetchAll(ctx, s.fetcher, candidateURLs(company.Website, linkPaths), s.opts.MaxConcurrent)
	if len(pages) == 0 {
		return nil, eris.Errorf("website: no reachable pages for %s", company.Website)
	}

	for _, p := range pages {
		if urls := extract.LinkedInCompanyURLs(string(p.body)); len(urls) > 0 {
			return &model.SourceOutcome{
				Source:      fusion.SourceWebsite,
				Found:       true,
				LinkedInURL: urls[0],
			}, nil
		}
	}

	return &model.SourceOutcome{Source: fusion.SourceWebsite}, nil
}
