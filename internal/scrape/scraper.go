// Package scrape implements the fallback source tiers: company-website
// scrapers, the LinkedIn public-page scraper, and the search-engine tier.
// Each composes the fetcher with the pattern extractor against one
// information source and returns a normalized partial outcome.
package scrape

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Fetcher is the single-request HTTP dependency. *fetcher.HTTPFetcher
// satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, int, error)
}

// page holds one fetched candidate page.
type page struct {
	url  string
	body []byte
	doc  *goquery.Document
}

// fetchPage performs one GET and parses the response HTML. Any network or
// parse failure is an error for the caller's tier to swallow.
func fetchPage(ctx context.Context, f Fetcher, url string) (*page, error) {
	body, status, err := f.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, eris.Errorf("scrape: status %d from %s", status, url)
	}
	if len(body) < 100 {
		return nil, eris.Errorf("scrape: empty page %s", url)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: parse %s", url)
	}
	return &page{url: url, body: body, doc: doc}, nil
}

// candidateURLs joins site-relative paths onto a company website,
// normalizing scheme and trailing slashes. An empty path means the
// homepage itself.
func candidateURLs(website string, paths []string) []string {
	base := strings.TrimSpace(website)
	if base == "" {
		return nil
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	base = strings.TrimSuffix(base, "/")

	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			urls = append(urls, base)
			continue
		}
		urls = append(urls, base+"/"+strings.TrimPrefix(p, "/"))
	}
	return urls
}

// textCandidates collects anchor, heading, and list-item texts from a
// page — the strings job titles tend to live in.
func textCandidates(doc *goquery.Document) []string {
	var out []string
	doc.Find("a, h1, h2, h3, h4, h5, li").Each(func(_ int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}
