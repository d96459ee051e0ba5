package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/expo-enrich/internal/fusion"
	"github.com/sells-group/expo-enrich/internal/model"
)

// fixedProvider returns canned search results.
type fixedProvider struct {
	results []SearchResult
	query   string
}

func (p *fixedProvider) Search(_ context.Context, query string) ([]SearchResult, error) {
	p.query = query
	return p.results, nil
}

func TestHTTPSearchProvider_ParsesResultsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Acme funding", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`<html><body>
			<div class="result">
				<a class="result__a" href="https://news.example/acme">Acme raises Series B</a>
				<div class="result__snippet">Acme announced a $12.5 million Series B.</div>
			</div>
			<div class="result">
				<a class="result__a" href="https://other.example">Other story</a>
				<div class="result__snippet">Unrelated.</div>
			</div>
		</body></html>`))
	}))
	defer srv.Close()

	p := NewHTTPSearchProvider(testFetcher(), srv.URL)
	results, err := p.Search(context.Background(), "Acme funding")

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Acme raises Series B", results[0].Title)
	assert.Equal(t, "https://news.example/acme", results[0].URL)
	assert.Contains(t, results[0].Snippet, "$12.5 million")
}

func TestDisabledSearchProvider_NeverFabricates(t *testing.T) {
	results, err := DisabledSearchProvider{}.Search(context.Background(), "anything")
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchSource_DisabledProviderYieldsNotFound(t *testing.T) {
	src := NewSearchSource(DisabledSearchProvider{}, model.DimensionFunding, 365)
	outcome, err := src.Gather(context.Background(), model.Company{Name: "Acme"})

	require.NoError(t, err)
	assert.False(t, outcome.Found, "no capability means no signal, not simulated data")
	assert.Empty(t, outcome.Rounds)
}

func TestSearchSource_LinkedInDimension(t *testing.T) {
	p := &fixedProvider{results: []SearchResult{
		{Title: "Acme | LinkedIn", URL: "https://www.linkedin.com/company/acme", Snippet: "Acme on LinkedIn"},
	}}
	src := NewSearchSource(p, model.DimensionLinkedIn, 0)

	outcome, err := src.Gather(context.Background(), model.Company{Name: "Acme"})

	require.NoError(t, err)
	assert.True(t, outcome.Found)
	assert.Equal(t, "https://www.linkedin.com/company/acme", outcome.LinkedInURL)
	assert.Contains(t, p.query, "site:linkedin.com/company")
}

func TestSearchSource_JobsDimension(t *testing.T) {
	p := &fixedProvider{results: []SearchResult{
		{Title: "Account Executive at Acme", Snippet: "Acme is hiring"},
	}}
	src := NewSearchSource(p, model.DimensionJobs, 30)

	outcome, err := src.Gather(context.Background(), model.Company{Name: "Acme"})

	require.NoError(t, err)
	assert.True(t, outcome.Found)
	assert.Contains(t, outcome.JobTitles, "Account Executive at Acme")
	assert.True(t, outcome.HasSales)
	assert.Equal(t, fusion.SourceSearch, outcome.Source)
}

func TestSearchSource_FundingDimension(t *testing.T) {
	p := &fixedProvider{results: []SearchResult{
		{Title: "Acme raises Series B", Snippet: "Acme announced a $12.5 million Series B on January 15, 2025."},
	}}
	src := NewSearchSource(p, model.DimensionFunding, 3650)

	outcome, err := src.Gather(context.Background(), model.Company{Name: "Acme"})

	require.NoError(t, err)
	assert.True(t, outcome.Found)
	require.NotEmpty(t, outcome.Rounds)
	assert.Equal(t, "series b", outcome.Rounds[0].Type)
	assert.Equal(t, int64(12_500_000), outcome.TotalFundingUSD)
	assert.True(t, outcome.HasRecentFunding)
}
