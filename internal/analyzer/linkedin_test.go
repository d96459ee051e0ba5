package analyzer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/expo-enrich/internal/fusion"
	"github.com/sells-group/expo-enrich/internal/model"
	"github.com/sells-group/expo-enrich/internal/store"
)

func discoveryEngine(url string) (*fusion.Engine, *stubSource) {
	src := &stubSource{
		label: fusion.SourceWebsite,
		outcome: &model.SourceOutcome{
			Source:      fusion.SourceWebsite,
			Found:       true,
			LinkedInURL: url,
		},
	}
	e := fusion.NewEngine(nil)
	e.Register(model.DimensionLinkedIn, src)
	return e, src
}

func TestLinkedIn_DiscoversMissingURL(t *testing.T) {
	engine, src := discoveryEngine("https://www.linkedin.com/company/acme")
	a := NewLinkedIn(engine, nil, Options{})

	c := &model.Company{Name: "Acme", Website: "acme.example"}
	summary := a.Process(context.Background(), []*model.Company{c})

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, summary.Successful)
	assert.Equal(t, "https://www.linkedin.com/company/acme", c.LinkedInURL)
	assert.Equal(t, fusion.SourceWebsite, c.LinkedInSource)
}

func TestLinkedIn_ExistingURLUntouched(t *testing.T) {
	engine, src := discoveryEngine("https://www.linkedin.com/company/wrong")
	a := NewLinkedIn(engine, nil, Options{})

	c := &model.Company{Name: "Acme", LinkedInURL: "https://www.linkedin.com/company/acme", LinkedInSource: "input"}
	summary := a.Process(context.Background(), []*model.Company{c})

	assert.Equal(t, 0, src.calls, "companies with a URL are skipped entirely")
	assert.Equal(t, 1, summary.Flags["already_present"])
	assert.Equal(t, "https://www.linkedin.com/company/acme", c.LinkedInURL)
}

func TestLinkedIn_CacheAvoidsSecondDiscovery(t *testing.T) {
	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer cache.Close() //nolint:errcheck

	engine, src := discoveryEngine("https://www.linkedin.com/company/acme")
	a := NewLinkedIn(engine, cache, Options{})

	first := &model.Company{Name: "Acme", Website: "acme.example"}
	a.Process(context.Background(), []*model.Company{first})
	require.Equal(t, 1, src.calls)

	// Same company on a resumed run: served from cache, engine untouched.
	second := &model.Company{Name: "Acme", Website: "acme.example"}
	summary := a.Process(context.Background(), []*model.Company{second})

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, summary.Flags["cache_hit"])
	assert.Equal(t, "https://www.linkedin.com/company/acme", second.LinkedInURL)
}

func TestLinkedIn_NotFoundLeavesDefaults(t *testing.T) {
	e := fusion.NewEngine(nil)
	a := NewLinkedIn(e, nil, Options{})

	c := &model.Company{Name: "Ghost Co"}
	summary := a.Process(context.Background(), []*model.Company{c})

	assert.Equal(t, 1, summary.Flags["not_found"])
	assert.Empty(t, c.LinkedInURL)
}
