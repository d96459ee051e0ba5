package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/expo-enrich/internal/fusion"
	"github.com/sells-group/expo-enrich/internal/model"
	"github.com/sells-group/expo-enrich/pkg/lidata"
)

func TestFunding_APIOnlyPath(t *testing.T) {
	recent := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	api := &mockAPI{funding: map[string]*lidata.Funding{
		liURL("acme"): {
			Rounds: []lidata.FundingRound{
				{RoundType: "Series A", AmountUSD: 12_500_000, AnnouncedOn: recent},
			},
			TotalUSD:      15_000_000,
			CrunchbaseURL: "https://www.crunchbase.com/organization/acme",
		},
	}}
	a := NewFunding(api, fusion.NewEngine(nil), Options{})

	c := &model.Company{Name: "Acme", LinkedInURL: liURL("acme"), EmployeeCount: 40}
	summary := a.Process(context.Background(), []*model.Company{c})

	assert.Equal(t, 1, summary.Successful)
	assert.True(t, c.HasFundingData)
	assert.True(t, c.HasRecentFunding)
	assert.Equal(t, recent, c.LastFundingDate.Format("2006-01-02"))
	assert.Equal(t, "https://www.crunchbase.com/organization/acme", c.CrunchbaseURL)
	assert.Equal(t, "$15.0M", c.TotalFunding)
	assert.Equal(t, []string{"api"}, c.FundingDataSources)
	assert.InDelta(t, 0.8, c.FundingConfidence, 0.001)
}

func TestFunding_EscalatesToPressPage(t *testing.T) {
	api := &mockAPI{funding: map[string]*lidata.Funding{}}
	press := &stubSource{
		label: fusion.SourcePressPage,
		outcome: &model.SourceOutcome{
			Source:           fusion.SourcePressPage,
			Found:            true,
			Rounds:           []model.FundingRound{{Type: "seed", AmountUSD: 2_000_000}},
			TotalFundingUSD:  2_000_000,
			HasRecentFunding: true,
		},
	}
	engine := fusion.NewEngine(nil)
	engine.Register(model.DimensionFunding, press)
	a := NewFunding(api, engine, Options{})

	c := &model.Company{Name: "Acme", LinkedInURL: liURL("acme"), EmployeeCount: 120}
	summary := a.Process(context.Background(), []*model.Company{c})

	assert.Equal(t, 1, press.calls)
	assert.Equal(t, 1, summary.Escalated)
	assert.True(t, c.HasFundingData)
	assert.True(t, c.HasRecentFunding)
	assert.Contains(t, c.FundingDataSources, fusion.SourcePressPage)
	assert.Equal(t, "$2.0M", c.TotalFunding)
}

func TestFunding_StaleFundingEscalatesForLargeCompany(t *testing.T) {
	api := &mockAPI{funding: map[string]*lidata.Funding{
		liURL("big"): {
			Rounds: []lidata.FundingRound{{RoundType: "Series B", AmountUSD: 30_000_000, AnnouncedOn: "2020-05-01"}},
		},
	}}
	press := &stubSource{label: fusion.SourcePressPage, outcome: &model.SourceOutcome{Source: fusion.SourcePressPage}}
	engine := fusion.NewEngine(nil)
	engine.Register(model.DimensionFunding, press)
	a := NewFunding(api, engine, Options{})

	c := &model.Company{Name: "Big", LinkedInURL: liURL("big"), EmployeeCount: 150}
	a.Process(context.Background(), []*model.Company{c})

	assert.Equal(t, 1, press.calls, "found-but-stale above the no-recent floor escalates")
	assert.True(t, c.HasFundingData)
	assert.False(t, c.HasRecentFunding)
}

func TestFunding_MissingLinkedInCountsAsError(t *testing.T) {
	a := NewFunding(&mockAPI{}, fusion.NewEngine(nil), Options{})

	c := &model.Company{Name: "NoURL", EmployeeCount: 30}
	summary := a.Process(context.Background(), []*model.Company{c})

	assert.Equal(t, 1, summary.Errors)
	assert.False(t, c.HasFundingData)
	assert.Empty(t, c.FundingDataSources)
}

func TestFormatRounds(t *testing.T) {
	s := formatRounds([]model.FundingRound{
		{Type: "series a", AmountUSD: 12_500_000, Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Type: "seed"},
	})
	assert.Equal(t, "series a $12.5M (2025-03-01); seed", s)
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$1.5B", formatUSD(1_500_000_000))
	assert.Equal(t, "$12.5M", formatUSD(12_500_000))
	assert.Equal(t, "$500K", formatUSD(500_000))
	assert.Equal(t, "$42", formatUSD(42))
	assert.Empty(t, formatUSD(0))
}
