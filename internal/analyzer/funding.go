package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/expo-enrich/internal/fusion"
	"github.com/sells-group/expo-enrich/internal/model"
	"github.com/sells-group/expo-enrich/pkg/lidata"
)

// Funding enriches companies with funding history: one primary API call,
// escalated through the press-page and search tiers when the API comes
// back empty or stale for a company of this size.
type Funding struct {
	api    lidata.Client
	engine *fusion.Engine
	opts   Options
}

// NewFunding creates the funding analyzer.
func NewFunding(api lidata.Client, engine *fusion.Engine, opts Options) *Funding {
	return &Funding{api: api, engine: engine, opts: opts}
}

// Process runs the funding dimension for every company in order.
func (a *Funding) Process(ctx context.Context, companies []*model.Company) Summary {
	summary := newSummary("funding")
	recency := time.Duration(a.engine.Config().FundingRecencyDays) * 24 * time.Hour

	for _, c := range companies {
		summary.Processed++
		log := zap.L().With(zap.String("company", c.Name), zap.String("stage", "funding"))

		primary := a.primaryOutcome(ctx, c, recency)
		if primary == nil {
			summary.Errors++
			summary.flag("api_error")
		}

		escalated := a.engine.ShouldEscalate(model.DimensionFunding, primary, c.EmployeeCount)
		res := a.engine.Fuse(ctx, *c, primary, model.DimensionFunding)
		if escalated {
			summary.Escalated++
		}

		a.write(c, res)
		if res.Found {
			summary.Successful++
			if res.HasRecentFunding {
				summary.flag("recent_funding")
			}
			log.Info("funding data recorded",
				zap.Strings("sources", res.Sources),
				zap.Float64("confidence", res.Confidence),
			)
		} else {
			summary.flag("no_funding_data")
			log.Debug("no funding data found")
		}

		a.opts.pause(ctx, escalated)
		if ctx.Err() != nil {
			break
		}
	}

	return summary
}

// primaryOutcome maps the API funding response to a source outcome.
// Returns nil when the API call itself failed, which forces escalation.
func (a *Funding) primaryOutcome(ctx context.Context, c *model.Company, recency time.Duration) *model.SourceOutcome {
	if c.LinkedInURL == "" {
		return nil
	}
	funding, err := a.api.CompanyFunding(ctx, c.LinkedInURL)
	if err != nil {
		zap.L().Warn("funding api lookup failed",
			zap.String("company", c.Name), zap.Error(err))
		return nil
	}

	outcome := &model.SourceOutcome{
		Source:          fusion.SourceAPI,
		Confidence:      a.engine.Config().APIConfidence,
		TotalFundingUSD: funding.TotalUSD,
		CrunchbaseURL:   funding.CrunchbaseURL,
	}

	cutoff := time.Now().Add(-recency)
	for _, r := range funding.Rounds {
		round := model.FundingRound{Type: r.RoundType, AmountUSD: r.AmountUSD}
		if d, err := time.Parse("2006-01-02", r.AnnouncedOn); err == nil {
			round.Date = d
			if d.After(outcome.LastFundingDate) {
				outcome.LastFundingDate = d
			}
			if d.After(cutoff) {
				outcome.HasRecentFunding = true
			}
		}
		outcome.Rounds = append(outcome.Rounds, round)
	}
	outcome.Found = len(outcome.Rounds) > 0 || outcome.TotalFundingUSD > 0
	return outcome
}

// write flattens the fused verdict onto the company record, append-only.
func (a *Funding) write(c *model.Company, res model.DimensionResult) {
	model.OrFlag(&c.HasFundingData, res.Found)
	model.OrFlag(&c.HasRecentFunding, res.HasRecentFunding)
	c.SetLastFundingDate(res.LastFundingDate)
	model.SetIfEmpty(&c.CrunchbaseURL, res.CrunchbaseURL)
	model.SetIfEmpty(&c.FundingRounds, formatRounds(res.Rounds))
	model.SetIfEmpty(&c.TotalFunding, formatUSD(res.TotalFundingUSD))
	model.SetIfEmpty(&c.FundingDetails, fundingDetails(res))

	for _, s := range res.Sources {
		if !containsString(c.FundingDataSources, s) {
			c.FundingDataSources = append(c.FundingDataSources, s)
		}
	}
	if res.Confidence > c.FundingConfidence {
		c.FundingConfidence = res.Confidence
	}
}

// formatRounds renders rounds as "Series A $12.5M (2025-03-01); Seed $2.0M".
func formatRounds(rounds []model.FundingRound) string {
	parts := make([]string, 0, len(rounds))
	for _, r := range rounds {
		p := r.Type
		if amount := formatUSD(r.AmountUSD); amount != "" {
			if p != "" {
				p += " "
			}
			p += amount
		}
		if !r.Date.IsZero() {
			p += fmt.Sprintf(" (%s)", r.Date.Format("2006-01-02"))
		}
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "; ")
}

// fundingDetails builds the human-readable summary column.
func fundingDetails(res model.DimensionResult) string {
	if !res.Found {
		return ""
	}
	parts := []string{}
	if total := formatUSD(res.TotalFundingUSD); total != "" {
		parts = append(parts, "total "+total)
	}
	if n := len(res.Rounds); n > 0 {
		parts = append(parts, fmt.Sprintf("%d round(s)", n))
	}
	if !res.LastFundingDate.IsZero() {
		parts = append(parts, "last "+res.LastFundingDate.Format("2006-01-02"))
	}
	return strings.Join(parts, ", ")
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
