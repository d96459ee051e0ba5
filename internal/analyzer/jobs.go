package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/expo-enrich/internal/extract"
	"github.com/sells-group/expo-enrich/internal/fusion"
	"github.com/sells-group/expo-enrich/internal/model"
	"github.com/sells-group/expo-enrich/pkg/lidata"
)

// Jobs enriches companies with hiring signals: recent postings from the
// primary API, escalated through the career-page and search tiers when a
// company of this size reports suspiciously few openings.
type Jobs struct {
	api    lidata.Client
	engine *fusion.Engine
	opts   Options
}

// NewJobs creates the jobs analyzer.
func NewJobs(api lidata.Client, engine *fusion.Engine, opts Options) *Jobs {
	return &Jobs{api: api, engine: engine, opts: opts}
}

// Process runs the jobs dimension for every company in order.
func (a *Jobs) Process(ctx context.Context, companies []*model.Company) Summary {
	summary := newSummary("jobs")
	recency := time.Duration(a.engine.Config().JobRecencyDays) * 24 * time.Hour

	for _, c := range companies {
		summary.Processed++
		log := zap.L().With(zap.String("company", c.Name), zap.String("stage", "jobs"))

		primary := a.primaryOutcome(ctx, c, recency)
		if primary == nil {
			summary.Errors++
			summary.flag("api_error")
		}

		escalated := a.engine.ShouldEscalate(model.DimensionJobs, primary, c.EmployeeCount)
		res := a.engine.Fuse(ctx, *c, primary, model.DimensionJobs)
		if escalated {
			summary.Escalated++
		}

		a.write(c, res)
		if res.Found {
			summary.Successful++
			if c.HasSalesJobs {
				summary.flag("sales_jobs")
			}
			log.Info("hiring data recorded",
				zap.Int("recent_jobs", c.RecentJobCount),
				zap.Strings("sources", res.Sources),
				zap.Float64("confidence", res.Confidence),
			)
		} else {
			summary.flag("no_recent_jobs")
			log.Debug("no recent job postings found")
		}

		a.opts.pause(ctx, escalated)
		if ctx.Err() != nil {
			break
		}
	}

	return summary
}

// primaryOutcome maps the API jobs response to a source outcome, keeping
// only postings inside the recency window that read like real job titles.
// Returns nil when the API call itself failed, which forces escalation.
func (a *Jobs) primaryOutcome(ctx context.Context, c *model.Company, recency time.Duration) *model.SourceOutcome {
	if c.LinkedInURL == "" {
		return nil
	}
	jobs, err := a.api.CompanyJobs(ctx, c.LinkedInURL)
	if err != nil {
		zap.L().Warn("jobs api lookup failed",
			zap.String("company", c.Name), zap.Error(err))
		return nil
	}

	outcome := &model.SourceOutcome{
		Source:     fusion.SourceAPI,
		Confidence: a.engine.Config().APIConfidence,
	}

	cutoff := time.Now().Add(-recency)
	for _, j := range jobs {
		posted, err := time.Parse("2006-01-02", j.PostedAt)
		if err != nil || posted.Before(cutoff) {
			continue
		}
		if !extract.LooksLikeJobTitle(j.Title) {
			continue
		}
		outcome.JobTitles = append(outcome.JobTitles, j.Title)
		outcome.JobDates = append(outcome.JobDates, posted.Format("2006-01-02"))
		sales, marketing, bd := extract.ClassifyRole(j.Title)
		outcome.HasSales = outcome.HasSales || sales
		outcome.HasMarketing = outcome.HasMarketing || marketing
		outcome.HasBD = outcome.HasBD || bd
	}
	outcome.Found = len(outcome.JobTitles) > 0
	return outcome
}

// write flattens the fused verdict onto the company record, append-only.
func (a *Jobs) write(c *model.Company, res model.DimensionResult) {
	model.OrFlag(&c.HasRecentJobs, res.Found)
	model.OrFlag(&c.HasSalesJobs, res.HasSales)
	model.OrFlag(&c.HasMarketingJobs, res.HasMarketing)
	model.OrFlag(&c.HasBDJobs, res.HasBD)

	for i, title := range res.JobTitles {
		if containsString(c.RecentJobTitles, title) {
			continue
		}
		c.RecentJobTitles = append(c.RecentJobTitles, title)
		if i < len(res.JobDates) {
			c.JobPostingDates = append(c.JobPostingDates, res.JobDates[i])
		}
	}
	if n := len(c.RecentJobTitles); n > c.RecentJobCount {
		c.RecentJobCount = n
	}
	c.HiringUrgency = hiringUrgency(c)

	for _, s := range res.Sources {
		if !containsString(c.JobDataSources, s) {
			c.JobDataSources = append(c.JobDataSources, s)
		}
	}
	if res.Confidence > c.JobConfidence {
		c.JobConfidence = res.Confidence
	}
}

// hiringUrgency grades how aggressively a company appears to be hiring.
// Many concurrent openings, or sales plus business-development roles at
// once, read as an active growth push.
func hiringUrgency(c *model.Company) string {
	switch {
	case c.RecentJobCount >= 5 || (c.HasSalesJobs && c.HasBDJobs):
		return "high"
	case c.RecentJobCount >= 2:
		return "medium"
	case c.RecentJobCount >= 1:
		return "low"
	default:
		return ""
	}
}
