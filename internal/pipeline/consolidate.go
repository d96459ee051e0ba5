package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/expo-enrich/internal/analyzer"
	"github.com/sells-group/expo-enrich/internal/model"
)

// ScoreWeights are the per-signal contributions to the priority score.
// They are named configuration rather than literals so a campaign can
// re-weight without a code change.
type ScoreWeights struct {
	InTargetRange int
	AnyFunding    int
	RecentFunding int
	AnyJob        int
	SalesRole     int
	MarketingRole int
	BDRole        int
	HasLinkedIn   int
}

// DefaultScoreWeights returns the shipped scoring weights.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		InTargetRange: 2,
		AnyFunding:    1,
		RecentFunding: 2,
		AnyJob:        1,
		SalesRole:     2,
		MarketingRole: 1,
		BDRole:        1,
		HasLinkedIn:   1,
	}
}

// Consolidator is the final stage: it stamps each company with a priority
// score, a processing date, and data-quality notes. Pure accumulation —
// it never touches fields set by earlier stages.
type Consolidator struct {
	weights ScoreWeights
	now     func() time.Time
}

// NewConsolidator creates the scoring stage.
func NewConsolidator(weights ScoreWeights) *Consolidator {
	return &Consolidator{weights: weights, now: time.Now}
}

// Process scores every company in the collection.
func (s *Consolidator) Process(_ context.Context, companies []*model.Company) analyzer.Summary {
	summary := analyzer.Summary{Stage: StageConsolidate, Flags: make(map[string]int)}
	date := s.now().Format("2006-01-02")

	for _, c := range companies {
		summary.Processed++
		c.PriorityScore = s.Score(c)
		c.ProcessingDate = date
		c.ProcessingNotes = notes(c)
		summary.Successful++
	}

	zap.L().Info("consolidate: scored collection", zap.Int("companies", len(companies)))
	return summary
}

// Score sums the weights for every signal the company carries.
func (s *Consolidator) Score(c *model.Company) int {
	score := 0
	if c.InTargetRange {
		score += s.weights.InTargetRange
	}
	if c.HasFundingData {
		score += s.weights.AnyFunding
	}
	if c.HasRecentFunding {
		score += s.weights.RecentFunding
	}
	if c.HasRecentJobs {
		score += s.weights.AnyJob
	}
	if c.HasSalesJobs {
		score += s.weights.SalesRole
	}
	if c.HasMarketingJobs {
		score += s.weights.MarketingRole
	}
	if c.HasBDJobs {
		score += s.weights.BDRole
	}
	if c.LinkedInURL != "" {
		score += s.weights.HasLinkedIn
	}
	return score
}

// notes lists the data-quality gaps a reviewer should know about.
func notes(c *model.Company) string {
	var gaps []string
	if c.Website == "" {
		gaps = append(gaps, "missing website")
	}
	if c.LinkedInURL == "" {
		gaps = append(gaps, "missing LinkedIn URL")
	}
	if c.EmployeeCount == 0 && c.EmployeeRange == "" {
		gaps = append(gaps, "no employee data")
	}
	return strings.Join(gaps, "; ")
}
