package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/expo-enrich/internal/model"
)

func TestConsolidator_ScoreScenario(t *testing.T) {
	s := NewConsolidator(DefaultScoreWeights())

	c := &model.Company{
		Name:             "Acme",
		Website:          "https://acme.example",
		LinkedInURL:      "https://www.linkedin.com/company/acme",
		InTargetRange:    true,
		HasRecentFunding: true,
		HasSalesJobs:     true,
	}

	assert.Equal(t, 7, s.Score(c), "2 (window) + 2 (recent funding) + 2 (sales) + 1 (linkedin)")
}

func TestConsolidator_AllSignals(t *testing.T) {
	s := NewConsolidator(DefaultScoreWeights())

	c := &model.Company{
		LinkedInURL:      "https://www.linkedin.com/company/acme",
		InTargetRange:    true,
		HasFundingData:   true,
		HasRecentFunding: true,
		HasRecentJobs:    true,
		HasSalesJobs:     true,
		HasMarketingJobs: true,
		HasBDJobs:        true,
	}

	assert.Equal(t, 11, s.Score(c))
	assert.Zero(t, s.Score(&model.Company{}))
}

func TestConsolidator_ProcessStampsDateAndNotes(t *testing.T) {
	s := NewConsolidator(DefaultScoreWeights())
	s.now = func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC) }

	gaps := &model.Company{Name: "Bare"}
	complete := &model.Company{
		Name:          "Full",
		Website:       "https://full.example",
		LinkedInURL:   "https://www.linkedin.com/company/full",
		EmployeeCount: 50,
	}

	summary := s.Process(context.Background(), []*model.Company{gaps, complete})

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, "2026-02-01", gaps.ProcessingDate)
	assert.Equal(t, "missing website; missing LinkedIn URL; no employee data", gaps.ProcessingNotes)
	assert.Empty(t, complete.ProcessingNotes)
}
