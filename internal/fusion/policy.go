package fusion

import (
	"github.com/sells-group/expo-enrich/internal/model"
)

// Source labels recorded in the per-dimension source lists.
const (
	SourceAPI          = "api"
	SourceCareerPage   = "career_page"
	SourcePressPage    = "press_page"
	SourceWebsite      = "website"
	SourcePublicPage   = "linkedin_public"
	SourcePatternGuess = "pattern_guess"
	SourceSearch       = "web_search"
)

// ShouldEscalate decides whether fallback tiers run for a dimension.
// A nil or failed primary always escalates. Otherwise a suspiciously low
// yield for the company's size triggers escalation: larger companies are
// statistically expected to show funding and hiring signal, so silence
// from the primary API is treated as likely incompleteness rather than
// true absence. All floor comparisons are strict greater-than.
func (e *Engine) ShouldEscalate(dim model.Dimension, primary *model.SourceOutcome, employeeCount int) bool {
	if primary == nil {
		return true
	}

	switch dim {
	case model.DimensionLinkedIn:
		return primary.LinkedInURL == ""

	case model.DimensionJobs:
		p := e.cfg.Jobs
		n := len(primary.JobTitles)
		if n == 0 && employeeCount > p.ZeroResultFloor {
			return true
		}
		if n < p.LowResultThreshold && employeeCount > p.LowResultFloor {
			return true
		}
		return false

	case model.DimensionFunding:
		p := e.cfg.Funding
		if !primary.Found && employeeCount > p.ZeroResultFloor {
			return true
		}
		if primary.Found && !primary.HasRecentFunding && employeeCount > p.NoRecentFloor {
			return true
		}
		return false
	}

	return false
}

// shouldSearch gates the last-resort search tier: only large companies
// that still carry no signal after the direct-scrape tiers justify the
// outbound query volume.
func (e *Engine) shouldSearch(dim model.Dimension, merged *model.DimensionResult, employeeCount int) bool {
	policy := e.policyFor(dim)
	if employeeCount <= policy.SearchFloor {
		return false
	}
	return !merged.Found
}

func (e *Engine) policyFor(dim model.Dimension) TriggerPolicy {
	switch dim {
	case model.DimensionJobs:
		return e.cfg.Jobs
	case model.DimensionFunding:
		return e.cfg.Funding
	default:
		return e.cfg.LinkedIn
	}
}
