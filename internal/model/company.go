package model

import (
	"strconv"
	"strings"
	"time"
)

// Company is one input row plus every enrichment column the pipeline adds.
// Known fields are typed; unrecognized input columns pass through untouched
// in Extra/ExtraOrder. Identity is row position — no separate ID is minted.
type Company struct {
	// Canonical input fields, resolved from header aliases at load time.
	Name        string
	Website     string
	Description string

	// LinkedIn discovery.
	LinkedInURL    string
	LinkedInSource string

	// Employee classification.
	EmployeeCount      int
	EmployeeRange      string
	InTargetRange      bool
	EmployeeDataSource string

	// Funding.
	HasFundingData     bool
	HasRecentFunding   bool
	FundingDetails     string
	LastFundingDate    time.Time
	CrunchbaseURL      string
	FundingRounds      string
	TotalFunding       string
	FundingDataSources []string
	FundingConfidence  float64

	// Hiring.
	HasRecentJobs    bool
	HasSalesJobs     bool
	HasMarketingJobs bool
	HasBDJobs        bool
	RecentJobTitles  []string
	JobPostingDates  []string
	RecentJobCount   int
	HiringUrgency    string
	JobDataSources   []string
	JobConfidence    float64

	// Consolidation.
	PriorityScore   int
	ProcessingDate  string
	ProcessingNotes string

	// Pass-through of original columns not covered by the canonical schema.
	Extra      map[string]string
	ExtraOrder []string

	// Original header text of the aliased leading columns, keyed by
	// canonical name. Export reuses these so a round-tripped file keeps
	// the caller's column names.
	InputHeaders map[string]string
}

// SetLinkedInURL records a discovered LinkedIn URL. Enrichment is
// append-only: an already-set URL is never replaced, and an empty
// candidate never clears one.
func (c *Company) SetLinkedInURL(url, source string) bool {
	if url == "" || c.LinkedInURL != "" {
		return false
	}
	c.LinkedInURL = url
	c.LinkedInSource = source
	return true
}

// SetLastFundingDate keeps the chronologically later of the existing and
// candidate dates. A zero candidate never clears an existing date.
func (c *Company) SetLastFundingDate(d time.Time) bool {
	if d.IsZero() || (!c.LastFundingDate.IsZero() && !d.After(c.LastFundingDate)) {
		return false
	}
	c.LastFundingDate = d
	return true
}

// SetIfEmpty writes value into dst only when dst is currently empty and the
// value is non-empty. Used by analyzers to honor the append-only invariant
// for plain string columns.
func SetIfEmpty(dst *string, value string) bool {
	if *dst != "" || value == "" {
		return false
	}
	*dst = value
	return true
}

// OrFlag merges a boolean signal into an existing flag. A true flag is
// never retracted by a later false observation.
func OrFlag(dst *bool, value bool) {
	if value {
		*dst = true
	}
}

// ParseEmployeeCount reads an exact count from free-form input such as
// "250", "1,200" or "~300". Returns 0 if no count is present.
func ParseEmployeeCount(s string) int {
	s = strings.TrimSpace(strings.TrimPrefix(s, "~"))
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseEmployeeRange reads a reported range such as "51-200", "1,001-5,000"
// or "10001+". The open-ended "+" form has hi == -1 (unbounded).
func ParseEmployeeRange(s string) (lo, hi int, ok bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, 0, false
	}
	if strings.HasSuffix(s, "+") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "+"))
		if err != nil {
			return 0, 0, false
		}
		return n, -1, true
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, errA := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, errB := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errA != nil || errB != nil || a > b {
		return 0, 0, false
	}
	return a, b, true
}
