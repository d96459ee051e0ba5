package model

import "time"

// Dimension identifies one enrichment axis.
type Dimension string

const (
	DimensionLinkedIn Dimension = "linkedin"
	DimensionFunding  Dimension = "funding"
	DimensionJobs     Dimension = "jobs"
)

// FundingRound is a single reported round, from the API or a scraped mention.
type FundingRound struct {
	Type      string    `json:"type"`
	AmountUSD int64     `json:"amount_usd"`
	Date      time.Time `json:"date"`
}

// SourceOutcome is the normalized partial result one source (the primary
// API or a fallback scraper tier) contributes to a fusion call. It is
// owned by the fusion engine for the duration of one Fuse and discarded
// after merge.
type SourceOutcome struct {
	Source     string
	Found      bool
	Confidence float64

	// LinkedIn discovery payload.
	LinkedInURL string

	// Jobs payload.
	JobTitles    []string
	JobDates     []string
	HasSales     bool
	HasMarketing bool
	HasBD        bool

	// Funding payload.
	Rounds           []FundingRound
	TotalFundingUSD  int64
	LastFundingDate  time.Time
	CrunchbaseURL    string
	HasRecentFunding bool
}

// DimensionResult is the fused verdict for one (company, dimension) pair.
// Created fresh on every evaluation and flattened onto the Company record;
// never persisted on its own.
type DimensionResult struct {
	Dimension  Dimension
	Found      bool
	Sources    []string
	Confidence float64

	LinkedInURL string

	JobTitles    []string
	JobDates     []string
	HasSales     bool
	HasMarketing bool
	HasBD        bool

	Rounds           []FundingRound
	TotalFundingUSD  int64
	LastFundingDate  time.Time
	CrunchbaseURL    string
	HasRecentFunding bool
}
