// Package analyzer drives the enrichment dimensions across the company
// collection: one primary-API call per company, fusion-engine escalation
// when the primary answer is missing or suspiciously thin, and
// append-only writes onto the company record. Companies are processed
// strictly in input order; each stage runs to completion before the next.
package analyzer

import (
	"context"
	"fmt"
	"time"
)

// Summary is the end-of-stage accounting every analyzer returns.
type Summary struct {
	Stage      string
	Processed  int
	Successful int
	Escalated  int
	Errors     int
	Flags      map[string]int
}

func newSummary(stage string) Summary {
	return Summary{Stage: stage, Flags: make(map[string]int)}
}

func (s *Summary) flag(name string) {
	s.Flags[name]++
}

// Options holds the pacing shared by all analyzers. The fallback delay is
// longer: after scraping third-party pages we slow down to stay a
// conservative network citizen.
type Options struct {
	Delay         time.Duration
	FallbackDelay time.Duration
}

// pause sleeps the inter-company delay, stretched when fallback tiers ran.
func (o Options) pause(ctx context.Context, usedFallback bool) {
	d := o.Delay
	if usedFallback && o.FallbackDelay > d {
		d = o.FallbackDelay
	}
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// formatUSD renders an amount as a compact dollar string, e.g. "$12.5M".
func formatUSD(n int64) string {
	switch {
	case n <= 0:
		return ""
	case n >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", float64(n)/1e9)
	case n >= 1_000_000:
		return fmt.Sprintf("$%.1fM", float64(n)/1e6)
	case n >= 1_000:
		return fmt.Sprintf("$%.0fK", float64(n)/1e3)
	default:
		return fmt.Sprintf("$%d", n)
	}
}
