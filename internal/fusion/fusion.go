// Package fusion implements the confidence fusion engine: per company and
// per dimension it decides which fallback sources to invoke, merges their
// partial results into one verdict, and assigns a combined confidence.
package fusion

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/expo-enrich/internal/model"
)

// Source is one fallback data-gathering tier for a dimension. A Source
// that fails contributes found:false for its tier; it is never fatal to
// the dimension evaluation.
type Source interface {
	Name() string
	Gather(ctx context.Context, company model.Company) (*model.SourceOutcome, error)
}

// Engine fuses the primary-API outcome with an ordered chain of fallback
// sources. Direct-scrape tiers run whenever escalation triggers; the
// search tier is additionally gated by company size to bound outbound
// query volume.
type Engine struct {
	cfg        *Config
	chains     map[model.Dimension][]Source
	search     map[model.Dimension]Source
	lastResort map[model.Dimension]Source
}

// NewEngine creates an Engine with the given tuning configuration.
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Engine{
		cfg:        cfg,
		chains:     make(map[model.Dimension][]Source),
		search:     make(map[model.Dimension]Source),
		lastResort: make(map[model.Dimension]Source),
	}
}

// Register sets the direct-scrape fallback chain for a dimension,
// highest-trust first.
func (e *Engine) Register(dim model.Dimension, sources ...Source) *Engine {
	e.chains[dim] = sources
	return e
}

// WithSearch sets the last-resort search tier for a dimension.
func (e *Engine) WithSearch(dim model.Dimension, src Source) *Engine {
	e.search[dim] = src
	return e
}

// WithLastResort sets a tier that runs after search, only when the
// dimension still has no signal (e.g. the LinkedIn slug pattern guess).
func (e *Engine) WithLastResort(dim model.Dimension, src Source) *Engine {
	e.lastResort[dim] = src
	return e
}

// Config exposes the engine's tuning constants.
func (e *Engine) Config() *Config {
	return e.cfg
}

// Fuse merges the primary outcome with any escalated fallback tiers into a
// single DimensionResult. It never returns an error: a total failure
// across all sources yields a default not-found verdict so the pipeline
// always makes forward progress. Given identical inputs it produces an
// identical result.
func (e *Engine) Fuse(ctx context.Context, company model.Company, primary *model.SourceOutcome, dim model.Dimension) model.DimensionResult {
	log := zap.L().With(
		zap.String("company", company.Name),
		zap.String("dimension", string(dim)),
	)

	res := model.DimensionResult{Dimension: dim}

	primaryConf := 0.0
	if primary != nil {
		e.merge(&res, primary)
		if primary.Found {
			primaryConf = e.cfg.APIConfidence
		}
	}

	if !e.ShouldEscalate(dim, primary, company.EmployeeCount) {
		res.Confidence = clip01(primaryConf)
		e.truncate(&res)
		return res
	}

	log.Debug("fusion: escalating to fallback sources",
		zap.Bool("primary_present", primary != nil),
		zap.Int("employee_count", company.EmployeeCount),
	)

	fallbackSum := 0.0
	escalated := false

	for _, src := range e.chains[dim] {
		escalated = true
		outcome, err := src.Gather(ctx, company)
		if err != nil {
			log.Debug("fusion: source failed, continuing",
				zap.String("source", src.Name()),
				zap.Error(err),
			)
			continue
		}
		if outcome == nil || !outcome.Found {
			continue
		}
		e.merge(&res, outcome)
		fallbackSum += e.cfg.Weight(outcome.Source)
	}

	if src, ok := e.search[dim]; ok && e.shouldSearch(dim, &res, company.EmployeeCount) {
		escalated = true
		outcome, err := src.Gather(ctx, company)
		if err != nil {
			log.Debug("fusion: search tier failed",
				zap.String("source", src.Name()),
				zap.Error(err),
			)
		} else if outcome != nil && outcome.Found {
			e.merge(&res, outcome)
			fallbackSum += e.cfg.Weight(outcome.Source)
		}
	}

	if src, ok := e.lastResort[dim]; ok && !res.Found {
		escalated = true
		outcome, err := src.Gather(ctx, company)
		if err == nil && outcome != nil && outcome.Found {
			e.merge(&res, outcome)
			fallbackSum += e.cfg.Weight(outcome.Source)
		}
	}

	if escalated {
		// Averaging rather than summing keeps stacked weak sources from
		// exceeding full confidence while still rewarding corroboration.
		res.Confidence = clip01((primaryConf + fallbackSum) / 2)
	} else {
		res.Confidence = clip01(primaryConf)
	}

	e.truncate(&res)
	return res
}

// merge folds one source outcome into the running result. Boolean flags
// combine with OR and are never retracted; list payloads concatenate in
// invocation order; date fields keep the chronologically later value.
func (e *Engine) merge(res *model.DimensionResult, o *model.SourceOutcome) {
	if !o.Found {
		return
	}
	res.Found = true
	res.Sources = append(res.Sources, o.Source)

	if res.LinkedInURL == "" && o.LinkedInURL != "" {
		res.LinkedInURL = o.LinkedInURL
	}

	res.JobTitles = append(res.JobTitles, o.JobTitles...)
	res.JobDates = append(res.JobDates, o.JobDates...)
	res.HasSales = res.HasSales || o.HasSales
	res.HasMarketing = res.HasMarketing || o.HasMarketing
	res.HasBD = res.HasBD || o.HasBD

	res.Rounds = append(res.Rounds, o.Rounds...)
	res.HasRecentFunding = res.HasRecentFunding || o.HasRecentFunding
	if o.TotalFundingUSD > res.TotalFundingUSD {
		res.TotalFundingUSD = o.TotalFundingUSD
	}
	if !o.LastFundingDate.IsZero() && o.LastFundingDate.After(res.LastFundingDate) {
		res.LastFundingDate = o.LastFundingDate
	}
	if res.CrunchbaseURL == "" && o.CrunchbaseURL != "" {
		res.CrunchbaseURL = o.CrunchbaseURL
	}
}

// truncate caps list payloads for readability, keeping the first entries
// (primary API items come first, then fallback tiers in invocation order).
func (e *Engine) truncate(res *model.DimensionResult) {
	maxItems := e.cfg.MaxItems
	if maxItems <= 0 {
		return
	}
	if len(res.JobTitles) > maxItems {
		res.JobTitles = res.JobTitles[:maxItems]
	}
	if len(res.JobDates) > maxItems {
		res.JobDates = res.JobDates[:maxItems]
	}
	if len(res.Rounds) > maxItems {
		res.Rounds = res.Rounds[:maxItems]
	}
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
