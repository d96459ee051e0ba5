package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/expo-enrich/internal/analyzer"
	"github.com/sells-group/expo-enrich/internal/fetcher"
	"github.com/sells-group/expo-enrich/internal/fusion"
	"github.com/sells-group/expo-enrich/internal/model"
	"github.com/sells-group/expo-enrich/internal/pipeline"
	"github.com/sells-group/expo-enrich/internal/resilience"
	"github.com/sells-group/expo-enrich/internal/scrape"
	"github.com/sells-group/expo-enrich/internal/store"
	"github.com/sells-group/expo-enrich/pkg/lidata"
)

// pipelineEnv holds all initialized clients and the pipeline needed by
// the run command.
type pipelineEnv struct {
	Pipeline *pipeline.Pipeline
	Cache    *store.Cache // may be nil
	Window   [2]int
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Cache != nil {
		_ = pe.Cache.Close()
	}
}

// initPipeline validates credentials, opens the lookup cache, builds the
// fusion engine with its fallback tiers, and wires the stage analyzers.
// Callers should defer env.Close().
func initPipeline(minEmp, maxEmp int) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fusionCfg, err := fusion.LoadConfig(cfg.Fusion.ConfigPath)
	if err != nil {
		return nil, err
	}

	var cache *store.Cache
	if cfg.Store.CachePath != "" {
		cache, err = store.Open(cfg.Store.CachePath)
		if err != nil {
			zap.L().Warn("lookup cache unavailable, continuing without it", zap.Error(err))
			cache = nil
		}
	}

	scrapeFetcher := fetcher.New(fetcher.Options{
		UserAgent:   cfg.Scrape.UserAgent,
		Timeout:     time.Duration(cfg.Scrape.TimeoutSecs) * time.Second,
		MaxAttempts: 1,
		PerHostRPS:  cfg.Scrape.RequestsPerSecond,
	})
	webOpts := scrape.WebsiteOptions{MaxConcurrent: cfg.Scrape.MaxConcurrentPages}

	var search scrape.WebSearchProvider = scrape.DisabledSearchProvider{}
	if cfg.Search.Enabled {
		search = scrape.NewHTTPSearchProvider(scrapeFetcher, cfg.Search.BaseURL)
	}

	engine := fusion.NewEngine(fusionCfg)
	engine.Register(model.DimensionLinkedIn,
		scrape.NewWebsiteLinkSource(scrapeFetcher, webOpts),
		scrape.NewPublicPageSource(scrapeFetcher),
	)
	engine.Register(model.DimensionJobs,
		scrape.NewCareerPageSource(scrapeFetcher, webOpts),
	)
	engine.Register(model.DimensionFunding,
		scrape.NewPressPageSource(scrapeFetcher, webOpts, fusionCfg.FundingRecencyDays),
	)
	engine.WithSearch(model.DimensionLinkedIn,
		scrape.NewSearchSource(search, model.DimensionLinkedIn, 0))
	engine.WithSearch(model.DimensionJobs,
		scrape.NewSearchSource(search, model.DimensionJobs, fusionCfg.JobRecencyDays))
	engine.WithSearch(model.DimensionFunding,
		scrape.NewSearchSource(search, model.DimensionFunding, fusionCfg.FundingRecencyDays))
	engine.WithLastResort(model.DimensionLinkedIn, scrape.NewPatternGuessSource())

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.API.MaxAttempts
	api := lidata.NewClient(cfg.API.Key, cfg.API.Host,
		lidata.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.API.TimeoutSecs) * time.Second}),
		lidata.WithRetry(retry),
	)

	opts := analyzer.Options{
		Delay:         time.Duration(cfg.Pipeline.DelayMillis) * time.Millisecond,
		FallbackDelay: time.Duration(cfg.Pipeline.FallbackDelayMills) * time.Millisecond,
	}

	p := pipeline.New(
		analyzer.NewLinkedIn(engine, cache, opts),
		analyzer.NewEmployees(api, cache, minEmp, maxEmp, opts),
		analyzer.NewFunding(api, engine, opts),
		analyzer.NewJobs(api, engine, opts),
		pipeline.NewConsolidator(pipeline.DefaultScoreWeights()),
		cfg.Pipeline.SnapshotDir,
	)

	return &pipelineEnv{Pipeline: p, Cache: cache, Window: [2]int{minEmp, maxEmp}}, nil
}
