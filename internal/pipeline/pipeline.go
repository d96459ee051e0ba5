// Package pipeline orchestrates the enrichment stages over the full
// company collection: LinkedIn discovery, employee filtering, funding,
// jobs, and consolidation, strictly in that order. Each stage checkpoints
// a CSV snapshot so a crashed run can resume from the last good stage.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/expo-enrich/internal/analyzer"
	"github.com/sells-group/expo-enrich/internal/csvio"
	"github.com/sells-group/expo-enrich/internal/model"
)

// Stage names, in execution order. A resume point names the first stage
// to run; everything before it is skipped, everything after runs.
const (
	StageLinkedIn    = "linkedin"
	StageEmployees   = "employees"
	StageFunding     = "funding"
	StageJobs        = "jobs"
	StageConsolidate = "consolidate"
)

var stageOrder = []string{StageLinkedIn, StageEmployees, StageFunding, StageJobs, StageConsolidate}

// ValidStage reports whether name is a known stage.
func ValidStage(name string) bool {
	for _, s := range stageOrder {
		if s == name {
			return true
		}
	}
	return false
}

// Analyzer is one enrichment stage over the collection.
type Analyzer interface {
	Process(ctx context.Context, companies []*model.Company) analyzer.Summary
}

// Pipeline runs the enrichment stages with snapshot checkpointing.
type Pipeline struct {
	linkedIn  Analyzer
	employees *analyzer.Employees
	funding   Analyzer
	jobs      Analyzer
	scorer    *Consolidator

	snapshotDir string
	runID       string
	now         func() time.Time
}

// New creates a Pipeline. snapshotDir may be empty to disable
// checkpointing (useful in tests).
func New(linkedIn Analyzer, employees *analyzer.Employees, funding, jobs Analyzer, scorer *Consolidator, snapshotDir string) *Pipeline {
	return &Pipeline{
		linkedIn:    linkedIn,
		employees:   employees,
		funding:     funding,
		jobs:        jobs,
		scorer:      scorer,
		snapshotDir: snapshotDir,
		runID:       uuid.NewString()[:8],
		now:         time.Now,
	}
}

// Result is the end-of-run accounting.
type Result struct {
	RunID     string
	Summaries []analyzer.Summary
	Loaded    int
	InWindow  int
	Snapshots []string
}

// Run executes the stages from resumeFrom (or the beginning when empty)
// over the collection and returns the final, fully-enriched collection
// plus per-stage summaries. The returned collection always contains every
// input company; the employee filter only narrows what the funding and
// jobs stages iterate.
func (p *Pipeline) Run(ctx context.Context, companies []*model.Company, resumeFrom string) ([]*model.Company, *Result, error) {
	if resumeFrom != "" && !ValidStage(resumeFrom) {
		return companies, &Result{RunID: p.runID, Loaded: len(companies)},
			eris.Errorf("pipeline: unknown resume stage %q (valid: %s)",
				resumeFrom, strings.Join(stageOrder, ", "))
	}

	log := zap.L().With(zap.String("run_id", p.runID))
	log.Info("pipeline: starting",
		zap.Int("companies", len(companies)),
		zap.String("resume_from", resumeFrom),
	)

	result := &Result{RunID: p.runID, Loaded: len(companies)}

	// The working slice shrinks at the employee filter; the full slice is
	// what gets consolidated and exported. Both alias the same records.
	working := companies

	skip := resumeFrom != ""
	runStage := func(name string, fn func() analyzer.Summary) error {
		if skip {
			if name == resumeFrom {
				skip = false
			} else {
				log.Info("pipeline: skipping stage", zap.String("stage", name))
				if name == StageEmployees {
					// Resumed input already carries window verdicts.
					working = analyzer.Filter(working)
				}
				return nil
			}
		}

		start := p.now()
		summary := fn()
		result.Summaries = append(result.Summaries, summary)
		log.Info("pipeline: stage complete",
			zap.String("stage", name),
			zap.Int("processed", summary.Processed),
			zap.Int("successful", summary.Successful),
			zap.Int("escalated", summary.Escalated),
			zap.Int("errors", summary.Errors),
			zap.Duration("duration", p.now().Sub(start)),
		)

		if err := ctx.Err(); err != nil {
			return eris.Wrapf(err, "pipeline: interrupted during %s", name)
		}
		return p.snapshot(name, companies, result)
	}

	if err := runStage(StageLinkedIn, func() analyzer.Summary {
		return p.linkedIn.Process(ctx, working)
	}); err != nil {
		return companies, result, err
	}

	if err := runStage(StageEmployees, func() analyzer.Summary {
		summary := p.employees.Process(ctx, working)
		working = analyzer.Filter(working)
		return summary
	}); err != nil {
		return companies, result, err
	}
	result.InWindow = len(working)

	if err := runStage(StageFunding, func() analyzer.Summary {
		return p.funding.Process(ctx, working)
	}); err != nil {
		return companies, result, err
	}

	if err := runStage(StageJobs, func() analyzer.Summary {
		return p.jobs.Process(ctx, working)
	}); err != nil {
		return companies, result, err
	}

	if err := runStage(StageConsolidate, func() analyzer.Summary {
		return p.scorer.Process(ctx, companies)
	}); err != nil {
		return companies, result, err
	}

	log.Info("pipeline: finished",
		zap.Int("loaded", result.Loaded),
		zap.Int("in_window", result.InWindow),
	)
	return companies, result, nil
}

// snapshot writes the full collection to a timestamped checkpoint CSV.
// Snapshot failures are logged but never abort the run: the in-memory
// collection is still intact and later stages can proceed.
func (p *Pipeline) snapshot(stage string, companies []*model.Company, result *Result) error {
	if p.snapshotDir == "" {
		return nil
	}
	if err := os.MkdirAll(p.snapshotDir, 0o755); err != nil {
		zap.L().Warn("pipeline: snapshot dir unavailable", zap.Error(err))
		return nil
	}

	minEmp, maxEmp := p.employees.Window()
	name := fmt.Sprintf("%s_%s_%s.csv", p.now().Format("20060102-150405"), p.runID, stage)
	path := filepath.Join(p.snapshotDir, name)

	if err := csvio.Write(path, companies, minEmp, maxEmp); err != nil {
		zap.L().Warn("pipeline: snapshot write failed",
			zap.String("stage", stage), zap.Error(err))
		return nil
	}
	result.Snapshots = append(result.Snapshots, path)
	zap.L().Debug("pipeline: snapshot written", zap.String("path", path))
	return nil
}
