package analyzer

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/expo-enrich/internal/model"
	"github.com/sells-group/expo-enrich/internal/store"
	"github.com/sells-group/expo-enrich/pkg/lidata"
)

const profileCacheTTL = 7 * 24 * time.Hour

// Employees classifies every company against the target employee window.
// It is primary-API-only: no fusion chain runs here, because the stage
// exists to filter the collection cheaply before the expensive funding
// and jobs fallback chains spend network budget.
type Employees struct {
	api    lidata.Client
	cache  *store.Cache // may be nil
	minEmp int
	maxEmp int
	opts   Options
}

// NewEmployees creates the employee-count analyzer for a [min, max]
// target window.
func NewEmployees(api lidata.Client, cache *store.Cache, minEmp, maxEmp int, opts Options) *Employees {
	return &Employees{api: api, cache: cache, minEmp: minEmp, maxEmp: maxEmp, opts: opts}
}

// Window returns the configured target window.
func (a *Employees) Window() (int, int) {
	return a.minEmp, a.maxEmp
}

// Process tags every company with an in-target-range verdict. A company
// matches when its exact count falls inside the window or its reported
// range overlaps it. Companies the API cannot resolve keep any count
// seeded from the input CSV.
func (a *Employees) Process(ctx context.Context, companies []*model.Company) Summary {
	summary := newSummary("employees")

	for _, c := range companies {
		summary.Processed++
		log := zap.L().With(zap.String("company", c.Name), zap.String("stage", "employees"))

		if c.LinkedInURL == "" {
			summary.Errors++
			summary.flag("missing_linkedin_url")
			a.classify(c, "")
			log.Warn("no linkedin url, classifying from input data only")
			continue
		}

		profile, err := a.profile(ctx, c.LinkedInURL)
		if err != nil {
			summary.Errors++
			summary.flag("api_error")
			a.classify(c, "")
			log.Warn("profile lookup failed", zap.Error(err))
			a.opts.pause(ctx, false)
			continue
		}

		if profile.EmployeeCount > 0 {
			c.EmployeeCount = profile.EmployeeCount
		}
		if model.SetIfEmpty(&c.EmployeeRange, profile.EmployeeRange) || profile.EmployeeCount > 0 {
			c.EmployeeDataSource = "api"
		}
		model.SetIfEmpty(&c.Website, profile.Website)
		model.SetIfEmpty(&c.Description, profile.Description)

		a.classify(c, c.EmployeeDataSource)
		summary.Successful++
		if c.InTargetRange {
			summary.flag("in_target_range")
		}

		a.opts.pause(ctx, false)
		if ctx.Err() != nil {
			break
		}
	}

	return summary
}

// classify records the window verdict from whatever count or range the
// company currently carries.
func (a *Employees) classify(c *model.Company, source string) {
	matched := false
	if c.EmployeeCount > 0 {
		matched = c.EmployeeCount >= a.minEmp && c.EmployeeCount <= a.maxEmp
	} else if lo, hi, ok := model.ParseEmployeeRange(c.EmployeeRange); ok {
		matched = lo <= a.maxEmp && (hi == -1 || hi >= a.minEmp)
	}
	c.InTargetRange = matched
	if source == "" && (c.EmployeeCount > 0 || c.EmployeeRange != "") {
		model.SetIfEmpty(&c.EmployeeDataSource, "input")
	}
}

// profile fetches a company profile, consulting the lookup cache first.
func (a *Employees) profile(ctx context.Context, linkedInURL string) (*lidata.Profile, error) {
	if a.cache != nil {
		if data, ok, err := a.cache.Get(ctx, "profile", linkedInURL); err == nil && ok {
			var p lidata.Profile
			if err := json.Unmarshal(data, &p); err == nil {
				return &p, nil
			}
		}
	}

	p, err := a.api.CompanyProfile(ctx, linkedInURL)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if data, err := json.Marshal(p); err == nil {
			if err := a.cache.Put(ctx, "profile", linkedInURL, data, profileCacheTTL); err != nil {
				zap.L().Debug("employees: cache write failed", zap.Error(err))
			}
		}
	}
	return p, nil
}

// Filter returns a new collection holding only companies inside the
// target window. The input slice is left untouched; the orchestrator
// rebinds its working reference to the returned slice.
func Filter(companies []*model.Company) []*model.Company {
	passed := make([]*model.Company, 0, len(companies))
	for _, c := range companies {
		if c.InTargetRange {
			passed = append(passed, c)
		}
	}
	return passed
}
