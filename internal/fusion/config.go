package fusion

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// TriggerPolicy holds the per-dimension escalation thresholds. Read-only
// and process-wide; never mutated at runtime. All comparisons against
// floors are strict greater-than.
type TriggerPolicy struct {
	// ZeroResultFloor escalates when the primary source found nothing and
	// the company is larger than this.
	ZeroResultFloor int `yaml:"zero_result_floor"`
	// LowResultFloor escalates when fewer than LowResultThreshold items
	// were found and the company is larger than this.
	LowResultFloor     int `yaml:"low_result_floor"`
	LowResultThreshold int `yaml:"low_result_threshold"`
	// NoRecentFloor escalates when results exist but none are recent and
	// the company is larger than this (funding only).
	NoRecentFloor int `yaml:"no_recent_floor"`
	// SearchFloor gates the last-resort search tier: it only runs for
	// companies larger than this that still have no signal.
	SearchFloor int `yaml:"search_floor"`
}

// Config carries the fusion tuning constants. The weights are heuristic
// trust levels, not probabilities; they are deliberately configuration
// rather than literals.
type Config struct {
	// APIConfidence is the fixed weight for primary-API data.
	APIConfidence float64 `yaml:"api_confidence"`
	// MaxItems caps list-valued payloads after merge.
	MaxItems int `yaml:"max_items"`
	// JobRecencyDays defines what counts as a recent job posting.
	JobRecencyDays int `yaml:"job_recency_days"`
	// FundingRecencyDays defines what counts as recent funding.
	FundingRecencyDays int `yaml:"funding_recency_days"`

	// SourceWeights maps source label → confidence contribution.
	SourceWeights map[string]float64 `yaml:"source_weights"`

	Jobs     TriggerPolicy `yaml:"jobs"`
	Funding  TriggerPolicy `yaml:"funding"`
	LinkedIn TriggerPolicy `yaml:"linkedin"`
}

// DefaultConfig returns the shipped tuning constants.
func DefaultConfig() *Config {
	return &Config{
		APIConfidence:      0.8,
		MaxItems:           5,
		JobRecencyDays:     30,
		FundingRecencyDays: 365,
		SourceWeights: map[string]float64{
			SourceCareerPage:   0.5,
			SourcePressPage:    0.8,
			SourceWebsite:      0.7,
			SourcePublicPage:   0.5,
			SourcePatternGuess: 0.3,
			SourceSearch:       0.2,
		},
		Jobs: TriggerPolicy{
			ZeroResultFloor:    20,
			LowResultFloor:     50,
			LowResultThreshold: 2,
			SearchFloor:        100,
		},
		Funding: TriggerPolicy{
			ZeroResultFloor: 50,
			NoRecentFloor:   100,
			SearchFloor:     200,
		},
		LinkedIn: TriggerPolicy{
			SearchFloor: -1, // discovery runs before employee data exists
		},
	}
}

// LoadConfig reads fusion tuning from a YAML file, filling gaps from the
// defaults. An empty path returns the defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fusion: read config %s", path)
	}

	var wrapper struct {
		Fusion Config `yaml:"fusion"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "fusion: parse config")
	}

	loaded := wrapper.Fusion
	if loaded.APIConfidence > 0 {
		cfg.APIConfidence = loaded.APIConfidence
	}
	if loaded.MaxItems > 0 {
		cfg.MaxItems = loaded.MaxItems
	}
	if loaded.JobRecencyDays > 0 {
		cfg.JobRecencyDays = loaded.JobRecencyDays
	}
	if loaded.FundingRecencyDays > 0 {
		cfg.FundingRecencyDays = loaded.FundingRecencyDays
	}
	for k, v := range loaded.SourceWeights {
		cfg.SourceWeights[k] = v
	}
	if loaded.Jobs != (TriggerPolicy{}) {
		cfg.Jobs = loaded.Jobs
	}
	if loaded.Funding != (TriggerPolicy{}) {
		cfg.Funding = loaded.Funding
	}
	if loaded.LinkedIn != (TriggerPolicy{}) {
		cfg.LinkedIn = loaded.LinkedIn
	}

	return cfg, nil
}

// Weight returns the configured confidence contribution for a source label.
func (c *Config) Weight(source string) float64 {
	if w, ok := c.SourceWeights[source]; ok {
		return w
	}
	return 0.2
}
