package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

const configTemplate = `api:
  # key and host come from EXPO_API_KEY / EXPO_API_HOST
  timeout_secs: 20
  max_attempts: 3

scrape:
  timeout_secs: 15
  max_candidate_pages: 4
  max_concurrent_pages: 3
  requests_per_second: 1.0

search:
  enabled: true
  base_url: https://html.duckduckgo.com/html/

pipeline:
  snapshot_dir: snapshots
  delay_millis: 1000
  fallback_delay_millis: 3000
  target_min_employees: 11
  target_max_employees: 200

store:
  cache_path: expo-enrich.db

fusion:
  config_path: fusion.yaml

log:
  level: info
  format: json
`

const fusionTemplate = `fusion:
  api_confidence: 0.8
  max_items: 5
  job_recency_days: 30
  funding_recency_days: 365

  source_weights:
    career_page: 0.5
    press_page: 0.8
    website: 0.7
    linkedin_public: 0.5
    pattern_guess: 0.3
    web_search: 0.2

  jobs:
    zero_result_floor: 20
    low_result_floor: 50
    low_result_threshold: 2
    search_floor: 100

  funding:
    zero_result_floor: 50
    no_recent_floor: 100
    search_floor: 200

  linkedin:
    search_floor: -1
`

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a named configuration in a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "create %s", dir)
		}

		for name, content := range map[string]string{
			"config.yaml": configTemplate,
			"fusion.yaml": fusionTemplate,
		} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return eris.Errorf("%s already exists, refusing to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return eris.Wrapf(err, "write %s", path)
			}
			fmt.Printf("wrote %s\n", path)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
