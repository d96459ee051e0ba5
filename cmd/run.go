package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/expo-enrich/internal/csvio"
	"github.com/sells-group/expo-enrich/internal/pipeline"
)

var (
	runInput      string
	runOutput     string
	runResumeFrom string
	runLimit      int
	runWindow     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the enrichment pipeline over an attendee CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runResumeFrom != "" && !pipeline.ValidStage(runResumeFrom) {
			return eris.Errorf("unknown --resume-from stage %q (valid: linkedin, employees, funding, jobs, consolidate)", runResumeFrom)
		}

		minEmp, maxEmp := cfg.Pipeline.TargetMinEmployees, cfg.Pipeline.TargetMaxEmployees
		if cmd.Flags().Changed("window") {
			var err error
			minEmp, maxEmp, err = parseWindow(runWindow)
			if err != nil {
				return err
			}
		}

		companies, err := csvio.Read(runInput)
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			return eris.Errorf("no companies loaded from %s", runInput)
		}
		if runLimit > 0 && runLimit < len(companies) {
			companies = companies[:runLimit]
		}

		env, err := initPipeline(minEmp, maxEmp)
		if err != nil {
			return err
		}
		defer env.Close()

		enriched, result, runErr := env.Pipeline.Run(cmd.Context(), companies, runResumeFrom)
		if runErr != nil {
			zap.L().Error("pipeline aborted", zap.Error(runErr))
		}

		// Always export what we have, even after an interrupted run.
		if err := csvio.Write(runOutput, enriched, minEmp, maxEmp); err != nil {
			return err
		}

		for _, s := range result.Summaries {
			fmt.Printf("%-12s processed=%d successful=%d escalated=%d errors=%d\n",
				s.Stage, s.Processed, s.Successful, s.Escalated, s.Errors)
		}
		fmt.Printf("wrote %d companies (%d in target window) to %s\n",
			result.Loaded, result.InWindow, runOutput)

		return runErr
	},
}

// parseWindow reads a "min,max" employee window.
func parseWindow(s string) (int, int, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, eris.Errorf("invalid --window %q, want \"min,max\"", s)
	}
	minEmp, errA := strconv.Atoi(strings.TrimSpace(parts[0]))
	maxEmp, errB := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errA != nil || errB != nil || minEmp < 0 || maxEmp < minEmp {
		return 0, 0, eris.Errorf("invalid --window %q, want \"min,max\"", s)
	}
	return minEmp, maxEmp, nil
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "input attendee CSV (required)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "enriched.csv", "output CSV path")
	runCmd.Flags().StringVar(&runResumeFrom, "resume-from", "", "stage to resume from (linkedin, employees, funding, jobs, consolidate)")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "process only the first N companies")
	runCmd.Flags().StringVar(&runWindow, "window", "11,200", "target employee window as min,max")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}
