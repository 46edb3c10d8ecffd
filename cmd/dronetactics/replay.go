package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dronetactics/internal/config"
	"dronetactics/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay an agent state log file",
	Long:  "replay feeds agent state rows from a match log back into GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		w, err := baseWriter(config.Default(), replayPrintOnly)
		if err != nil {
			return err
		}
		writer, ok := w.(sim.AgentStateWriter)
		if !ok {
			return fmt.Errorf("writer %T cannot take agent rows", w)
		}
		return sim.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to agent state log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	replayCmd.MarkFlagRequired("input")
}
