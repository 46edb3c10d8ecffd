package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dronetactics/internal/admin"
	"dronetactics/internal/config"
	"dronetactics/internal/logging"
	"dronetactics/internal/sim"
)

var (
	simPrintOnly  bool
	simConfigPath string
	simSchemaPath string
	simTick       time.Duration
	simSteps      int
	simFast       bool
	simLogFile    string
	simTUI        bool
	simAdminAddr  string
	simLogLevel   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a drone tactics match",
	Long:  "simulate plays one match between the configured teams and streams agent, role and team rows to the selected sinks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(simLogLevel)
		if err != nil {
			return err
		}
		var logOut io.Writer = os.Stderr
		if simTUI {
			logOut = io.Discard
		}
		logger := logging.NewWithWriter(logOut, level)

		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}
		if id := os.Getenv("MATCH_ID"); id != "" {
			cfg.MatchID = id
		}
		if simSteps > 0 {
			cfg.MaxSteps = simSteps
		}

		tickInterval := simTick
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			tickInterval = d
		}

		outs, err := newWriters(cfg, simPrintOnly, simTUI, simLogFile)
		if err != nil {
			return err
		}
		defer outs.Close()

		var srv *admin.Server
		if simAdminAddr != "" {
			srv = admin.NewServer(nil, logger)
			outs.add(srv)
		}
		mw := outs.writer()

		simulator, err := sim.NewSimulator(cfg.MatchID, cfg, mw, mw, tickInterval, nil, logger)
		if err != nil {
			return err
		}
		simulator.SetTeamStateWriter(mw)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, logger)

		if srv != nil {
			srv.Sim = simulator
			go func() {
				if err := srv.Start(simAdminAddr); err != nil {
					logger.Error("admin server failed", "err", err)
				}
			}()
			mw.SetAdminStatus(true)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
		}

		if simFast {
			simulator.RunSteps(ctx, 0)
		} else {
			simulator.Run(ctx)
		}
		logger.Info("match stopped", "step", simulator.StepCount(), "winner", simulator.Winner())
		return nil
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/match.yaml", "Path to match configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/match.cue", "Path to CUE schema file")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 100*time.Millisecond, "Step interval (e.g. 50ms, 1s)")
	simulateCmd.Flags().IntVar(&simSteps, "steps", 0, "Override max_steps from the config")
	simulateCmd.Flags().BoolVar(&simFast, "fast", false, "Run steps back to back without waiting for the ticker")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export match logs (JSONL, zstd when ending in .zst)")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Render the match in a terminal UI")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", "", "Listen address for the admin server (e.g. :8080)")
	simulateCmd.Flags().StringVar(&simLogLevel, "log-level", "info", "Log level: debug, info, warn or error")
}
