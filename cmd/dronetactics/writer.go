package main

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"dronetactics/internal/config"
	"dronetactics/internal/sim"
)

// stdoutIsTerminal decides between colored and JSON output.
var stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

// outputs collects the sinks of one run by the row kinds they accept.
type outputs struct {
	agents  []sim.AgentStateWriter
	roles   []sim.RoleEventWriter
	teams   []sim.TeamStateWriter
	closers []io.Closer
}

func (o *outputs) add(w any) {
	if aw, ok := w.(sim.AgentStateWriter); ok {
		o.agents = append(o.agents, aw)
	}
	if rw, ok := w.(sim.RoleEventWriter); ok {
		o.roles = append(o.roles, rw)
	}
	if tw, ok := w.(sim.TeamStateWriter); ok {
		o.teams = append(o.teams, tw)
	}
	if c, ok := w.(io.Closer); ok {
		o.closers = append(o.closers, c)
	}
}

func (o *outputs) writer() *sim.MultiWriter {
	return sim.NewMultiWriter(o.agents, o.roles, o.teams)
}

// Close closes sinks in reverse order and returns the first error.
func (o *outputs) Close() error {
	var err error
	for i := len(o.closers) - 1; i >= 0; i-- {
		if e := o.closers[i].Close(); e != nil && err == nil {
			err = e
		}
	}
	o.closers = nil
	return err
}

// newWriters sets up the sinks based on flags and env vars. A non-empty
// logFile adds JSONL logs for agents, role events and team states.
func newWriters(cfg *config.MatchConfig, printOnly, tui bool, logFile string) (*outputs, error) {
	o := &outputs{}
	if tui {
		o.add(sim.NewTUIWriter(cfg))
	} else {
		w, err := baseWriter(cfg, printOnly)
		if err != nil {
			return nil, err
		}
		o.add(w)
	}
	if logFile == "" {
		return o, nil
	}
	fw, err := sim.NewFileWriter(logFile, sidecarPath(logFile, "roles"), sidecarPath(logFile, "teams"))
	if err != nil {
		o.Close()
		return nil, err
	}
	o.add(fw)
	return o, nil
}

// baseWriter chooses STDOUT or GreptimeDB based on the printOnly flag and env vars.
func baseWriter(cfg *config.MatchConfig, printOnly bool) (any, error) {
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if printOnly || endpoint == "" {
		if stdoutIsTerminal() {
			return sim.NewColorStdoutWriter(cfg), nil
		}
		return sim.NewJSONStdoutWriter(), nil
	}
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	return sim.NewGreptimeDBWriter(endpoint, database)
}

// sidecarPath derives the role and team log names, keeping a .zst suffix last.
func sidecarPath(logFile, kind string) string {
	if strings.HasSuffix(logFile, sim.ZstdSuffix) {
		return strings.TrimSuffix(logFile, sim.ZstdSuffix) + "." + kind + sim.ZstdSuffix
	}
	return logFile + "." + kind
}
