package sim

import (
	"context"
	"time"

	"dronetactics/internal/logging"
	"dronetactics/internal/telemetry"
)

// Run starts the simulation loop and stops when the match is over or the
// context is done.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "match", s.matchID, "tick_interval", s.tickInterval)
	if s.tickInterval <= 0 {
		s.RunSteps(ctx, 0)
		return
	}
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !s.tick(ctx) {
				s.logResult(ctx)
				return
			}
		case <-ctx.Done():
			log.Info("stopping simulator", "step", s.StepCount())
			return
		}
	}
}

// RunSteps advances up to n steps without waiting between them and returns
// how many ran. n <= 0 runs until the match is over.
func (s *Simulator) RunSteps(ctx context.Context, n int) int {
	ran := 0
	for n <= 0 || ran < n {
		if ctx.Err() != nil {
			break
		}
		if s.Finished() {
			break
		}
		ran++
		if !s.tick(ctx) {
			break
		}
	}
	if s.Finished() {
		s.logResult(ctx)
	}
	return ran
}

func (s *Simulator) logResult(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logging.FromContext(ctx).Info("match finished",
		"match", s.matchID, "step", s.arena.StepCount(),
		"winner", s.arena.Winner(), "teams_alive", s.arena.TeamsAlive())
}

// tick advances one step and writes its rows. It returns false once the
// match is over.
func (s *Simulator) tick(ctx context.Context) bool {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished() {
		return false
	}
	step := s.arena.Step()
	ts := s.timestamp(step)

	if s.cfg.DebugInvariants {
		if err := s.arena.Verify(); err != nil {
			log.Error("role bookkeeping inconsistent", "step", step, "err", err)
		}
	}

	if s.writer != nil {
		if err := writeAgentStates(s.writer, s.gen.AgentStates(s.arena, ts)); err != nil {
			log.Error("agent state write failed", "step", step, "err", err)
		}
	}

	changes := s.changes
	s.changes = nil
	if s.roleWriter != nil && len(changes) > 0 {
		events := make([]telemetry.RoleEventRow, 0, len(changes))
		for _, c := range changes {
			events = append(events, s.gen.RoleEvent(c, step, ts))
		}
		if err := writeRoleEvents(s.roleWriter, events); err != nil {
			log.Error("role event write failed", "step", step, "events", len(events), "err", err)
		}
	}

	if s.teamWriter != nil {
		if err := writeTeamStates(s.teamWriter, s.gen.TeamStates(s.arena, ts)); err != nil {
			log.Error("team state write failed", "step", step, "err", err)
		}
	}
	return !s.finished()
}

// writeAgentStates uses batch mode if the writer implements WriteBatch.
func writeAgentStates(w AgentStateWriter, rows []telemetry.AgentStateRow) error {
	if bw, ok := w.(batchWriter); ok {
		return bw.WriteBatch(rows)
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

func writeRoleEvents(w RoleEventWriter, rows []telemetry.RoleEventRow) error {
	if bw, ok := w.(batchRoleEventWriter); ok {
		return bw.WriteRoleEvents(rows)
	}
	for _, r := range rows {
		if err := w.WriteRoleEvent(r); err != nil {
			return err
		}
	}
	return nil
}

func writeTeamStates(w TeamStateWriter, rows []telemetry.TeamStateRow) error {
	if bw, ok := w.(batchTeamStateWriter); ok {
		return bw.WriteTeamStates(rows)
	}
	for _, r := range rows {
		if err := w.WriteTeamState(r); err != nil {
			return err
		}
	}
	return nil
}
