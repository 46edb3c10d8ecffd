package sim

import (
	"dronetactics/internal/telemetry"
)

// MultiWriter fans out match rows to multiple writers.
type MultiWriter struct {
	agentWriters []AgentStateWriter
	roleWriters  []RoleEventWriter
	teamWriters  []TeamStateWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(aws []AgentStateWriter, rws []RoleEventWriter, tws []TeamStateWriter) *MultiWriter {
	return &MultiWriter{agentWriters: aws, roleWriters: rws, teamWriters: tws}
}

// Write sends an agent state row to all writers.
func (mw *MultiWriter) Write(row telemetry.AgentStateRow) error {
	for _, w := range mw.agentWriters {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple agent state rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.AgentStateRow) error {
	for _, w := range mw.agentWriters {
		if err := writeAgentStates(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteRoleEvent sends a role transition to all role writers.
func (mw *MultiWriter) WriteRoleEvent(row telemetry.RoleEventRow) error {
	for _, w := range mw.roleWriters {
		if err := w.WriteRoleEvent(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteRoleEvents sends multiple role transitions to all role writers, using batch if supported.
func (mw *MultiWriter) WriteRoleEvents(rows []telemetry.RoleEventRow) error {
	for _, w := range mw.roleWriters {
		if err := writeRoleEvents(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteTeamState sends a team summary to all team writers.
func (mw *MultiWriter) WriteTeamState(row telemetry.TeamStateRow) error {
	for _, w := range mw.teamWriters {
		if err := w.WriteTeamState(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteTeamStates sends multiple team summaries to all team writers, using batch if supported.
func (mw *MultiWriter) WriteTeamStates(rows []telemetry.TeamStateRow) error {
	for _, w := range mw.teamWriters {
		if err := writeTeamStates(w, rows); err != nil {
			return err
		}
	}
	return nil
}
