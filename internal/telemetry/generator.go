package telemetry

import (
	"time"

	"dronetactics/internal/arena"
	"dronetactics/internal/tactics"
)

// Generator turns arena state into telemetry rows for one match.
type Generator struct {
	MatchID string
}

// NewGenerator creates a new row generator for a given match.
func NewGenerator(matchID string) *Generator {
	return &Generator{MatchID: matchID}
}

// AgentState returns the row for one drone.
func (g *Generator) AgentState(d *arena.Drone, step int, ts time.Time) AgentStateRow {
	pos := d.Position()
	row := AgentStateRow{
		MatchID:   g.MatchID,
		Team:      d.Team(),
		DroneID:   d.ID(),
		Step:      step,
		Status:    d.Status(),
		X:         pos[0],
		Y:         pos[1],
		Heading:   d.Heading(),
		Health:    d.Health(),
		Cargo:     d.Cargo(),
		Timestamp: ts,
	}
	if ag := d.Agent(); ag != nil {
		row.Ordinal = ag.Ordinal()
		row.Role = ag.Role().String()
		row.Threshold = ag.Threshold()
		row.Armed = ag.Armed()
		if t := ag.Target(); t != nil {
			row.Target = t.ID()
		}
		switch ag.Role() {
		case tactics.RoleForward:
			if t := ag.AttackTarget(); t != nil {
				row.Target = t.ID()
			}
		case tactics.RoleScavenger:
			if t := ag.ScavengeTarget(); t != nil {
				row.Target = t.ID()
			}
		}
	}
	return row
}

// AgentStates returns one row per drone, dead ones included.
func (g *Generator) AgentStates(a *arena.Arena, ts time.Time) []AgentStateRow {
	rows := make([]AgentStateRow, 0, len(a.Drones()))
	for _, d := range a.Drones() {
		rows = append(rows, g.AgentState(d, a.StepCount(), ts))
	}
	return rows
}

// RoleEvent converts a role change reported by a dispatcher.
func (g *Generator) RoleEvent(c tactics.RoleChange, step int, ts time.Time) RoleEventRow {
	row := RoleEventRow{
		MatchID:   g.MatchID,
		Team:      c.Team,
		DroneID:   c.AgentID,
		Ordinal:   c.Ordinal,
		Step:      step,
		From:      c.From.String(),
		To:        c.To.String(),
		Timestamp: ts,
	}
	if c.To == tactics.RoleToHeal {
		row.Resume = c.Resume.String()
	}
	return row
}

// TeamStates summarizes every team.
func (g *Generator) TeamStates(a *arena.Arena, ts time.Time) []TeamStateRow {
	var rows []TeamStateRow
	for _, d := range a.Registry().Dispatchers() {
		row := TeamStateRow{
			MatchID:    g.MatchID,
			Team:       d.Team(),
			Step:       a.StepCount(),
			Reassigned: d.Reassigned(),
			Timestamp:  ts,
		}
		for _, ag := range d.Roster() {
			if !ag.Body().Alive() {
				continue
			}
			row.Alive++
			switch ag.Role() {
			case tactics.RoleCollector:
				row.Collectors++
			case tactics.RoleDefender, tactics.RoleMainDefender:
				row.Defenders++
			case tactics.RoleForward:
				row.Forwards++
			case tactics.RoleScavenger:
				row.Scavengers++
			case tactics.RoleToHeal:
				row.Healing++
			}
		}
		if b := a.BaseOf(d.Team()); b != nil {
			row.BaseHealth = b.HealthFraction()
			row.BaseAlive = b.Alive()
			row.BasePayload = b.Payload()
		}
		if f := d.Focus(); f != nil {
			row.Focus = f.ID()
		}
		rows = append(rows, row)
	}
	return rows
}
