// Simulator driving one match and writing its rows
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"dronetactics/internal/arena"
	"dronetactics/internal/config"
	"dronetactics/internal/tactics"
	"dronetactics/internal/telemetry"
)

// AgentStateWriter is an interface to support different output writers.
type AgentStateWriter interface {
	Write(telemetry.AgentStateRow) error
}

// Optional: Writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.AgentStateRow) error
}

// RoleEventWriter handles role transitions.
type RoleEventWriter interface {
	WriteRoleEvent(telemetry.RoleEventRow) error
}

// Optional: Role event writers may support batch mode
type batchRoleEventWriter interface {
	WriteRoleEvents([]telemetry.RoleEventRow) error
}

// TeamStateWriter handles per-team summaries.
type TeamStateWriter interface {
	WriteTeamState(telemetry.TeamStateRow) error
}

type batchTeamStateWriter interface {
	WriteTeamStates([]telemetry.TeamStateRow) error
}

// defaultStepDuration spaces row timestamps when no tick interval is set.
const defaultStepDuration = 100 * time.Millisecond

// Simulator orchestrates one match and its row output.
type Simulator struct {
	matchID      string
	cfg          *config.MatchConfig
	arena        *arena.Arena
	gen          *telemetry.Generator
	writer       AgentStateWriter
	roleWriter   RoleEventWriter
	teamWriter   TeamStateWriter
	tickInterval time.Duration
	start        time.Time
	changes      []tactics.RoleChange
	log          *slog.Logger
	mu           sync.Mutex
}

// ArenaConfig converts a match configuration for the reference runtime.
func ArenaConfig(cfg *config.MatchConfig) arena.Config {
	teams := make([]arena.TeamSpec, 0, len(cfg.Teams))
	for _, t := range cfg.Teams {
		teams = append(teams, arena.TeamSpec{Name: t.Name, Drones: t.Drones})
	}
	return arena.Config{
		Width:          cfg.Field.Width,
		Height:         cfg.Field.Height,
		NodeCount:      cfg.Nodes.Count,
		MinPayload:     cfg.Nodes.MinPayload,
		MaxPayload:     cfg.Nodes.MaxPayload,
		HeartbeatEvery: cfg.HeartbeatEvery,
		Teams:          teams,
		Drone: arena.DroneSpec{
			Speed:        cfg.Drone.Speed,
			Capacity:     cfg.Drone.Capacity,
			MaxHealth:    cfg.Drone.MaxHealth,
			AttackRange:  cfg.Drone.AttackRange,
			Damage:       cfg.Drone.Damage,
			TransferRate: cfg.Drone.TransferRate,
			HealRate:     cfg.Drone.HealRate,
		},
		Base: arena.BaseSpec{
			MaxHealth:    cfg.Base.MaxHealth,
			CornerOffset: cfg.Base.CornerOffset,
			DamageTaken:  cfg.Base.DamageTaken,
		},
		Tuning: cfg.Tuning(),
	}
}

// NewSimulator builds the arena for cfg. A nil rng is seeded from cfg.Seed,
// a nil roleWriter drops role events.
func NewSimulator(matchID string, cfg *config.MatchConfig, writer AgentStateWriter, roleWriter RoleEventWriter, tickInterval time.Duration, rng *rand.Rand, logger *slog.Logger) (*Simulator, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	a, err := arena.New(ArenaConfig(cfg), rng, logger)
	if err != nil {
		return nil, fmt.Errorf("build arena: %w", err)
	}
	s := &Simulator{
		matchID:      matchID,
		cfg:          cfg,
		arena:        a,
		gen:          telemetry.NewGenerator(matchID),
		writer:       writer,
		roleWriter:   roleWriter,
		tickInterval: tickInterval,
		start:        time.Now().UTC(),
		log:          logger.With("match", matchID),
	}
	// The observer fires inside Arena.Step, which only runs under s.mu.
	a.Registry().SetObserver(func(c tactics.RoleChange) {
		s.changes = append(s.changes, c)
	})
	return s, nil
}

// SetTeamStateWriter installs the per-team summary sink.
func (s *Simulator) SetTeamStateWriter(w TeamStateWriter) {
	s.mu.Lock()
	s.teamWriter = w
	s.mu.Unlock()
}

// MatchID returns the identifier stamped on every row.
func (s *Simulator) MatchID() string { return s.matchID }

// StepCount returns the number of completed steps.
func (s *Simulator) StepCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arena.StepCount()
}

// Finished reports whether the match is over.
func (s *Simulator) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished()
}

// Winner returns the last team standing, or "" if the match is open or
// ended on the step limit.
func (s *Simulator) Winner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arena.Winner()
}

// Roster returns the current state of every drone.
func (s *Simulator) Roster() []telemetry.AgentStateRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.AgentStates(s.arena, s.timestamp(s.arena.StepCount()))
}

// Teams returns the current summary of every team.
func (s *Simulator) Teams() []telemetry.TeamStateRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.TeamStates(s.arena, s.timestamp(s.arena.StepCount()))
}

// Verify checks the role bookkeeping of every team.
func (s *Simulator) Verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arena.Verify()
}

func (s *Simulator) finished() bool {
	return s.arena.Finished() || s.arena.StepCount() >= s.cfg.MaxSteps
}

// timestamp places step on a synthetic clock so replays keep their pacing
// even when the match ran headless.
func (s *Simulator) timestamp(step int) time.Time {
	d := s.tickInterval
	if d <= 0 {
		d = defaultStepDuration
	}
	return s.start.Add(time.Duration(step) * d)
}
