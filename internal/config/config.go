// YAML match config loader with CUE validation integration
package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"dronetactics/internal/tactics"
)

// FieldConfig is the playing field size.
type FieldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// NodesConfig controls resource node generation.
type NodesConfig struct {
	Count      int     `yaml:"count"`
	MinPayload float64 `yaml:"min_payload"`
	MaxPayload float64 `yaml:"max_payload"`
}

// TeamConfig names a team and its drone count.
type TeamConfig struct {
	Name   string `yaml:"name"`
	Drones int    `yaml:"drones"`
}

// DroneConfig holds physical drone parameters shared by all teams.
type DroneConfig struct {
	Speed        float64 `yaml:"speed"`
	Capacity     float64 `yaml:"capacity"`
	MaxHealth    float64 `yaml:"max_health"`
	AttackRange  float64 `yaml:"attack_range"`
	Damage       float64 `yaml:"damage"`
	TransferRate float64 `yaml:"transfer_rate"`
	HealRate     float64 `yaml:"heal_rate"`
}

// BaseConfig holds base parameters.
type BaseConfig struct {
	MaxHealth    float64 `yaml:"max_health"`
	CornerOffset float64 `yaml:"corner_offset"`
	DamageTaken  float64 `yaml:"damage_taken"`
}

// TuningConfig overrides the strategy constants. Zero values keep the defaults.
type TuningConfig struct {
	MaxDronesPerNode     int       `yaml:"max_drones_per_node"`
	SafeDefenderDistance float64   `yaml:"safe_defender_distance"`
	ConvergenceFactor    float64   `yaml:"convergence_factor"`
	TransferDistance     float64   `yaml:"transfer_distance"`
	HealDistance         float64   `yaml:"heal_distance"`
	StandoffMargin       float64   `yaml:"standoff_margin"`
	DefenderRangeSlack   float64   `yaml:"defender_range_slack"`
	ThreatGuardDistance  float64   `yaml:"threat_guard_distance"`
	ArrivalTolerance     float64   `yaml:"arrival_tolerance"`
	Rotations            []float64 `yaml:"rotations"`
	ReferenceCorner      []float64 `yaml:"reference_corner"`
	ThresholdMin         float64   `yaml:"threshold_min"`
	ThresholdMax         float64   `yaml:"threshold_max"`
}

// MatchConfig is the root configuration for one match
type MatchConfig struct {
	MatchID         string       `yaml:"match_id"`
	Seed            int64        `yaml:"seed"`
	MaxSteps        int          `yaml:"max_steps"`
	HeartbeatEvery  int          `yaml:"heartbeat_every"`
	DebugInvariants bool         `yaml:"debug_invariants"`
	Field           FieldConfig  `yaml:"field"`
	Nodes           NodesConfig  `yaml:"nodes"`
	Teams           []TeamConfig `yaml:"teams"`
	Drone           DroneConfig  `yaml:"drone"`
	Base            BaseConfig   `yaml:"base"`
	Strategy        TuningConfig `yaml:"tuning"`
}

// Default returns the classic four-team match on a 1200x800 field.
func Default() *MatchConfig {
	t := tactics.DefaultTuning()
	return &MatchConfig{
		MaxSteps:       6000,
		HeartbeatEvery: 1,
		Field:          FieldConfig{Width: 1200, Height: 800},
		Nodes:          NodesConfig{Count: 27, MinPayload: 50, MaxPayload: 300},
		Teams: []TeamConfig{
			{Name: "red", Drones: 5},
			{Name: "blue", Drones: 5},
			{Name: "green", Drones: 5},
			{Name: "gold", Drones: 5},
		},
		Drone: DroneConfig{
			Speed:        5,
			Capacity:     100,
			MaxHealth:    100,
			AttackRange:  300,
			Damage:       6,
			TransferRate: 10,
			HealRate:     0.5,
		},
		Base: BaseConfig{MaxHealth: 2000, CornerOffset: 90, DamageTaken: 1},
		Strategy: TuningConfig{
			MaxDronesPerNode:     t.MaxDronesPerNode,
			SafeDefenderDistance: t.SafeDefenderDistance,
			ConvergenceFactor:    t.ConvergenceFactor,
			TransferDistance:     t.TransferDistance,
			HealDistance:         t.HealDistance,
			StandoffMargin:       t.StandoffMargin,
			DefenderRangeSlack:   t.DefenderRangeSlack,
			ThreatGuardDistance:  t.ThreatGuardDistance,
			ArrivalTolerance:     t.ArrivalTolerance,
			Rotations:            []float64{t.Rotations[0], t.Rotations[1]},
			ReferenceCorner:      []float64{t.ReferenceCorner[0], t.ReferenceCorner[1]},
			ThresholdMin:         t.ThresholdMin,
			ThresholdMax:         t.ThresholdMax,
		},
	}
}

// Load loads YAML config and validates it against a CUE schema
func Load(configPath, cueSchemaPath string) (*MatchConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg MatchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal match config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills every zero value from Default.
func (c *MatchConfig) applyDefaults() {
	d := Default()
	if c.MatchID == "" {
		c.MatchID = uuid.NewString()
	}
	setInt(&c.MaxSteps, d.MaxSteps)
	setInt(&c.HeartbeatEvery, d.HeartbeatEvery)
	setFloat(&c.Field.Width, d.Field.Width)
	setFloat(&c.Field.Height, d.Field.Height)
	setInt(&c.Nodes.Count, d.Nodes.Count)
	setFloat(&c.Nodes.MinPayload, d.Nodes.MinPayload)
	setFloat(&c.Nodes.MaxPayload, d.Nodes.MaxPayload)
	if len(c.Teams) == 0 {
		c.Teams = d.Teams
	}
	setFloat(&c.Drone.Speed, d.Drone.Speed)
	setFloat(&c.Drone.Capacity, d.Drone.Capacity)
	setFloat(&c.Drone.MaxHealth, d.Drone.MaxHealth)
	setFloat(&c.Drone.AttackRange, d.Drone.AttackRange)
	setFloat(&c.Drone.Damage, d.Drone.Damage)
	setFloat(&c.Drone.TransferRate, d.Drone.TransferRate)
	setFloat(&c.Drone.HealRate, d.Drone.HealRate)
	setFloat(&c.Base.MaxHealth, d.Base.MaxHealth)
	setFloat(&c.Base.CornerOffset, d.Base.CornerOffset)
	setFloat(&c.Base.DamageTaken, d.Base.DamageTaken)

	t, dt := &c.Strategy, d.Strategy
	setInt(&t.MaxDronesPerNode, dt.MaxDronesPerNode)
	setFloat(&t.SafeDefenderDistance, dt.SafeDefenderDistance)
	setFloat(&t.ConvergenceFactor, dt.ConvergenceFactor)
	setFloat(&t.TransferDistance, dt.TransferDistance)
	setFloat(&t.HealDistance, dt.HealDistance)
	setFloat(&t.StandoffMargin, dt.StandoffMargin)
	setFloat(&t.DefenderRangeSlack, dt.DefenderRangeSlack)
	setFloat(&t.ThreatGuardDistance, dt.ThreatGuardDistance)
	setFloat(&t.ArrivalTolerance, dt.ArrivalTolerance)
	if len(t.Rotations) != 2 {
		t.Rotations = dt.Rotations
	}
	if len(t.ReferenceCorner) != 2 {
		t.ReferenceCorner = dt.ReferenceCorner
	}
	setFloat(&t.ThresholdMin, dt.ThresholdMin)
	setFloat(&t.ThresholdMax, dt.ThresholdMax)
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setFloat(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

// Check reports cross-field errors the schema cannot express.
func (c *MatchConfig) Check() error {
	if c.Nodes.MinPayload > c.Nodes.MaxPayload {
		return fmt.Errorf("nodes.min_payload %g exceeds max_payload %g", c.Nodes.MinPayload, c.Nodes.MaxPayload)
	}
	if c.Strategy.ThresholdMin > c.Strategy.ThresholdMax {
		return fmt.Errorf("tuning.threshold_min %g exceeds threshold_max %g", c.Strategy.ThresholdMin, c.Strategy.ThresholdMax)
	}
	if c.Strategy.TransferDistance >= c.Strategy.SafeDefenderDistance {
		return fmt.Errorf("tuning.transfer_distance %g must be below safe_defender_distance %g", c.Strategy.TransferDistance, c.Strategy.SafeDefenderDistance)
	}
	seen := make(map[string]bool)
	for _, t := range c.Teams {
		if seen[t.Name] {
			return fmt.Errorf("duplicate team %q", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// Tuning converts the tuning section for the tactics core.
func (c *MatchConfig) Tuning() tactics.Tuning {
	t := tactics.DefaultTuning()
	ct := c.Strategy
	t.MaxDronesPerNode = ct.MaxDronesPerNode
	t.SafeDefenderDistance = ct.SafeDefenderDistance
	t.ConvergenceFactor = ct.ConvergenceFactor
	t.TransferDistance = ct.TransferDistance
	t.HealDistance = ct.HealDistance
	t.StandoffMargin = ct.StandoffMargin
	t.DefenderRangeSlack = ct.DefenderRangeSlack
	t.ThreatGuardDistance = ct.ThreatGuardDistance
	t.ArrivalTolerance = ct.ArrivalTolerance
	if len(ct.Rotations) == 2 {
		t.Rotations = [2]float64{ct.Rotations[0], ct.Rotations[1]}
	}
	if len(ct.ReferenceCorner) == 2 {
		t.ReferenceCorner = orb.Point{ct.ReferenceCorner[0], ct.ReferenceCorner[1]}
	}
	t.ThresholdMin = ct.ThresholdMin
	t.ThresholdMax = ct.ThresholdMax
	return t
}
