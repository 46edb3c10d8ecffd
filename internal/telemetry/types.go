// Telemetry rows with greptime tags
package telemetry

import (
	"os"
	"time"
)

// AgentStateRow is one drone's state after a simulation step.
type AgentStateRow struct {
	MatchID   string    `json:"match_id"` // TAG
	Team      string    `json:"team"`     // TAG
	DroneID   string    `json:"drone_id"` // TAG
	Ordinal   int       `json:"ordinal"`  // FIELD
	Step      int       `json:"step"`     // FIELD
	Role      string    `json:"role"`     // FIELD
	Status    string    `json:"status"`   // FIELD
	X         float64   `json:"x"`        // FIELD
	Y         float64   `json:"y"`        // FIELD
	Heading   float64   `json:"heading"`  // FIELD
	Health    float64   `json:"health"`   // FIELD, fraction of max health
	Threshold float64   `json:"threshold"`
	Cargo     float64   `json:"cargo"`
	Armed     bool      `json:"armed"`
	Target    string    `json:"target,omitempty"`
	Timestamp time.Time `json:"ts"` // TIME INDEX
}

// AgentStateTableName defaults to "agent_state" and can be overridden via
// the GREPTIMEDB_AGENT_TABLE environment variable.
var AgentStateTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_AGENT_TABLE"); env != "" {
		return env
	}
	return "agent_state"
}()

func (AgentStateRow) TableName() string {
	return AgentStateTableName
}

// Drone status values mirror the runtime.
const (
	StatusIdle      = "idle"
	StatusMoving    = "moving"
	StatusLoading   = "loading"
	StatusUnloading = "unloading"
	StatusDead      = "dead"
)
