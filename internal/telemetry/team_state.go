package telemetry

import "time"

// TeamStateRow summarizes one team after a step.
type TeamStateRow struct {
	MatchID     string    `json:"match_id"`
	Team        string    `json:"team"`
	Step        int       `json:"step"`
	Alive       int       `json:"alive"`
	Collectors  int       `json:"collectors"`
	Defenders   int       `json:"defenders"`
	Forwards    int       `json:"forwards"`
	Scavengers  int       `json:"scavengers"`
	Healing     int       `json:"healing"`
	BaseHealth  float64   `json:"base_health"` // fraction of max health
	BaseAlive   bool      `json:"base_alive"`
	BasePayload float64   `json:"base_payload"`
	Focus       string    `json:"focus,omitempty"`
	Reassigned  bool      `json:"reassigned"`
	Timestamp   time.Time `json:"ts"`
}

const TeamStateTableName = "team_state"

func (TeamStateRow) TableName() string { return TeamStateTableName }
