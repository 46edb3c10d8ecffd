package telemetry

import "time"

// RoleEventRow records one role transition.
type RoleEventRow struct {
	MatchID   string    `json:"match_id"`
	Team      string    `json:"team"`
	DroneID   string    `json:"drone_id"`
	Ordinal   int       `json:"ordinal"`
	Step      int       `json:"step"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Resume    string    `json:"resume,omitempty"`
	Timestamp time.Time `json:"ts"`
}

const RoleEventTableName = "role_events"

func (RoleEventRow) TableName() string { return RoleEventTableName }
