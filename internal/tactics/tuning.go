package tactics

import "github.com/paulmach/orb"

// Tuning holds the heuristic constants of the team strategy.
type Tuning struct {
	MaxDronesPerNode     int        // collectors allowed on one node before others skip it
	SafeDefenderDistance float64    // station offset from the home base
	ConvergenceFactor    float64    // share of the transfer distance kept when approaching a node
	TransferDistance     float64    // cargo transfer range of the runtime
	HealDistance         float64    // radius of a base's healing aura
	StandoffMargin       float64    // extra pull-in when the weapon outranges the heal aura
	DefenderRangeSlack   float64    // defenders only fire within AttackRange+slack
	ThreatGuardDistance  float64    // enemies closer than this to their own base are ignored
	ArrivalTolerance     float64    // distance at which a drone counts as standing on a point
	Rotations            [2]float64 // stand-off rotations in degrees for ordinal 4 and ordinals >= 5
	ReferenceCorner      orb.Point
	ThresholdMin         float64 // retreat threshold range, drawn once per drone
	ThresholdMax         float64
}

// DefaultTuning returns the constants the strategy was balanced with.
func DefaultTuning() Tuning {
	return Tuning{
		MaxDronesPerNode:     2,
		SafeDefenderDistance: 150,
		ConvergenceFactor:    0.95,
		TransferDistance:     100,
		HealDistance:         200,
		StandoffMargin:       70,
		DefenderRangeSlack:   60,
		ThreatGuardDistance:  10,
		ArrivalTolerance:     5,
		Rotations:            [2]float64{20, 40},
		ReferenceCorner:      orb.Point{90, 90},
		ThresholdMin:         0.45,
		ThresholdMax:         0.65,
	}
}
