// Runtime surface the decision core consumes from the simulation
package tactics

import "github.com/paulmach/orb"

// Entity is anything on the field with an identity and a position.
type Entity interface {
	ID() string
	Position() orb.Point
}

// Source is an entity cargo can be loaded from.
type Source interface {
	Entity
	Payload() float64
}

// Node is a depletable resource deposit.
type Node interface {
	Source
}

// Base is a team's home structure. A destroyed base keeps its payload until looted.
type Base interface {
	Source
	Team() string
	Alive() bool
}

// Drone is any combat unit on the field.
type Drone interface {
	Entity
	Team() string
	Alive() bool
}

// Body is the command surface of one controlled drone. Movement and transfers are
// asynchronous; completion is reported back through the Controller events.
type Body interface {
	Drone
	Home() Base
	Health() float64 // fraction of max health, 0..1
	Cargo() float64
	Capacity() float64
	AttackRange() float64

	MoveTo(p orb.Point)
	TurnTo(p orb.Point)
	Stop()
	LoadFrom(src Source)
	UnloadTo(dst Base)
	Fire(target Entity)
}

// Field is the match-wide view shared by every drone.
type Field interface {
	Width() float64
	Height() float64
	Nodes() []Node
	Bases() []Base
	Drones() []Drone
	BaseOf(team string) Base
}

// Controller receives the simulation events for one drone.
type Controller interface {
	OnBorn()
	OnHeartbeat()
	OnArrivedAtNode(n Node)
	OnArrivedAtPoint(p orb.Point)
	OnArrivedAtBase(b Base)
	OnLoadComplete()
	OnUnloadComplete()
	OnWakeUp()
}

func sameEntity(a, b Entity) bool {
	return a != nil && b != nil && a.ID() == b.ID()
}
