package arena

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"dronetactics/internal/tactics"
)

// Node is a resource deposit.
type Node struct {
	id      string
	pos     orb.Point
	payload float64
}

func (n *Node) ID() string          { return n.id }
func (n *Node) Position() orb.Point { return n.pos }
func (n *Node) Payload() float64    { return n.payload }

// Base is a team's home structure.
type Base struct {
	id        string
	team      string
	pos       orb.Point
	health    float64
	maxHealth float64
	payload   float64
}

func (b *Base) ID() string          { return b.id }
func (b *Base) Team() string        { return b.team }
func (b *Base) Position() orb.Point { return b.pos }
func (b *Base) Payload() float64    { return b.payload }
func (b *Base) Alive() bool         { return b.health > 0 }

// Health returns the remaining hit points.
func (b *Base) Health() float64 { return b.health }

// HealthFraction returns health relative to the starting value.
func (b *Base) HealthFraction() float64 {
	if b.maxHealth <= 0 {
		return 0
	}
	return b.health / b.maxHealth
}

// Status of a drone as shown in telemetry.
const (
	StatusIdle      = "idle"
	StatusMoving    = "moving"
	StatusLoading   = "loading"
	StatusUnloading = "unloading"
	StatusDead      = "dead"
)

type transfer struct {
	load bool
	node *Node
	base *Base
}

func (t *transfer) partner() orb.Point {
	if t.node != nil {
		return t.node.pos
	}
	return t.base.pos
}

// Drone is one unit on the field. It implements tactics.Body.
type Drone struct {
	arena *Arena
	agent *tactics.Agent

	id        string
	team      string
	home      *Base
	pos       orb.Point
	heading   float64
	health    float64
	maxHealth float64
	cargo     float64
	capacity  float64

	dest     *orb.Point
	xfer     *transfer
	notified bool
	shotAt   int
}

func (d *Drone) ID() string          { return d.id }
func (d *Drone) Team() string        { return d.team }
func (d *Drone) Position() orb.Point { return d.pos }
func (d *Drone) Alive() bool         { return d.health > 0 }

// Home never returns a typed nil.
func (d *Drone) Home() tactics.Base {
	if d.home == nil {
		return nil
	}
	return d.home
}

func (d *Drone) Health() float64 {
	if d.maxHealth <= 0 {
		return 0
	}
	return d.health / d.maxHealth
}

func (d *Drone) Cargo() float64       { return d.cargo }
func (d *Drone) Capacity() float64    { return d.capacity }
func (d *Drone) AttackRange() float64 { return d.arena.cfg.Drone.AttackRange }

// Agent returns the decision state driving the drone.
func (d *Drone) Agent() *tactics.Agent { return d.agent }

// Heading returns the facing in degrees, counter-clockwise from the x axis.
func (d *Drone) Heading() float64 { return d.heading }

// HitPoints returns the absolute remaining health.
func (d *Drone) HitPoints() float64 { return d.health }

// Destination returns the current move target, if any.
func (d *Drone) Destination() (orb.Point, bool) {
	if d.dest == nil {
		return orb.Point{}, false
	}
	return *d.dest, true
}

// Status summarizes what the drone is doing.
func (d *Drone) Status() string {
	switch {
	case !d.Alive():
		return StatusDead
	case d.xfer != nil && d.xfer.load:
		return StatusLoading
	case d.xfer != nil:
		return StatusUnloading
	case d.dest != nil:
		return StatusMoving
	}
	return StatusIdle
}

func (d *Drone) MoveTo(p orb.Point) {
	if !d.Alive() {
		return
	}
	if d.xfer != nil {
		if planar.Distance(p, d.xfer.partner()) <= d.arena.cfg.Tuning.TransferDistance {
			return
		}
		d.xfer = nil
	}
	d.dest = &p
	d.notified = false
}

func (d *Drone) TurnTo(p orb.Point) {
	if p == d.pos {
		return
	}
	d.heading = math.Atan2(p[1]-d.pos[1], p[0]-d.pos[0]) * 180 / math.Pi
}

func (d *Drone) Stop() {
	d.dest = nil
	d.notified = true
}

func (d *Drone) LoadFrom(src tactics.Source) {
	if !d.Alive() {
		return
	}
	t := &transfer{load: true}
	switch s := src.(type) {
	case *Node:
		t.node = s
	case *Base:
		t.base = s
	default:
		return
	}
	d.dest = nil
	d.xfer = t
	d.notified = false
}

func (d *Drone) UnloadTo(dst tactics.Base) {
	if !d.Alive() {
		return
	}
	b, ok := dst.(*Base)
	if !ok {
		return
	}
	d.dest = nil
	d.xfer = &transfer{base: b}
	d.notified = false
}

// Fire hits target at once when it is an enemy within range. One shot per step.
func (d *Drone) Fire(target tactics.Entity) {
	a := d.arena
	if !d.Alive() || d.shotAt == a.step {
		return
	}
	if planar.Distance(d.pos, target.Position()) > a.cfg.Drone.AttackRange {
		return
	}
	switch t := target.(type) {
	case *Drone:
		if t.team == d.team || !t.Alive() {
			return
		}
		d.shotAt = a.step
		t.health -= a.cfg.Drone.Damage
		if t.health <= 0 {
			a.kill(t)
		}
	case *Base:
		if t.team == d.team || !t.Alive() {
			return
		}
		d.shotAt = a.step
		t.health -= a.cfg.Drone.Damage * a.cfg.Base.DamageTaken
		if t.health <= 0 {
			t.health = 0
			a.log.Info("base destroyed", "team", t.team, "step", a.step, "by", d.team)
		}
	}
}

// validTransfer reports whether the pending transfer can move cargo at all.
func (d *Drone) validTransfer() bool {
	t := d.xfer
	transferDist := d.arena.cfg.Tuning.TransferDistance
	if planar.Distance(d.pos, t.partner()) > transferDist {
		return false
	}
	if t.load {
		return t.node != nil || !t.base.Alive()
	}
	return t.base.Alive() && t.base.team == d.team
}
