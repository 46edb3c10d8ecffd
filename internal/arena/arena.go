// Reference runtime driving tactics agents on a 2-D field
package arena

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"dronetactics/internal/tactics"
)

// TeamSpec names a team and its drone count.
type TeamSpec struct {
	Name   string
	Drones int
}

// DroneSpec holds the per-drone physical parameters.
type DroneSpec struct {
	Speed        float64
	Capacity     float64
	MaxHealth    float64
	AttackRange  float64
	Damage       float64
	TransferRate float64
	HealRate     float64
}

// BaseSpec holds base parameters. DamageTaken scales drone damage against bases.
type BaseSpec struct {
	MaxHealth    float64
	CornerOffset float64
	DamageTaken  float64
}

// Config describes one match.
type Config struct {
	Width, Height  float64
	NodeCount      int
	MinPayload     float64
	MaxPayload     float64
	HeartbeatEvery int
	Teams          []TeamSpec
	Drone          DroneSpec
	Base           BaseSpec
	Tuning         tactics.Tuning
}

type eventKind int

const (
	evArrivedNode eventKind = iota
	evArrivedBase
	evArrivedPoint
	evLoadDone
	evUnloadDone
	evWakeUp
)

type event struct {
	drone *Drone
	kind  eventKind
	node  *Node
	base  *Base
	point orb.Point
}

// Arena owns the field state and delivers events to every drone's agent.
type Arena struct {
	cfg      Config
	rng      *rand.Rand
	log      *slog.Logger
	registry *tactics.Registry

	nodes  []*Node
	bases  []*Base
	drones []*Drone
	step   int
}

// New lays out bases, nodes and drones. Agents are born on the first Step.
func New(cfg Config, rng *rand.Rand, logger *slog.Logger) (*Arena, error) {
	if len(cfg.Teams) == 0 || len(cfg.Teams) > 4 {
		return nil, fmt.Errorf("arena supports 1 to 4 teams, got %d", len(cfg.Teams))
	}
	if cfg.Width <= 2*cfg.Base.CornerOffset || cfg.Height <= 2*cfg.Base.CornerOffset {
		return nil, fmt.Errorf("field %gx%g too small for corner offset %g", cfg.Width, cfg.Height, cfg.Base.CornerOffset)
	}
	if cfg.HeartbeatEvery <= 0 {
		cfg.HeartbeatEvery = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &Arena{cfg: cfg, rng: rng, log: logger.With("component", "arena")}
	a.registry = tactics.NewRegistry(fieldView{a}, cfg.Tuning, logger)

	off := cfg.Base.CornerOffset
	corners := []orb.Point{
		{off, off},
		{cfg.Width - off, off},
		{off, cfg.Height - off},
		{cfg.Width - off, cfg.Height - off},
	}
	for i, t := range cfg.Teams {
		a.bases = append(a.bases, &Base{
			id:        "base-" + t.Name,
			team:      t.Name,
			pos:       corners[i],
			health:    cfg.Base.MaxHealth,
			maxHealth: cfg.Base.MaxHealth,
		})
	}
	a.placeNodes()
	for i, t := range cfg.Teams {
		for j := 0; j < t.Drones; j++ {
			id, err := uuid.NewRandomFromReader(rng)
			if err != nil {
				return nil, fmt.Errorf("drone id: %w", err)
			}
			d := &Drone{
				arena:     a,
				id:        id.String(),
				team:      t.Name,
				home:      a.bases[i],
				pos:       a.bases[i].pos,
				health:    cfg.Drone.MaxHealth,
				maxHealth: cfg.Drone.MaxHealth,
				capacity:  cfg.Drone.Capacity,
				shotAt:    -1,
			}
			d.agent = tactics.NewAgent(d, a.registry, rng)
			a.drones = append(a.drones, d)
		}
	}
	return a, nil
}

// placeNodes scatters nodes uniformly, keeping them clear of every base.
func (a *Arena) placeNodes() {
	cfg := a.cfg
	minDist := cfg.Tuning.HealDistance + cfg.Tuning.TransferDistance
	margin := cfg.Tuning.TransferDistance / 2
	for i := 0; i < cfg.NodeCount; i++ {
		var p orb.Point
		for attempt := 0; attempt < 100; attempt++ {
			p = orb.Point{
				margin + a.rng.Float64()*(cfg.Width-2*margin),
				margin + a.rng.Float64()*(cfg.Height-2*margin),
			}
			if a.clearOfBases(p, minDist) {
				break
			}
		}
		payload := cfg.MinPayload + a.rng.Float64()*(cfg.MaxPayload-cfg.MinPayload)
		a.nodes = append(a.nodes, &Node{id: fmt.Sprintf("node-%02d", i+1), pos: p, payload: math.Round(payload)})
	}
}

func (a *Arena) clearOfBases(p orb.Point, dist float64) bool {
	for _, b := range a.bases {
		if planar.Distance(p, b.pos) < dist {
			return false
		}
	}
	return true
}

// Registry exposes the per-team dispatchers.
func (a *Arena) Registry() *tactics.Registry { return a.registry }

func (a *Arena) Nodes() []*Node   { return a.nodes }
func (a *Arena) Bases() []*Base   { return a.bases }
func (a *Arena) Drones() []*Drone { return a.drones }

// StepCount returns the number of completed steps.
func (a *Arena) StepCount() int { return a.step }

// Width and Height of the field.
func (a *Arena) Width() float64  { return a.cfg.Width }
func (a *Arena) Height() float64 { return a.cfg.Height }

// BaseOf returns the team's base or nil.
func (a *Arena) BaseOf(team string) *Base {
	for _, b := range a.bases {
		if b.team == team {
			return b
		}
	}
	return nil
}

// Step advances the match by one step and returns its number.
func (a *Arena) Step() int {
	a.step++
	if a.step == 1 {
		for _, d := range a.drones {
			d.agent.OnBorn()
		}
	}
	var events []event
	for _, d := range a.drones {
		if d.Alive() {
			events = append(events, a.advance(d)...)
		}
	}
	for _, ev := range events {
		a.deliver(ev)
	}
	if a.step%a.cfg.HeartbeatEvery == 0 {
		for _, d := range a.drones {
			if d.Alive() {
				d.agent.OnHeartbeat()
			}
		}
	}
	return a.step
}

func (a *Arena) advance(d *Drone) []event {
	var out []event
	wasIdle := d.dest == nil && d.xfer == nil
	switch {
	case d.xfer != nil:
		if done := a.transferStep(d); done {
			kind := evUnloadDone
			if d.xfer.load {
				kind = evLoadDone
			}
			d.xfer = nil
			out = append(out, event{drone: d, kind: kind})
		}
	case d.dest != nil:
		if a.moveStep(d) {
			out = append(out, a.classify(d))
		}
	case wasIdle && !d.notified:
		d.notified = true
		out = append(out, event{drone: d, kind: evWakeUp})
	}
	if h := d.home; h != nil && h.Alive() && planar.Distance(d.pos, h.pos) <= a.cfg.Tuning.HealDistance {
		d.health = math.Min(d.maxHealth, d.health+a.cfg.Drone.HealRate)
	}
	return out
}

// moveStep moves d toward its destination and reports arrival.
func (a *Arena) moveStep(d *Drone) bool {
	dest := *d.dest
	dist := planar.Distance(d.pos, dest)
	speed := a.cfg.Drone.Speed
	if dist <= speed {
		d.pos = dest
		d.dest = nil
		return true
	}
	d.TurnTo(dest)
	k := speed / dist
	d.pos = orb.Point{d.pos[0] + (dest[0]-d.pos[0])*k, d.pos[1] + (dest[1]-d.pos[1])*k}
	return false
}

// classify names the arrival by the closest non-empty node or base in transfer range.
func (a *Arena) classify(d *Drone) event {
	best := a.cfg.Tuning.TransferDistance
	ev := event{drone: d, kind: evArrivedPoint, point: d.pos}
	for _, n := range a.nodes {
		if n.payload <= 0 {
			continue
		}
		if dist := planar.Distance(d.pos, n.pos); dist <= best {
			best = dist
			ev = event{drone: d, kind: evArrivedNode, node: n}
		}
	}
	for _, b := range a.bases {
		if dist := planar.Distance(d.pos, b.pos); dist <= best {
			best = dist
			ev = event{drone: d, kind: evArrivedBase, base: b}
		}
	}
	return ev
}

// transferStep moves one step's worth of cargo and reports completion.
func (a *Arena) transferStep(d *Drone) bool {
	if !d.validTransfer() {
		return true
	}
	t := d.xfer
	rate := a.cfg.Drone.TransferRate
	if !t.load {
		amount := math.Min(rate, d.cargo)
		d.cargo -= amount
		t.base.payload += amount
		return d.cargo <= 0
	}
	var src *float64
	if t.node != nil {
		src = &t.node.payload
	} else {
		src = &t.base.payload
	}
	amount := math.Min(rate, math.Min(*src, d.capacity-d.cargo))
	if amount > 0 {
		*src -= amount
		d.cargo += amount
	}
	return amount <= 0 || d.cargo >= d.capacity || *src <= 0
}

func (a *Arena) deliver(ev event) {
	d := ev.drone
	if !d.Alive() {
		return
	}
	ag := d.agent
	switch ev.kind {
	case evArrivedNode:
		ag.OnArrivedAtNode(ev.node)
	case evArrivedBase:
		ag.OnArrivedAtBase(ev.base)
	case evArrivedPoint:
		ag.OnArrivedAtPoint(ev.point)
	case evLoadDone:
		ag.OnLoadComplete()
	case evUnloadDone:
		ag.OnUnloadComplete()
	case evWakeUp:
		ag.OnWakeUp()
	}
}

func (a *Arena) kill(d *Drone) {
	d.health = 0
	d.dest = nil
	d.xfer = nil
	if disp, ok := a.registry.Lookup(d.team); ok {
		disp.Retire(d.agent)
	}
	a.log.Info("drone destroyed", "team", d.team, "drone", d.id, "step", a.step)
}

// TeamsAlive returns the teams that still have a base or a drone standing.
func (a *Arena) TeamsAlive() []string {
	var out []string
	for _, t := range a.cfg.Teams {
		if b := a.BaseOf(t.Name); b != nil && b.Alive() {
			out = append(out, t.Name)
			continue
		}
		for _, d := range a.drones {
			if d.team == t.Name && d.Alive() {
				out = append(out, t.Name)
				break
			}
		}
	}
	return out
}

// Winner returns the last team standing, or "" while the match is open.
func (a *Arena) Winner() string {
	alive := a.TeamsAlive()
	if len(alive) == 1 && len(a.cfg.Teams) > 1 {
		return alive[0]
	}
	return ""
}

// Finished reports whether at most one team is left.
func (a *Arena) Finished() bool {
	return len(a.cfg.Teams) > 1 && len(a.TeamsAlive()) <= 1
}

// Verify checks the role bookkeeping of every team.
func (a *Arena) Verify() error { return a.registry.Verify() }

// fieldView adapts the arena to the tactics.Field interface.
type fieldView struct{ a *Arena }

func (f fieldView) Width() float64  { return f.a.cfg.Width }
func (f fieldView) Height() float64 { return f.a.cfg.Height }

func (f fieldView) Nodes() []tactics.Node {
	out := make([]tactics.Node, len(f.a.nodes))
	for i, n := range f.a.nodes {
		out[i] = n
	}
	return out
}

func (f fieldView) Bases() []tactics.Base {
	out := make([]tactics.Base, len(f.a.bases))
	for i, b := range f.a.bases {
		out[i] = b
	}
	return out
}

func (f fieldView) Drones() []tactics.Drone {
	out := make([]tactics.Drone, len(f.a.drones))
	for i, d := range f.a.drones {
		out[i] = d
	}
	return out
}

func (f fieldView) BaseOf(team string) tactics.Base {
	if b := f.a.BaseOf(team); b != nil {
		return b
	}
	return nil
}
