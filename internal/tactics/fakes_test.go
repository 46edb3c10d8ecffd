package tactics

import (
	"math/rand"

	"github.com/paulmach/orb"
)

type fakeNode struct {
	id      string
	pos     orb.Point
	payload float64
}

func (n *fakeNode) ID() string          { return n.id }
func (n *fakeNode) Position() orb.Point { return n.pos }
func (n *fakeNode) Payload() float64    { return n.payload }

type fakeBase struct {
	id      string
	team    string
	pos     orb.Point
	payload float64
	health  float64
}

func (b *fakeBase) ID() string          { return b.id }
func (b *fakeBase) Team() string        { return b.team }
func (b *fakeBase) Position() orb.Point { return b.pos }
func (b *fakeBase) Payload() float64    { return b.payload }
func (b *fakeBase) Alive() bool         { return b.health > 0 }

type fakeDrone struct {
	id     string
	team   string
	pos    orb.Point
	health float64
}

func (d *fakeDrone) ID() string          { return d.id }
func (d *fakeDrone) Team() string        { return d.team }
func (d *fakeDrone) Position() orb.Point { return d.pos }
func (d *fakeDrone) Alive() bool         { return d.health > 0 }

// fakeBody records every command it receives.
type fakeBody struct {
	fakeDrone
	home        Base
	cargo       float64
	capacity    float64
	attackRange float64
	damage      float64

	moves   []orb.Point
	turns   []orb.Point
	stops   int
	loads   []Source
	unloads []Base
	fires   []Entity
}

func (b *fakeBody) Home() Base           { return b.home }
func (b *fakeBody) Health() float64      { return b.health }
func (b *fakeBody) Cargo() float64       { return b.cargo }
func (b *fakeBody) Capacity() float64    { return b.capacity }
func (b *fakeBody) AttackRange() float64 { return b.attackRange }
func (b *fakeBody) MoveTo(p orb.Point)   { b.moves = append(b.moves, p) }
func (b *fakeBody) TurnTo(p orb.Point)   { b.turns = append(b.turns, p) }
func (b *fakeBody) Stop()                { b.stops++ }
func (b *fakeBody) LoadFrom(src Source)  { b.loads = append(b.loads, src) }
func (b *fakeBody) UnloadTo(dst Base)    { b.unloads = append(b.unloads, dst) }

func (b *fakeBody) Fire(target Entity) {
	b.fires = append(b.fires, target)
	switch t := target.(type) {
	case *fakeBase:
		t.health -= b.damage
	case *fakeDrone:
		t.health -= b.damage
	case *fakeBody:
		t.health -= b.damage
	}
}

func (b *fakeBody) lastMove() (orb.Point, bool) {
	if len(b.moves) == 0 {
		return orb.Point{}, false
	}
	return b.moves[len(b.moves)-1], true
}

type fakeField struct {
	width, height float64
	nodes         []Node
	bases         []Base
	drones        []Drone
}

func (f *fakeField) Width() float64  { return f.width }
func (f *fakeField) Height() float64 { return f.height }
func (f *fakeField) Nodes() []Node   { return f.nodes }
func (f *fakeField) Bases() []Base   { return f.bases }
func (f *fakeField) Drones() []Drone { return f.drones }

func (f *fakeField) BaseOf(team string) Base {
	for _, b := range f.bases {
		if b.Team() == team {
			return b
		}
	}
	return nil
}

// newCornerField returns a 1200x800 field with four bases at the corners.
func newCornerField() *fakeField {
	return &fakeField{
		width:  1200,
		height: 800,
		bases: []Base{
			&fakeBase{id: "base-red", team: "red", pos: orb.Point{90, 90}, health: 1},
			&fakeBase{id: "base-blue", team: "blue", pos: orb.Point{1110, 90}, health: 1},
			&fakeBase{id: "base-green", team: "green", pos: orb.Point{90, 710}, health: 1},
			&fakeBase{id: "base-gold", team: "gold", pos: orb.Point{1110, 710}, health: 1},
		},
	}
}

// spawn creates a born agent for team at its base.
func spawn(reg *Registry, f *fakeField, team string, id string) (*Agent, *fakeBody) {
	home := f.BaseOf(team)
	body := &fakeBody{
		fakeDrone:   fakeDrone{id: id, team: team, pos: home.Position(), health: 1},
		home:        home,
		capacity:    100,
		attackRange: 300,
		damage:      0.1,
	}
	f.drones = append(f.drones, body)
	a := NewAgent(body, reg, rand.New(rand.NewSource(int64(len(f.drones)))))
	a.OnBorn()
	return a, body
}
