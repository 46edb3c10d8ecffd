package tactics

import (
	"log/slog"
	"math/rand"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"dronetactics/internal/targeting"
)

// Agent is the decision state of one drone. It forwards every runtime event to the
// behavior of its current role.
type Agent struct {
	body       Body
	field      Field
	registry   *Registry
	dispatcher *Dispatcher
	tuning     Tuning
	log        *slog.Logger

	ordinal   int
	role      Role
	behavior  Behavior
	list      roleList
	resume    Role
	threshold float64
	retired   bool

	lastNode       Node
	target         Entity
	attackTarget   Base
	standoff       orb.Point
	standoffFor    Base
	armed          bool
	scavengeTarget Base
}

// NewAgent wraps a runtime body. The retreat threshold is drawn from rng once, here.
func NewAgent(body Body, reg *Registry, rng *rand.Rand) *Agent {
	t := reg.tuning
	return &Agent{
		body:      body,
		field:     reg.field,
		registry:  reg,
		tuning:    t,
		log:       reg.log,
		threshold: t.ThresholdMin + rng.Float64()*(t.ThresholdMax-t.ThresholdMin),
	}
}

func (a *Agent) ID() string           { return a.body.ID() }
func (a *Agent) Team() string         { return a.body.Team() }
func (a *Agent) Ordinal() int         { return a.ordinal }
func (a *Agent) Role() Role           { return a.role }
func (a *Agent) ResumeRole() Role     { return a.resume }
func (a *Agent) Threshold() float64   { return a.threshold }
func (a *Agent) Armed() bool          { return a.armed }
func (a *Agent) Body() Body           { return a.body }
func (a *Agent) AttackTarget() Base   { return a.attackTarget }
func (a *Agent) ScavengeTarget() Base { return a.scavengeTarget }
func (a *Agent) Target() Entity       { return a.target }

// Standoff returns the cached attack position and whether one is set.
func (a *Agent) Standoff() (orb.Point, bool) { return a.standoff, a.standoffFor != nil }

// SetRole replaces the behavior and refiles the agent with its dispatcher.
func (a *Agent) SetRole(role Role) {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.transition(a, role)
}

// OnBorn registers the agent with its team and starts collecting.
func (a *Agent) OnBorn() {
	if a.dispatcher != nil {
		return
	}
	d := a.registry.Dispatcher(a.body.Team())
	d.Register(a)
	a.SetRole(RoleCollector)
	a.behavior.OnBorn()
}

func (a *Agent) OnHeartbeat() {
	if a.behavior != nil {
		a.behavior.OnHeartbeat()
	}
}

func (a *Agent) OnArrivedAtNode(n Node) {
	if a.behavior != nil {
		a.behavior.OnArrivedAtNode(n)
	}
}

func (a *Agent) OnArrivedAtPoint(p orb.Point) {
	if a.behavior != nil {
		a.behavior.OnArrivedAtPoint(p)
	}
}

func (a *Agent) OnArrivedAtBase(b Base) {
	if a.behavior != nil {
		a.behavior.OnArrivedAtBase(b)
	}
}

func (a *Agent) OnLoadComplete() {
	if a.behavior != nil {
		a.behavior.OnLoadComplete()
	}
}

func (a *Agent) OnUnloadComplete() {
	if a.behavior != nil {
		a.behavior.OnUnloadComplete()
	}
}

func (a *Agent) OnWakeUp() {
	if a.behavior != nil {
		a.behavior.OnWakeUp()
	}
}

func (a *Agent) home() Base { return a.body.Home() }

func (a *Agent) distanceTo(p orb.Point) float64 {
	return planar.Distance(a.body.Position(), p)
}

func (a *Agent) at(p orb.Point) bool {
	return a.distanceTo(p) <= a.tuning.ArrivalTolerance
}

func (a *Agent) full() bool { return a.body.Cargo() >= a.body.Capacity() }

func (a *Agent) healthLow() bool { return a.body.Health() < a.threshold }

// goTo approaches e, stopping just inside cargo transfer range.
func (a *Agent) goTo(e Entity) {
	if e == nil {
		return
	}
	p := targeting.EdgePoint(a.body.Position(), e.Position(), a.tuning.TransferDistance, a.tuning.ConvergenceFactor)
	a.body.MoveTo(p)
}

func (a *Agent) goHome() {
	if h := a.home(); h != nil {
		a.body.MoveTo(h.Position())
	}
}

func (a *Agent) setStandoff(target Base, p orb.Point) {
	a.standoff = p
	a.standoffFor = target
}

func (a *Agent) clearStandoff() {
	a.standoff = orb.Point{}
	a.standoffFor = nil
}

// retreat heads for home and remembers which role to resume afterwards.
func (a *Agent) retreat(from Role) {
	a.resume = from
	a.armed = false
	a.SetRole(RoleToHeal)
}
