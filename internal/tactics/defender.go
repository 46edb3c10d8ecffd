package tactics

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"dronetactics/internal/targeting"
)

// Defender holds a station next to the home base and fires on the team focus.
type Defender struct {
	idle
	a       *Agent
	axis    targeting.Axis
	primary bool
}

func newDefender(a *Agent) *Defender {
	return &Defender{a: a, axis: targeting.AxisY}
}

func (d *Defender) Role() Role { return RoleDefender }

func (d *Defender) Enter() { d.a.armed = false }

// MainDefender picks the focus target for every defender on the team.
type MainDefender struct {
	*Defender
}

func newMainDefender(a *Agent) *MainDefender {
	return &MainDefender{&Defender{a: a, axis: targeting.AxisX, primary: true}}
}

func (m *MainDefender) Role() Role { return RoleMainDefender }

// Station returns the point the defender holds.
func (d *Defender) Station() orb.Point {
	a := d.a
	var home orb.Point
	if h := a.home(); h != nil {
		home = h.Position()
	} else {
		home = a.body.Position()
	}
	return targeting.Station(home, d.axis, a.tuning.SafeDefenderDistance, a.field.Width(), a.field.Height())
}

func (d *Defender) moveToStation() {
	d.a.body.MoveTo(d.Station())
}

func (d *Defender) OnHeartbeat() {
	a := d.a
	if !a.armed {
		d.moveToStation()
		return
	}
	t := d.currentFocus()
	if t == nil {
		if d.primary {
			a.body.Stop()
		}
		return
	}
	d.engage(t)
}

func (d *Defender) OnArrivedAtPoint(orb.Point) {
	d.arm()
}

func (d *Defender) OnArrivedAtNode(Node) { d.arrive() }
func (d *Defender) OnArrivedAtBase(Base) { d.arrive() }
func (d *Defender) OnLoadComplete()      { d.moveToStation() }
func (d *Defender) OnUnloadComplete()    { d.moveToStation() }

func (d *Defender) OnWakeUp() {
	if !d.a.armed {
		d.moveToStation()
	}
}

// arrive handles arrivals the runtime classified by what lies near the station.
func (d *Defender) arrive() {
	if d.a.at(d.Station()) {
		d.arm()
		return
	}
	d.moveToStation()
}

func (d *Defender) arm() {
	a := d.a
	a.armed = true
	if t := d.currentFocus(); t != nil {
		a.body.TurnTo(t.Position())
		a.body.Fire(t)
	}
}

func (d *Defender) currentFocus() Drone {
	disp := d.a.dispatcher
	if d.primary {
		disp.setFocus(d.nearestThreat())
	}
	return disp.Focus()
}

// engage tracks t and fires once it is close enough.
func (d *Defender) engage(t Drone) {
	a := d.a
	a.body.TurnTo(t.Position())
	if a.distanceTo(t.Position()) <= a.body.AttackRange()+a.tuning.DefenderRangeSlack {
		a.body.Fire(t)
	}
}

// nearestThreat returns the closest live enemy that has left its own base.
func (d *Defender) nearestThreat() Drone {
	a := d.a
	var threats []Drone
	for _, e := range a.field.Drones() {
		if e.Team() == a.body.Team() || !e.Alive() {
			continue
		}
		if b := a.field.BaseOf(e.Team()); b != nil && planar.Distance(e.Position(), b.Position()) <= a.tuning.ThreatGuardDistance {
			continue
		}
		threats = append(threats, e)
	}
	t, _ := targeting.Nearest(threats, func(e Drone) float64 { return a.distanceTo(e.Position()) })
	return t
}
