package tactics

import "github.com/paulmach/orb"

// Forward assaults an enemy base from a stand-off point and loots it once destroyed.
type Forward struct {
	idle
	a *Agent
}

func (f *Forward) Role() Role { return RoleForward }

func (f *Forward) Enter() {
	a := f.a
	a.armed = false
	if a.standoffFor == nil || !sameEntity(a.standoffFor, a.attackTarget) {
		a.clearStandoff()
	}
}

// position resolves the target and stand-off if needed and moves there.
func (f *Forward) position() {
	a := f.a
	if a.standoffFor == nil {
		if a.attackTarget == nil || !a.attackTarget.Alive() {
			a.attackTarget = a.dispatcher.SelectAttackTarget(a)
		}
		if a.attackTarget == nil {
			a.body.Stop()
			return
		}
		a.setStandoff(a.attackTarget, a.dispatcher.ComputeAttackStandoff(a, a.attackTarget))
	}
	a.body.MoveTo(a.standoff)
}

func (f *Forward) arrive() {
	a := f.a
	if a.armed {
		return
	}
	if a.attackTarget != nil && a.standoffFor != nil && a.at(a.standoff) {
		a.armed = true
		f.attack()
		return
	}
	f.position()
}

func (f *Forward) attack() {
	a := f.a
	t := a.attackTarget
	a.body.TurnTo(t.Position())
	a.body.Fire(t)
	if !t.Alive() {
		a.scavengeTarget = t
		a.armed = false
		a.SetRole(RoleScavenger)
	}
}

func (f *Forward) OnArrivedAtNode(Node)       { f.arrive() }
func (f *Forward) OnArrivedAtPoint(orb.Point) { f.arrive() }
func (f *Forward) OnArrivedAtBase(Base)       { f.arrive() }

func (f *Forward) OnLoadComplete() {
	if !f.a.armed {
		f.position()
	}
}

func (f *Forward) OnUnloadComplete() {
	if !f.a.armed {
		f.position()
	}
}

func (f *Forward) OnWakeUp() {
	if !f.a.armed {
		f.position()
	}
}

func (f *Forward) OnHeartbeat() {
	a := f.a
	if !a.armed {
		f.position()
		return
	}
	if a.healthLow() {
		a.retreat(RoleForward)
		return
	}
	if a.attackTarget != nil {
		f.attack()
	}
}
