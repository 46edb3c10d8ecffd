package tactics

import "github.com/paulmach/orb"

// Scavenger loots a destroyed enemy base and hauls the loot home.
type Scavenger struct {
	idle
	a *Agent
}

func (s *Scavenger) Role() Role { return RoleScavenger }

func (s *Scavenger) OnArrivedAtBase(b Base) {
	a := s.a
	switch {
	case !b.Alive():
		a.body.LoadFrom(b)
	case sameEntity(b, a.home()):
		a.body.UnloadTo(b)
	default:
		a.goHome()
	}
}

func (s *Scavenger) OnArrivedAtPoint(orb.Point) {
	a := s.a
	if t := a.scavengeTarget; t != nil && t.Payload() > 0 {
		a.body.LoadFrom(t)
	}
}

func (s *Scavenger) OnLoadComplete() {
	a := s.a
	if t := a.scavengeTarget; t != nil && t.Payload() > 0 {
		a.goHome()
		return
	}
	if next := a.dispatcher.SelectScavengeTarget(a); next != nil {
		a.scavengeTarget = next
		a.body.MoveTo(next.Position())
		return
	}
	if next := a.dispatcher.SelectAttackTarget(a); next != nil {
		a.scavengeTarget = nil
		a.attackTarget = next
		a.clearStandoff()
		a.SetRole(RoleForward)
		return
	}
	a.scavengeTarget = nil
	a.body.Stop()
}

func (s *Scavenger) OnUnloadComplete() {
	a := s.a
	switch {
	case a.full():
		a.goHome()
	case a.scavengeTarget != nil:
		a.body.MoveTo(a.scavengeTarget.Position())
	default:
		a.body.Stop()
	}
}

func (s *Scavenger) OnHeartbeat() {
	a := s.a
	switch {
	case a.healthLow():
		a.retreat(RoleScavenger)
	case a.full():
		a.goHome()
	case a.scavengeTarget != nil:
		a.body.MoveTo(a.scavengeTarget.Position())
	}
}
