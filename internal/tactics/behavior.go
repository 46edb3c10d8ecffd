package tactics

import "github.com/paulmach/orb"

// Behavior is one role's event handler set. A behavior holds nothing but its agent;
// everything that must survive a role change lives on the Agent.
type Behavior interface {
	Controller
	Role() Role
	// Enter runs once when the agent switches into the behavior.
	Enter()
}

// idle is the no-op default every behavior embeds.
type idle struct{}

func (idle) Enter()                     {}
func (idle) OnBorn()                    {}
func (idle) OnHeartbeat()               {}
func (idle) OnArrivedAtNode(Node)       {}
func (idle) OnArrivedAtPoint(orb.Point) {}
func (idle) OnArrivedAtBase(Base)       {}
func (idle) OnLoadComplete()            {}
func (idle) OnUnloadComplete()          {}
func (idle) OnWakeUp()                  {}

func newBehavior(role Role, a *Agent) Behavior {
	switch role {
	case RoleCollector:
		return &Collector{a: a}
	case RoleScavenger:
		return &Scavenger{a: a}
	case RoleForward:
		return &Forward{a: a}
	case RoleDefender:
		return newDefender(a)
	case RoleMainDefender:
		return newMainDefender(a)
	case RoleToHeal:
		return &ToHeal{a: a}
	}
	return nil
}
