package tactics

import (
	"github.com/paulmach/orb"

	"dronetactics/internal/targeting"
)

// Collector gathers node payload and spreads the team across nodes.
type Collector struct {
	idle
	a *Agent
}

func (c *Collector) Role() Role { return RoleCollector }

func (c *Collector) OnBorn() {
	a := c.a
	nodes := a.field.Nodes()
	pts := make([]orb.Point, len(nodes))
	for i, n := range nodes {
		pts[i] = n.Position()
	}
	if i, ok := targeting.FirstNode(a.body.Position(), pts, a.ordinal); ok {
		a.target = nodes[i]
		a.lastNode = nodes[i]
	} else {
		a.target = a.home()
	}
	a.goTo(a.target)
}

func (c *Collector) OnArrivedAtNode(n Node) {
	a := c.a
	if totalPayload(a.field.Nodes()) == 0 {
		a.target = a.home()
		a.goTo(a.target)
		return
	}
	// A drone parked at its target's approach point may be reported at a
	// closer node. Load from the target while it is in range.
	if !sameEntity(n, a.target) || n.Payload() <= 0 {
		if t, ok := a.target.(Node); ok && t.Payload() > 0 && a.distanceTo(t.Position()) <= a.tuning.TransferDistance {
			n = t
		} else if n.Payload() <= 0 {
			a.target = c.nextTarget()
			a.goTo(a.target)
			return
		}
	}
	var next Entity
	if a.body.Cargo()+n.Payload() > a.body.Capacity() {
		next = a.home()
	} else {
		next = c.nextTarget()
	}
	if next != nil {
		a.body.TurnTo(next.Position())
	}
	a.body.LoadFrom(n)
}

func (c *Collector) OnArrivedAtPoint(orb.Point) {
	c.a.target = c.nextTarget()
	c.a.goTo(c.a.target)
}

func (c *Collector) OnWakeUp() {
	c.OnArrivedAtPoint(c.a.body.Position())
}

func (c *Collector) OnLoadComplete() {
	a := c.a
	if a.full() {
		a.target = a.home()
	} else {
		a.target = c.nextTarget()
	}
	a.goTo(a.target)
}

func (c *Collector) OnArrivedAtBase(b Base) {
	a := c.a
	if !sameEntity(b, a.home()) {
		a.target = a.home()
		a.goTo(a.target)
		return
	}
	a.target = c.nextTarget()
	if a.target != nil {
		a.body.TurnTo(a.target.Position())
	}
	a.body.UnloadTo(b)
}

func (c *Collector) OnUnloadComplete() {
	a := c.a
	a.target = c.nextTarget()
	if a.target == nil {
		return
	}
	legs := targeting.Waypoints(a.body.Position(), a.target.Position(), a.tuning.HealDistance)
	if len(legs) == 1 {
		a.goTo(a.target)
		return
	}
	a.body.MoveTo(legs[0])
}

func (c *Collector) OnHeartbeat() {
	a := c.a
	if totalPayload(a.field.Nodes()) == 0 {
		a.dispatcher.AssignPostCollectionRoles()
	}
}

// nextTarget picks the best node from the last visited one, or home if none qualifies.
func (c *Collector) nextTarget() Entity {
	a := c.a
	nodes := a.field.Nodes()
	ref := a.body.Position()
	if a.lastNode != nil {
		ref = a.lastNode.Position()
	}
	views := make([]targeting.NodeView, len(nodes))
	for i, n := range nodes {
		views[i] = targeting.NodeView{Pos: n.Position(), Payload: n.Payload(), Assigned: c.assigned(n)}
	}
	i, ok := targeting.NextNode(ref, views, a.tuning.MaxDronesPerNode)
	if !ok {
		return a.home()
	}
	a.lastNode = nodes[i]
	return nodes[i]
}

// assigned counts live teammates other than the agent heading for n.
func (c *Collector) assigned(n Node) int {
	count := 0
	for _, other := range c.a.dispatcher.lists[listCollectors] {
		if other == c.a || !other.body.Alive() {
			continue
		}
		if sameEntity(other.target, n) {
			count++
		}
	}
	return count
}

func totalPayload(nodes []Node) float64 {
	var sum float64
	for _, n := range nodes {
		sum += n.Payload()
	}
	return sum
}
