package tactics

import (
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"

	"dronetactics/internal/targeting"
)

// RoleChange is reported for every role transition.
type RoleChange struct {
	Team    string
	AgentID string
	Ordinal int
	From    Role
	To      Role
	Resume  Role
}

// Dispatcher coordinates one team: role lists, the one-time role split and the
// shared defender focus target.
type Dispatcher struct {
	team     string
	field    Field
	tuning   Tuning
	log      *slog.Logger
	observer func(RoleChange)

	roster     []*Agent
	lists      [listCount][]*Agent
	focus      Drone
	reassigned bool
}

func newDispatcher(team string, field Field, tuning Tuning, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		team:   team,
		field:  field,
		tuning: tuning,
		log:    logger.With("team", team),
	}
}

// Team returns the team tag.
func (d *Dispatcher) Team() string { return d.team }

// Register adds the agent to the roster and assigns its ordinal.
func (d *Dispatcher) Register(a *Agent) {
	if a.dispatcher != nil {
		return
	}
	d.roster = append(d.roster, a)
	a.dispatcher = d
	a.ordinal = len(d.roster)
	d.log.Debug("agent registered", "agent", a.ID(), "ordinal", a.ordinal)
}

// Retire drops a dead agent from its role list. It stays on the roster.
func (d *Dispatcher) Retire(a *Agent) {
	if a.dispatcher != d || a.retired {
		return
	}
	d.remove(a)
	a.retired = true
	a.behavior = nil
	if sameEntity(d.focus, a.body) {
		d.focus = nil
	}
	d.log.Debug("agent retired", "agent", a.ID(), "ordinal", a.ordinal, "role", a.role.String())
}

func (d *Dispatcher) transition(a *Agent, role Role) {
	if a.retired {
		return
	}
	from := a.role
	d.remove(a)
	a.role = role
	a.behavior = newBehavior(role, a)
	if a.behavior == nil {
		a.role = RoleNone
	}
	a.list = listFor(a.role, a.resume)
	if a.list != listNone {
		d.lists[a.list] = append(d.lists[a.list], a)
	}
	d.log.Debug("role transition", "agent", a.ID(), "ordinal", a.ordinal, "from", from.String(), "to", a.role.String())
	if d.observer != nil {
		d.observer(RoleChange{Team: d.team, AgentID: a.ID(), Ordinal: a.ordinal, From: from, To: a.role, Resume: a.resume})
	}
	if a.behavior != nil {
		a.behavior.Enter()
	}
}

func (d *Dispatcher) remove(a *Agent) {
	if a.list == listNone {
		return
	}
	l := d.lists[a.list]
	for i, other := range l {
		if other == a {
			d.lists[a.list] = append(l[:i:i], l[i+1:]...)
			break
		}
	}
	a.list = listNone
}

// AssignPostCollectionRoles splits the live roster once the nodes are exhausted.
// Later calls do nothing.
func (d *Dispatcher) AssignPostCollectionRoles() {
	if d.reassigned {
		return
	}
	d.reassigned = true
	n := 0
	for _, a := range d.roster {
		if a.retired || !a.body.Alive() {
			continue
		}
		n++
		switch {
		case n == 1:
			a.SetRole(RoleMainDefender)
		case n == 2:
			a.SetRole(RoleDefender)
		case a.body.Cargo() > 0:
			a.resume = RoleForward
			a.SetRole(RoleToHeal)
		default:
			a.SetRole(RoleForward)
		}
	}
	d.log.Info("post-collection roles assigned", "agents", n)
}

// Reassigned reports whether the one-time role split has happened.
func (d *Dispatcher) Reassigned() bool { return d.reassigned }

// SelectAttackTarget returns the alive enemy base nearest to the agent's home base.
func (d *Dispatcher) SelectAttackTarget(a *Agent) Base {
	from := a.body.Position()
	if h := a.home(); h != nil {
		from = h.Position()
	}
	var enemies []Base
	for _, b := range d.field.Bases() {
		if b.Team() != d.team && b.Alive() {
			enemies = append(enemies, b)
		}
	}
	b, _ := targeting.Nearest(enemies, func(b Base) float64 { return targeting.From(from)(b.Position()) })
	return b
}

// SelectScavengeTarget returns the destroyed enemy base with payload left that is
// nearest to the agent.
func (d *Dispatcher) SelectScavengeTarget(a *Agent) Base {
	from := a.body.Position()
	var wrecks []Base
	for _, b := range d.field.Bases() {
		if b.Team() != d.team && !b.Alive() && b.Payload() > 0 {
			wrecks = append(wrecks, b)
		}
	}
	b, _ := targeting.Nearest(wrecks, func(b Base) float64 { return targeting.From(from)(b.Position()) })
	return b
}

// ComputeAttackStandoff returns the point the agent should fire on target from.
func (d *Dispatcher) ComputeAttackStandoff(a *Agent, target Base) orb.Point {
	from := a.body.Position()
	var own orb.Point
	if h := a.home(); h != nil {
		own = h.Position()
	}
	corner := targeting.ClassifyCorner(d.tuning.ReferenceCorner, own, target.Position())
	deg := targeting.Rotation(a.ordinal, corner, d.tuning.Rotations)
	return targeting.Standoff(from, target.Position(), a.body.AttackRange(), d.tuning.HealDistance, d.tuning.StandoffMargin, deg)
}

// Focus returns the shared defender target, or nil.
func (d *Dispatcher) Focus() Drone {
	if d.focus != nil && !d.focus.Alive() {
		return nil
	}
	return d.focus
}

func (d *Dispatcher) setFocus(t Drone) { d.focus = t }

// Roster returns every registered agent in registration order.
func (d *Dispatcher) Roster() []*Agent { return append([]*Agent(nil), d.roster...) }

func (d *Dispatcher) Collectors() []*Agent { return append([]*Agent(nil), d.lists[listCollectors]...) }
func (d *Dispatcher) Defenders() []*Agent  { return append([]*Agent(nil), d.lists[listDefenders]...) }
func (d *Dispatcher) Scavengers() []*Agent { return append([]*Agent(nil), d.lists[listScavengers]...) }
func (d *Dispatcher) Forwards() []*Agent   { return append([]*Agent(nil), d.lists[listForwards]...) }

// Verify checks that the role lists partition the live roster.
func (d *Dispatcher) Verify() error {
	seen := make(map[*Agent]roleList)
	for l := listCollectors; l < listCount; l++ {
		for _, a := range d.lists[l] {
			if prev, ok := seen[a]; ok {
				return fmt.Errorf("team %s: agent %d in both %s and %s", d.team, a.ordinal, prev, l)
			}
			seen[a] = l
			if a.dispatcher != d {
				return fmt.Errorf("team %s: %s list holds foreign agent %s", d.team, l, a.ID())
			}
		}
	}
	for _, a := range d.roster {
		l, filed := seen[a]
		if a.retired {
			if filed {
				return fmt.Errorf("team %s: retired agent %d still in %s", d.team, a.ordinal, l)
			}
			continue
		}
		want := listFor(a.role, a.resume)
		if want == listNone {
			if filed {
				return fmt.Errorf("team %s: agent %d with role %s filed in %s", d.team, a.ordinal, a.role, l)
			}
			continue
		}
		if !filed {
			return fmt.Errorf("team %s: agent %d with role %s in no list", d.team, a.ordinal, a.role)
		}
		if l != want || a.list != l {
			return fmt.Errorf("team %s: agent %d with role %s filed in %s, want %s", d.team, a.ordinal, a.role, l, want)
		}
	}
	return nil
}
