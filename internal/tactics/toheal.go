package tactics

import "github.com/paulmach/orb"

// ToHeal returns home, unloads, waits out the heal and resumes the remembered role.
type ToHeal struct {
	idle
	a *Agent
}

func (h *ToHeal) Role() Role { return RoleToHeal }

func (h *ToHeal) OnHeartbeat() { h.a.goHome() }

func (h *ToHeal) OnWakeUp() { h.a.goHome() }

func (h *ToHeal) OnArrivedAtNode(Node) { h.a.goHome() }

func (h *ToHeal) OnArrivedAtPoint(orb.Point) { h.a.goHome() }

func (h *ToHeal) OnArrivedAtBase(b Base) {
	a := h.a
	if !sameEntity(b, a.home()) {
		a.goHome()
		return
	}
	if a.body.Cargo() > 0 {
		a.body.UnloadTo(b)
		return
	}
	h.resume()
}

func (h *ToHeal) OnUnloadComplete() { h.resume() }

// resume restores the remembered role once the drone has healed above its threshold.
func (h *ToHeal) resume() {
	a := h.a
	if a.healthLow() {
		a.body.Stop()
		return
	}
	role := a.resume
	if role == RoleNone || role == RoleToHeal {
		role = RoleForward
	}
	if role == RoleForward {
		a.attackTarget = a.dispatcher.SelectAttackTarget(a)
		a.clearStandoff()
		if a.attackTarget != nil {
			a.setStandoff(a.attackTarget, a.dispatcher.ComputeAttackStandoff(a, a.attackTarget))
		}
	}
	a.resume = RoleNone
	a.SetRole(role)
}
