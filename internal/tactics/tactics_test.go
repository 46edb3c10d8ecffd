package tactics

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

func TestRegisterAssignsOrdinals(t *testing.T) {
	f := newCornerField()
	reg := NewRegistry(f, DefaultTuning(), nil)
	a1, _ := spawn(reg, f, "red", "r1")
	a2, _ := spawn(reg, f, "red", "r2")
	b1, _ := spawn(reg, f, "blue", "b1")

	if a1.Ordinal() != 1 || a2.Ordinal() != 2 || b1.Ordinal() != 1 {
		t.Fatalf("unexpected ordinals %d %d %d", a1.Ordinal(), a2.Ordinal(), b1.Ordinal())
	}
	if a1.Role() != RoleCollector {
		t.Fatalf("expected collector after birth, got %s", a1.Role())
	}
	a1.OnBorn()
	if a1.Ordinal() != 1 || len(reg.Dispatcher("red").Roster()) != 2 {
		t.Fatalf("second birth must not re-register")
	}
	ds := reg.Dispatchers()
	if len(ds) != 2 || ds[0].Team() != "red" || ds[1].Team() != "blue" {
		t.Fatalf("dispatchers not in creation order")
	}
	if err := reg.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestThresholdDrawnInRange(t *testing.T) {
	f := newCornerField()
	tun := DefaultTuning()
	reg := NewRegistry(f, tun, nil)
	for i := 0; i < 50; i++ {
		a, _ := spawn(reg, f, "red", fmt.Sprintf("r%d", i))
		if a.Threshold() < tun.ThresholdMin || a.Threshold() >= tun.ThresholdMax {
			t.Fatalf("threshold %f out of range", a.Threshold())
		}
	}
}

func TestEventsBeforeBirthIgnored(t *testing.T) {
	f := newCornerField()
	reg := NewRegistry(f, DefaultTuning(), nil)
	body := &fakeBody{fakeDrone: fakeDrone{id: "r1", team: "red", health: 1}, home: f.BaseOf("red")}
	a := NewAgent(body, reg, rand.New(rand.NewSource(1)))
	a.OnHeartbeat()
	a.OnArrivedAtPoint(orb.Point{1, 1})
	a.SetRole(RoleForward)
	if a.Role() != RoleNone || len(body.moves) != 0 {
		t.Fatalf("unborn agent reacted to events")
	}
}

func TestAssignPostCollectionRoles(t *testing.T) {
	for n := 1; n <= 6; n++ {
		f := newCornerField()
		reg := NewRegistry(f, DefaultTuning(), nil)
		var changes []RoleChange
		reg.SetObserver(func(c RoleChange) { changes = append(changes, c) })
		for i := 0; i < n; i++ {
			_, body := spawn(reg, f, "red", fmt.Sprintf("r%d", i))
			if i%2 == 0 {
				body.cargo = 10
			}
		}
		d := reg.Dispatcher("red")
		d.AssignPostCollectionRoles()

		count := map[Role]int{}
		for _, a := range d.Roster() {
			count[a.Role()]++
		}
		wantMain, wantDef := 1, 0
		if n >= 2 {
			wantDef = 1
		}
		if count[RoleMainDefender] != wantMain || count[RoleDefender] != wantDef {
			t.Fatalf("n=%d: main=%d defender=%d", n, count[RoleMainDefender], count[RoleDefender])
		}
		if count[RoleForward]+count[RoleToHeal] != n-wantMain-wantDef {
			t.Fatalf("n=%d: attackers=%d", n, count[RoleForward]+count[RoleToHeal])
		}
		for _, a := range d.Roster() {
			if a.Role() == RoleToHeal && a.ResumeRole() != RoleForward {
				t.Fatalf("healing agent %d resumes %s", a.Ordinal(), a.ResumeRole())
			}
			if a.Ordinal() > 2 && (a.Role() == RoleToHeal) != (a.Body().Cargo() > 0) {
				t.Fatalf("agent %d with cargo %f got %s", a.Ordinal(), a.Body().Cargo(), a.Role())
			}
		}
		if err := d.Verify(); err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		listed := len(d.Collectors()) + len(d.Defenders()) + len(d.Scavengers()) + len(d.Forwards())
		if listed != n || len(d.Collectors()) != 0 {
			t.Fatalf("n=%d: lists hold %d agents, %d collectors", n, listed, len(d.Collectors()))
		}
		if len(changes) != 2*n {
			t.Fatalf("n=%d: expected %d role changes, got %d", n, 2*n, len(changes))
		}

		d.AssignPostCollectionRoles()
		if len(changes) != 2*n {
			t.Fatalf("n=%d: second assignment changed roles", n)
		}
	}
}

func TestAssignSkipsDeadAgents(t *testing.T) {
	f := newCornerField()
	reg := NewRegistry(f, DefaultTuning(), nil)
	a1, b1 := spawn(reg, f, "red", "r1")
	a2, _ := spawn(reg, f, "red", "r2")
	a3, _ := spawn(reg, f, "red", "r3")
	b1.health = 0
	d := reg.Dispatcher("red")
	d.Retire(a1)
	d.AssignPostCollectionRoles()
	if a1.Role() != RoleCollector || a2.Role() != RoleMainDefender || a3.Role() != RoleDefender {
		t.Fatalf("unexpected roles %s %s %s", a1.Role(), a2.Role(), a3.Role())
	}
	if err := d.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerifyDetectsMisfiledAgent(t *testing.T) {
	f := newCornerField()
	reg := NewRegistry(f, DefaultTuning(), nil)
	a, _ := spawn(reg, f, "red", "r1")
	d := reg.Dispatcher("red")
	d.lists[listForwards] = append(d.lists[listForwards], a)
	if err := d.Verify(); err == nil {
		t.Fatalf("expected error for agent in two lists")
	}
	d.lists[listForwards] = nil
	d.lists[listCollectors] = nil
	if err := d.Verify(); err == nil {
		t.Fatalf("expected error for agent in no list")
	}
}

func randomBases(rng *rand.Rand, n int) []Base {
	bases := []Base{&fakeBase{id: "home", team: "red", pos: orb.Point{rng.Float64() * 1200, rng.Float64() * 800}, health: 1}}
	for i := 0; i < n; i++ {
		b := &fakeBase{
			id:   fmt.Sprintf("b%d", i),
			team: fmt.Sprintf("t%d", i),
			pos:  orb.Point{rng.Float64() * 1200, rng.Float64() * 800},
		}
		if rng.Intn(2) == 0 {
			b.health = 1
		}
		if rng.Intn(2) == 0 {
			b.payload = 10
		}
		bases = append(bases, b)
	}
	return bases
}

func TestSelectTargetsMatchBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		f := &fakeField{width: 1200, height: 800, bases: randomBases(rng, rng.Intn(6))}
		reg := NewRegistry(f, DefaultTuning(), nil)
		a, body := spawn(reg, f, "red", "r1")
		body.pos = orb.Point{rng.Float64() * 1200, rng.Float64() * 800}
		d := reg.Dispatcher("red")
		home := f.BaseOf("red")

		var wantAttack, wantScav Base
		bestA, bestS := -1.0, -1.0
		for _, b := range f.bases {
			if b.Team() == "red" {
				continue
			}
			if b.Alive() {
				dist := planar.Distance(home.Position(), b.Position())
				if bestA < 0 || dist < bestA {
					bestA, wantAttack = dist, b
				}
			} else if b.Payload() > 0 {
				dist := planar.Distance(body.pos, b.Position())
				if bestS < 0 || dist < bestS {
					bestS, wantScav = dist, b
				}
			}
		}

		gotAttack := d.SelectAttackTarget(a)
		if (gotAttack == nil) != (wantAttack == nil) || (gotAttack != nil && gotAttack.ID() != wantAttack.ID()) {
			t.Fatalf("iter %d: attack target %v, want %v", iter, gotAttack, wantAttack)
		}
		if again := d.SelectAttackTarget(a); again != gotAttack {
			t.Fatalf("iter %d: attack selection not idempotent", iter)
		}
		gotScav := d.SelectScavengeTarget(a)
		if (gotScav == nil) != (wantScav == nil) || (gotScav != nil && gotScav.ID() != wantScav.ID()) {
			t.Fatalf("iter %d: scavenge target %v, want %v", iter, gotScav, wantScav)
		}
		if again := d.SelectScavengeTarget(a); again != gotScav {
			t.Fatalf("iter %d: scavenge selection not idempotent", iter)
		}
	}
}

func TestCollectorCapIgnoredOnLastNode(t *testing.T) {
	f := newCornerField()
	node := &fakeNode{id: "n1", pos: orb.Point{600, 400}, payload: 50}
	f.nodes = []Node{node, &fakeNode{id: "n2", pos: orb.Point{300, 300}}, &fakeNode{id: "n3", pos: orb.Point{900, 500}}}
	reg := NewRegistry(f, DefaultTuning(), nil)
	a1, _ := spawn(reg, f, "red", "r1")
	a2, _ := spawn(reg, f, "red", "r2")
	a3, _ := spawn(reg, f, "red", "r3")
	a1.target, a2.target = node, node

	got := a3.behavior.(*Collector).nextTarget()
	if got == nil || got.ID() != "n1" {
		t.Fatalf("third collector should still target the last node, got %v", got)
	}
}

func TestCollectorSkipsCappedNode(t *testing.T) {
	f := newCornerField()
	near := &fakeNode{id: "near", pos: orb.Point{300, 300}, payload: 20}
	far := &fakeNode{id: "far", pos: orb.Point{600, 400}, payload: 20}
	f.nodes = []Node{near, far}
	reg := NewRegistry(f, DefaultTuning(), nil)
	a1, _ := spawn(reg, f, "red", "r1")
	a2, _ := spawn(reg, f, "red", "r2")
	a3, _ := spawn(reg, f, "red", "r3")
	a1.target, a2.target = near, near
	a3.lastNode = nil

	got := a3.behavior.(*Collector).nextTarget()
	if got == nil || got.ID() != "far" {
		t.Fatalf("expected capped node to be skipped, got %v", got)
	}

	near.payload, far.payload = 0, 0
	if got := a3.behavior.(*Collector).nextTarget(); got == nil || got.ID() != "base-red" {
		t.Fatalf("expected home base when nodes are empty, got %v", got)
	}
}

func TestCollectorFirstTargetsSpread(t *testing.T) {
	f := newCornerField()
	for i := 0; i < 5; i++ {
		f.nodes = append(f.nodes, &fakeNode{id: fmt.Sprintf("n%d", i), pos: orb.Point{200 + float64(i)*150, 300}, payload: 10})
	}
	reg := NewRegistry(f, DefaultTuning(), nil)
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		a, body := spawn(reg, f, "red", fmt.Sprintf("r%d", i))
		id := a.Target().ID()
		if seen[id] {
			t.Fatalf("two collectors picked %s first", id)
		}
		seen[id] = true
		if len(body.moves) != 1 {
			t.Fatalf("expected one move on birth, got %d", len(body.moves))
		}
		if d := planar.Distance(body.moves[0], a.Target().Position()); d > DefaultTuning().TransferDistance {
			t.Fatalf("approach point %f away from node", d)
		}
	}
}

func TestCollectorNodeArrival(t *testing.T) {
	f := newCornerField()
	n1 := &fakeNode{id: "n1", pos: orb.Point{300, 300}, payload: 80}
	n2 := &fakeNode{id: "n2", pos: orb.Point{500, 300}, payload: 10}
	f.nodes = []Node{n1, n2}
	reg := NewRegistry(f, DefaultTuning(), nil)
	a, body := spawn(reg, f, "red", "r1")
	body.cargo = 50

	a.OnArrivedAtNode(n1)
	if len(body.loads) != 1 || body.loads[0] != Source(n1) {
		t.Fatalf("expected a load from n1, got %v", body.loads)
	}
	if last := body.turns[len(body.turns)-1]; last != f.BaseOf("red").Position() {
		t.Fatalf("over capacity should face home, got %v", last)
	}

	body.cargo = 100
	a.OnLoadComplete()
	if a.Target().ID() != "base-red" {
		t.Fatalf("full collector should head home, got %s", a.Target().ID())
	}

	n1.payload, n2.payload = 0, 0
	a.OnArrivedAtNode(n1)
	if len(body.loads) != 1 || a.Target().ID() != "base-red" {
		t.Fatalf("empty field should send collector home without loading")
	}
}

func TestCollectorReportedAtEmptyNodeLoadsTarget(t *testing.T) {
	f := newCornerField()
	target := &fakeNode{id: "target", pos: orb.Point{400, 300}, payload: 80}
	stale := &fakeNode{id: "stale", pos: orb.Point{357.5, 300}}
	f.nodes = []Node{target, stale}
	reg := NewRegistry(f, DefaultTuning(), nil)
	a, body := spawn(reg, f, "red", "r1")
	a.target = target
	body.pos = orb.Point{305, 300}

	a.OnArrivedAtNode(stale)
	if len(body.loads) != 1 || body.loads[0] != Source(target) {
		t.Fatalf("expected a load from the target in range, got %v", body.loads)
	}

	body.loads = nil
	body.pos = orb.Point{150, 300}
	moves := len(body.moves)
	a.OnArrivedAtNode(stale)
	if len(body.loads) != 0 {
		t.Fatalf("empty node out of target range must not be loaded, got %v", body.loads)
	}
	if len(body.moves) != moves+1 || a.Target().ID() != "target" {
		t.Fatalf("expected a move towards the target, target %v", a.Target())
	}
}

func TestCollectorUnloadUsesMidpoint(t *testing.T) {
	f := newCornerField()
	far := &fakeNode{id: "far", pos: orb.Point{900, 600}, payload: 10}
	f.nodes = []Node{far}
	reg := NewRegistry(f, DefaultTuning(), nil)
	a, body := spawn(reg, f, "red", "r1")

	a.OnArrivedAtBase(f.BaseOf("red"))
	if len(body.unloads) != 1 {
		t.Fatalf("expected unload at home")
	}
	a.OnUnloadComplete()
	mv, _ := body.lastMove()
	want := orb.Point{(90 + 900) / 2.0, (90 + 600) / 2.0}
	if planar.Distance(mv, want) > 1e-9 {
		t.Fatalf("expected midpoint %v, got %v", want, mv)
	}
}

func TestCollectorHeartbeatTriggersReassignment(t *testing.T) {
	f := newCornerField()
	node := &fakeNode{id: "n1", pos: orb.Point{300, 300}, payload: 10}
	f.nodes = []Node{node}
	reg := NewRegistry(f, DefaultTuning(), nil)
	a1, _ := spawn(reg, f, "red", "r1")
	a2, _ := spawn(reg, f, "red", "r2")

	a1.OnHeartbeat()
	if a1.Role() != RoleCollector {
		t.Fatalf("roles changed while nodes hold payload")
	}
	node.payload = 0
	a1.OnHeartbeat()
	if a1.Role() != RoleMainDefender || a2.Role() != RoleDefender {
		t.Fatalf("unexpected roles %s %s", a1.Role(), a2.Role())
	}
}

func TestToHealRoundTripFromForward(t *testing.T) {
	f := newCornerField()
	reg := NewRegistry(f, DefaultTuning(), nil)
	a, body := spawn(reg, f, "red", "r1")
	d := reg.Dispatcher("red")
	home := f.BaseOf("red")
	blue := f.BaseOf("blue")

	a.SetRole(RoleForward)
	stale := orb.Point{1, 1}
	a.attackTarget = blue
	a.setStandoff(blue, stale)
	a.armed = true
	body.cargo = 30
	body.health = 0.2

	a.OnHeartbeat()
	if a.Role() != RoleToHeal || a.ResumeRole() != RoleForward {
		t.Fatalf("expected retreat, got %s resume %s", a.Role(), a.ResumeRole())
	}
	if len(d.Forwards()) != 1 {
		t.Fatalf("healing forward should stay in the forwards list")
	}

	a.OnArrivedAtBase(home)
	if len(body.unloads) != 1 || a.Role() != RoleToHeal {
		t.Fatalf("expected unload before resuming")
	}

	body.cargo = 0
	body.health = 1
	body.pos = orb.Point{200, 150}
	a.OnUnloadComplete()
	if a.Role() != RoleForward {
		t.Fatalf("expected forward after unload, got %s", a.Role())
	}
	got, ok := a.Standoff()
	if !ok || got == stale {
		t.Fatalf("stand-off was not recomputed: %v", got)
	}
	if want := d.ComputeAttackStandoff(a, a.AttackTarget()); got != want {
		t.Fatalf("stand-off %v, want %v", got, want)
	}
	if err := d.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestToHealWaitsWhileHurt(t *testing.T) {
	f := newCornerField()
	reg := NewRegistry(f, DefaultTuning(), nil)
	a, body := spawn(reg, f, "red", "r1")
	a.SetRole(RoleScavenger)
	body.health = 0.1
	a.OnHeartbeat()
	if a.Role() != RoleToHeal {
		t.Fatalf("expected retreat, got %s", a.Role())
	}
	a.OnArrivedAtBase(f.BaseOf("red"))
	if a.Role() != RoleToHeal || body.stops == 0 {
		t.Fatalf("hurt drone should wait at base")
	}
	body.health = 1
	a.OnArrivedAtBase(f.BaseOf("red"))
	if a.Role() != RoleScavenger {
		t.Fatalf("expected scavenger after healing, got %s", a.Role())
	}
}

func TestForwardLethalShotSwitchesToScavenger(t *testing.T) {
	f := newCornerField()
	reg := NewRegistry(f, DefaultTuning(), nil)
	a, body := spawn(reg, f, "red", "r1")
	target := f.BaseOf("blue").(*fakeBase)
	target.health = 0.05
	target.payload = 40

	a.SetRole(RoleForward)
	a.attackTarget = target
	a.armed = true
	body.health = 1

	a.OnHeartbeat()
	if len(body.fires) != 1 {
		t.Fatalf("expected one shot, got %d", len(body.fires))
	}
	if a.Role() != RoleScavenger {
		t.Fatalf("expected scavenger on the lethal tick, got %s", a.Role())
	}
	if a.ScavengeTarget() == nil || a.ScavengeTarget().ID() != target.ID() {
		t.Fatalf("scavenge target %v, want %s", a.ScavengeTarget(), target.ID())
	}
}

func TestForwardMovesToStandoffThenFires(t *testing.T) {
	f := newCornerField()
	reg := NewRegistry(f, DefaultTuning(), nil)
	a, body := spawn(reg, f, "red", "r1")
	a.SetRole(RoleForward)

	a.OnHeartbeat()
	p, ok := a.Standoff()
	if !ok || a.AttackTarget() == nil || a.AttackTarget().ID() != "base-green" {
		t.Fatalf("expected stand-off against the nearest base, got %v", a.AttackTarget())
	}
	if mv, _ := body.lastMove(); mv != p {
		t.Fatalf("expected move to %v, got %v", p, mv)
	}

	body.pos = p
	a.OnArrivedAtPoint(p)
	if !a.Armed() || len(body.fires) != 1 {
		t.Fatalf("expected armed forward to fire on arrival")
	}
}

func TestForwardStopsWithoutTargets(t *testing.T) {
	f := newCornerField()
	for _, b := range f.bases {
		if b.Team() != "red" {
			b.(*fakeBase).health = 0
		}
	}
	reg := NewRegistry(f, DefaultTuning(), nil)
	a, body := spawn(reg, f, "red", "r1")
	a.SetRole(RoleForward)
	a.OnHeartbeat()
	if body.stops != 1 || a.AttackTarget() != nil {
		t.Fatalf("forward without targets should stop")
	}
}

func TestScavengerLoadCompletion(t *testing.T) {
	f := newCornerField()
	reg := NewRegistry(f, DefaultTuning(), nil)
	a, body := spawn(reg, f, "red", "r1")
	blue := f.BaseOf("blue").(*fakeBase)
	green := f.BaseOf("green").(*fakeBase)
	blue.health, blue.payload = 0, 30
	green.health, green.payload = 0, 10

	a.SetRole(RoleScavenger)
	a.scavengeTarget = blue
	a.OnArrivedAtBase(blue)
	if len(body.loads) != 1 {
		t.Fatalf("expected load from wreck")
	}
	a.OnLoadComplete()
	if mv, _ := body.lastMove(); mv != f.BaseOf("red").Position() {
		t.Fatalf("partial load should head home, got %v", mv)
	}

	blue.payload = 0
	a.OnLoadComplete()
	if a.ScavengeTarget().ID() != "base-green" {
		t.Fatalf("expected next wreck, got %v", a.ScavengeTarget())
	}

	green.payload = 0
	a.OnLoadComplete()
	if a.Role() != RoleForward || a.AttackTarget().ID() != "base-gold" {
		t.Fatalf("expected forward against gold, got %s", a.Role())
	}
}

func TestScavengerStopsWhenNothingLeft(t *testing.T) {
	f := newCornerField()
	for _, b := range f.bases {
		if b.Team() != "red" {
			b.(*fakeBase).health = 0
		}
	}
	reg := NewRegistry(f, DefaultTuning(), nil)
	a, body := spawn(reg, f, "red", "r1")
	a.SetRole(RoleScavenger)
	a.OnLoadComplete()
	if body.stops != 1 || a.ScavengeTarget() != nil || a.Role() != RoleScavenger {
		t.Fatalf("scavenger with nothing left should stop")
	}
}

func TestDefendersShareFocus(t *testing.T) {
	f := newCornerField()
	reg := NewRegistry(f, DefaultTuning(), nil)
	main, mainBody := spawn(reg, f, "red", "r1")
	def, defBody := spawn(reg, f, "red", "r2")
	guarded := &fakeDrone{id: "g1", team: "green", pos: orb.Point{95, 705}, health: 1}
	threat := &fakeDrone{id: "b1", team: "blue", pos: orb.Point{900, 600}, health: 1}
	f.drones = append(f.drones, guarded, threat)

	d := reg.Dispatcher("red")
	d.AssignPostCollectionRoles()
	if main.Role() != RoleMainDefender || def.Role() != RoleDefender {
		t.Fatalf("unexpected roles %s %s", main.Role(), def.Role())
	}

	mainStation := main.behavior.(*MainDefender).Station()
	defStation := def.behavior.(*Defender).Station()
	if mainStation != (orb.Point{240, 90}) || defStation != (orb.Point{90, 240}) {
		t.Fatalf("unexpected stations %v %v", mainStation, defStation)
	}

	main.OnHeartbeat()
	if mv, _ := mainBody.lastMove(); mv != mainStation {
		t.Fatalf("unarmed defender should move to station")
	}
	mainBody.pos = mainStation
	main.OnArrivedAtPoint(mainStation)
	if d.Focus() == nil || d.Focus().ID() != "b1" {
		t.Fatalf("expected focus on the threat away from its base, got %v", d.Focus())
	}

	defBody.pos = defStation
	def.OnArrivedAtPoint(defStation)
	if !def.Armed() || len(defBody.fires) != 1 {
		t.Fatalf("defender should fire on arrival when a focus exists")
	}
	def.OnHeartbeat()
	if len(defBody.fires) != 1 {
		t.Fatalf("defender fired out of range")
	}

	threat.pos = orb.Point{200, 300}
	main.OnHeartbeat()
	def.OnHeartbeat()
	if len(defBody.fires) != 2 {
		t.Fatalf("defender should fire once the focus is in range")
	}

	threat.health = 0
	stops := mainBody.stops
	main.OnHeartbeat()
	if mainBody.stops != stops+1 || d.Focus() != nil {
		t.Fatalf("main defender should stop when no threat remains")
	}
}

func TestRetireClearsFocusAndLists(t *testing.T) {
	f := newCornerField()
	reg := NewRegistry(f, DefaultTuning(), nil)
	a, body := spawn(reg, f, "red", "r1")
	d := reg.Dispatcher("red")
	body.health = 0
	d.Retire(a)
	if len(d.Collectors()) != 0 || len(d.Roster()) != 1 {
		t.Fatalf("retired agent should leave lists but stay on roster")
	}
	a.OnHeartbeat()
	a.SetRole(RoleForward)
	if a.Role() != RoleCollector {
		t.Fatalf("retired agent changed role")
	}
	if err := d.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
