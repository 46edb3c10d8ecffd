package targeting

import (
	"math"

	"github.com/paulmach/orb"
)

// cornerEpsilon absorbs float noise when matching base coordinates against the reference corner.
const cornerEpsilon = 1e-6

// Corner describes where the attacker's own base and the target base sit relative to the
// field's reference corner. OwnOnCornerRow compares the own base's Y with the corner, while
// TargetOnCornerColumn compares the target base's X with the corner.
type Corner struct {
	OwnOnCornerRow       bool
	TargetOnCornerColumn bool
}

// ClassifyCorner builds the Corner lookup key for an own/target base pair.
func ClassifyCorner(ref, own, target orb.Point) Corner {
	return Corner{
		OwnOnCornerRow:       math.Abs(own[1]-ref[1]) < cornerEpsilon,
		TargetOnCornerColumn: math.Abs(target[0]-ref[0]) < cornerEpsilon,
	}
}

// cornerSign is the rotation direction table. +1 is counter-clockwise.
var cornerSign = map[Corner]float64{
	{OwnOnCornerRow: true, TargetOnCornerColumn: true}:   -1,
	{OwnOnCornerRow: true, TargetOnCornerColumn: false}:  +1,
	{OwnOnCornerRow: false, TargetOnCornerColumn: true}:  +1,
	{OwnOnCornerRow: false, TargetOnCornerColumn: false}: -1,
}

// Sign returns the rotation direction for the corner configuration.
func (c Corner) Sign() float64 { return cornerSign[c] }

// Rotation returns the stand-off rotation in degrees for a drone ordinal. Ordinal 3 flies
// straight at the target, ordinal 4 is offset by rotations[0] and every other ordinal by
// rotations[1], turned according to the corner rule.
func Rotation(ordinal int, c Corner, rotations [2]float64) float64 {
	var mag float64
	switch ordinal {
	case 3:
		return 0
	case 4:
		mag = rotations[0]
	default:
		mag = rotations[1]
	}
	return c.Sign() * mag
}

// Standoff projects a firing position on the line from -> target, rotated by deg around from.
// The drone ends attackRange short of the target. When the weapon outranges the heal aura
// the point is pulled further in by healDistance+margin, then kept between the aura edge
// and the weapon range along its bearing from the target.
func Standoff(from, target orb.Point, attackRange, healDistance, margin, deg float64) orb.Point {
	vx, vy := target[0]-from[0], target[1]-from[1]
	dist := math.Hypot(vx, vy)
	if dist == 0 {
		return from
	}
	reach := dist - attackRange
	if reach < dist-healDistance {
		reach += healDistance + margin
	}
	k := reach / dist
	v := Rotate(orb.Point{vx * k, vy * k}, deg)
	p := orb.Point{from[0] + v[0], from[1] + v[1]}
	if healDistance >= attackRange {
		return p
	}
	return clampRing(p, target, healDistance, attackRange)
}

// clampRing moves p along its bearing from center so that its distance lies strictly
// inside (inner, outer).
func clampRing(p, center orb.Point, inner, outer float64) orb.Point {
	pad := math.Min(1, (outer-inner)/4)
	lo, hi := inner+pad, outer-pad
	dx, dy := p[0]-center[0], p[1]-center[1]
	d := math.Hypot(dx, dy)
	if d >= lo && d <= hi {
		return p
	}
	if d == 0 {
		// p sits on the center, push it out along +x.
		dx, dy, d = 1, 0, 1
	}
	r := math.Max(lo, math.Min(hi, d))
	return orb.Point{center[0] + dx/d*r, center[1] + dy/d*r}
}

// Axis selects the offset direction of a defensive station.
type Axis int

const (
	AxisY Axis = iota
	AxisX
)

// Station returns the point dist away from base along axis. When that lands beyond the far
// edge of the field the opposite offset is used.
func Station(base orb.Point, axis Axis, dist, width, height float64) orb.Point {
	switch axis {
	case AxisX:
		p := orb.Point{base[0] + dist, base[1]}
		if p[0] > width {
			p[0] = base[0] - dist
		}
		return p
	default:
		p := orb.Point{base[0], base[1] + dist}
		if p[1] > height {
			p[1] = base[1] - dist
		}
		return p
	}
}
