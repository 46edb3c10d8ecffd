// Geometric targeting heuristics shared by all drone roles
package targeting

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Rank returns the indexes of items ordered by ascending dist. Ties keep input order.
func Rank[T any](items []T, dist func(T) float64) []int {
	idx := make([]int, len(items))
	d := make([]float64, len(items))
	for i, it := range items {
		idx[i] = i
		d[i] = dist(it)
	}
	sort.SliceStable(idx, func(a, b int) bool { return d[idx[a]] < d[idx[b]] })
	return idx
}

// Nearest returns the first item in Rank order, or false when items is empty.
func Nearest[T any](items []T, dist func(T) float64) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[Rank(items, dist)[0]], true
}

// From returns a distance function measuring from p.
func From(p orb.Point) func(orb.Point) float64 {
	return func(q orb.Point) float64 { return planar.Distance(p, q) }
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b orb.Point) orb.Point {
	return orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
}

// Waypoints returns the route from -> target. Targets closer than direct are reached in
// one leg, anything further gets a single midpoint waypoint in front of the target.
func Waypoints(from, target orb.Point, direct float64) []orb.Point {
	if planar.Distance(from, target) < direct {
		return []orb.Point{target}
	}
	return []orb.Point{Midpoint(from, target), target}
}

// EdgePoint backs off from target towards from by transfer*convergence, so a drone stops
// just inside the cargo transfer range instead of on top of the node.
func EdgePoint(from, target orb.Point, transfer, convergence float64) orb.Point {
	dx, dy := target[0]-from[0], target[1]-from[1]
	dist := math.Hypot(dx, dy)
	back := transfer * convergence
	if dist <= back || dist == 0 {
		return from
	}
	k := (dist - back) / dist
	return orb.Point{from[0] + dx*k, from[1] + dy*k}
}

// Rotate turns v counter-clockwise by deg degrees.
func Rotate(v orb.Point, deg float64) orb.Point {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return orb.Point{v[0]*cos - v[1]*sin, v[0]*sin + v[1]*cos}
}
