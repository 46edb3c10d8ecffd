package targeting

import "github.com/paulmach/orb"

// NodeView is what the node assignment heuristic needs to know about one resource node.
type NodeView struct {
	Pos      orb.Point
	Payload  float64
	Assigned int // teammates currently heading to the node
}

// FirstNode returns the index of the node at rank ordinal (1-based) when nodes are sorted by
// distance from from. Ordinals past the node count wrap around.
func FirstNode(from orb.Point, nodes []orb.Point, ordinal int) (int, bool) {
	if len(nodes) == 0 {
		return 0, false
	}
	if ordinal < 1 {
		ordinal = 1
	}
	ranked := Rank(nodes, From(from))
	return ranked[(ordinal-1)%len(ranked)], true
}

// NextNode scans nodes in ascending distance from ref and returns the first non-empty one
// that has fewer than maxPerNode teammates assigned. The cap is ignored when only one
// non-empty node is left. It returns false when every node is empty.
func NextNode(ref orb.Point, nodes []NodeView, maxPerNode int) (int, bool) {
	nonEmpty := 0
	for _, n := range nodes {
		if n.Payload > 0 {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return 0, false
	}
	ranked := Rank(nodes, func(n NodeView) float64 { return From(ref)(n.Pos) })
	for _, i := range ranked {
		n := nodes[i]
		if n.Payload <= 0 {
			continue
		}
		if nonEmpty == 1 || n.Assigned < maxPerNode {
			return i, true
		}
	}
	return 0, false
}
