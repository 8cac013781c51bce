package hnsw

import "math"

// Selector turns a candidate queue into a bounded neighbor set during
// insertion and repair,. The policy is fixed once at
// construction from (heuristic, extend_candidates, keep_pruned_connections),
// mirroring the Rust SelectNeighbors enum this package is ported from.
type Selector struct {
	policy SelectorPolicy
}

// NewSelector builds the selector implied by the given policy flags.
func NewSelector(p SelectorPolicy) *Selector {
	return &Selector{policy: p}
}

// neighborLookup resolves an ElementId's neighbor set in a layer and its
// vector in the element table; the engine supplies both so the selector
// never owns index state directly.
type neighborLookup struct {
	layer    *LayerGraph
	vector   func(ElementId) ([]float64, bool)
	distance Distance
}

// Select reduces candidates c to at most mMax neighbor ids for the
// element qId/qVec being linked into layer.
func (s *Selector) Select(lk neighborLookup, qId ElementId, qVec []float64, c *DoublePriorityQueue, mMax uint16) []ElementId {
	if !s.policy.Heuristic {
		return simple(c, mMax)
	}
	if s.policy.ExtendCandidates {
		extend(lk, qId, qVec, c)
	}
	if s.policy.KeepPrunedConnections {
		return heuristicKeep(c, mMax)
	}
	return heuristic(c, mMax)
}

// simple takes the mMax smallest-distance candidates from c.
func simple(c *DoublePriorityQueue, mMax uint16) []ElementId {
	out := make([]ElementId, 0, mMax)
	for uint16(len(out)) < mMax {
		id, _, ok := c.PopFirst()
		if !ok {
			break
		}
		out = append(out, id)
	}
	return out
}

// heuristic pops candidates in ascending distance order, keeping one
// only when it is strictly closer than the closest candidate kept so
// far — i.e. the very first popped candidate is always kept, and each
// subsequent keep must beat it. This forms a strictly descending
// acceptance threshold rather than an ordinary top-m_max cut.
func heuristic(c *DoublePriorityQueue, mMax uint16) []ElementId {
	out := make([]ElementId, 0, mMax)
	closest := math.MaxFloat64
	for {
		id, d, ok := c.PopFirst()
		if !ok {
			break
		}
		if d < closest {
			out = append(out, id)
			closest = d
			if uint16(len(out)) >= mMax {
				break
			}
		}
	}
	return out
}

// heuristicKeep is heuristic, but remembers rejected ids in the order
// seen and, if the selection ended short of mMax, fills the remaining
// slots from the front of the rejected list.
func heuristicKeep(c *DoublePriorityQueue, mMax uint16) []ElementId {
	out := make([]ElementId, 0, mMax)
	var rejected []ElementId
	closest := math.MaxFloat64
	for {
		id, d, ok := c.PopFirst()
		if !ok {
			break
		}
		if d < closest {
			out = append(out, id)
			closest = d
			if uint16(len(out)) >= mMax {
				break
			}
		} else {
			rejected = append(rejected, id)
		}
	}
	remaining := int(mMax) - len(out)
	if remaining > len(rejected) {
		remaining = len(rejected)
	}
	if remaining > 0 {
		out = append(out, rejected[:remaining]...)
	}
	return out
}

// extend walks every candidate's neighbors in the layer, computes their
// distance to q, and pushes the previously-unseen ones (other than qId
// itself) onto c before the heuristic pass runs.
func extend(lk neighborLookup, qId ElementId, qVec []float64, c *DoublePriorityQueue) {
	seen := make(map[ElementId]struct{})
	for _, item := range c.Iter() {
		seen[item.Id] = struct{}{}
	}

	type ext struct {
		id   ElementId
		dist float64
	}
	var additions []ext
	for _, item := range c.Iter() {
		neighbors, ok := lk.layer.GetEdges(item.Id)
		if !ok {
			continue
		}
		for _, adj := range neighbors {
			if adj == qId {
				continue
			}
			if _, already := seen[adj]; already {
				continue
			}
			seen[adj] = struct{}{}
			if pt, ok := lk.vector(adj); ok {
				additions = append(additions, ext{id: adj, dist: dist(lk.distance, qVec, pt)})
			}
		}
	}
	for _, a := range additions {
		c.Push(a.dist, a.id)
	}
}
