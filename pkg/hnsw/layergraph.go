package hnsw

// LayerGraph is the undirected proximity graph at one HNSW layer,
// degree-capped at mMax. Adjacency is stored by
// ElementId rather than by reference, so deletion never chases
// pointers (design note "cyclic graph of vectors").
type LayerGraph struct {
	mMax  uint16
	edges map[ElementId]map[ElementId]struct{}
}

// NewLayerGraph returns an empty layer with the given degree cap.
func NewLayerGraph(mMax uint16) *LayerGraph {
	return &LayerGraph{mMax: mMax, edges: make(map[ElementId]map[ElementId]struct{})}
}

// AddEmptyNode inserts id with no edges if absent. Returns whether it
// was newly inserted.
func (g *LayerGraph) AddEmptyNode(id ElementId) bool {
	if _, ok := g.edges[id]; ok {
		return false
	}
	g.edges[id] = make(map[ElementId]struct{})
	return true
}

// AddNode inserts id with the given neighbor set, symmetrically
// wiring id into each neighbor's set. Returns the attached neighbor
// set, or nil+false if id already existed. The caller must have
// already enforced len(neighbors) <= mMax.
func (g *LayerGraph) AddNode(id ElementId, neighbors []ElementId) ([]ElementId, bool) {
	if _, ok := g.edges[id]; ok {
		return nil, false
	}
	set := make(map[ElementId]struct{}, len(neighbors))
	for _, n := range neighbors {
		set[n] = struct{}{}
		if g.edges[n] == nil {
			g.edges[n] = make(map[ElementId]struct{})
		}
		g.edges[n][id] = struct{}{}
	}
	g.edges[id] = set
	return neighbors, true
}

// SetNode replaces id's edge set, symmetrically removing id from prior
// neighbors no longer present and inserting it into new ones. All
// symmetric updates happen inside this single call; no partial state
// is ever observable between calls.
func (g *LayerGraph) SetNode(id ElementId, neighbors []ElementId) {
	old := g.edges[id]
	newSet := make(map[ElementId]struct{}, len(neighbors))
	for _, n := range neighbors {
		newSet[n] = struct{}{}
	}

	for n := range old {
		if _, keep := newSet[n]; !keep {
			if peer := g.edges[n]; peer != nil {
				delete(peer, id)
			}
		}
	}
	for n := range newSet {
		if _, had := old[n]; !had {
			if g.edges[n] == nil {
				g.edges[n] = make(map[ElementId]struct{})
			}
			g.edges[n][id] = struct{}{}
		}
	}
	g.edges[id] = newSet
}

// RemoveNode deletes id, symmetrically dropping it from its neighbors'
// sets, and returns id's former neighbors (nil+false if id was absent).
func (g *LayerGraph) RemoveNode(id ElementId) ([]ElementId, bool) {
	set, ok := g.edges[id]
	if !ok {
		return nil, false
	}
	former := make([]ElementId, 0, len(set))
	for n := range set {
		former = append(former, n)
		if peer := g.edges[n]; peer != nil {
			delete(peer, id)
		}
	}
	delete(g.edges, id)
	return former, true
}

// GetEdges returns id's current neighbor set, or nil+false if absent.
func (g *LayerGraph) GetEdges(id ElementId) ([]ElementId, bool) {
	set, ok := g.edges[id]
	if !ok {
		return nil, false
	}
	out := make([]ElementId, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	return out, true
}

// Degree reports how many neighbors id currently has.
func (g *LayerGraph) Degree(id ElementId) int {
	return len(g.edges[id])
}

// Len reports the number of nodes present in the layer.
func (g *LayerGraph) Len() int { return len(g.edges) }

// Nodes calls fn for every (id, neighbor-set) pair in the layer.
func (g *LayerGraph) Nodes(fn func(id ElementId, neighbors map[ElementId]struct{})) {
	for id, set := range g.edges {
		fn(id, set)
	}
}

// Has reports whether id is present in the layer.
func (g *LayerGraph) Has(id ElementId) bool {
	_, ok := g.edges[id]
	return ok
}
