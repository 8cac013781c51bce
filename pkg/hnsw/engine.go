package hnsw

import (
	"fmt"
	"math"
	"math/rand"
)

// elementEntry is one stored vector. When a Quantizer is configured,
// newly inserted elements keep only the quantized encoding to save
// memory, trading exact distances for a smaller footprint — the same
// trade a quantizer-backed element store always makes.
type elementEntry struct {
	raw       []float64
	hasRaw    bool
	quantized []byte
}

// Engine is component F: the core HNSW graph over ElementId-identified
// vectors. It holds no mutex — per the single-writer/many-readers
// concurrency model, callers must serialize writers externally.
type Engine struct {
	params   HnswParams
	selector *Selector
	rng      *rand.Rand
	log      Logger

	layers        []*LayerGraph
	enterPoint    *ElementId
	elements      map[ElementId]elementEntry
	nextElementId ElementId

	quantizer Quantizer
}

// NewEngine validates params and constructs an empty graph.
func NewEngine(params HnswParams, log Logger) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = NoopLogger()
	}
	return &Engine{
		params:   params,
		selector: NewSelector(params.Selector),
		rng:      rand.New(rand.NewSource(1)),
		log:      log,
		elements: make(map[ElementId]elementEntry),
	}, nil
}

// NewEngineWithSeed is NewEngine with an explicit PRNG seed, letting
// tests and benchmarks reproduce a graph's level assignments exactly.
func NewEngineWithSeed(params HnswParams, log Logger, seed int64) (*Engine, error) {
	e, err := NewEngine(params, log)
	if err != nil {
		return nil, err
	}
	e.rng = rand.New(rand.NewSource(seed))
	return e, nil
}

// SetQuantizer installs a (pre-trained) Quantizer. Elements inserted
// afterward are stored quantized-only; elements already present keep
// their full-precision vector.
func (e *Engine) SetQuantizer(q Quantizer) { e.quantizer = q }

// Size reports the number of live elements.
func (e *Engine) Size() int { return len(e.elements) }

// requireEnterPoint reports errEmptyIndex when the graph has no entry
// point yet. KNNSearch treats this as an empty result, not a surfaced
// error.
func (e *Engine) requireEnterPoint() error {
	if e.enterPoint == nil {
		return errEmptyIndex
	}
	return nil
}

// Params returns the engine's construction parameters.
func (e *Engine) Params() HnswParams { return e.params }

// Stats summarizes a graph's shape as a typed struct.
type Stats struct {
	TotalElements     int
	MaxLevel          int
	LevelDistribution map[int]int
	AverageDegree     float64
	EnterPoint        *ElementId
}

// Stats reports the live element count, layer count, per-layer node
// counts, average layer-0 degree, and current enter point.
func (e *Engine) Stats() Stats {
	dist := make(map[int]int, len(e.layers))
	totalDegree := 0
	nodeCount := 0
	for lc, layer := range e.layers {
		dist[lc] = layer.Len()
		if lc == 0 {
			layer.Nodes(func(id ElementId, neighbors map[ElementId]struct{}) {
				totalDegree += len(neighbors)
				nodeCount++
			})
		}
	}
	avg := 0.0
	if nodeCount > 0 {
		avg = float64(totalDegree) / float64(nodeCount)
	}
	return Stats{
		TotalElements:     len(e.elements),
		MaxLevel:          len(e.layers) - 1,
		LevelDistribution: dist,
		AverageDegree:     avg,
		EnterPoint:        e.enterPoint,
	}
}

func (e *Engine) vectorFloats(id ElementId) ([]float64, bool) {
	entry, ok := e.elements[id]
	if !ok {
		return nil, false
	}
	if entry.hasRaw {
		return entry.raw, true
	}
	if e.quantizer != nil && entry.quantized != nil {
		f, err := e.quantizer.Decode(entry.quantized)
		if err == nil {
			return f, true
		}
	}
	return nil, false
}

func (e *Engine) storeElement(id ElementId, v []float64) {
	if e.quantizer != nil {
		enc, err := e.quantizer.Encode(v)
		if err == nil {
			e.elements[id] = elementEntry{quantized: enc}
			return
		}
		e.log.Warn("quantizer encode failed, storing raw vector", "element", id, "err", err)
	}
	e.elements[id] = elementEntry{raw: v, hasRaw: true}
}

// Insert draws a random level for v and links it into the graph,
// returning its assigned ElementId. v must already be dimension- and
// type-checked by the caller (component H).
func (e *Engine) Insert(v Vector) ElementId {
	level := e.randomLevel()
	return e.insertLevel(v.Floats(), level)
}

func (e *Engine) randomLevel() int {
	u := 1 - e.rng.Float64() // uniform in (0,1]
	return int(math.Floor(-math.Log(u) * e.params.Ml))
}

func (e *Engine) insertLevel(v []float64, level int) ElementId {
	qId := e.nextElementId
	existingLayers := len(e.layers)

	for l := existingLayers; l <= level; l++ {
		e.layers = append(e.layers, NewLayerGraph(e.params.mMaxForLayer(l)))
	}

	e.storeElement(qId, v)

	if e.enterPoint != nil {
		e.insertElement(qId, v, level, *e.enterPoint, existingLayers-1)
	} else {
		e.insertFirstElement(qId, level)
	}

	e.nextElementId++
	e.log.Debug("inserted element", "id", qId, "level", level)
	return qId
}

func (e *Engine) insertFirstElement(id ElementId, level int) {
	for lc := 0; lc <= level; lc++ {
		e.layers[lc].AddEmptyNode(id)
	}
	ep := id
	e.enterPoint = &ep
}

type pn struct {
	dist float64
	id   ElementId
}

func (e *Engine) getPN(q []float64, id ElementId) pn {
	pt, ok := e.vectorFloats(id)
	if !ok {
		panic(fmt.Errorf("%w: element %d", ErrElementNotFound, id))
	}
	return pn{dist: dist(e.params.Distance, pt, q), id: id}
}

func (e *Engine) lookupFor(layer *LayerGraph) neighborLookup {
	return neighborLookup{layer: layer, vector: e.vectorFloats, distance: e.params.Distance}
}

func (e *Engine) insertElement(qId ElementId, qPt []float64, qLevel int, epId ElementId, topLayerLevel int) {
	ep := e.getPN(qPt, epId)
	for lc := topLayerLevel; lc >= qLevel+1; lc-- {
		w := e.searchLayerSingle(qPt, ep, 1, e.layers[lc])
		id, d, ok := w.PeekFirst()
		if !ok {
			panic("hnsw: empty search_layer result during descent")
		}
		ep = pn{dist: d, id: id}
	}

	eps := NewDoublePriorityQueue()
	eps.Push(ep.dist, ep.id)

	top := topLayerLevel
	if qLevel < top {
		top = qLevel
	}
	for lc := top; lc >= 0; lc-- {
		mMax := e.params.mMaxForLayer(lc)
		layer := e.layers[lc]

		w := e.searchLayerMulti(qPt, eps, int(e.params.EfConstruction), layer)
		eps = w.Clone()

		neighbors := e.selector.Select(e.lookupFor(layer), qId, qPt, w, mMax)

		attached, ok := layer.AddNode(qId, neighbors)
		if !ok {
			panic(fmt.Sprintf("hnsw: add_node: element %d already present in layer", qId))
		}

		for _, nId := range attached {
			if layer.Degree(nId) > int(mMax) {
				edges, ok := layer.GetEdges(nId)
				if !ok {
					panic(fmt.Sprintf("hnsw: missing edges for element %d", nId))
				}
				nPt, ok := e.vectorFloats(nId)
				if !ok {
					panic(fmt.Errorf("%w: element %d", ErrElementNotFound, nId))
				}
				nC := e.buildPriorityList(nPt, edges)
				connNeighbors := e.selector.Select(e.lookupFor(layer), nId, nPt, nC, mMax)
				layer.SetNode(nId, connNeighbors)
			}
		}
	}

	for lc := topLayerLevel + 1; lc <= qLevel; lc++ {
		if !e.layers[lc].AddEmptyNode(qId) {
			panic(fmt.Sprintf("hnsw: element %d already present while topping layers", qId))
		}
	}

	if qLevel > topLayerLevel {
		id := qId
		e.enterPoint = &id
	}
}

func (e *Engine) buildPriorityList(ePt []float64, neighbors []ElementId) *DoublePriorityQueue {
	w := NewDoublePriorityQueue()
	for _, nId := range neighbors {
		if nPt, ok := e.vectorFloats(nId); ok {
			w.Push(dist(e.params.Distance, ePt, nPt), nId)
		}
	}
	return w
}

// Delete removes e_id, rewiring every layer it participated in, and
// reassigns the enter point if necessary. Deleting an unknown id is a
// silent no-op.
func (e *Engine) Delete(eId ElementId) bool {
	ePt, ok := e.vectorFloats(eId)
	if !ok {
		return false
	}

	removed := false
	layersCount := len(e.layers)
	var newEnterPoint *ElementId

	if e.enterPoint != nil && *e.enterPoint == eId {
		top := e.layers[layersCount-1]
		if repl, ok := e.searchLayerSingleIgnoreEp(ePt, pn{dist: 0, id: eId}, top); ok {
			id := repl.id
			newEnterPoint = &id
		}
	}

	delete(e.elements, eId)

	for lc := layersCount - 1; lc >= 0; lc-- {
		mMax := e.params.mMaxForLayer(lc)
		layer := e.layers[lc]
		former, ok := layer.RemoveNode(eId)
		if !ok {
			continue
		}
		for _, qId := range former {
			qPt, ok := e.vectorFloats(qId)
			if !ok {
				continue
			}
			c := e.searchLayerMultiIgnoreEp(qPt, pn{dist: 0, id: qId}, int(e.params.EfConstruction), layer)
			neighbors := e.selector.Select(e.lookupFor(layer), qId, qPt, c, mMax)
			layer.SetNode(qId, neighbors)
		}
		removed = true
	}

	if removed && e.enterPoint != nil && *e.enterPoint == eId {
		e.enterPoint = newEnterPoint
	}
	return removed
}

func (e *Engine) searchLayerSingle(q []float64, ep pn, ef int, l *LayerGraph) *DoublePriorityQueue {
	visited := map[ElementId]bool{ep.id: true}
	candidates := NewDoublePriorityQueue()
	candidates.Push(ep.dist, ep.id)
	w := NewDoublePriorityQueue()
	w.Push(ep.dist, ep.id)
	return e.searchLayer(q, candidates, visited, w, ef, l)
}

func (e *Engine) searchLayerMulti(q []float64, candidates *DoublePriorityQueue, ef int, l *LayerGraph) *DoublePriorityQueue {
	visited := make(map[ElementId]bool, candidates.Len())
	w := NewDoublePriorityQueue()
	for _, item := range candidates.Iter() {
		visited[item.Id] = true
		w.Push(item.Dist, item.Id)
	}
	return e.searchLayer(q, candidates, visited, w, ef, l)
}

func (e *Engine) searchLayerSingleIgnoreEp(q []float64, ep pn, l *LayerGraph) (pn, bool) {
	visited := map[ElementId]bool{ep.id: true}
	candidates := NewDoublePriorityQueue()
	candidates.Push(ep.dist, ep.id)
	w := NewDoublePriorityQueue()
	result := e.searchLayer(q, candidates, visited, w, 1, l)
	id, d, ok := result.PeekFirst()
	if !ok {
		return pn{}, false
	}
	return pn{dist: d, id: id}, true
}

func (e *Engine) searchLayerMultiIgnoreEp(q []float64, ep pn, ef int, l *LayerGraph) *DoublePriorityQueue {
	candidates := NewDoublePriorityQueue()
	candidates.Push(ep.dist, ep.id)
	visited := map[ElementId]bool{ep.id: true}
	w := NewDoublePriorityQueue()
	return e.searchLayer(q, candidates, visited, w, ef, l)
}

// searchLayer is the shared primitive behind every layer-local search:
// expand from candidates, bounding the frontier by the current worst
// distance kept in the ef-wide result set w.
func (e *Engine) searchLayer(q []float64, candidates *DoublePriorityQueue, visited map[ElementId]bool, w *DoublePriorityQueue, ef int, l *LayerGraph) *DoublePriorityQueue {
	fDist := math.Inf(1)
	if _, d, ok := w.PeekLast(); ok {
		fDist = d
	}

	for {
		id, d, ok := candidates.PopFirst()
		if !ok {
			break
		}
		if d > fDist {
			break
		}
		neighbors, ok := l.GetEdges(id)
		if !ok {
			continue
		}
		for _, adj := range neighbors {
			if visited[adj] {
				continue
			}
			visited[adj] = true
			pt, ok := e.vectorFloats(adj)
			if !ok {
				continue
			}
			eDist := dist(e.params.Distance, pt, q)
			if eDist < fDist || w.Len() < ef {
				candidates.Push(eDist, adj)
				w.Push(eDist, adj)
				if w.Len() > ef {
					w.PopLast()
				}
				if _, d2, ok2 := w.PeekLast(); ok2 {
					fDist = d2
				} else {
					fDist = math.Inf(1)
				}
			}
		}
	}
	return w
}

// KNNSearch returns the k nearest elements to q, ascending by
// distance, using ef candidate width at layer 0. An empty index
// returns an empty result rather than an error.
func (e *Engine) KNNSearch(q Vector, k int, efs int) []PQItem {
	if err := e.requireEnterPoint(); err != nil {
		return nil
	}
	qf := q.Floats()
	ep := e.getPN(qf, *e.enterPoint)

	for lc := len(e.layers) - 1; lc >= 1; lc-- {
		w := e.searchLayerSingle(qf, ep, 1, e.layers[lc])
		id, d, ok := w.PeekFirst()
		if !ok {
			panic("hnsw: empty search_layer result during knn descent")
		}
		ep = pn{dist: d, id: id}
	}

	w := e.searchLayerSingle(qf, ep, efs, e.layers[0])
	out := make([]PQItem, 0, k)
	for len(out) < k {
		id, d, ok := w.PopFirst()
		if !ok {
			break
		}
		out = append(out, PQItem{Id: id, Dist: d})
	}
	return out
}
