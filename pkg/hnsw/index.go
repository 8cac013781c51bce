package hnsw

import "sort"

// Parser translates an external literal array into a typed Vector.
// The core never parses caller-supplied wire formats itself.
type Parser interface {
	Parse(values []float64, typ VectorType, dim int) (Vector, error)
}

// defaultParser builds a Vector directly from float64 components,
// coercing to the index's configured element type.
type defaultParser struct{}

func (defaultParser) Parse(values []float64, typ VectorType, dim int) (Vector, error) {
	v, err := FromFloat64s(typ, values)
	if err != nil {
		return Vector{}, err
	}
	if err := v.CheckDimension(dim); err != nil {
		return Vector{}, err
	}
	return v, nil
}

// Coordinator provides mutual exclusion around Index's write
// operations. The core never locks on its own behalf; a no-op
// coordinator is correct for single-goroutine callers.
type Coordinator interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type noopCoordinator struct{}

func (noopCoordinator) Lock()    {}
func (noopCoordinator) Unlock()  {}
func (noopCoordinator) RLock()   {}
func (noopCoordinator) RUnlock() {}

// NoopCoordinator returns a Coordinator that performs no locking.
func NoopCoordinator() Coordinator { return noopCoordinator{} }

// StorageLayer marks the collaborator role that calls Index's
// operations during its own transactional mutations. It owns
// durability; Index itself is volatile and never persists anything.
// The interface lists the two record-level mutations such a layer
// performs; Index does not call into it.
type StorageLayer interface {
	IndexDocument(record any, values []float64) error
	RemoveDocument(record any, values []float64) error
}

// Result is one (record, distance) pair returned by KNNSearch,
// ordered ascending by distance.
type Result[R comparable] struct {
	Record   R
	Distance float64
}

// Index is component H: the outer shell wiring a Parser, a DocIndex,
// and an Engine into the record-level operations external callers
// consume (index_document / remove_document / knn_search).
type Index[R comparable] struct {
	params HnswParams
	engine *Engine
	docs   *DocIndex[R]
	parser Parser
	coord  Coordinator
	log    Logger
}

// IndexOption configures an Index at construction time.
type IndexOption[R comparable] func(*Index[R])

// NewIndex constructs an Index ready to accept documents.
func NewIndex[R comparable](params HnswParams, opts ...IndexOption[R]) (*Index[R], error) {
	return newIndex(params, nil, opts...)
}

// NewIndexWithSeed is NewIndex with an explicit PRNG seed, so level
// assignment is reproducible across runs — useful when pinned levels
// must be reproduced, and for statistical property tests.
func NewIndexWithSeed[R comparable](params HnswParams, seed int64, opts ...IndexOption[R]) (*Index[R], error) {
	return newIndex(params, &seed, opts...)
}

func newIndex[R comparable](params HnswParams, seed *int64, opts ...IndexOption[R]) (*Index[R], error) {
	idx := &Index[R]{
		params: params,
		docs:   NewDocIndex[R](),
		parser: defaultParser{},
		coord:  NoopCoordinator(),
		log:    NoopLogger(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	var engine *Engine
	var err error
	if seed != nil {
		engine, err = NewEngineWithSeed(params, idx.log, *seed)
	} else {
		engine, err = NewEngine(params, idx.log)
	}
	if err != nil {
		return nil, err
	}
	idx.engine = engine
	return idx, nil
}

func WithParser[R comparable](p Parser) IndexOption[R] {
	return func(idx *Index[R]) { idx.parser = p }
}

func WithCoordinator[R comparable](c Coordinator) IndexOption[R] {
	return func(idx *Index[R]) { idx.coord = c }
}

func WithLogger[R comparable](l Logger) IndexOption[R] {
	return func(idx *Index[R]) { idx.log = l }
}

// IndexDocument resolves record to a DocId and inserts vec (built from
// values) into the index, deduplicating against any identical vector
// already present.
func (idx *Index[R]) IndexDocument(record R, values []float64) error {
	idx.coord.Lock()
	defer idx.coord.Unlock()

	vec, err := idx.parser.Parse(values, idx.params.VectorType, int(idx.params.Dimension))
	if err != nil {
		return wrapError("Index.IndexDocument", err)
	}
	docId := idx.docs.Resolve(record)
	idx.docs.InsertVector(vec, docId, idx.engine.Insert)
	return nil
}

// RemoveDocument reverse-resolves record and detaches vec (built from
// values) from it; unknown records are a silent no-op.
func (idx *Index[R]) RemoveDocument(record R, values []float64) error {
	idx.coord.Lock()
	defer idx.coord.Unlock()

	vec, err := idx.parser.Parse(values, idx.params.VectorType, int(idx.params.Dimension))
	if err != nil {
		return wrapError("Index.RemoveDocument", err)
	}
	docId, ok := idx.docs.ReverseRemove(record)
	if !ok {
		return nil
	}
	idx.docs.RemoveVector(vec, docId, idx.engine.Delete)
	return nil
}

// KNNSearch finds the n nearest records to values, ascending by
// distance and folded back through deduplication. Ties break by DocId
// to keep results deterministic when several records share a distance.
func (idx *Index[R]) KNNSearch(values []float64, n int, ef int) ([]Result[R], error) {
	idx.coord.RLock()
	defer idx.coord.RUnlock()

	vec, err := idx.parser.Parse(values, idx.params.VectorType, int(idx.params.Dimension))
	if err != nil {
		return nil, wrapError("Index.KNNSearch", err)
	}

	hits := idx.engine.KNNSearch(vec, n, ef)

	type pair struct {
		docId DocId
		dist  float64
	}
	var pairs []pair
	for _, hit := range hits {
		docs, ok := idx.docs.DocsForElement(hit.Id)
		if !ok {
			continue
		}
		docs.each(func(docId DocId) {
			pairs = append(pairs, pair{docId: docId, dist: hit.Dist})
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].dist != pairs[j].dist {
			return pairs[i].dist < pairs[j].dist
		}
		return pairs[i].docId < pairs[j].docId
	})

	if len(pairs) > n {
		pairs = pairs[:n]
	}

	out := make([]Result[R], 0, len(pairs))
	for _, p := range pairs {
		if record, ok := idx.docs.Get(p.docId); ok {
			out = append(out, Result[R]{Record: record, Distance: p.dist})
		}
	}
	return out, nil
}

// Size reports the number of live elements held by the engine.
func (idx *Index[R]) Size() int { return idx.engine.Size() }

// Stats summarizes the underlying graph's shape.
func (idx *Index[R]) Stats() Stats { return idx.engine.Stats() }
