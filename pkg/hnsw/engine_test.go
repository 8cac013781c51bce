package hnsw

import "testing"

func scenario1Params() HnswParams {
	return HnswParams{
		Dimension:      2,
		VectorType:     TypeI16,
		Distance:       Distance{Kind: DistEuclidean},
		M:              2,
		M0:             4,
		EfConstruction: 500,
		Ml:             1,
		Selector: SelectorPolicy{
			Heuristic:             true,
			ExtendCandidates:      true,
			KeepPrunedConnections: true,
		},
	}
}

// TestBuildScenario1 replays the concrete scenario from the testable
// properties: a fixed sequence of 2-D points inserted at fixed levels,
// checking the enter-point transition after the 5th insert.
func TestBuildScenario1(t *testing.T) {
	params := scenario1Params()
	e, err := NewEngine(params, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	levels := []int{0, 0, 0, 1, 2, 2, 1, 0, 0, 0, 1}
	var ids []ElementId
	for i, level := range levels {
		coord := float64(i + 1)
		v, err := FromFloat64s(TypeI16, []float64{coord, coord})
		if err != nil {
			t.Fatalf("FromFloat64s: %v", err)
		}
		id := e.insertLevel(v.Floats(), level)
		ids = append(ids, id)

		if i == 4 {
			if e.enterPoint == nil || *e.enterPoint != id {
				t.Fatalf("after 5th insert, enter point = %v, want %v", e.enterPoint, id)
			}
			if len(e.layers) < 3 || e.layers[2].Len() != 1 {
				t.Fatalf("after 5th insert, layer 2 must contain exactly the new element")
			}
		}
	}

	if e.Size() != len(levels) {
		t.Fatalf("Size() = %d, want %d", e.Size(), len(levels))
	}
	checkInvariants(t, e)
}

// checkInvariants checks the degree cap, absence of self-loops, and
// edge symmetry across every layer of e.
func checkInvariants(t *testing.T, e *Engine) {
	t.Helper()
	for lc, layer := range e.layers {
		mMax := int(e.params.mMaxForLayer(lc))
		layer.Nodes(func(id ElementId, neighbors map[ElementId]struct{}) {
			if len(neighbors) > mMax {
				t.Errorf("layer %d: node %d has degree %d > m_max %d", lc, id, len(neighbors), mMax)
			}
			if _, self := neighbors[id]; self {
				t.Errorf("layer %d: node %d lists itself as a neighbor", lc, id)
			}
			for n := range neighbors {
				back, ok := layer.GetEdges(n)
				if !ok {
					t.Errorf("layer %d: neighbor %d of %d is not itself a node", lc, n, id)
					continue
				}
				found := false
				for _, b := range back {
					if b == id {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("layer %d: edge %d->%d is not symmetric", lc, id, n)
				}
			}
		})
	}
}

// TestQueryScenario2 builds the same 11-point collection and queries a
// point outside it, expecting exactly min(k, n) ascending results.
func TestQueryScenario2(t *testing.T) {
	params := scenario1Params()
	e, err := NewEngine(params, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	levels := []int{0, 0, 0, 1, 2, 2, 1, 0, 0, 0, 1}
	for i, level := range levels {
		coord := float64(i + 1)
		v, _ := FromFloat64s(TypeI16, []float64{coord, coord})
		e.insertLevel(v.Floats(), level)
	}

	q, err := FromFloat64s(TypeI16, []float64{-2, -3})
	if err != nil {
		t.Fatalf("FromFloat64s: %v", err)
	}
	res := e.KNNSearch(q, 10, 501)
	if len(res) != 10 {
		t.Fatalf("KNNSearch len = %d, want 10", len(res))
	}
	for i := 1; i < len(res); i++ {
		if res[i].Dist < res[i-1].Dist {
			t.Fatalf("results not ascending by distance at index %d: %v", i, res)
		}
	}
}

// TestResultSizeLaw checks that results never exceed min(k, live count).
func TestResultSizeLaw(t *testing.T) {
	params := DefaultHnswParams(3, TypeF64)
	params.M = 12
	e, err := NewEngine(params, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	n := 30
	for i := 0; i < n; i++ {
		v, _ := FromFloat64s(TypeF64, []float64{float64(i), float64(i % 7), float64(i % 5)})
		e.Insert(v)
	}

	q, _ := FromFloat64s(TypeF64, []float64{0, 0, 0})
	for k := 1; k < 40; k++ {
		res := e.KNNSearch(q, k, 80)
		want := k
		if n < want {
			want = n
		}
		if len(res) != want {
			t.Fatalf("k=%d: KNNSearch len = %d, want %d", k, len(res), want)
		}
	}
}

// TestSelfQuery checks that an inserted vector appears in its own
// query result at distance 0 once ef is wide enough.
func TestSelfQuery(t *testing.T) {
	params := DefaultHnswParams(3, TypeF64)
	params.M = 12
	e, err := NewEngine(params, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	vectors := make([][]float64, 30)
	ids := make([]ElementId, 30)
	for i := range vectors {
		vectors[i] = []float64{float64(i) * 1.3, float64(i%7) * 0.7, float64(i%5) * 2.1}
		v, _ := FromFloat64s(TypeF64, vectors[i])
		ids[i] = e.Insert(v)
	}

	for i, vec := range vectors {
		v, _ := FromFloat64s(TypeF64, vec)
		res := e.KNNSearch(v, 5, 80)
		found := false
		for _, r := range res {
			if r.Id == ids[i] && r.Dist == 0 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("vector %d not found at distance 0 in its own query", i)
		}
	}
}

// TestDeleteThenInvariantsHold covers the delete-then-rebalance scenario: after deleting
// half of a 30-element graph, degree caps still hold everywhere.
func TestDeleteThenInvariantsHold(t *testing.T) {
	params := DefaultHnswParams(3, TypeF64)
	params.M = 12
	e, err := NewEngine(params, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ids := make([]ElementId, 30)
	for i := range ids {
		v, _ := FromFloat64s(TypeF64, []float64{float64(i), float64(i % 7), float64(i % 3)})
		ids[i] = e.Insert(v)
	}

	for i := 0; i < len(ids); i += 2 {
		if !e.Delete(ids[i]) {
			t.Fatalf("Delete(%d) = false, want true", ids[i])
		}
	}

	checkInvariants(t, e)

	if e.Size() != 15 {
		t.Fatalf("Size() = %d, want 15", e.Size())
	}
}

// TestDeleteUnknownIdIsNoop covers the no-op delete contract.
func TestDeleteUnknownIdIsNoop(t *testing.T) {
	params := DefaultHnswParams(2, TypeF64)
	e, err := NewEngine(params, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if e.Delete(12345) {
		t.Fatal("Delete of an unknown id should be a no-op returning false")
	}
}

// TestEmptyIndexQueryReturnsEmpty covers the EmptyQuery contract.
func TestEmptyIndexQueryReturnsEmpty(t *testing.T) {
	params := DefaultHnswParams(2, TypeF64)
	e, err := NewEngine(params, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	q, _ := FromFloat64s(TypeF64, []float64{1, 1})
	res := e.KNNSearch(q, 5, 50)
	if len(res) != 0 {
		t.Fatalf("KNNSearch on empty index = %v, want empty", res)
	}
}

func TestStatsOnEmptyEngine(t *testing.T) {
	e, err := NewEngine(DefaultHnswParams(2, TypeF64), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	s := e.Stats()
	if s.TotalElements != 0 || s.EnterPoint != nil {
		t.Fatalf("Stats() on an empty engine = %+v, want zero elements and no enter point", s)
	}
}

func TestStatsReflectsInsertedGraph(t *testing.T) {
	params := scenario1Params()
	e, err := NewEngine(params, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	levels := []int{0, 0, 0, 1, 2, 2, 1, 0, 0, 0, 1}
	for i, level := range levels {
		coord := float64(i + 1)
		v, _ := FromFloat64s(TypeI16, []float64{coord, coord})
		e.insertLevel(v.Floats(), level)
	}

	s := e.Stats()
	if s.TotalElements != len(levels) {
		t.Errorf("Stats().TotalElements = %d, want %d", s.TotalElements, len(levels))
	}
	if s.MaxLevel != 2 {
		t.Errorf("Stats().MaxLevel = %d, want 2", s.MaxLevel)
	}
	if s.EnterPoint == nil {
		t.Fatal("Stats().EnterPoint should be set after inserts")
	}
	if s.AverageDegree <= 0 {
		t.Errorf("Stats().AverageDegree = %v, want > 0 once layer 0 has edges", s.AverageDegree)
	}
}

// TestEngineWithSeedIsReproducible covers the deterministic-seed
// constructor: two engines built from the same seed and insert
// sequence assign identical levels and land on the same enter point.
func TestEngineWithSeedIsReproducible(t *testing.T) {
	build := func() *Engine {
		e, err := NewEngineWithSeed(DefaultHnswParams(2, TypeF64), nil, 99)
		if err != nil {
			t.Fatalf("NewEngineWithSeed: %v", err)
		}
		for i := 0; i < 20; i++ {
			coord := float64(i)
			v, _ := FromFloat64s(TypeF64, []float64{coord, coord})
			e.Insert(v)
		}
		return e
	}

	a, b := build(), build()
	if *a.enterPoint != *b.enterPoint {
		t.Fatalf("two engines built from the same seed diverged: enter points %d vs %d", *a.enterPoint, *b.enterPoint)
	}
	if len(a.layers) != len(b.layers) {
		t.Fatalf("two engines built from the same seed diverged: %d vs %d layers", len(a.layers), len(b.layers))
	}
}
