package hnsw

import "testing"

func TestIndexDocumentAndSearch(t *testing.T) {
	params := DefaultHnswParams(2, TypeF64)
	idx, err := NewIndex[string](params)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	docs := map[string][]float64{
		"origin":   {0, 0},
		"near":     {1, 1},
		"far":      {10, 10},
		"very-far": {50, 50},
	}
	for name, v := range docs {
		if err := idx.IndexDocument(name, v); err != nil {
			t.Fatalf("IndexDocument(%q): %v", name, err)
		}
	}

	results, err := idx.KNNSearch([]float64{0, 0}, 2, 50)
	if err != nil {
		t.Fatalf("KNNSearch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("KNNSearch len = %d, want 2", len(results))
	}
	if results[0].Record != "origin" {
		t.Errorf("closest result = %q, want \"origin\"", results[0].Record)
	}
}

// TestIndexDeduplication covers scenario 6: the same vector under two
// record ids creates one element; removing one keeps it; removing
// both erases it.
func TestIndexDeduplication(t *testing.T) {
	params := DefaultHnswParams(2, TypeF64)
	idx, err := NewIndex[string](params)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	v := []float64{3, 4}
	if err := idx.IndexDocument("a", v); err != nil {
		t.Fatalf("IndexDocument(a): %v", err)
	}
	if err := idx.IndexDocument("b", v); err != nil {
		t.Fatalf("IndexDocument(b): %v", err)
	}
	if idx.Size() != 1 {
		t.Fatalf("Size() = %d, want 1 (deduplicated element)", idx.Size())
	}

	if err := idx.RemoveDocument("a", v); err != nil {
		t.Fatalf("RemoveDocument(a): %v", err)
	}
	if idx.Size() != 1 {
		t.Fatalf("Size() after removing one of two docs = %d, want 1", idx.Size())
	}

	if err := idx.RemoveDocument("b", v); err != nil {
		t.Fatalf("RemoveDocument(b): %v", err)
	}
	if idx.Size() != 0 {
		t.Fatalf("Size() after removing both docs = %d, want 0", idx.Size())
	}
}

func TestIndexRemoveUnknownRecordIsNoop(t *testing.T) {
	params := DefaultHnswParams(2, TypeF64)
	idx, err := NewIndex[string](params)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	if err := idx.RemoveDocument("ghost", []float64{1, 1}); err != nil {
		t.Fatalf("RemoveDocument of unknown record: %v", err)
	}
}

func TestIndexDimensionMismatchIsError(t *testing.T) {
	params := DefaultHnswParams(3, TypeF64)
	idx, err := NewIndex[string](params)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	if err := idx.IndexDocument("bad", []float64{1, 2}); err == nil {
		t.Fatal("expected a dimension mismatch error")
	}
}

func TestNewIndexWithSeedMatchesStats(t *testing.T) {
	params := DefaultHnswParams(2, TypeF64)
	build := func() *Index[string] {
		idx, err := NewIndexWithSeed[string](params, 42)
		if err != nil {
			t.Fatalf("NewIndexWithSeed: %v", err)
		}
		for i := 0; i < 15; i++ {
			coord := float64(i)
			if err := idx.IndexDocument(docName(i), []float64{coord, coord}); err != nil {
				t.Fatalf("IndexDocument: %v", err)
			}
		}
		return idx
	}

	a, b := build(), build()
	sa, sb := a.Stats(), b.Stats()
	if sa.MaxLevel != sb.MaxLevel || sa.TotalElements != sb.TotalElements {
		t.Fatalf("two seeded indexes diverged: %+v vs %+v", sa, sb)
	}
}

func docName(i int) string {
	return "doc-" + string(rune('a'+i))
}
