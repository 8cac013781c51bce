package hnsw

import "sort"

// bruteForceResult is one (id, distance) pair from an exact scan,
// a brute-force baseline in the shape of FlatIndex.Search: no graph, no
// approximation, just a full pass over every candidate. It exists only
// to give the recall-floor test a
// ground truth to compare the engine's approximate results against.
type bruteForceResult struct {
	id   int
	dist float64
}

// bruteForceKNN scans every vector in dataset and returns the k
// closest to query under d, ascending by distance.
func bruteForceKNN(d Distance, dataset [][]float64, query []float64, k int) []bruteForceResult {
	results := make([]bruteForceResult, len(dataset))
	for i, v := range dataset {
		results[i] = bruteForceResult{id: i, dist: dist(d, v, query)}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].dist != results[j].dist {
			return results[i].dist < results[j].dist
		}
		return results[i].id < results[j].id
	})
	if k < len(results) {
		results = results[:k]
	}
	return results
}

// recallAt computes the fraction of approx (an engine's top-k result)
// that also appears in exact (the brute-force top-k), matching on
// vector index rather than distance value to tolerate tie reordering.
func recallAt(approx []int, exact []bruteForceResult) float64 {
	if len(exact) == 0 {
		return 1
	}
	exactSet := make(map[int]struct{}, len(exact))
	for _, e := range exact {
		exactSet[e.id] = struct{}{}
	}
	hits := 0
	for _, a := range approx {
		if _, ok := exactSet[a]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(exact))
}
