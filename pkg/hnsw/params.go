package hnsw

import "math"

// VectorType is the component type stored in a Vector.
type VectorType int

const (
	TypeF64 VectorType = iota
	TypeF32
	TypeI64
	TypeI32
	TypeI16
)

func (t VectorType) String() string {
	switch t {
	case TypeF64:
		return "f64"
	case TypeF32:
		return "f32"
	case TypeI64:
		return "i64"
	case TypeI32:
		return "i32"
	case TypeI16:
		return "i16"
	default:
		return "unknown"
	}
}

// DistanceKind selects the metric a Distance value computes.
type DistanceKind int

const (
	DistEuclidean DistanceKind = iota
	DistManhattan
	DistChebyshev
	DistCosine
	DistHamming
	DistJaccard
	DistMinkowski
	DistPearson
)

func (k DistanceKind) String() string {
	switch k {
	case DistEuclidean:
		return "euclidean"
	case DistManhattan:
		return "manhattan"
	case DistChebyshev:
		return "chebyshev"
	case DistCosine:
		return "cosine"
	case DistHamming:
		return "hamming"
	case DistJaccard:
		return "jaccard"
	case DistMinkowski:
		return "minkowski"
	case DistPearson:
		return "pearson"
	default:
		return "unknown"
	}
}

// Distance names a metric and, for Minkowski, its exponent.
type Distance struct {
	Kind DistanceKind
	P    float64 // exponent, used only when Kind == DistMinkowski
}

// Selector policy flags, chosen once at construction time.
type SelectorPolicy struct {
	Heuristic             bool
	ExtendCandidates       bool
	KeepPrunedConnections  bool
}

// HnswParams are the fixed construction-time parameters of an index.
type HnswParams struct {
	Dimension       uint16
	VectorType      VectorType
	Distance        Distance
	M               uint16
	M0              uint16
	EfConstruction  uint16
	Ml              float64
	Selector        SelectorPolicy
}

// DefaultHnswParams returns parameters with commonly used defaults
// (m=16, m0=2m, efc=200, ml=1/ln(m), heuristic+extend+keep) for the given
// dimension and vector type. Callers should override fields as needed and
// always call Validate before constructing an Engine.
func DefaultHnswParams(dimension uint16, vectorType VectorType) HnswParams {
	const m = 16
	return HnswParams{
		Dimension:      dimension,
		VectorType:     vectorType,
		Distance:       Distance{Kind: DistEuclidean},
		M:              m,
		M0:             2 * m,
		EfConstruction: 200,
		Ml:             1.0 / math.Log(float64(m)),
		Selector: SelectorPolicy{
			Heuristic:            true,
			ExtendCandidates:     true,
			KeepPrunedConnections: true,
		},
	}
}

// Validate rejects parameter combinations the engine cannot build on.
func (p HnswParams) Validate() error {
	if p.Dimension == 0 {
		return wrapError("HnswParams.Validate", ErrInvalidParams)
	}
	if p.M == 0 || p.M0 == 0 {
		return wrapError("HnswParams.Validate", ErrInvalidParams)
	}
	if p.EfConstruction == 0 {
		return wrapError("HnswParams.Validate", ErrInvalidParams)
	}
	if p.Ml <= 0 {
		return wrapError("HnswParams.Validate", ErrInvalidParams)
	}
	switch p.VectorType {
	case TypeF64, TypeF32, TypeI64, TypeI32, TypeI16:
	default:
		return wrapError("HnswParams.Validate", ErrInvalidVectorType)
	}
	switch p.Distance.Kind {
	case DistEuclidean, DistManhattan, DistChebyshev, DistCosine, DistHamming, DistJaccard, DistPearson:
	case DistMinkowski:
		if p.Distance.P <= 0 {
			return wrapError("HnswParams.Validate", ErrInvalidDistanceParam)
		}
	default:
		return wrapError("HnswParams.Validate", ErrInvalidDistanceParam)
	}
	return nil
}

// mMaxForLayer returns the degree cap for layer lc (m0 at the base layer,
// m everywhere above it).
func (p HnswParams) mMaxForLayer(lc int) uint16 {
	if lc == 0 {
		return p.M0
	}
	return p.M
}
