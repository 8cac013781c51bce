package hnsw

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the core, per the error taxonomy.
var (
	// ErrDimensionMismatch is returned when a vector's length does not
	// match the index's configured dimension.
	ErrDimensionMismatch = errors.New("hnsw: vector dimension mismatch")

	// ErrInvalidVectorType is returned when an external value cannot be
	// coerced to the index's configured element type.
	ErrInvalidVectorType = errors.New("hnsw: invalid vector type")

	// ErrInvalidDistanceParam is returned for malformed distance
	// parameters, e.g. a Minkowski exponent that is not positive.
	ErrInvalidDistanceParam = errors.New("hnsw: invalid distance parameter")

	// ErrInvalidParams is returned when HnswParams fails validation.
	ErrInvalidParams = errors.New("hnsw: invalid parameters")

	// ErrElementNotFound names the invariant violation behind the
	// panics in getPN and insertElement's shrink step: a layer graph referencing an
	// ElementId absent from the element table. It is never returned
	// from an exported method — a missing element can only mean the
	// graph and element table have already diverged — but it labels
	// the panic message so a crash report reads as a known failure
	// mode, not an unexplained nil-map lookup.
	ErrElementNotFound = errors.New("hnsw: element not found")

	// errEmptyIndex is used internally to short-circuit a search against
	// an index with no enter point; knn_search never surfaces it and
	// instead returns an empty result, per spec.
	errEmptyIndex = errors.New("hnsw: index has no enter point")
)

// IndexError wraps an error with the operation that produced it,
// in the style of a common Go wrapped-error type.
type IndexError struct {
	Op  string
	Err error
}

func (e *IndexError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("hnsw: %v", e.Err)
	}
	return fmt.Sprintf("hnsw: %s: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

func (e *IndexError) Is(target error) bool { return errors.Is(e.Err, target) }

func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IndexError{Op: op, Err: err}
}
