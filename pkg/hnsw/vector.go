package hnsw

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vector stores a typed, fixed-length tuple of components. It is
// immutable after construction: every operation that would mutate it
// (Push) only touches state during the build-up before the vector is
// shared. Generalizes a []float32-only vector type to five element
// types.
type Vector struct {
	typ  VectorType
	f64s []float64
	i64s []int64
}

// NewVector creates an empty vector of the given type and dimension,
// ready to be filled with Push.
func NewVector(typ VectorType, dim int) Vector {
	v := Vector{typ: typ}
	switch typ {
	case TypeF64, TypeF32:
		v.f64s = make([]float64, 0, dim)
	case TypeI64, TypeI32, TypeI16:
		v.i64s = make([]int64, 0, dim)
	}
	return v
}

// FromFloat64s builds a vector of the given type from float64 inputs,
// truncating to the narrower integer types where applicable.
func FromFloat64s(typ VectorType, components []float64) (Vector, error) {
	v := NewVector(typ, len(components))
	for _, c := range components {
		if err := v.Push(c); err != nil {
			return Vector{}, err
		}
	}
	return v, nil
}

// Type reports the vector's element type.
func (v Vector) Type() VectorType { return v.typ }

// Dim reports the number of components.
func (v Vector) Dim() int {
	switch v.typ {
	case TypeF64, TypeF32:
		return len(v.f64s)
	default:
		return len(v.i64s)
	}
}

// Push appends one component, coercing it to the vector's element type.
func (v *Vector) Push(value float64) error {
	switch v.typ {
	case TypeF64:
		v.f64s = append(v.f64s, value)
	case TypeF32:
		v.f64s = append(v.f64s, float64(float32(value)))
	case TypeI64:
		v.i64s = append(v.i64s, int64(value))
	case TypeI32:
		iv := int64(value)
		if iv < math.MinInt32 || iv > math.MaxInt32 {
			return wrapError("Vector.Push", ErrInvalidVectorType)
		}
		v.i64s = append(v.i64s, iv)
	case TypeI16:
		iv := int64(value)
		if iv < math.MinInt16 || iv > math.MaxInt16 {
			return wrapError("Vector.Push", ErrInvalidVectorType)
		}
		v.i64s = append(v.i64s, iv)
	default:
		return wrapError("Vector.Push", ErrInvalidVectorType)
	}
	return nil
}

// CheckDimension returns ErrDimensionMismatch unless the vector has
// exactly dim components.
func (v Vector) CheckDimension(dim int) error {
	if v.Dim() != dim {
		return wrapError("Vector.CheckDimension", ErrDimensionMismatch)
	}
	return nil
}

// Floats returns the components widened to float64, regardless of the
// underlying element type. Distance functions operate on this view.
func (v Vector) Floats() []float64 {
	switch v.typ {
	case TypeF64, TypeF32:
		return v.f64s
	default:
		out := make([]float64, len(v.i64s))
		for i, c := range v.i64s {
			out[i] = float64(c)
		}
		return out
	}
}

// Key returns a byte-level encoding of the vector suitable for use as a
// Go map key: equality/hash are byte-level over
// components" contract for Vector.
func (v Vector) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:", v.typ)
	switch v.typ {
	case TypeF64, TypeF32:
		for _, c := range v.f64s {
			b.WriteString(strconv.FormatUint(math.Float64bits(c), 16))
			b.WriteByte(',')
		}
	default:
		for _, c := range v.i64s {
			b.WriteString(strconv.FormatInt(c, 16))
			b.WriteByte(',')
		}
	}
	return b.String()
}
