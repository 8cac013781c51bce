// Package quantization implements scalar vector compression for the HNSW
// element store.
package quantization

import (
	"errors"
	"fmt"
)

// ScalarQuantizer compresses float32 vector components to a fixed bit
// width per dimension, trading exact distances for reduced per-element
// memory. Its Encode/Decode methods work on float32, so they plug into
// github.com/liliang-cn/sqvect-hnsw/pkg/hnsw.Quantizer through
// hnsw.NewScalarCodec rather than satisfying that interface directly.
type ScalarQuantizer struct {
	Dimension int
	Min       []float32 // Min value per dimension
	Max       []float32 // Max value per dimension
	NBits     int        // Bits per component (1-8)
	Trained   bool
}

// NewScalarQuantizer creates a new scalar quantizer for vectors of the
// given dimension, quantizing each component to nbits bits.
func NewScalarQuantizer(dimension int, nbits int) (*ScalarQuantizer, error) {
	if nbits < 1 || nbits > 8 {
		return nil, fmt.Errorf("nbits must be between 1 and 8, got %d", nbits)
	}

	return &ScalarQuantizer{
		Dimension: dimension,
		NBits:     nbits,
		Min:       make([]float32, dimension),
		Max:       make([]float32, dimension),
	}, nil
}

// Train learns the per-dimension value range from a sample of vectors.
func (sq *ScalarQuantizer) Train(vectors [][]float32) error {
	if len(vectors) == 0 {
		return errors.New("no training vectors provided")
	}

	for d := 0; d < sq.Dimension; d++ {
		sq.Min[d] = vectors[0][d]
		sq.Max[d] = vectors[0][d]
	}

	for _, vec := range vectors {
		if len(vec) != sq.Dimension {
			return fmt.Errorf("vector dimension %d doesn't match quantizer dimension %d", len(vec), sq.Dimension)
		}
		for d := 0; d < sq.Dimension; d++ {
			if vec[d] < sq.Min[d] {
				sq.Min[d] = vec[d]
			}
			if vec[d] > sq.Max[d] {
				sq.Max[d] = vec[d]
			}
		}
	}

	// Avoid division by zero for constant dimensions.
	for d := 0; d < sq.Dimension; d++ {
		if sq.Max[d] == sq.Min[d] {
			sq.Max[d] += 1e-6
		}
	}

	sq.Trained = true
	return nil
}

// Encode quantizes a vector to a packed byte slice.
func (sq *ScalarQuantizer) Encode(vector []float32) ([]byte, error) {
	if !sq.Trained {
		return nil, errors.New("quantizer not trained")
	}
	if len(vector) != sq.Dimension {
		return nil, fmt.Errorf("vector dimension %d doesn't match quantizer dimension %d", len(vector), sq.Dimension)
	}

	maxVal := float32((int(1) << uint(sq.NBits)) - 1)
	bitsNeeded := sq.Dimension * sq.NBits
	bytesNeeded := (bitsNeeded + 7) / 8
	encoded := make([]byte, bytesNeeded)

	bitOffset := 0
	for d := 0; d < sq.Dimension; d++ {
		normalized := (vector[d] - sq.Min[d]) / (sq.Max[d] - sq.Min[d])
		if normalized < 0 {
			normalized = 0
		} else if normalized > 1 {
			normalized = 1
		}

		quantized := uint32(normalized * maxVal)

		for b := 0; b < sq.NBits; b++ {
			byteIdx := bitOffset / 8
			bitIdx := bitOffset % 8
			if (quantized & (1 << b)) != 0 {
				encoded[byteIdx] |= 1 << bitIdx
			}
			bitOffset++
		}
	}

	return encoded, nil
}

// Decode reconstructs an approximate vector from quantized bytes.
func (sq *ScalarQuantizer) Decode(encoded []byte) ([]float32, error) {
	if !sq.Trained {
		return nil, errors.New("quantizer not trained")
	}

	maxVal := float32((int(1) << uint(sq.NBits)) - 1)
	vector := make([]float32, sq.Dimension)

	bitOffset := 0
	for d := 0; d < sq.Dimension; d++ {
		quantized := uint32(0)
		for b := 0; b < sq.NBits; b++ {
			byteIdx := bitOffset / 8
			bitIdx := bitOffset % 8
			if byteIdx >= len(encoded) {
				return nil, errors.New("encoded data too short")
			}
			if (encoded[byteIdx] & (1 << bitIdx)) != 0 {
				quantized |= 1 << b
			}
			bitOffset++
		}
		normalized := float32(quantized) / maxVal
		vector[d] = normalized*(sq.Max[d]-sq.Min[d]) + sq.Min[d]
	}

	return vector, nil
}

// CompressionRatio reports the ratio of raw float32 storage to the
// quantized encoding, assuming 32 bits per original component.
func (sq *ScalarQuantizer) CompressionRatio() float32 {
	originalBits := sq.Dimension * 32
	compressedBits := sq.Dimension * sq.NBits
	return float32(originalBits) / float32(compressedBits)
}
