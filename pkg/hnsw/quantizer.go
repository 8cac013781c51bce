package hnsw

// Quantizer compresses a float64 vector view into a packed byte
// encoding and reconstructs an approximation from it. It is the same
// shape as pkg/quantization.ScalarQuantizer, generalized
// to the wider Vector type so the engine can store quantized
// components when memory, not exact recall, is the scarce resource.
type Quantizer interface {
	Encode(vector []float64) ([]byte, error)
	Decode(encoded []byte) ([]float64, error)
}

// scalarCodec adapts a float32-based quantizer
// to the Quantizer interface the engine consumes.
type scalarCodec struct {
	encode func([]float32) ([]byte, error)
	decode func([]byte) ([]float32, error)
}

// NewScalarCodec wraps encode/decode functions over []float32 — e.g.
// (*pkg/quantization.ScalarQuantizer).Encode/Decode — as a Quantizer.
func NewScalarCodec(encode func([]float32) ([]byte, error), decode func([]byte) ([]float32, error)) Quantizer {
	return &scalarCodec{encode: encode, decode: decode}
}

func (c *scalarCodec) Encode(vector []float64) ([]byte, error) {
	f32 := make([]float32, len(vector))
	for i, v := range vector {
		f32[i] = float32(v)
	}
	return c.encode(f32)
}

func (c *scalarCodec) Decode(encoded []byte) ([]float64, error) {
	f32, err := c.decode(encoded)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(f32))
	for i, v := range f32 {
		out[i] = float64(v)
	}
	return out, nil
}
