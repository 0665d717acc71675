package renderer

import (
	"encoding/binary"
	"math"
)

// uniformAlignment is the WebGPU minimum dynamic uniform offset alignment.
const uniformAlignment = 256

// uniformBlock is a program's CPU-side parameter block, packed with the WGSL
// offsets recorded in its ProgramDesc.
type uniformBlock struct {
	fields []UniformField
	data   []byte
}

func newUniformBlock(desc ProgramDesc) *uniformBlock {
	return &uniformBlock{
		fields: desc.Uniforms,
		data:   make([]byte, desc.BlockSize),
	}
}

// field returns the field at loc if its span fits inside the block and can hold need bytes.
func (u *uniformBlock) field(loc Location, need uint64) (UniformField, bool) {
	if loc < 0 || int(loc) >= len(u.fields) {
		return UniformField{}, false
	}
	f := u.fields[loc]
	if f.Size < need || f.Offset+need > uint64(len(u.data)) {
		return UniformField{}, false
	}
	return f, true
}

func (u *uniformBlock) putUint32(loc Location, v uint32) bool {
	f, ok := u.field(loc, 4)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint32(u.data[f.Offset:], v)
	return true
}

func (u *uniformBlock) putFloats(loc Location, vs ...float32) bool {
	f, ok := u.field(loc, uint64(4*len(vs)))
	if !ok {
		return false
	}
	for i, v := range vs {
		binary.LittleEndian.PutUint32(u.data[f.Offset+uint64(4*i):], math.Float32bits(v))
	}
	return true
}

func (u *uniformBlock) putDouble(loc Location, v float64) bool {
	if loc >= 0 && int(loc) < len(u.fields) && u.fields[loc].Type == "f64" {
		f, ok := u.field(loc, 8)
		if !ok {
			return false
		}
		binary.LittleEndian.PutUint64(u.data[f.Offset:], math.Float64bits(v))
		return true
	}
	return u.putFloats(loc, float32(v))
}

// putMat3 writes a column-major 3x3 matrix using the WGSL mat3x3<f32> layout,
// where each column occupies 16 bytes.
func (u *uniformBlock) putMat3(loc Location, m [9]float32) bool {
	f, ok := u.field(loc, 44)
	if !ok {
		return false
	}
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			off := f.Offset + uint64(c*16+r*4)
			binary.LittleEndian.PutUint32(u.data[off:], math.Float32bits(m[c*3+r]))
		}
	}
	return true
}

// uniformRing hands out aligned slices of a per-frame uniform buffer. Each
// draw copies its program's block into a fresh slot so earlier draws in the
// same pass keep their values.
type uniformRing struct {
	size   uint64
	cursor uint64
}

func (r *uniformRing) reset() {
	r.cursor = 0
}

func (r *uniformRing) alloc(n uint64) (uint64, bool) {
	off := roundUp(r.cursor, uniformAlignment)
	if off+n > r.size {
		return 0, false
	}
	r.cursor = off + n
	return off, true
}

func roundUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

// lineListIndices converts triangle-list geometry into line-list indices that
// trace every triangle edge. When indices is nil the first count vertices are
// treated as an unindexed triangle list.
func lineListIndices(indices []uint32, count int) []uint32 {
	tri := func(i int) uint32 {
		if indices == nil {
			return uint32(i)
		}
		return indices[i]
	}
	if indices != nil && count > len(indices) {
		count = len(indices)
	}
	count -= count % 3
	out := make([]uint32, 0, count*2)
	for i := 0; i < count; i += 3 {
		a, b, c := tri(i), tri(i+1), tri(i+2)
		out = append(out, a, b, b, c, c, a)
	}
	return out
}
