// Package vectorstore holds the per-user similarity index, its byte-level codecs and the
// session-scoped loader that keeps the cache warm.
package vectorstore

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"sort"
)

const (
	indexMagic   = "VSIX"
	indexVersion = uint16(1)

	// magic(4) + version(2) + dims(4) + count(4)
	indexHeaderSize = 14
	checksumSize    = 4
)

// Hit is one index match: the position of the vector and its squared L2 distance to the query.
type Hit struct {
	Position int
	Distance float32
}

// Index is an exact nearest-neighbour index over fixed-length vectors stored row-major.
// Distances are squared euclidean, so lower means closer.
type Index struct {
	dims    int
	vectors []float32
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(dims int) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dims)
	}
	return &Index{dims: dims}, nil
}

// Dims returns the vector dimension.
func (idx *Index) Dims() int { return idx.dims }

// Len returns the number of vectors.
func (idx *Index) Len() int { return len(idx.vectors) / idx.dims }

// Add appends a vector. Its position is the previous Len.
func (idx *Index) Add(vec []float32) error {
	if len(vec) != idx.dims {
		return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vec), idx.dims)
	}
	idx.vectors = append(idx.vectors, vec...)
	return nil
}

// Vector returns a copy of the vector stored at position i.
func (idx *Index) Vector(i int) []float32 {
	out := make([]float32, idx.dims)
	copy(out, idx.vectors[i*idx.dims:(i+1)*idx.dims])
	return out
}

// Search returns up to k hits ordered by ascending distance. Ties keep insertion order.
func (idx *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != idx.dims {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), idx.dims)
	}
	n := idx.Len()
	if k <= 0 || n == 0 {
		return nil, nil
	}

	hits := make([]Hit, n)
	for i := 0; i < n; i++ {
		hits[i] = Hit{Position: i, Distance: l2DistanceSquared(query, idx.vectors[i*idx.dims:(i+1)*idx.dims])}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

	if k > n {
		k = n
	}
	return hits[:k], nil
}

// MarshalBinary encodes the index as: magic, version, dims, count, little-endian float32 payload
// and a trailing CRC-32 of everything before it.
func (idx *Index) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, indexHeaderSize+len(idx.vectors)*4+checksumSize)
	buf = append(buf, indexMagic...)
	buf = binary.LittleEndian.AppendUint16(buf, indexVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(idx.dims))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(idx.Len()))
	for _, v := range idx.vectors {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	buf = binary.LittleEndian.AppendUint32(buf, crc32.ChecksumIEEE(buf))
	return buf, nil
}

// UnmarshalIndex decodes bytes produced by MarshalBinary. Any framing problem yields ErrCorrupt.
func UnmarshalIndex(data []byte) (*Index, error) {
	if len(data) < indexHeaderSize+checksumSize {
		return nil, fmt.Errorf("%w: index blob too short (%d bytes)", ErrCorrupt, len(data))
	}
	if err := verifyChecksum(data); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	if string(data[:4]) != indexMagic {
		return nil, fmt.Errorf("%w: bad index magic %q", ErrCorrupt, data[:4])
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != indexVersion {
		return nil, fmt.Errorf("%w: unsupported index version %d", ErrCorrupt, v)
	}
	dims := binary.LittleEndian.Uint32(data[6:10])
	count := binary.LittleEndian.Uint32(data[10:14])
	if dims == 0 {
		return nil, fmt.Errorf("%w: index has zero dimensions", ErrCorrupt)
	}

	payload := data[indexHeaderSize : len(data)-checksumSize]
	want := uint64(dims) * uint64(count) * 4
	if uint64(len(payload)) != want {
		return nil, fmt.Errorf("%w: index payload is %d bytes, header declares %d", ErrCorrupt, len(payload), want)
	}

	vectors := make([]float32, len(payload)/4)
	for i := range vectors {
		vectors[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return &Index{dims: int(dims), vectors: vectors}, nil
}

func verifyChecksum(data []byte) error {
	body := data[:len(data)-checksumSize]
	stored := binary.LittleEndian.Uint32(data[len(data)-checksumSize:])
	if crc32.ChecksumIEEE(body) != stored {
		return fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return nil
}

func l2DistanceSquared(a, b []float32) float32 {
	var sum float32
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
