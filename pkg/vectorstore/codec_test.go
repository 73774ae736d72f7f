package vectorstore

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(3)
	require.NoError(t, err)
	require.NoError(t, idx.Add([]float32{1, 0, 0}))
	require.NoError(t, idx.Add([]float32{0, 1, 0}))
	require.NoError(t, idx.Add([]float32{0.5, 0.5, -2.25}))
	return idx
}

func TestIndexBinaryRoundTrip(t *testing.T) {
	idx := sampleIndex(t)

	data, err := idx.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, indexHeaderSize+3*3*4+checksumSize)

	decoded, err := UnmarshalIndex(data)
	require.NoError(t, err)
	assert.Equal(t, 3, decoded.Dims())
	assert.Equal(t, 3, decoded.Len())
	assert.Equal(t, []float32{0.5, 0.5, -2.25}, decoded.Vector(2))
}

func TestIndexSearchOrdersByDistance(t *testing.T) {
	idx := sampleIndex(t)

	hits, err := idx.Search([]float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Position)
	assert.Equal(t, float32(0), hits[0].Distance)
	assert.Equal(t, 0, hits[1].Position)
	assert.Equal(t, float32(2), hits[1].Distance)

	_, err = idx.Search([]float32{1, 2}, 1)
	assert.Error(t, err)

	hits, err = idx.Search([]float32{0, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestNewIndexRejectsNonPositiveDims(t *testing.T) {
	_, err := NewIndex(0)
	assert.Error(t, err)
}

func TestUnmarshalIndexRejectsCorruption(t *testing.T) {
	good, err := sampleIndex(t).MarshalBinary()
	require.NoError(t, err)

	flipped := append([]byte(nil), good...)
	flipped[indexHeaderSize+1] ^= 0xFF

	badMagic := append([]byte(nil), good...)
	copy(badMagic, "NOPE")
	resum(badMagic)

	truncated := append([]byte(nil), good[:len(good)-8]...)
	truncated = binary.LittleEndian.AppendUint32(truncated, 0)
	resum(truncated)

	cases := map[string][]byte{
		"empty":     nil,
		"short":     []byte("VSIX"),
		"checksum":  flipped,
		"magic":     badMagic,
		"truncated": truncated,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalIndex(data)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	docs := []Document{
		{Text: "first chunk", Source: "notes.pdf", ChunkIndex: 0, Page: 1},
		{Text: "", Source: "empty.txt", ChunkIndex: 0},
		{Text: "ünïcödé ✓", Source: "dir/readme.md", ChunkIndex: 7, Page: 0},
	}

	data, err := EncodeMetadata(docs)
	require.NoError(t, err)

	decoded, err := DecodeMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, docs, decoded)
}

func TestEncodeMetadataRejectsNegativeFields(t *testing.T) {
	_, err := EncodeMetadata([]Document{{Text: "x", ChunkIndex: -1}})
	assert.Error(t, err)
}

func TestDecodeMetadataRejectsCorruption(t *testing.T) {
	good, err := EncodeMetadata([]Document{{Text: "hello", Source: "a.txt"}})
	require.NoError(t, err)

	flipped := append([]byte(nil), good...)
	flipped[metadataHeaderSize] ^= 0x01

	hugeCount := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(hugeCount[6:10], 1<<30)
	resum(hugeCount)

	cases := map[string][]byte{
		"empty":      {},
		"checksum":   flipped,
		"huge count": hugeCount,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeMetadata(data)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestDeserializeRejectsMismatchedHalves(t *testing.T) {
	indexBytes, err := sampleIndex(t).MarshalBinary()
	require.NoError(t, err)
	metaBytes, err := EncodeMetadata([]Document{{Text: "only one"}})
	require.NoError(t, err)

	_, err = Deserialize(indexBytes, metaBytes, nil)
	assert.ErrorIs(t, err, ErrCorrupt)
}

// resum rewrites the trailing checksum so only the field under test is wrong.
func resum(data []byte) {
	body := data[:len(data)-checksumSize]
	binary.LittleEndian.PutUint32(data[len(data)-checksumSize:], crcOf(body))
}
