package vectorstore

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

const (
	metadataMagic   = "VSMD"
	metadataVersion = uint16(1)

	// magic(4) + version(2) + count(4)
	metadataHeaderSize = 10
)

// Document is the record attached to one indexed chunk.
type Document struct {
	Text       string `json:"text"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
	Page       int    `json:"page,omitempty"`
}

// EncodeMetadata serializes records in order. Each record is written as uvarint-prefixed text and
// source followed by uvarint chunk index and page; the blob ends with a CRC-32.
func EncodeMetadata(docs []Document) ([]byte, error) {
	buf := make([]byte, 0, metadataHeaderSize+checksumSize+len(docs)*64)
	buf = append(buf, metadataMagic...)
	buf = binary.LittleEndian.AppendUint16(buf, metadataVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(docs)))

	for i, d := range docs {
		if d.ChunkIndex < 0 || d.Page < 0 {
			return nil, fmt.Errorf("record %d: negative chunk index or page", i)
		}
		buf = appendString(buf, d.Text)
		buf = appendString(buf, d.Source)
		buf = binary.AppendUvarint(buf, uint64(d.ChunkIndex))
		buf = binary.AppendUvarint(buf, uint64(d.Page))
	}

	buf = binary.LittleEndian.AppendUint32(buf, crc32.ChecksumIEEE(buf))
	return buf, nil
}

// DecodeMetadata is the inverse of EncodeMetadata. Any framing problem yields ErrCorrupt.
func DecodeMetadata(data []byte) ([]Document, error) {
	if len(data) < metadataHeaderSize+checksumSize {
		return nil, fmt.Errorf("%w: metadata blob too short (%d bytes)", ErrCorrupt, len(data))
	}
	if err := verifyChecksum(data); err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	if string(data[:4]) != metadataMagic {
		return nil, fmt.Errorf("%w: bad metadata magic %q", ErrCorrupt, data[:4])
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != metadataVersion {
		return nil, fmt.Errorf("%w: unsupported metadata version %d", ErrCorrupt, v)
	}
	count := binary.LittleEndian.Uint32(data[6:10])

	r := &recordReader{buf: data[metadataHeaderSize : len(data)-checksumSize]}
	// every record takes at least four bytes, which bounds the allocation for hostile counts
	if uint64(count)*4 > uint64(len(r.buf)) {
		return nil, fmt.Errorf("%w: metadata declares %d records in %d bytes", ErrCorrupt, count, len(r.buf))
	}

	docs := make([]Document, 0, count)
	for i := uint32(0); i < count; i++ {
		text, err := r.string()
		if err != nil {
			return nil, fmt.Errorf("record %d text: %w", i, err)
		}
		source, err := r.string()
		if err != nil {
			return nil, fmt.Errorf("record %d source: %w", i, err)
		}
		chunk, err := r.uvarint()
		if err != nil {
			return nil, fmt.Errorf("record %d chunk index: %w", i, err)
		}
		page, err := r.uvarint()
		if err != nil {
			return nil, fmt.Errorf("record %d page: %w", i, err)
		}
		docs = append(docs, Document{Text: text, Source: source, ChunkIndex: int(chunk), Page: int(page)})
	}
	if len(r.buf) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after metadata records", ErrCorrupt, len(r.buf))
	}
	return docs, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

type recordReader struct {
	buf []byte
}

func (r *recordReader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf)
	if n <= 0 {
		return 0, fmt.Errorf("%w: malformed varint", ErrCorrupt)
	}
	r.buf = r.buf[n:]
	return v, nil
}

func (r *recordReader) string() (string, error) {
	n, err := r.uvarint()
	if err != nil {
		return "", err
	}
	if n > uint64(len(r.buf)) {
		return "", fmt.Errorf("%w: string length %d exceeds remaining %d bytes", ErrCorrupt, n, len(r.buf))
	}
	s := string(r.buf[:n])
	r.buf = r.buf[n:]
	return s, nil
}
