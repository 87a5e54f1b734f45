package vectorstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

// Snapshot wire format, little-endian:
//
//	magic   [4]byte "DQIX"
//	version uint16
//	hashLen uint32, hash bytes
//	dim     uint32
//	count   uint32
//	vectors count*dim float32
//	metaLen uint32, meta bytes (JSON chunk list, embeddings omitted)
//
// The version field exists so future schema changes are detectable;
// anything unrecognised decodes as ErrSnapshotCorrupt and the caller
// starts empty.
var snapshotMagic = [4]byte{'D', 'Q', 'I', 'X'}

const snapshotVersion uint16 = 1

// chunkMeta is the persisted form of a chunk. Embeddings live in the
// vector block, not here.
type chunkMeta struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Position  int    `json:"position"`
	StartChar int    `json:"start_char"`
	EndChar   int    `json:"end_char"`
}

// EncodeSnapshot serialises a snapshot to its wire format.
func EncodeSnapshot(snap *domain.Snapshot) ([]byte, error) {
	if len(snap.Chunks) != len(snap.Vectors) {
		return nil, fmt.Errorf("chunks and vectors length mismatch: %d != %d",
			len(snap.Chunks), len(snap.Vectors))
	}

	metas := make([]chunkMeta, len(snap.Chunks))
	for i, chunk := range snap.Chunks {
		metas[i] = chunkMeta{
			ID:        chunk.ID,
			Content:   chunk.Content,
			Position:  chunk.Position,
			StartChar: chunk.StartChar,
			EndChar:   chunk.EndChar,
		}
	}
	meta, err := json.Marshal(metas)
	if err != nil {
		return nil, fmt.Errorf("marshal chunk metadata: %w", err)
	}

	size := 4 + 2 + 4 + len(snap.DocumentHash) + 4 + 4 +
		len(snap.Vectors)*snap.Dimension*4 + 4 + len(meta)
	out := make([]byte, 0, size)

	out = append(out, snapshotMagic[:]...)
	out = binary.LittleEndian.AppendUint16(out, snapshotVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(snap.DocumentHash)))
	out = append(out, snap.DocumentHash...)
	out = binary.LittleEndian.AppendUint32(out, uint32(snap.Dimension))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(snap.Vectors)))
	for _, vector := range snap.Vectors {
		if len(vector) != snap.Dimension {
			return nil, fmt.Errorf("inconsistent vector dimension %d, want %d",
				len(vector), snap.Dimension)
		}
		for _, v := range vector {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(len(meta)))
	out = append(out, meta...)

	return out, nil
}

// DecodeSnapshot parses the wire format. Any structural problem returns
// domain.ErrSnapshotCorrupt.
func DecodeSnapshot(data []byte) (*domain.Snapshot, error) {
	r := &reader{data: data}

	magic := r.bytes(4)
	if magic == nil || [4]byte(magic) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic", domain.ErrSnapshotCorrupt)
	}
	version := r.u16()
	if r.failed || version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrSnapshotCorrupt, version)
	}

	hashLen := r.u32()
	hash := r.bytes(int(hashLen))
	dimension := int(r.u32())
	count := int(r.u32())
	if r.failed || dimension < 0 || count < 0 {
		return nil, fmt.Errorf("%w: truncated header", domain.ErrSnapshotCorrupt)
	}
	if remaining := len(data) - r.off; count*dimension*4 > remaining {
		return nil, fmt.Errorf("%w: vector block exceeds payload", domain.ErrSnapshotCorrupt)
	}

	vectors := make([][]float32, count)
	for i := 0; i < count; i++ {
		vector := make([]float32, dimension)
		for j := 0; j < dimension; j++ {
			vector[j] = math.Float32frombits(r.u32())
		}
		vectors[i] = vector
	}

	metaLen := r.u32()
	meta := r.bytes(int(metaLen))
	if r.failed {
		return nil, fmt.Errorf("%w: truncated body", domain.ErrSnapshotCorrupt)
	}

	var metas []chunkMeta
	if err := json.Unmarshal(meta, &metas); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSnapshotCorrupt, err)
	}
	if len(metas) != count {
		return nil, fmt.Errorf("%w: %d chunk records for %d vectors",
			domain.ErrSnapshotCorrupt, len(metas), count)
	}

	chunks := make([]*domain.Chunk, count)
	for i, m := range metas {
		chunks[i] = &domain.Chunk{
			ID:        m.ID,
			Content:   m.Content,
			Embedding: vectors[i],
			Position:  m.Position,
			StartChar: m.StartChar,
			EndChar:   m.EndChar,
		}
	}

	return &domain.Snapshot{
		DocumentHash: string(hash),
		Dimension:    dimension,
		Chunks:       chunks,
		Vectors:      vectors,
	}, nil
}

// reader is a bounds-checked cursor over the snapshot bytes.
type reader struct {
	data   []byte
	off    int
	failed bool
}

func (r *reader) bytes(n int) []byte {
	if r.failed || n < 0 || r.off+n > len(r.data) {
		r.failed = true
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u16() uint16 {
	b := r.bytes(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) u32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}
