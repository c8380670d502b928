package store

import (
	"encoding/binary"
	"math"
	"sort"
)

// serializeFloat32 converts a float32 slice to little-endian bytes,
// the BLOB layout every embedding column uses.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// deserializeFloat32 reverses serializeFloat32.
func deserializeFloat32(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

// cosineSimilarity computes cos(a, b) for equal-length vectors. Returns 0
// if either vector has zero magnitude or the lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// VectorMatch is one result of a brute-force nearest-neighbor scan.
type VectorMatch struct {
	CardID     int64
	Similarity float64
}

// searchCardEmbeddings scans card_embeddings for the fetchLimit most
// similar vectors to query, brute-force (no vec0 extension is available
// to modernc.org/sqlite). O(n·D) per call where n is the card count.
func (s *Store) searchCardEmbeddings(query []float32, fetchLimit int) ([]VectorMatch, error) {
	rows, err := s.db.Query(`SELECT card_id, embedding FROM card_embeddings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []VectorMatch
	for rows.Next() {
		var cardID int64
		var blob []byte
		if err := rows.Scan(&cardID, &blob); err != nil {
			return nil, err
		}
		sim := cosineSimilarity(query, deserializeFloat32(blob))
		matches = append(matches, VectorMatch{CardID: cardID, Similarity: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].CardID < matches[j].CardID
	})
	if len(matches) > fetchLimit {
		matches = matches[:fetchLimit]
	}
	return matches, nil
}
