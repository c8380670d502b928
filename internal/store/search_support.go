package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// FTSMatch is one BM25-ranked hit against cards_fts.
type FTSMatch struct {
	CardID int64
	Rank   float64 // raw bm25() score; lower is more relevant
}

// SearchFTS runs a sanitized, unquoted OR query against cards_fts with the
// per-column BM25 weights from spec.md §4.6, returning up to fetchLimit hits.
func (s *Store) SearchFTS(ctx context.Context, sanitizedQuery string, fetchLimit int) ([]FTSMatch, error) {
	if strings.TrimSpace(sanitizedQuery) == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT rowid, bm25(cards_fts, %v, %v, %v, %v, %v, %v) AS rank
		FROM cards_fts WHERE cards_fts MATCH ?
		ORDER BY rank LIMIT ?
	`, ftsWeights[0], ftsWeights[1], ftsWeights[2], ftsWeights[3], ftsWeights[4], ftsWeights[5]),
		sanitizedQuery, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fts query: %w", err)
	}
	defer rows.Close()

	var matches []FTSMatch
	for rows.Next() {
		var m FTSMatch
		if err := rows.Scan(&m.CardID, &m.Rank); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// SearchVectors runs the brute-force cosine scan over card_embeddings.
func (s *Store) SearchVectors(queryEmbedding []float32, fetchLimit int) ([]VectorMatch, error) {
	return s.searchCardEmbeddings(queryEmbedding, fetchLimit)
}

// MetricsRow is one row of the query cache/log.
type MetricsRow struct {
	ID             int64
	Query          string
	QueryEmbedding []float32
	CardIDs        []int64
}

// RecentMetricsWithEmbedding returns the last n metrics rows that carry a
// non-null query_embedding, most recent first (C8 step 1's semantic cache).
func (s *Store) RecentMetricsWithEmbedding(ctx context.Context, n int) ([]MetricsRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, query_embedding, card_ids FROM metrics
		WHERE query_embedding IS NOT NULL
		ORDER BY id DESC LIMIT ?
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MetricsRow
	for rows.Next() {
		var m MetricsRow
		var blob []byte
		var cardIDsJSON string
		if err := rows.Scan(&m.ID, &m.Query, &blob, &cardIDsJSON); err != nil {
			return nil, err
		}
		m.QueryEmbedding = deserializeFloat32(blob)
		json.Unmarshal([]byte(cardIDsJSON), &m.CardIDs)
		out = append(out, m)
	}
	return out, rows.Err()
}

// RecordMetrics inserts one metrics row for a search call, increments
// usage_count for the returned cards, and logs a retrieval interaction
// for each (heat_score's input), all in a single transaction (C8 step 7).
func (s *Store) RecordMetrics(ctx context.Context, query string, queryEmbedding []float32, cardIDs []int64, cacheHit bool) error {
	cardIDsJSON, _ := json.Marshal(cardIDs)
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO metrics (query, query_embedding, card_ids, cache_hit)
			VALUES (?, ?, ?, ?)
		`, query, serializeFloat32(queryEmbedding), string(cardIDsJSON), cacheHit); err != nil {
			return fmt.Errorf("inserting metrics row: %w", err)
		}
		for _, id := range cardIDs {
			if _, err := tx.ExecContext(ctx, `UPDATE cards SET usage_count = usage_count + 1 WHERE id = ?`, id); err != nil {
				return fmt.Errorf("incrementing usage_count: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO card_interactions (card_id, kind) VALUES (?, 'retrieval')`, id); err != nil {
				return fmt.Errorf("logging card interaction: %w", err)
			}
		}
		return nil
	})
}

// GetCardEmbedding loads one card's content embedding, for MMR's
// cosine-to-selected term.
func (s *Store) GetCardEmbedding(ctx context.Context, cardID int64) ([]float32, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT embedding FROM card_embeddings WHERE card_id = ?`, cardID).Scan(&blob)
	if err != nil {
		return nil, err
	}
	return deserializeFloat32(blob), nil
}

// GetCards loads multiple cards by ID, preserving no particular order.
func (s *Store) GetCards(ctx context.Context, ids []int64) (map[int64]*CardRow, error) {
	out := make(map[int64]*CardRow, len(ids))
	for _, id := range ids {
		c, err := s.GetCard(ctx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return nil, err
		}
		out[id] = c
	}
	return out, nil
}
