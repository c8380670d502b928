package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// CardEmbeddingRow is one card's embedding plus the repo set it belongs
// to, the input the specificity engine (C9) folds into its centroids.
type CardEmbeddingRow struct {
	CardID      int64
	Embedding   []float32
	SourceRepos []string
}

// AllCardEmbeddings loads every card's embedding alongside its
// source_repos, for centroid computation.
func (s *Store) AllCardEmbeddings(ctx context.Context) ([]CardEmbeddingRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.source_repos, e.embedding
		FROM cards c
		JOIN card_embeddings e ON e.card_id = c.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CardEmbeddingRow
	for rows.Next() {
		var r CardEmbeddingRow
		var sourceRepos string
		var blob []byte
		if err := rows.Scan(&r.CardID, &sourceRepos, &blob); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(sourceRepos), &r.SourceRepos)
		r.Embedding = deserializeFloat32(blob)
		out = append(out, r)
	}
	return out, rows.Err()
}

// BatchUpdateSpecificity writes every card's recomputed specificity_score
// in a single transaction (spec invariant: writes are batched).
func (s *Store) BatchUpdateSpecificity(ctx context.Context, scores map[int64]float64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for id, score := range scores {
			if _, err := tx.ExecContext(ctx, `UPDATE cards SET specificity_score = ? WHERE id = ?`, score, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// CardInteractionRow is one logged retrieval/verify event against a card,
// the input the heat recompute folds into an exponentially-decayed
// heat_score.
type CardInteractionRow struct {
	CardID    int64
	CreatedAt time.Time
}

// AllCardInteractions loads every card_interactions row for heat recompute.
// Cards with no interactions simply never appear and decay to zero heat.
func (s *Store) AllCardInteractions(ctx context.Context) ([]CardInteractionRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT card_id, created_at FROM card_interactions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CardInteractionRow
	for rows.Next() {
		var r CardInteractionRow
		var createdAt string
		if err := rows.Scan(&r.CardID, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt = parseSQLiteTime(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// parseSQLiteTime parses the DATETIME strings SQLite's CURRENT_TIMESTAMP
// writes ("2006-01-02 15:04:05"), falling back to the zero time (treated
// as maximally stale) on any format mismatch.
func parseSQLiteTime(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// BatchUpdateHeat writes every card's recomputed heat_score in a single
// transaction.
func (s *Store) BatchUpdateHeat(ctx context.Context, scores map[int64]float64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for id, score := range scores {
			if _, err := tx.ExecContext(ctx, `UPDATE cards SET heat_score = ? WHERE id = ?`, score, id); err != nil {
				return err
			}
		}
		return nil
	})
}
