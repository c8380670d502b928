package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// CardRow is a persisted card (C5's Card plus storage-assigned fields).
type CardRow struct {
	ID                int64
	Flow              string
	Title             string
	Content           string
	CardType          string
	SourceFiles       []string
	SourceRepos       []string
	Tags              []string
	Identifiers       string
	ValidBranches     []string // nil means branch-agnostic
	CommitSHA         string
	Stale             bool
	UsageCount        int
	SpecificityScore  float64
	HeatScore         float64
	Tier              string
	VerificationCount int
	ContentHash       string
}

// UpsertCard writes a card by content_hash: an identical hash leaves the
// existing row untouched (spec.md §4.6/(a)'s reindex-is-idempotent rule).
// On an actual content change it writes the row, refreshes card_embeddings
// with embedding, and rebuilds the FTS row — all in one transaction.
// usage_count is never modified here.
func (s *Store) UpsertCard(ctx context.Context, c CardRow, embedding []float32) (int64, bool, error) {
	if embedding != nil && s.dim > 0 && len(embedding) != s.dim {
		return 0, false, fmt.Errorf("embedding has %d dimensions, store expects %d", len(embedding), s.dim)
	}
	var existingID int64
	var existingHash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, content_hash FROM cards WHERE flow = ? AND card_type = ? AND title = ?`,
		c.Flow, c.CardType, c.Title,
	).Scan(&existingID, &existingHash)

	if err == nil && existingHash == c.ContentHash {
		return existingID, false, nil
	}
	if err != nil && err != sql.ErrNoRows {
		return 0, false, err
	}

	var id int64
	txErr := s.inTx(ctx, func(tx *sql.Tx) error {
		sourceFiles, _ := json.Marshal(c.SourceFiles)
		sourceRepos, _ := json.Marshal(c.SourceRepos)
		tags, _ := json.Marshal(c.Tags)
		var validBranches interface{}
		if c.ValidBranches != nil {
			b, _ := json.Marshal(c.ValidBranches)
			validBranches = string(b)
		}
		tier := c.Tier
		if tier == "" {
			tier = "structural"
		}

		if existingID != 0 {
			_, err := tx.ExecContext(ctx, `
				UPDATE cards SET
					content = ?, source_files = ?, source_repos = ?, tags = ?,
					identifiers = ?, valid_branches = ?, commit_sha = ?,
					tier = ?, content_hash = ?, updated_at = CURRENT_TIMESTAMP
				WHERE id = ?
			`, c.Content, sourceFiles, sourceRepos, tags, c.Identifiers,
				validBranches, c.CommitSHA, tier, c.ContentHash, existingID)
			if err != nil {
				return fmt.Errorf("updating card: %w", err)
			}
			id = existingID
		} else {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO cards
					(flow, title, content, card_type, source_files, source_repos,
					 tags, identifiers, valid_branches, commit_sha, tier, content_hash)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, c.Flow, c.Title, c.Content, c.CardType, sourceFiles, sourceRepos,
				tags, c.Identifiers, validBranches, c.CommitSHA, tier, c.ContentHash)
			if err != nil {
				return fmt.Errorf("inserting card: %w", err)
			}
			id, err = res.LastInsertId()
			if err != nil {
				return err
			}
		}

		if embedding != nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO card_embeddings (card_id, dims, embedding) VALUES (?, ?, ?)
				ON CONFLICT(card_id) DO UPDATE SET dims = excluded.dims, embedding = excluded.embedding
			`, id, len(embedding), serializeFloat32(embedding)); err != nil {
				return fmt.Errorf("writing card embedding: %w", err)
			}
		}

		// fts5 doesn't support ON CONFLICT; delete-then-insert keeps the
		// external-content row in sync with cards on both insert and update.
		if _, err := tx.ExecContext(ctx, `DELETE FROM cards_fts WHERE rowid = ?`, id); err != nil {
			return fmt.Errorf("clearing fts row: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cards_fts (rowid, title, content, flow, source_repos, tags, identifiers)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, c.Title, c.Content, c.Flow, string(sourceRepos), string(tags), c.Identifiers); err != nil {
			return fmt.Errorf("refreshing fts row: %w", err)
		}

		return nil
	})
	if txErr != nil {
		return 0, false, txErr
	}
	return id, true, nil
}

// GetCard loads one card by ID.
func (s *Store) GetCard(ctx context.Context, id int64) (*CardRow, error) {
	var c CardRow
	var sourceFiles, sourceRepos, tags string
	var validBranches sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, flow, title, content, card_type, source_files, source_repos, tags,
		       identifiers, valid_branches, commit_sha, stale, usage_count,
		       specificity_score, heat_score, tier, verification_count, content_hash
		FROM cards WHERE id = ?
	`, id).Scan(&c.ID, &c.Flow, &c.Title, &c.Content, &c.CardType, &sourceFiles,
		&sourceRepos, &tags, &c.Identifiers, &validBranches, &c.CommitSHA, &c.Stale,
		&c.UsageCount, &c.SpecificityScore, &c.HeatScore, &c.Tier, &c.VerificationCount, &c.ContentHash)
	if err != nil {
		return nil, err
	}
	json.Unmarshal([]byte(sourceFiles), &c.SourceFiles)
	json.Unmarshal([]byte(sourceRepos), &c.SourceRepos)
	json.Unmarshal([]byte(tags), &c.Tags)
	if validBranches.Valid {
		json.Unmarshal([]byte(validBranches.String), &c.ValidBranches)
	}
	return &c, nil
}

// MarkStale flags every card whose source_files intersects changedPaths.
func (s *Store) MarkStale(ctx context.Context, changedPaths []string) error {
	if len(changedPaths) == 0 {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, source_files FROM cards WHERE stale = 0`)
	if err != nil {
		return err
	}
	defer rows.Close()

	changed := make(map[string]bool, len(changedPaths))
	for _, p := range changedPaths {
		changed[p] = true
	}

	var staleIDs []int64
	for rows.Next() {
		var id int64
		var sourceFiles string
		if err := rows.Scan(&id, &sourceFiles); err != nil {
			return err
		}
		var files []string
		json.Unmarshal([]byte(sourceFiles), &files)
		for _, f := range files {
			if changed[f] {
				staleIDs = append(staleIDs, id)
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range staleIDs {
			if _, err := tx.ExecContext(ctx, `UPDATE cards SET stale = 1 WHERE id = ?`, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// IncrementUsage bumps usage_count for a set of returned cards and logs a
// card_interactions row for each (C8 step 7's usage-accounting
// requirement), the event stream heat_score is later computed from.
func (s *Store) IncrementUsage(ctx context.Context, cardIDs []int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range cardIDs {
			if _, err := tx.ExecContext(ctx, `UPDATE cards SET usage_count = usage_count + 1 WHERE id = ?`, id); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO card_interactions (card_id, kind) VALUES (?, 'retrieval')`, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// VerifyCard bumps verified_at and verification_count for the given card,
// reporting false when no card with that ID exists.
func (s *Store) VerifyCard(ctx context.Context, cardID int64) (bool, error) {
	var ok bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE cards SET verified_at = CURRENT_TIMESTAMP, verification_count = verification_count + 1
			WHERE id = ?
		`, cardID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		ok = n > 0
		if ok {
			_, err = tx.ExecContext(ctx, `INSERT INTO card_interactions (card_id, kind) VALUES (?, 'verify')`, cardID)
		}
		return err
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}
