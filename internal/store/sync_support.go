package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrGCInProgress is returned by BeginGC when another sync/GC run already
// holds the per-repo flag.
var ErrGCInProgress = errors.New("gc already in progress for this repo")

// BeginGC atomically claims the per-repo gc_in_progress flag, creating
// the repo_profiles row if needed. Returns ErrGCInProgress if another run
// already holds it.
func (s *Store) BeginGC(ctx context.Context, repo string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var inProgress bool
		err := tx.QueryRowContext(ctx, `SELECT gc_in_progress FROM repo_profiles WHERE repo = ?`, repo).Scan(&inProgress)
		if err == sql.ErrNoRows {
			_, err = tx.ExecContext(ctx, `INSERT INTO repo_profiles (repo, gc_in_progress) VALUES (?, 1)`, repo)
			return err
		}
		if err != nil {
			return err
		}
		if inProgress {
			return ErrGCInProgress
		}
		_, err = tx.ExecContext(ctx, `UPDATE repo_profiles SET gc_in_progress = 1 WHERE repo = ?`, repo)
		return err
	})
}

// EndGC releases the per-repo gc_in_progress flag.
func (s *Store) EndGC(ctx context.Context, repo string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE repo_profiles SET gc_in_progress = 0 WHERE repo = ?`, repo)
	return err
}

// RecordRepoSync updates a repo's last-synced bookkeeping after a
// successful index/sync run.
func (s *Store) RecordRepoSync(ctx context.Context, repo, commitSHA string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repo_profiles (repo, last_commit_sha, last_synced_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(repo) DO UPDATE SET last_commit_sha = excluded.last_commit_sha, last_synced_at = excluded.last_synced_at
	`, repo, commitSHA)
	return err
}

// BranchEvent records a checkout/merge/pull/rebase/save event for a repo.
type BranchEvent struct {
	Repo        string
	Branch      string
	EventType   string
	TicketID    string
	ContextHint string
	PrevHead    string
}

// RecordBranchEvent appends one branch_events row (append-only log).
func (s *Store) RecordBranchEvent(ctx context.Context, e BranchEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO branch_events (repo, branch, event_type, ticket_id, context_hint, prev_head)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Repo, e.Branch, e.EventType, e.TicketID, e.ContextHint, e.PrevHead)
	return err
}

// LatestCheckout returns the most recent checkout event for a repo, the
// active BranchContext's source.
func (s *Store) LatestCheckout(ctx context.Context, repo string) (*BranchEvent, error) {
	var e BranchEvent
	var ticketID, contextHint, prevHead sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT repo, branch, event_type, ticket_id, context_hint, prev_head
		FROM branch_events WHERE repo = ? AND event_type = 'checkout'
		ORDER BY id DESC LIMIT 1
	`, repo).Scan(&e.Repo, &e.Branch, &e.EventType, &ticketID, &contextHint, &prevHead)
	if err != nil {
		return nil, err
	}
	e.TicketID, e.ContextHint, e.PrevHead = ticketID.String, contextHint.String, prevHead.String
	return &e, nil
}

// UpsertFileIndex records or refreshes one file's index row for a branch.
func (s *Store) UpsertFileIndex(ctx context.Context, path, repo, language, role, contentHash, branch string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file_index (path, repo, language, file_role, content_hash, branch, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(repo, path) DO UPDATE SET
			language = excluded.language, file_role = excluded.file_role,
			content_hash = excluded.content_hash, branch = excluded.branch,
			updated_at = CURRENT_TIMESTAMP
	`, path, repo, language, role, contentHash, branch)
	return err
}

// FileIndexPaths returns every indexed path for a repo on a given branch.
func (s *Store) FileIndexPaths(ctx context.Context, repo, branch string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM file_index WHERE repo = ? AND branch = ?`, repo, branch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteFileIndexPaths removes orphaned file_index rows (branch-GC).
func (s *Store) DeleteFileIndexPaths(ctx context.Context, repo string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, p := range paths {
			if _, err := tx.ExecContext(ctx, `DELETE FROM file_index WHERE repo = ? AND path = ?`, repo, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// LiveBranches returns the distinct set of branches still present in
// file_index for a repo, used to prune valid_branches during branch-GC.
func (s *Store) LiveBranches(ctx context.Context, repo string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT branch FROM file_index WHERE repo = ?`, repo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	live := make(map[string]bool)
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		live[b] = true
	}
	return live, rows.Err()
}

// CardsWithValidBranches returns every card that has a non-null
// valid_branches set (branch-scoped cards, the only ones branch-GC acts on).
func (s *Store) CardsWithValidBranches(ctx context.Context) ([]CardRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, valid_branches FROM cards WHERE valid_branches IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CardRow
	for rows.Next() {
		var c CardRow
		var validBranches string
		if err := rows.Scan(&c.ID, &validBranches); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(validBranches), &c.ValidBranches)
		out = append(out, c)
	}
	return out, rows.Err()
}

// PruneCardBranches rewrites a card's valid_branches to survivors, or
// deletes the card outright if the survivor set is empty.
func (s *Store) PruneCardBranches(ctx context.Context, cardID int64, survivors []string) error {
	if len(survivors) == 0 {
		_, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, cardID)
		return err
	}
	b, err := json.Marshal(survivors)
	if err != nil {
		return fmt.Errorf("marshaling survivor branches: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE cards SET valid_branches = ? WHERE id = ?`, string(b), cardID)
	return err
}
