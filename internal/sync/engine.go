// Package sync implements C10: branch classification, active
// BranchContext tracking, changed-file staleness propagation, and
// branch garbage collection.
package sync

import (
	"context"
	"fmt"
	"log/slog"

	gogit "github.com/go-git/go-git/v5"

	"github.com/codeprism/codeprism/internal/gitutil"
	"github.com/codeprism/codeprism/internal/store"
)

// ReparseFunc reparses one changed file and returns its updated
// file-index fields. Supplied by the orchestrator so this package never
// imports the parser directly.
type ReparseFunc func(ctx context.Context, repo, path string) (language, role, contentHash string, err error)

// FullResyncFunc re-runs cross-repo propagation and C5 card regeneration
// for the flows touched by changedFiles. Only invoked at LevelFull.
type FullResyncFunc func(ctx context.Context, repo string, changedFiles []string) error

// Engine drives sync/checkout events against the store.
type Engine struct {
	Store      *store.Store
	Git        *gitutil.Client
	Reparse    ReparseFunc
	FullResync FullResyncFunc
}

// SyncResult reports what a sync event did.
type SyncResult struct {
	Level       Level
	Indexed     int
	Invalidated int
}

// HandleCheckout records a checkout event and resolves the new active
// BranchContext. prevBranch is the branch name the checkout hook
// reports as the previous HEAD, empty if unknown.
func (e *Engine) HandleCheckout(ctx context.Context, repo, branch, prevBranch string) (BranchContext, error) {
	bc := ExtractBranchContext(repo, branch, prevBranch)
	if err := e.Store.RecordBranchEvent(ctx, store.BranchEvent{
		Repo: repo, Branch: branch, EventType: "checkout",
		TicketID: bc.TicketID, ContextHint: bc.ContextHint, PrevHead: prevBranch,
	}); err != nil {
		return bc, fmt.Errorf("recording checkout event: %w", err)
	}
	return bc, nil
}

// ActiveContext returns the repo's most recently recorded checkout
// context, consumed by context() when no description is supplied.
func (e *Engine) ActiveContext(ctx context.Context, repo string) (BranchContext, error) {
	ev, err := e.Store.LatestCheckout(ctx, repo)
	if err != nil {
		return BranchContext{}, err
	}
	return ExtractBranchContext(ev.Repo, ev.Branch, ev.PrevHead), nil
}

// HandleSyncEvent runs the merge/pull/rebase/save pipeline: claims the
// per-repo GC flag, computes changed files, reparses them, propagates
// staleness, and — at LevelFull — triggers cross-repo + flow regen.
//
// Sync is driven by git hooks, which must never block a developer's merge
// or checkout: every failure here is logged and swallowed rather than
// returned, so the call always reports success with whatever partial
// progress it made.
func (e *Engine) HandleSyncEvent(ctx context.Context, repo, branch, eventType string, repoHandle *gogit.Repository) (SyncResult, error) {
	level := ClassifyBranch(branch)
	result := SyncResult{Level: level}
	if level == LevelSkip {
		return result, nil
	}

	if err := e.Store.BeginGC(ctx, repo); err != nil {
		slog.Error("sync: claiming gc flag failed", "repo", repo, "error", err)
		return result, nil
	}
	defer e.Store.EndGC(ctx, repo)

	changed, err := e.Git.ChangedFiles(ctx, repoHandle)
	if err != nil {
		slog.Error("sync: computing changed files failed", "repo", repo, "error", err)
		return result, nil
	}

	for _, path := range changed {
		if e.Reparse == nil {
			continue
		}
		language, role, contentHash, err := e.Reparse(ctx, repo, path)
		if err != nil {
			continue // parse error: skip file, never fail the run
		}
		if err := e.Store.UpsertFileIndex(ctx, path, repo, language, role, contentHash, branch); err != nil {
			slog.Error("sync: updating file index failed", "repo", repo, "path", path, "error", err)
			continue
		}
		result.Indexed++
	}

	if len(changed) > 0 {
		if err := e.Store.MarkStale(ctx, changed); err != nil {
			slog.Error("sync: marking cards stale failed", "repo", repo, "error", err)
		} else {
			result.Invalidated = len(changed)
		}
	}

	if err := e.Store.RecordBranchEvent(ctx, store.BranchEvent{Repo: repo, Branch: branch, EventType: eventType}); err != nil {
		slog.Error("sync: recording sync event failed", "repo", repo, "error", err)
	}

	if level == LevelFull && e.FullResync != nil && len(changed) > 0 {
		if err := e.FullResync(ctx, repo, changed); err != nil {
			slog.Error("sync: full resync failed", "repo", repo, "error", err)
		}
	}

	if sha, shaErr := e.Git.HeadSHA(repoHandle); shaErr == nil {
		e.Store.RecordRepoSync(ctx, repo, sha)
	}

	return result, nil
}

// BranchGC deletes orphan file_index rows for branches no longer present
// and prunes cards whose valid_branches no longer intersects a live
// branch, deleting cards with an empty survivor set.
func (e *Engine) BranchGC(ctx context.Context, repo string, droppedBranch string) error {
	if err := e.Store.BeginGC(ctx, repo); err != nil {
		return err
	}
	defer e.Store.EndGC(ctx, repo)

	orphans, err := e.Store.FileIndexPaths(ctx, repo, droppedBranch)
	if err != nil {
		return fmt.Errorf("listing orphan file_index rows: %w", err)
	}
	if err := e.Store.DeleteFileIndexPaths(ctx, repo, orphans); err != nil {
		return fmt.Errorf("deleting orphan file_index rows: %w", err)
	}

	live, err := e.Store.LiveBranches(ctx, repo)
	if err != nil {
		return fmt.Errorf("listing live branches: %w", err)
	}

	cards, err := e.Store.CardsWithValidBranches(ctx)
	if err != nil {
		return fmt.Errorf("listing branch-scoped cards: %w", err)
	}
	for _, c := range cards {
		var survivors []string
		for _, b := range c.ValidBranches {
			if live[b] {
				survivors = append(survivors, b)
			}
		}
		if len(survivors) == len(c.ValidBranches) {
			continue // nothing dropped for this card
		}
		if err := e.Store.PruneCardBranches(ctx, c.ID, survivors); err != nil {
			return fmt.Errorf("pruning card %d branches: %w", c.ID, err)
		}
	}
	return nil
}
