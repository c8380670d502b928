// Package gitutil wraps go-git for the sync engine's changed-file
// detection: diffing ORIG_HEAD..HEAD (or the last commit, when there is
// no ORIG_HEAD) for a repo already checked out on disk.
package gitutil

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// DiffTimeout bounds every call below; git operations run in-process via
// go-git, but the spec's subprocess-timeout budget still applies so a
// corrupt or enormous repo can't hang a sync run.
const DiffTimeout = 10 * time.Second

// Client opens and diffs repositories already checked out at a path.
type Client struct{}

// NewClient returns a ready-to-use Client.
func NewClient() *Client { return &Client{} }

// Open opens a repository at path.
func (c *Client) Open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// ChangedFiles returns the set of paths added, modified, or deleted
// between ORIG_HEAD and HEAD. If ORIG_HEAD doesn't exist (e.g. a fresh
// clone, or a non-merge commit event) it falls back to diffing HEAD
// against HEAD~1.
func (c *Client) ChangedFiles(ctx context.Context, repo *git.Repository) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, DiffTimeout)
	defer cancel()

	type result struct {
		files []string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		files, err := c.changedFiles(repo)
		done <- result{files, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("git diff timed out: %w", ctx.Err())
	case r := <-done:
		return r.files, r.err
	}
}

func (c *Client) changedFiles(repo *git.Repository) ([]string, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	oldHash, err := repo.ResolveRevision(plumbing.Revision("ORIG_HEAD"))
	if err != nil {
		oldHash, err = repo.ResolveRevision(plumbing.Revision("HEAD~1"))
		if err != nil {
			// No prior commit to diff against (first commit in the repo).
			return nil, nil
		}
	}

	oldCommit, err := repo.CommitObject(*oldHash)
	if err != nil {
		return nil, fmt.Errorf("loading old commit: %w", err)
	}
	newCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("loading new commit: %w", err)
	}

	oldTree, err := oldCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading old tree: %w", err)
	}
	newTree, err := newCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading new tree: %w", err)
	}

	changes, err := object.DiffTree(oldTree, newTree)
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}

	seen := make(map[string]bool, len(changes))
	var files []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		files = append(files, name)
	}

	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			continue
		}
		switch action {
		case merkletrie.Insert, merkletrie.Modify:
			add(change.To.Name)
		case merkletrie.Delete:
			add(change.From.Name)
		}
	}
	return files, nil
}

// HeadSHA returns the current HEAD commit SHA.
func (c *Client) HeadSHA(repo *git.Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	return head.Hash().String(), nil
}
