package sync

import "testing"

func TestClassifyBranchSkip(t *testing.T) {
	for _, b := range []string{"demo", "demo/foo", "launch-demo", "launch_demo", "team/demo/x"} {
		if got := ClassifyBranch(b); got != LevelSkip {
			t.Errorf("ClassifyBranch(%q) = %v, want skip", b, got)
		}
	}
}

func TestClassifyBranchFull(t *testing.T) {
	for _, b := range []string{"main", "master", "develop", "staging", "release/1.2", "hotfix/urgent", "epic/checkout"} {
		if got := ClassifyBranch(b); got != LevelFull {
			t.Errorf("ClassifyBranch(%q) = %v, want full", b, got)
		}
	}
}

func TestClassifyBranchLightweight(t *testing.T) {
	for _, b := range []string{"feature/new-login", "fix/bug-123", "bugfix/x", "chore/deps", "refactor/cleanup", "some-random-branch"} {
		if got := ClassifyBranch(b); got != LevelLightweight {
			t.Errorf("ClassifyBranch(%q) = %v, want lightweight", b, got)
		}
	}
}

func TestExtractBranchContextTicketID(t *testing.T) {
	bc := ExtractBranchContext("repo1", "feature/PROJ-1234-add-login", "")
	if bc.TicketID != "PROJ-1234" {
		t.Errorf("expected ticket id PROJ-1234, got %q", bc.TicketID)
	}
	if bc.ContextHint == "" {
		t.Error("expected a non-empty context hint")
	}
}

func TestExtractBranchContextNoTicket(t *testing.T) {
	bc := ExtractBranchContext("repo1", "feature/cleanup-widgets", "")
	if bc.TicketID != "" {
		t.Errorf("expected no ticket id, got %q", bc.TicketID)
	}
}
