package sync

import "regexp"

var ticketIDRe = regexp.MustCompile(`[A-Z]{2,10}-\d+`)
var hintSeparatorRe = regexp.MustCompile(`[/_-]+`)

// BranchContext is what a checkout event resolves, persisted as the
// repo's active context until the next checkout.
type BranchContext struct {
	Repo        string
	Branch      string
	TicketID    string
	ContextHint string
	EpicParent  string
}

// ExtractBranchContext derives a BranchContext from a checked-out branch
// name and its resolved previous HEAD branch (empty if unknown).
func ExtractBranchContext(repo, branch, prevBranch string) BranchContext {
	ctx := BranchContext{Repo: repo, Branch: branch}
	ctx.TicketID = ticketIDRe.FindString(branch)
	ctx.ContextHint = hintSeparatorRe.ReplaceAllString(stripKnownPrefixes(branch), " ")
	if ClassifyBranch(prevBranch) == LevelFull && matches("epic/*", prevBranch) {
		ctx.EpicParent = prevBranch
	}
	return ctx
}

var knownBranchPrefixes = []string{"feature/", "fix/", "bugfix/", "chore/", "refactor/", "hotfix/", "release/", "epic/"}

func stripKnownPrefixes(branch string) string {
	for _, p := range knownBranchPrefixes {
		if len(branch) > len(p) && branch[:len(p)] == p {
			return branch[len(p):]
		}
	}
	return branch
}
