package sync

import "path"

// Level is how much work a branch event triggers.
type Level string

const (
	LevelSkip        Level = "skip"
	LevelFull        Level = "full"
	LevelLightweight Level = "lightweight"
)

var skipPatterns = []string{"demo/*", "*-demo", "*_demo", "*/demo/*", "demo"}

var fullPatterns = []string{
	"main", "master", "develop", "development", "staging", "stage",
	"production", "prod", "release", "release/*", "hotfix/*", "epic/*",
}

// ClassifyBranch applies spec.md §4.9's exact branch classification
// table: skip (demo branches never get synced), full (trunk/release
// branches get cross-repo propagation and a flow re-run), or lightweight
// (everything else — feature/fix/bugfix/chore/refactor branches and any
// unrecognized name get per-card staleness only).
func ClassifyBranch(branch string) Level {
	for _, p := range skipPatterns {
		if matches(p, branch) {
			return LevelSkip
		}
	}
	for _, p := range fullPatterns {
		if matches(p, branch) {
			return LevelFull
		}
	}
	return LevelLightweight
}

func matches(pattern, branch string) bool {
	ok, err := path.Match(pattern, branch)
	return err == nil && ok
}
