package cards

import (
	"regexp"
	"strings"
)

var pathPatternTags = []struct {
	pattern *regexp.Regexp
	tag     string
}{
	{regexp.MustCompile(`/models?/`), "model"},
	{regexp.MustCompile(`/controllers?/`), "controller"},
	{regexp.MustCompile(`/components?/`), "component"},
	{regexp.MustCompile(`/services?/`), "service"},
	{regexp.MustCompile(`/jobs?/`), "job"},
	{regexp.MustCompile(`/middlewares?/`), "middleware"},
}

var frontendRepoRe = regexp.MustCompile(`(?i)front(end)?|client|web|ui`)
var backendRepoRe = regexp.MustCompile(`(?i)back(end)?|server|api`)

// computeTags derives a card's tags from repo names, languages, path
// patterns, and a frontend/backend repo-name heuristic, deduplicated.
func computeTags(files []SourceFile, role string) []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(t string) {
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		tags = append(tags, t)
	}

	for _, f := range files {
		add(f.Repo)
		add(strings.ToLower(f.Language))
		for _, p := range pathPatternTags {
			if p.pattern.MatchString(f.Path) {
				add(p.tag)
			}
		}
		if frontendRepoRe.MatchString(f.Repo) {
			add("frontend")
		}
		if backendRepoRe.MatchString(f.Repo) {
			add("backend")
		}
	}
	add(role)
	return tags
}

// CardTier is the pricing/quality tier a card falls into based on its
// flow's recent engagement heat.
type CardTier string

const (
	TierPremium    CardTier = "premium"
	TierStandard   CardTier = "standard"
	TierStructural CardTier = "structural"
)

// cardTier buckets a card by the mean of heatScores, the heat_score of each
// card already stored under the flow. An empty slice yields TierStructural.
func cardTier(heatScores []float64) CardTier {
	if len(heatScores) == 0 {
		return TierStructural
	}
	sum := 0.0
	for _, h := range heatScores {
		sum += h
	}
	mean := sum / float64(len(heatScores))
	switch {
	case mean > 0.6:
		return TierPremium
	case mean > 0.3:
		return TierStandard
	default:
		return TierStructural
	}
}
