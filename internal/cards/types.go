// Package cards implements C5: structural-first, LLM-enriched card
// generation from flows, hubs, models, and cross-service pairings.
package cards

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/codeprism/codeprism/internal/classifier"
	"github.com/codeprism/codeprism/internal/parser"
)

// CardType identifies which template and assembly rules produced a card.
type CardType string

const (
	CardFlow          CardType = "flow"
	CardHub           CardType = "hub"
	CardModel         CardType = "model"
	CardCrossService  CardType = "cross_service"
	CardAutoGenerated CardType = "auto_generated"
	CardDevInsight    CardType = "dev_insight"
	CardConvInsight   CardType = "conv_insight"
)

// MinModelAssociations is the minimum association count a model must have
// before a model card is emitted for it.
const MinModelAssociations = 2

// MaxSnippetLines caps source snippets embedded in card content.
const MaxSnippetLines = 150

// Card is the product of C5, stored by C7.
type Card struct {
	Flow              string
	Title             string
	Content           string
	CardType          CardType
	Tier              CardTier
	SourceFiles       []string
	SourceRepos       []string
	Tags              []string
	Identifiers       string
	ValidBranches     []string
	CommitSHA         string
	Stale             bool
	UsageCount        int
	SpecificityScore  float64
	VerificationCount int
	ContentHash       string
}

// SourceFile is the subset of a parsed file a card generator needs to
// assemble structural content and source snippets.
type SourceFile struct {
	Path     string
	Repo     string
	Role     classifier.Role
	Language string
	Content  string
	Classes  []parser.Class
	Routes   []parser.Route
	APICalls []parser.APICall
}

// finalize computes content_hash (invariant (a): SHA256(title + "\n" +
// content)) and excludes entry_point files from source_files.
func finalize(c Card, files []SourceFile) Card {
	var sourceFiles, sourceRepos []string
	seenRepo := make(map[string]bool)
	for _, f := range files {
		if f.Role == classifier.RoleEntryPoint {
			continue
		}
		sourceFiles = append(sourceFiles, classifier.NormalizeForDisplay(f.Path))
		if !seenRepo[f.Repo] && f.Repo != "" {
			seenRepo[f.Repo] = true
			sourceRepos = append(sourceRepos, f.Repo)
		}
	}
	c.SourceFiles = sourceFiles
	c.SourceRepos = sourceRepos
	c.Identifiers = identifiersFor(files)
	c.ContentHash = contentHash(c.Title, c.Content)
	if c.Tier == "" {
		c.Tier = TierStructural
	}
	return c
}

func contentHash(title, content string) string {
	sum := sha256.Sum256([]byte(title + "\n" + content))
	return hex.EncodeToString(sum[:])
}

// identifiersFor joins class names and route method+path signatures into
// the heavy-weighted FTS identifiers column.
func identifiersFor(files []SourceFile) string {
	var parts []string
	for _, f := range files {
		for _, c := range f.Classes {
			parts = append(parts, c.Name)
		}
		for _, r := range f.Routes {
			parts = append(parts, r.Method+" "+r.Path)
		}
	}
	return joinUnique(parts)
}

func joinUnique(parts []string) string {
	seen := make(map[string]bool, len(parts))
	var out []string
	for _, p := range parts {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	result := ""
	for i, p := range out {
		if i > 0 {
			result += " "
		}
		result += p
	}
	return result
}
