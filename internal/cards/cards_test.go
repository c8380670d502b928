package cards

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/codeprism/codeprism/internal/classifier"
	"github.com/codeprism/codeprism/internal/flows"
	"github.com/codeprism/codeprism/internal/graph"
	"github.com/codeprism/codeprism/internal/parser"
)

type fakeGenerator struct {
	out string
	err error
}

func (f fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.out, f.err
}

func TestComputeTags(t *testing.T) {
	files := []SourceFile{
		{Path: "app/models/patient.rb", Repo: "backend-api", Language: "ruby"},
		{Path: "src/components/PatientView.vue", Repo: "frontend-web", Language: "vue"},
	}
	tags := computeTags(files, "flow")

	want := []string{"backend-api", "ruby", "model", "backend", "frontend-web", "vue", "component", "frontend", "flow"}
	for _, w := range want {
		found := false
		for _, tag := range tags {
			if tag == w {
				found = true
			}
		}
		if !found {
			t.Errorf("expected tag %q in %v", w, tags)
		}
	}

	seen := make(map[string]bool)
	for _, tag := range tags {
		if seen[tag] {
			t.Errorf("duplicate tag %q", tag)
		}
		seen[tag] = true
	}
}

func TestCardTier(t *testing.T) {
	if cardTier([]float64{0.8, 0.9}) != TierPremium {
		t.Error("expected premium")
	}
	if cardTier([]float64{0.4, 0.5}) != TierStandard {
		t.Error("expected standard")
	}
	if cardTier([]float64{0.1}) != TierStructural {
		t.Error("expected structural")
	}
	if cardTier(nil) != TierStructural {
		t.Error("expected structural for missing heat scores")
	}
}

func TestGenerateFlowCardAppliesHeatTier(t *testing.T) {
	flow := flows.Flow{Name: "patient", Files: []string{"app/models/patient.rb"}, Repos: []string{"r1"}}
	files := []SourceFile{{Path: "app/models/patient.rb", Repo: "r1", Role: classifier.RoleDomain}}

	cold := GenerateFlowCard(context.Background(), flow, files, nil, nil, nil)
	if cold.Tier != TierStructural {
		t.Errorf("expected structural tier with no heat history, got %q", cold.Tier)
	}

	hot := GenerateFlowCard(context.Background(), flow, files, nil, []float64{0.8, 0.9}, nil)
	if hot.Tier != TierPremium {
		t.Errorf("expected premium tier with hot heat history, got %q", hot.Tier)
	}
}

func TestGenerateHubCardAppliesHeatTier(t *testing.T) {
	hub := flows.Flow{Name: "shared_auth", Files: []string{"app/lib/auth.rb"}, Repos: []string{"r1"}, IsHub: true}
	files := []SourceFile{{Path: "app/lib/auth.rb", Repo: "r1", Role: classifier.RoleDomain}}

	card := GenerateHubCard(context.Background(), hub, nil, files, []float64{0.4, 0.5}, nil)
	if card.Tier != TierStandard {
		t.Errorf("expected standard tier, got %q", card.Tier)
	}
}

func TestContentHashInvariant(t *testing.T) {
	flow := flows.Flow{Name: "patient", Files: []string{"app/models/patient.rb"}, Repos: []string{"r1"}}
	files := []SourceFile{{Path: "app/models/patient.rb", Repo: "r1", Role: classifier.RoleDomain}}

	card := GenerateFlowCard(context.Background(), flow, files, nil, nil, nil)

	want := sha256.Sum256([]byte(card.Title + "\n" + card.Content))
	if card.ContentHash != hex.EncodeToString(want[:]) {
		t.Error("content_hash must equal SHA256(title + \"\\n\" + content)")
	}
}

func TestFlowCardExcludesEntryPointFiles(t *testing.T) {
	flow := flows.Flow{Name: "patient", Files: []string{"app/models/patient.rb", "src/main.ts"}, Repos: []string{"r1"}}
	files := []SourceFile{
		{Path: "app/models/patient.rb", Repo: "r1", Role: classifier.RoleDomain},
		{Path: "src/main.ts", Repo: "r1", Role: classifier.RoleEntryPoint},
	}

	card := GenerateFlowCard(context.Background(), flow, files, nil, nil, nil)
	for _, f := range card.SourceFiles {
		if f == "src/main.ts" {
			t.Error("entry_point file must be excluded from source_files")
		}
	}
}

func TestLLMReplacesStructuralContentOnSuccess(t *testing.T) {
	flow := flows.Flow{Name: "patient", Files: []string{"app/models/patient.rb"}, Repos: []string{"r1"}}
	files := []SourceFile{{Path: "app/models/patient.rb", Repo: "r1", Role: classifier.RoleDomain}}

	gen := fakeGenerator{out: "LLM generated summary of the patient flow."}
	card := GenerateFlowCard(context.Background(), flow, files, nil, nil, gen)

	if card.Content != gen.out {
		t.Errorf("expected LLM content to replace structural content, got %q", card.Content)
	}
}

func TestLLMFallsBackToStructuralOnError(t *testing.T) {
	flow := flows.Flow{Name: "patient", Files: []string{"app/models/patient.rb"}, Repos: []string{"r1"}}
	files := []SourceFile{{Path: "app/models/patient.rb", Repo: "r1", Role: classifier.RoleDomain}}

	gen := fakeGenerator{err: errors.New("rate limited")}
	card := GenerateFlowCard(context.Background(), flow, files, nil, nil, gen)

	if !strings.Contains(card.Content, "patient") {
		t.Error("expected structural fallback content on LLM error")
	}
	if card.Content == "" {
		t.Error("card content must never be empty: card must always be produced")
	}
}

func TestModelCardAssociationThreshold(t *testing.T) {
	model := SourceFile{
		Path:    "app/models/patient.rb",
		Repo:    "r1",
		Role:    classifier.RoleDomain,
		Classes: []parser.Class{{Name: "Patient", Type: parser.ClassModel}},
	}

	oneAssoc := []parser.Association{{Type: parser.AssocHasMany, Name: "devices", TargetModel: "Device"}}
	if len(oneAssoc) >= MinModelAssociations {
		t.Fatal("test fixture should be below threshold")
	}

	twoAssoc := []parser.Association{
		{Type: parser.AssocHasMany, Name: "devices", TargetModel: "Device"},
		{Type: parser.AssocBelongsTo, Name: "clinic", TargetModel: "Clinic"},
	}
	if len(twoAssoc) < MinModelAssociations {
		t.Fatal("test fixture should meet threshold")
	}

	card := GenerateModelCard(context.Background(), model, twoAssoc, nil)
	if card.CardType != CardModel {
		t.Errorf("expected card_type model, got %q", card.CardType)
	}
	if card.Title != "Patient" {
		t.Errorf("expected title Patient, got %q", card.Title)
	}
}

func TestGenerateDevInsightCard(t *testing.T) {
	card := GenerateDevInsightCard("patient", "Patient sync gotcha", "The sync job retries on 409s.", nil)
	if card.CardType != CardDevInsight {
		t.Errorf("expected card_type dev_insight, got %q", card.CardType)
	}
	if !strings.Contains(card.Content, "sync job retries") {
		t.Errorf("expected caller-authored content preserved, got %q", card.Content)
	}
	if card.ContentHash == "" {
		t.Error("expected content_hash to be computed")
	}
}

func TestGenerateConvInsightCard(t *testing.T) {
	card := GenerateConvInsightCard("billing", "Stripe webhook retries", "Webhooks are deduped by event id.", nil)
	if card.CardType != CardConvInsight {
		t.Errorf("expected card_type conv_insight, got %q", card.CardType)
	}
	if card.Flow != "billing" {
		t.Errorf("expected flow billing, got %q", card.Flow)
	}
}

func TestBuildReverseDependencyIndexAndCards(t *testing.T) {
	edges := []graph.Edge{
		{SourceFile: "app/controllers/patients_controller.rb", TargetFile: "app/lib/auditable.rb", Relation: graph.RelationImport},
		{SourceFile: "app/controllers/devices_controller.rb", TargetFile: "app/lib/auditable.rb", Relation: graph.RelationImport},
		{SourceFile: "app/controllers/devices_controller.rb", TargetFile: "app/lib/solo.rb", Relation: graph.RelationImport},
	}
	reverse := BuildReverseDependencyIndex(edges)
	if len(reverse["app/lib/auditable.rb"]) != 2 {
		t.Fatalf("expected 2 dependents for auditable.rb, got %v", reverse["app/lib/auditable.rb"])
	}

	cards := GenerateAutoGeneratedCards(reverse, map[string]SourceFile{})
	if len(cards) != 1 {
		t.Fatalf("expected only dependency targets meeting the 2-dependent threshold, got %d cards", len(cards))
	}
	if cards[0].CardType != CardAutoGenerated {
		t.Errorf("expected card_type auto_generated, got %q", cards[0].CardType)
	}
	if !strings.Contains(cards[0].Content, "auditable.rb") {
		t.Errorf("expected blast-radius content to name the dependency, got %q", cards[0].Content)
	}
}

func TestClusterAPIEndpoints(t *testing.T) {
	edges := []graph.Edge{
		{SourceFile: "fe/api.ts", TargetFile: "be/routes.rb", Relation: graph.RelationAPIEndpoint, Weight: 3},
		{SourceFile: "fe/api.ts", TargetFile: "be/routes.rb", Relation: graph.RelationAPIEndpoint, Weight: 3},
		{SourceFile: "fe/other.ts", TargetFile: "be/routes.rb", Relation: graph.RelationAPIEndpoint, Weight: 3},
		{SourceFile: "fe/api.ts", TargetFile: "be/routes.rb", Relation: graph.RelationImport, Weight: 1},
	}
	clusters := ClusterAPIEndpoints(edges)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters grouped by (fe_file, be_file), got %d", len(clusters))
	}
	if len(clusters[[2]string{"fe/api.ts", "be/routes.rb"}]) != 2 {
		t.Error("expected both api_endpoint edges for the same pairing in one cluster")
	}
}
