package store

import (
	"context"
	"testing"
)

func TestListFlowsAggregatesByFlow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cards := []CardRow{
		{Flow: "patient", Title: "patient-card", Content: "a", CardType: "flow",
			SourceFiles: []string{"app/models/patient.rb"}, SourceRepos: []string{"api"}, ContentHash: "h1"},
		{Flow: "patient", Title: "patient-controller-card", Content: "b", CardType: "flow",
			SourceFiles: []string{"app/controllers/patients_controller.rb"}, SourceRepos: []string{"api"}, ContentHash: "h2", Stale: true},
		{Flow: "dashboard", Title: "dashboard-card", Content: "c", CardType: "flow",
			SourceFiles: []string{"src/pages/dashboard.tsx"}, SourceRepos: []string{"web"}, ContentHash: "h3"},
	}
	for _, c := range cards {
		if _, _, err := s.UpsertCard(ctx, c, []float32{0.1, 0.2, 0.3}); err != nil {
			t.Fatalf("upsert %q: %v", c.Title, err)
		}
	}

	summaries, err := s.ListFlows(ctx)
	if err != nil {
		t.Fatalf("listing flows: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 flows, got %d", len(summaries))
	}

	byName := make(map[string]FlowSummary, len(summaries))
	for _, f := range summaries {
		byName[f.Name] = f
	}

	patient := byName["patient"]
	if patient.CardCount != 2 || patient.FileCount != 2 || patient.StaleCount != 1 {
		t.Errorf("unexpected patient summary: %+v", patient)
	}
	if len(patient.Repos) != 1 || patient.Repos[0] != "api" {
		t.Errorf("expected repos=[api], got %v", patient.Repos)
	}
	if patient.IsPageFlow {
		t.Error("expected patient flow not to be a page flow")
	}

	dashboard := byName["dashboard"]
	if !dashboard.IsPageFlow {
		t.Error("expected dashboard flow (src/pages/...) to be a page flow")
	}
}

func TestListFlowsEmptyStore(t *testing.T) {
	s := openTestStore(t)
	summaries, err := s.ListFlows(context.Background())
	if err != nil {
		t.Fatalf("listing flows: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("expected no flows, got %d", len(summaries))
	}
}
