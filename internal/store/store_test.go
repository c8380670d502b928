package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "codeprism.db"), 3)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertCardSkipsIdenticalHash(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := CardRow{
		Flow: "patient", Title: "patient", Content: "body", CardType: "flow",
		ContentHash: "deadbeef",
	}
	id1, wrote1, err := s.UpsertCard(ctx, c, []float32{0.1, 0.2, 0.3})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !wrote1 {
		t.Fatal("expected first upsert to write")
	}

	id2, wrote2, err := s.UpsertCard(ctx, c, []float32{0.1, 0.2, 0.3})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if wrote2 {
		t.Error("expected identical content_hash to skip the rewrite")
	}
	if id1 != id2 {
		t.Errorf("expected same card id, got %d and %d", id1, id2)
	}
}

func TestUpsertCardNeverTouchesUsageCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := CardRow{Flow: "patient", Title: "patient", Content: "v1", CardType: "flow", ContentHash: "hash1"}
	id, _, err := s.UpsertCard(ctx, c, nil)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.IncrementUsage(ctx, []int64{id}); err != nil {
		t.Fatalf("increment: %v", err)
	}

	c.Content = "v2"
	c.ContentHash = "hash2"
	if _, _, err := s.UpsertCard(ctx, c, nil); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	row, err := s.GetCard(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row.UsageCount != 1 {
		t.Errorf("expected usage_count untouched at 1, got %d", row.UsageCount)
	}
	if row.Content != "v2" {
		t.Errorf("expected content updated to v2, got %q", row.Content)
	}
}

func TestVerifyCardBumpsVerificationCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, _, err := s.UpsertCard(ctx, CardRow{Flow: "patient", Title: "patient", Content: "body", CardType: "flow", ContentHash: "hash1"}, nil)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	ok, err := s.VerifyCard(ctx, id)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected verify to report true for an existing card")
	}

	row, err := s.GetCard(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row.VerificationCount != 1 {
		t.Errorf("expected verification_count 1, got %d", row.VerificationCount)
	}

	ok, err = s.VerifyCard(ctx, id+999)
	if err != nil {
		t.Fatalf("verify missing card: %v", err)
	}
	if ok {
		t.Error("expected verify of a nonexistent card to report false")
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	if sim := cosineSimilarity(a, b); sim < 0.999 {
		t.Errorf("expected identical vectors to have similarity ~1, got %v", sim)
	}
	c := []float32{0, 1, 0}
	if sim := cosineSimilarity(a, c); sim > 0.001 {
		t.Errorf("expected orthogonal vectors to have similarity ~0, got %v", sim)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	v := []float32{0.5, -0.25, 1.75}
	got := deserializeFloat32(serializeFloat32(v))
	if len(got) != len(v) {
		t.Fatalf("expected %d dims, got %d", len(v), len(got))
	}
	for i := range v {
		if got[i] != v[i] {
			t.Errorf("index %d: expected %v, got %v", i, v[i], got[i])
		}
	}
}

func TestSanitizeFts5Query(t *testing.T) {
	got := sanitizeFts5Query("patient AND authorization OR billing NOT hub")
	for _, want := range []string{"patient", "authorization", "billing", "hub"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected sanitized query to contain %q, got %q", want, got)
		}
	}
	for _, op := range []string{" AND ", " NOT "} {
		if strings.Contains(got, op) {
			t.Errorf("expected sanitized query to drop operator %q, got %q", op, got)
		}
	}
	if !strings.Contains(got, " OR ") {
		t.Errorf("expected tokens joined by OR, got %q", got)
	}
}

func TestSanitizeFts5QueryDropsShortTokens(t *testing.T) {
	got := sanitizeFts5Query("a bb c dd")
	if strings.Contains(got, " a ") || strings.HasPrefix(got, "a ") {
		t.Errorf("expected single-character tokens dropped, got %q", got)
	}
}

func TestSanitizeFts5QueryCapsTokenCount(t *testing.T) {
	words := make([]string, 40)
	for i := range words {
		words[i] = "word"
	}
	got := sanitizeFts5Query(strings.Join(words, " "))
	count := strings.Count(got, "OR") + 1
	if count > maxSanitizedTokens {
		t.Errorf("expected at most %d tokens, got %d", maxSanitizedTokens, count)
	}
}
