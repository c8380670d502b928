package store

import (
	"context"
	"testing"
)

func TestSearchConfigRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.GetSearchConfig(ctx, "embedding_model"); err != nil {
		t.Fatalf("get before set: %v", err)
	} else if ok {
		t.Fatal("expected no value before set")
	}

	if err := s.SetSearchConfig(ctx, "embedding_model", "text-embedding-3-small"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := s.GetSearchConfig(ctx, "embedding_model")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || value != "text-embedding-3-small" {
		t.Errorf("expected text-embedding-3-small, got %q (ok=%v)", value, ok)
	}

	if err := s.SetSearchConfig(ctx, "embedding_model", "text-embedding-3-large"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, _, err = s.GetSearchConfig(ctx, "embedding_model")
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if value != "text-embedding-3-large" {
		t.Errorf("expected overwrite to stick, got %q", value)
	}
}

func TestInstanceProfileIndependentFromSearchConfig(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SetInstanceProfile(ctx, "instance_id", "abc-123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, err := s.GetSearchConfig(ctx, "instance_id"); err != nil {
		t.Fatalf("get: %v", err)
	} else if ok {
		t.Error("expected instance_profile and search_config to be independent tables")
	}
}
