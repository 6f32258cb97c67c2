package idempotency

import (
	"context"
	"errors"
	"testing"
)

func TestReserveFirstUse(t *testing.T) {
	store := NewInMemoryStore()

	record, err := store.Reserve(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if record != nil {
		t.Errorf("expected no record on first reservation, got %+v", record)
	}
}

func TestReserveWhileInFlight(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	if _, err := store.Reserve(ctx, "key-1"); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	_, err := store.Reserve(ctx, "key-1")
	if !errors.Is(err, ErrInFlight) {
		t.Errorf("expected ErrInFlight, got %v", err)
	}
}

func TestReserveReplaysCompletedOutcome(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	if _, err := store.Reserve(ctx, "key-1"); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	done := Record{ClaimID: "claim-1", StatusCode: 200, Body: []byte(`{"status":"OPEN"}`)}
	if err := store.Complete(ctx, "key-1", done); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	record, err := store.Reserve(ctx, "key-1")
	if err != nil {
		t.Fatalf("Reserve after completion failed: %v", err)
	}
	if record == nil || record.ClaimID != "claim-1" || record.StatusCode != 200 {
		t.Errorf("expected replayed record, got %+v", record)
	}
}

func TestReleaseAllowsRetry(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	if _, err := store.Reserve(ctx, "key-1"); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if err := store.Release(ctx, "key-1"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	record, err := store.Reserve(ctx, "key-1")
	if err != nil {
		t.Fatalf("Reserve after release failed: %v", err)
	}
	if record != nil {
		t.Errorf("expected fresh reservation after release, got %+v", record)
	}
}
