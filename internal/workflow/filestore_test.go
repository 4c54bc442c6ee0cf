package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestFileStoreCreateAndGetRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	rec, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected generated id")
	}
	if rec.Status != StatusCreated {
		t.Fatalf("expected status created, got %q", rec.Status)
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != rec.ID || got.Status != StatusCreated {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestFileStoreGetUnknownID(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Get(context.Background(), "no-such-id"); !errors.Is(err, ErrWorkflowNotFound) {
		t.Fatalf("expected ErrWorkflowNotFound, got %v", err)
	}
	if _, err := store.Update(context.Background(), "no-such-id", func(*Record) error { return nil }); !errors.Is(err, ErrWorkflowNotFound) {
		t.Fatalf("expected ErrWorkflowNotFound from update, got %v", err)
	}
}

func TestFileStoreMutatorErrorLeavesRecordUntouched(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	rec, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Update(ctx, rec.ID, func(r *Record) error {
		r.Topic = &Topic{Primary: "should not persist"}
		return errors.New("boom")
	}); err == nil {
		t.Fatalf("expected mutator error to propagate")
	}
	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Topic != nil {
		t.Fatalf("mutator error leaked into persisted record: %+v", got.Topic)
	}
}

func TestFileStoreConcurrentUpdatesAllLand(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	rec, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := store.Update(ctx, rec.ID, func(r *Record) error {
				r.Sources = append(r.Sources, Source{
					Origin:    "text",
					Reference: fmt.Sprintf("chunk-%d", n),
					WordCount: 1,
					AddedAt:   time.Now().UTC(),
				})
				return nil
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent update: %v", err)
		}
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Sources) != workers {
		t.Fatalf("expected %d sources, got %d (lost updates)", workers, len(got.Sources))
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	rec, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Update(ctx, rec.ID, func(r *Record) error {
		r.Topic = &Topic{Primary: "Durable topics"}
		r.Advance(StatusTopicSet)
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	got, err := reopened.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Topic == nil || got.Topic.Primary != "Durable topics" {
		t.Fatalf("expected topic to survive reopen, got %+v", got.Topic)
	}
	if got.Status != StatusTopicSet {
		t.Fatalf("expected status topic_set, got %q", got.Status)
	}
}

func TestFileStoreLockSetStaysBounded(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if store.idLock("some-id") != store.idLock("some-id") {
		t.Fatalf("same id must map to the same lock")
	}

	// Touching far more ids than stripes must not grow the lock set, and
	// updates across distinct ids must all land.
	ctx := context.Background()
	ids := make([]string, 0, lockStripes*3)
	for i := 0; i < lockStripes*3; i++ {
		rec, err := store.Create(ctx)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, rec.ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := store.Update(ctx, id, func(r *Record) error {
				r.Topic = &Topic{Primary: "stripe check"}
				return nil
			})
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("cross-id update: %v", err)
		}
	}
	for _, id := range ids {
		rec, err := store.Get(ctx, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if rec.Topic == nil {
			t.Fatalf("update lost for %s", id)
		}
	}
}

func TestFileStoreList(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 workflows, got %d", len(infos))
	}
	for _, info := range infos {
		if info.Status != StatusCreated {
			t.Fatalf("expected created status, got %q", info.Status)
		}
	}
}
