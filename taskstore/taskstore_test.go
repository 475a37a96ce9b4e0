package taskstore

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	task := NewTask()
	if task.ID == "" {
		t.Fatal("NewTask produced empty ID")
	}
	if task.State != StateQueued {
		t.Fatalf("new task state = %q; want queued", task.State)
	}

	if err := store.Put(ctx, task); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	task.State = StateSucceeded
	task.ArtifactPath = "output/abc.webp"
	task.ByteSize = 123456
	if err := store.Put(ctx, task); err != nil {
		t.Fatalf("Put update error: %v", err)
	}

	got, err := store.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.State != StateSucceeded || got.ArtifactPath != "output/abc.webp" || got.ByteSize != 123456 {
		t.Fatalf("stored task mismatch: %+v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Fatal("UpdatedAt not maintained")
	}
}

func TestMemoryStoreUnknownID(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v; want ErrNotFound", err)
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	task := NewTask()
	if err := store.Put(ctx, task); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			t2 := task
			t2.State = StateRunning
			_ = store.Put(ctx, t2)
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Get(ctx, task.ID)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get after concurrent writes: %v", err)
	}
	if got.ID != task.ID {
		t.Fatalf("task ID corrupted: %q", got.ID)
	}
}
