package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hitoshi/ridebook/internal/model"
)

func TestMemoryAccountRepo_ImplementsInterface(t *testing.T) {
	var _ AccountRepository = (*MemoryAccountRepo)(nil)
}

func TestMemoryAccountRepo_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccountRepo()

	if err := repo.Create(ctx, &model.Account{Name: "Alice", Email: "alice@x.com"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := repo.FindByEmail(ctx, "ALICE@X.COM")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got == nil {
		t.Fatal("expected account, got nil")
	}
	if got.Name != "Alice" {
		t.Errorf("Name = %q, want %q", got.Name, "Alice")
	}
}

func TestMemoryAccountRepo_FindByEmail_NotFound_ReturnsNil(t *testing.T) {
	repo := NewMemoryAccountRepo()

	got, err := repo.FindByEmail(context.Background(), "nobody@x.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestMemoryAccountRepo_Create_DuplicateDifferentCase_ReturnsErrAlreadyExists(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccountRepo()

	if err := repo.Create(ctx, &model.Account{Name: "Alice", Email: "alice@x.com"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	err := repo.Create(ctx, &model.Account{Name: "Alice 2", Email: "Alice@X.com"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, _ := repo.FindByEmail(ctx, "alice@x.com")
	if got.Name != "Alice" {
		t.Errorf("existing account was overwritten: Name = %q", got.Name)
	}
}

func TestMemoryAccountRepo_Create_ConcurrentSameEmail_ExactlyOneSucceeds(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccountRepo()

	const workers = 50
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		dupes     atomic.Int32
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := "race@x.com"
			if i%2 == 0 {
				email = "RACE@x.com"
			}
			err := repo.Create(ctx, &model.Account{Name: fmt.Sprintf("user-%d", i), Email: email})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrAlreadyExists):
				dupes.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes.Load() != 1 {
		t.Errorf("successes = %d, want 1", successes.Load())
	}
	if dupes.Load() != workers-1 {
		t.Errorf("duplicates = %d, want %d", dupes.Load(), workers-1)
	}
	if repo.Count() != 1 {
		t.Errorf("Count() = %d, want 1", repo.Count())
	}
}
