package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"imagestudio/internal/entity"

	"gorm.io/gorm"
)

func TestConcurrentIncrements(t *testing.T) {
	repo := NewRepository()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.IncrementGenerationCount(context.Background(), "u1", now)
		}()
	}
	wg.Wait()

	user, err := repo.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.GenerationCountToday != 50 || user.GenerationCountMonth != 50 {
		t.Fatalf("expected 50/50, got %d/%d", user.GenerationCountToday, user.GenerationCountMonth)
	}
}

func TestListGeneratedImagesPaginates(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c", "d", "e"} {
		image := entity.DbGeneratedImage{ID: id, UserID: "u1", Quality: "standard", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.CreateGeneratedImage(ctx, &image); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	images, meta, err := repo.ListGeneratedImages(ctx, &entity.ImageQuery{UserID: "u1", BaseParams: entity.BaseParams{Page: 3, Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(images) != 1 || images[0].ID != "a" {
		t.Fatalf("expected oldest image on last page, got %+v", images)
	}
	if meta.HasNext || !meta.HasPrev || meta.TotalPages != 3 {
		t.Fatalf("unexpected meta %+v", meta)
	}

	empty, _, err := repo.ListGeneratedImages(ctx, &entity.ImageQuery{UserID: "u1", BaseParams: entity.BaseParams{Page: 9, Limit: 2}})
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty page past the end, got %v %v", empty, err)
	}
}

func TestDeleteRequiresOwner(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	image := entity.DbGeneratedImage{ID: "img", UserID: "owner"}
	if err := repo.CreateGeneratedImage(ctx, &image); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.DeleteGeneratedImage(ctx, "img", "other"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.DeleteGeneratedImage(ctx, "img", "owner"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
