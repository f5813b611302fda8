package service

import (
	"context"
	"testing"
	"time"

	"imagestudio/internal/entity"
	"imagestudio/internal/model/memory"
	"imagestudio/internal/storage"
)

func TestGalleryListAndDelete(t *testing.T) {
	repo := memory.NewRepository()
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	ctx := context.Background()

	imageID := "img_1716200000000_0a1b2c3d"
	key, err := store.Save(ctx, []byte("\x89PNG\r\n\x1a\nrest"), ImageSaveOptions(imageID))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.CreateGeneratedImage(ctx, &entity.DbGeneratedImage{
		ID:         imageID,
		UserID:     testUserID,
		Prompt:     "a cat",
		StorageKey: key,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	svc := NewGalleryService(repo, store)

	images, meta, err := svc.List(ctx, entity.ImageQuery{UserID: testUserID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(images) != 1 || meta.Total != 1 {
		t.Fatalf("unexpected list %d / %+v", len(images), meta)
	}

	if _, _, err := svc.List(ctx, entity.ImageQuery{UserID: "nope"}); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	other := "0b7c6c1e-7d0e-4b53-8f0e-0f2b9a4c5d6e"
	if err := svc.Delete(ctx, imageID, other); KindOf(err) != KindNotFound {
		t.Fatalf("expected not found for another user, got %v", err)
	}

	if err := svc.Delete(ctx, imageID, testUserID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := svc.OpenImage(ctx, imageID); KindOf(err) != KindNotFound {
		t.Fatalf("expected blob removed, got %v", err)
	}
	if err := svc.Delete(ctx, imageID, testUserID); KindOf(err) != KindNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestGalleryOpenImageRejectsBadIDs(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	svc := NewGalleryService(memory.NewRepository(), store)
	for _, id := range []string{"", "../etc/passwd", "img_123_XYZ", "img_1_0a1b2c3d4"} {
		if _, _, err := svc.OpenImage(context.Background(), id); KindOf(err) != KindNotFound {
			t.Errorf("id %q: expected not found, got %v", id, err)
		}
	}
}
