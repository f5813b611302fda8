package service

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"imagestudio/internal/entity"
	"imagestudio/internal/model"
	"imagestudio/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var imageIDPattern = regexp.MustCompile(`^img_[0-9]+_[0-9a-f]{8}$`)

// IsValidImageID 判断是否为生成服务签发的图片 ID
func IsValidImageID(id string) bool {
	return imageIDPattern.MatchString(id)
}

// GalleryService 用户图库与图片读取
type GalleryService struct {
	repo    model.Repository
	storage storage.Storage
}

func NewGalleryService(repo model.Repository, store storage.Storage) *GalleryService {
	return &GalleryService{repo: repo, storage: store}
}

// List 按创建时间倒序分页列出用户图片
func (s *GalleryService) List(ctx context.Context, query entity.ImageQuery) ([]entity.DbGeneratedImage, *entity.Meta, error) {
	query.UserID = strings.TrimSpace(query.UserID)
	if !IsValidUserID(query.UserID) {
		return nil, nil, newError(KindValidation, "Invalid user ID format", nil)
	}
	if query.From != nil && query.To != nil && query.From.After(*query.To) {
		return nil, nil, newError(KindValidation, "Invalid date range", nil)
	}
	if s.repo == nil {
		return nil, nil, newError(KindInternal, "Failed to fetch images", nil)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	images, meta, err := s.repo.ListGeneratedImages(reqCtx, &query)
	if err != nil {
		return nil, nil, newError(KindInternal, "Failed to fetch images", err)
	}
	return images, meta, nil
}

// Delete 只删除属于该用户的图片，存储文件删除失败只记日志
func (s *GalleryService) Delete(ctx context.Context, imageID, userID string) error {
	imageID = strings.TrimSpace(imageID)
	userID = strings.TrimSpace(userID)
	if !IsValidUserID(userID) {
		return newError(KindValidation, "Invalid user ID format", nil)
	}
	if imageID == "" {
		return newError(KindValidation, "Image ID is required", nil)
	}
	if s.repo == nil {
		return newError(KindInternal, "Failed to delete image", nil)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	record, err := s.repo.GetGeneratedImage(reqCtx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, "Image not found", err)
		}
		return newError(KindInternal, "Failed to delete image", err)
	}
	if err := s.repo.DeleteGeneratedImage(reqCtx, imageID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, "Image not found", err)
		}
		return newError(KindInternal, "Failed to delete image", err)
	}

	if s.storage != nil && record.StorageKey != "" {
		if err := s.storage.Delete(reqCtx, record.StorageKey); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"image_id":    imageID,
				"storage_key": record.StorageKey,
			}).Warn("image_blob_delete_failed")
		}
	}
	return nil
}

// OpenImage 读取图片字节并探测内容类型
func (s *GalleryService) OpenImage(ctx context.Context, imageID string) ([]byte, string, error) {
	imageID = strings.TrimSpace(imageID)
	if !IsValidImageID(imageID) {
		return nil, "", newError(KindNotFound, "Image not found", nil)
	}
	if s.storage == nil {
		return nil, "", newError(KindNotFound, "Image not found", nil)
	}
	key, err := storage.ObjectKey(ImageSaveOptions(imageID))
	if err != nil {
		return nil, "", newError(KindNotFound, "Image not found", err)
	}

	data, err := s.storage.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", newError(KindNotFound, "Image not found", err)
		}
		return nil, "", newError(KindInternal, "Failed to load image", err)
	}
	return data, http.DetectContentType(data), nil
}
