package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"imagestudio/internal/entity"

	"github.com/gin-gonic/gin"
)

// ListGallery GET /api/gallery?user_id=<uuid>
func (h *HTTPHandler) ListGallery(c *gin.Context) {
	var query entity.ImageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "Invalid query parameters")
		return
	}

	for param, target := range map[string]**time.Time{"from": &query.From, "to": &query.To} {
		raw := strings.TrimSpace(c.Query(param))
		if raw == "" {
			continue
		}
		parsed, err := parseQueryTime(raw)
		if err != nil {
			BadRequest(c, ErrCodeValidation, "Invalid "+param+" date")
			return
		}
		*target = &parsed
	}

	images, meta, err := h.galleryService.List(c.Request.Context(), query)
	if err != nil {
		WriteServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    images,
		"meta":    meta,
	})
}

// DeleteGalleryImage DELETE /api/gallery/:id?user_id=<uuid>
func (h *HTTPHandler) DeleteGalleryImage(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if err := h.galleryService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		WriteServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Image deleted successfully",
	})
}

// ServeImage GET /api/images/:id 与 /api/images/:id/thumbnail，缩略图返回原图
func (h *HTTPHandler) ServeImage(c *gin.Context) {
	data, contentType, err := h.galleryService.OpenImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteServiceError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, contentType, data)
}

// parseQueryTime 接受 RFC3339、日期或毫秒时间戳
func parseQueryTime(raw string) (time.Time, error) {
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
