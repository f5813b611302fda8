package sql

import (
	"context"
	"fmt"
	"strings"

	"imagestudio/internal/entity"

	"gorm.io/gorm"
)

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository instance
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Ping checks the underlying connection.
func (r *GormRepository) Ping(ctx context.Context) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormRepository) dialect() string {
	if r == nil || r.db == nil || r.db.Dialector == nil {
		return ""
	}
	return strings.ToLower(r.db.Dialector.Name())
}

// paginate normalises page/limit and returns the offset.
func paginate(params entity.BaseParams) (page, limit, offset int) {
	page = 1
	limit = 20
	if params.Page > 0 {
		page = int(params.Page)
	}
	if params.Limit > 0 {
		limit = int(params.Limit)
	}
	if limit > 100 {
		limit = 100
	}
	offset = (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return page, limit, offset
}
