package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"imagestudio/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetUser loads a user by ID.
func (r *GormRepository) GetUser(ctx context.Context, id string) (*entity.DbUser, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	var user entity.DbUser
	if err := r.db.WithContext(ctx).Where("id = ?", trimmed).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// IncrementGenerationCount rolls the counters over on a new day or month and
// adds one generation. Unknown users are created on first use.
func (r *GormRepository) IncrementGenerationCount(ctx context.Context, userID string, now time.Time) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return fmt.Errorf("invalid user id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := r.lockUser(tx, trimmed)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = &entity.DbUser{ID: trimmed}
			user.ApplyGeneration(now)
			return tx.Create(user).Error
		}
		if err != nil {
			return err
		}
		user.ApplyGeneration(now)
		return tx.Model(&entity.DbUser{}).Where("id = ?", trimmed).Updates(counterUpdates(user)).Error
	})
}

// ResetGenerationCount clears the counters of one window, or both for "all".
func (r *GormRepository) ResetGenerationCount(ctx context.Context, userID, window string, now time.Time) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return fmt.Errorf("invalid user id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := r.lockUser(tx, trimmed)
		if err != nil {
			return err
		}
		if err := user.ResetCounters(window, now); err != nil {
			return err
		}
		return tx.Model(&entity.DbUser{}).Where("id = ?", trimmed).Updates(counterUpdates(user)).Error
	})
}

func (r *GormRepository) lockUser(tx *gorm.DB, id string) (*entity.DbUser, error) {
	query := tx
	// SQLite has no row-level locks; the transaction already serialises writers
	if r.dialect() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var user entity.DbUser
	if err := query.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func counterUpdates(user *entity.DbUser) map[string]interface{} {
	return map[string]interface{}{
		"generation_count_today": user.GenerationCountToday,
		"generation_count_month": user.GenerationCountMonth,
		"last_generation_reset":  user.LastGenerationReset,
	}
}
