package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"imagestudio/internal/entity"
	"imagestudio/internal/model"
	"imagestudio/internal/ratelimit"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LimitsService 计算并重置用户额度
type LimitsService struct {
	repo         model.Repository
	limiter      ratelimit.Limiter
	dailyLimit   int
	monthlyLimit int
	now          func() time.Time
}

func NewLimitsService(repo model.Repository, limiter ratelimit.Limiter, dailyLimit, monthlyLimit int) *LimitsService {
	return &LimitsService{
		repo:         repo,
		limiter:      limiter,
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		now:          time.Now,
	}
}

func (s *LimitsService) DailyLimit() int   { return s.dailyLimit }
func (s *LimitsService) MonthlyLimit() int { return s.monthlyLimit }

// ComputeUserLimits 由持久化计数推导额度视图。上次重置不在当前 UTC 日/月时，
// 已用量按 0 计算，不修改存储。
func ComputeUserLimits(user *entity.DbUser, dailyLimit, monthlyLimit int, now time.Time) entity.UserLimits {
	limits := entity.UserLimits{
		DailyLimit:   dailyLimit,
		MonthlyLimit: monthlyLimit,
	}
	if user != nil {
		if entity.SameUTCDay(user.LastGenerationReset, now) {
			limits.DailyUsed = user.GenerationCountToday
		}
		if entity.SameUTCMonth(user.LastGenerationReset, now) {
			limits.MonthlyUsed = user.GenerationCountMonth
		}
		limits.LastDailyReset = user.LastGenerationReset
		limits.LastMonthlyReset = user.LastGenerationReset
	}
	limits.DailyRemaining = clampRemaining(dailyLimit, limits.DailyUsed)
	limits.MonthlyRemaining = clampRemaining(monthlyLimit, limits.MonthlyUsed)
	return limits
}

func clampRemaining(limit, used int) int {
	if remaining := limit - used; remaining > 0 {
		return remaining
	}
	return 0
}

// DefaultLimits 无法读取用户数据时使用的兜底额度
func (s *LimitsService) DefaultLimits() entity.UserLimits {
	now := s.now().UTC()
	return ComputeUserLimits(&entity.DbUser{LastGenerationReset: now}, s.dailyLimit, s.monthlyLimit, now)
}

// Report 读取用户计数并计算额度，尚未生成过的用户按零用量处理
func (s *LimitsService) Report(ctx context.Context, userID string) (entity.UserLimits, error) {
	if s.repo == nil {
		return entity.UserLimits{}, newError(KindPersistence, "repository unavailable", nil)
	}
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := s.now()
	user, err := s.repo.GetUser(reqCtx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fresh := &entity.DbUser{ID: userID, LastGenerationReset: now.UTC()}
		return ComputeUserLimits(fresh, s.dailyLimit, s.monthlyLimit, now), nil
	}
	if err != nil {
		return entity.UserLimits{}, newError(KindPersistence, "failed to get user limits", err)
	}
	return ComputeUserLimits(user, s.dailyLimit, s.monthlyLimit, now), nil
}

// Reset 清零持久化计数并清除限流窗口
func (s *LimitsService) Reset(ctx context.Context, userID, window string) error {
	userID = strings.TrimSpace(userID)
	window = strings.ToLower(strings.TrimSpace(window))
	if !IsValidUserID(userID) {
		return newError(KindValidation, "Invalid user ID format", nil)
	}
	var windows []ratelimit.Window
	switch window {
	case entity.LimitWindowDaily:
		windows = []ratelimit.Window{ratelimit.Daily}
	case entity.LimitWindowMonthly:
		windows = []ratelimit.Window{ratelimit.Monthly}
	case entity.LimitWindowAll:
		windows = []ratelimit.Window{ratelimit.Daily, ratelimit.Monthly}
	default:
		return newError(KindValidation, "Invalid reset type, expected daily, monthly or all", nil)
	}
	if s.repo == nil {
		return newError(KindInternal, "Failed to reset user limits", errors.New("repository unavailable"))
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.repo.ResetGenerationCount(reqCtx, userID, window, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, "User not found", err)
		}
		return newError(KindInternal, "Failed to reset user limits", err)
	}

	if s.limiter != nil {
		for _, w := range windows {
			if err := s.limiter.Reset(reqCtx, userID, w); err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"user_id": userID,
					"window":  string(w),
				}).Warn("rate_limit_reset_failed")
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"type":    window,
	}).Info("user_limits_reset")
	return nil
}
