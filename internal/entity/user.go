package entity

import (
	"fmt"
	"time"
)

// DbUser 用户表，保存每日/每月生成计数
type DbUser struct {
	ID                   string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email                string    `gorm:"type:varchar(255);index" json:"email"`
	Name                 string    `gorm:"type:varchar(255)" json:"name"`
	GenerationCountToday int       `gorm:"not null;default:0" json:"generation_count_today"`
	GenerationCountMonth int       `gorm:"not null;default:0" json:"generation_count_month"`
	LastGenerationReset  time.Time `json:"last_generation_reset"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (DbUser) TableName() string {
	return "users"
}

// UserLimits 由用户计数派生的只读额度视图
type UserLimits struct {
	DailyUsed        int       `json:"daily_used"`
	DailyLimit       int       `json:"daily_limit"`
	MonthlyUsed      int       `json:"monthly_used"`
	MonthlyLimit     int       `json:"monthly_limit"`
	DailyRemaining   int       `json:"daily_remaining"`
	MonthlyRemaining int       `json:"monthly_remaining"`
	LastDailyReset   time.Time `json:"last_daily_reset"`
	LastMonthlyReset time.Time `json:"last_monthly_reset"`
}

// RemainingSummary 生成响应中附带的剩余额度
type RemainingSummary struct {
	DailyRemaining   int `json:"daily_remaining"`
	MonthlyRemaining int `json:"monthly_remaining"`
}

// LimitWindow 额度窗口类型
const (
	LimitWindowDaily   = "daily"
	LimitWindowMonthly = "monthly"
	LimitWindowAll     = "all"
)

// ResetLimitsRequest 管理员重置额度请求
type ResetLimitsRequest struct {
	UserID string `json:"user_id"`
	Type   string `json:"type"`
}

// SameUTCDay 判断两个时间是否落在同一个 UTC 日历日
func SameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// SameUTCMonth 判断两个时间是否落在同一个 UTC 日历月
func SameUTCMonth(a, b time.Time) bool {
	ay, am, _ := a.UTC().Date()
	by, bm, _ := b.UTC().Date()
	return ay == by && am == bm
}

func (u *DbUser) rollover(now time.Time) {
	if !SameUTCDay(u.LastGenerationReset, now) {
		u.GenerationCountToday = 0
	}
	if !SameUTCMonth(u.LastGenerationReset, now) {
		u.GenerationCountMonth = 0
	}
}

// ApplyGeneration 先按日/月翻转计数，再各加一
func (u *DbUser) ApplyGeneration(now time.Time) {
	u.rollover(now)
	u.GenerationCountToday++
	u.GenerationCountMonth++
	u.LastGenerationReset = now.UTC()
}

// ResetCounters 按窗口清零计数
func (u *DbUser) ResetCounters(window string, now time.Time) error {
	u.rollover(now)
	switch window {
	case LimitWindowDaily:
		u.GenerationCountToday = 0
	case LimitWindowMonthly:
		u.GenerationCountMonth = 0
	case LimitWindowAll:
		u.GenerationCountToday = 0
		u.GenerationCountMonth = 0
	default:
		return fmt.Errorf("invalid limit window: %s", window)
	}
	u.LastGenerationReset = now.UTC()
	return nil
}
