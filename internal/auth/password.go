package auth

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = bcrypt.DefaultCost

// ErrInvalidCredentials 密码错误或未配置管理员密码
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword 对明文密码进行哈希处理，用于生成 ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), defaultBcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword 验证密码是否与存储的哈希值匹配
func VerifyPassword(hash, candidate string) error {
	if strings.TrimSpace(hash) == "" {
		return errors.New("stored password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
}

// AdminAuthenticator 校验管理员密码并签发管理员令牌
type AdminAuthenticator struct {
	passwordHash string
	tokens       *Manager
}

func NewAdminAuthenticator(passwordHash string, tokens *Manager) *AdminAuthenticator {
	return &AdminAuthenticator{passwordHash: strings.TrimSpace(passwordHash), tokens: tokens}
}

// Enabled 未配置密码哈希或签名密钥时管理员接口不可用
func (a *AdminAuthenticator) Enabled() bool {
	return a != nil && a.passwordHash != "" && a.tokens != nil
}

// Login 密码正确时返回管理员令牌及过期时间
func (a *AdminAuthenticator) Login(password string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(a.passwordHash, password); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.tokens.GenerateToken(RoleAdmin, RoleAdmin)
}

// Tokens 返回用于校验请求的令牌管理器
func (a *AdminAuthenticator) Tokens() *Manager {
	if a == nil {
		return nil
	}
	return a.tokens
}
