package session

import (
	"context"
	"errors"
	"time"

	"communityhub/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Identity 会话中保存的用户身份，每个请求解析一次
type Identity struct {
	UserID          uint   `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	City            string `json:"city"`
	IDProofVerified bool   `json:"id_proof_verified"`
	ReputationScore int    `json:"reputation_score"`
}

// FromUser 由用户记录生成身份
func FromUser(u *models.User) *Identity {
	return &Identity{
		UserID:          u.ID,
		Name:            u.Name,
		Email:           u.Email,
		City:            u.City,
		IDProofVerified: u.IDProofVerified,
		ReputationScore: u.ReputationScore,
	}
}

// Store 会话 ID 到身份记录的键值存储，记录带过期时间
type Store interface {
	Get(ctx context.Context, id string) (*Identity, error)
	Set(ctx context.Context, id string, ident *Identity, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
