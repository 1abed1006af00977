package repository

import (
	"context"

	"assetbazaar/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
}
