package repository

import (
	"context"
	stderrors "errors"
	"time"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/query"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/internal/infrastructure/datastore"
	"assetbazaar/pkg/errors"
)

type userRepository struct {
	store datastore.Store
}

func NewUserRepository(store datastore.Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if user.JoinedAt.IsZero() {
		user.JoinedAt = time.Now().UTC()
	}
	if user.Role == "" {
		user.Role = "user"
	}

	rec := query.Record{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"rating":     user.Rating,
		"verified":   user.Verified,
		"role":       user.Role,
		"created_at": user.JoinedAt,
	}
	if user.Avatar != "" {
		rec["avatar_url"] = user.Avatar
	}

	_, err := r.store.Insert(ctx, datastore.Insert{Collection: query.Profiles, Record: rec})
	if stderrors.Is(err, datastore.ErrConflict) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return errors.Internal("Failed to create profile", err)
	}
	return nil
}

// GetByID returns the full profile, email included. Callers decide what to expose.
func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	rec, err := selectOne(ctx, r.store, query.From(query.Profiles).Filter(query.Eq("id", id)))
	if err != nil {
		return nil, errors.Internal("Failed to get profile", err)
	}
	if rec == nil {
		return nil, errors.NotFound("User", nil)
	}
	user := ToUser(rec, true)
	return &user, nil
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	n, err := r.store.Update(ctx, query.Profiles,
		query.Record{"avatar_url": avatarURL},
		[]query.Predicate{query.Eq("id", id)})
	if err != nil {
		return errors.Internal("Failed to update avatar", err)
	}
	if n == 0 {
		return errors.NotFound("User", nil)
	}
	return nil
}
