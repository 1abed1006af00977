package usecase

import (
	"context"
	"io"
	"net/http"
	"strings"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/internal/domain/service"
	"assetbazaar/pkg/errors"
	"assetbazaar/pkg/logger"
)

type AuthUseCase struct {
	userRepo repository.UserRepository
	verifier service.TokenVerifier
	storage  service.FileStorage
}

// NewAuthUseCase accepts a nil storage; avatar uploads are then unavailable.
func NewAuthUseCase(userRepo repository.UserRepository, verifier service.TokenVerifier, storage service.FileStorage) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		verifier: verifier,
		storage:  storage,
	}
}

// Authenticate verifies a bearer token and makes sure the caller has a profile.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*entity.Identity, error) {
	claims, err := uc.verifier.Verify(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}
	if _, err := uc.RegisterProfile(ctx, claims); err != nil {
		return nil, err
	}
	return &entity.Identity{UserID: claims.UserID}, nil
}

// RegisterProfile returns the caller's profile, creating it from the token
// claims on first sign-in.
func (uc *AuthUseCase) RegisterProfile(ctx context.Context, claims *service.Claims) (*entity.User, error) {
	find := func(ctx context.Context) (*entity.User, error) {
		user, err := uc.userRepo.GetByID(ctx, claims.UserID)
		if errors.Is(err, errors.CodeNotFound) {
			return nil, nil
		}
		return user, err
	}
	create := func(ctx context.Context) (*entity.User, error) {
		name := claims.Name
		if name == "" {
			name, _, _ = strings.Cut(claims.Email, "@")
		}
		user := &entity.User{
			ID:     claims.UserID,
			Name:   name,
			Email:  claims.Email,
			Avatar: claims.Avatar,
		}
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	return lookupOrCreate(ctx, find, create)
}

// CurrentUser is the caller's own profile, email included.
func (uc *AuthUseCase) CurrentUser(ctx context.Context, identity *entity.Identity) (*entity.User, error) {
	if err := requireIdentity(identity, "Please sign in"); err != nil {
		return nil, err
	}
	return uc.userRepo.GetByID(ctx, identity.UserID)
}

func (uc *AuthUseCase) IsAdmin(ctx context.Context, identity *entity.Identity) (bool, error) {
	user, err := uc.CurrentUser(ctx, identity)
	if err != nil {
		return false, err
	}
	return user.Role == entity.RoleAdmin, nil
}

// SignOut ends every session of the caller.
func (uc *AuthUseCase) SignOut(ctx context.Context, identity *entity.Identity) error {
	if err := requireIdentity(identity, "Please sign in"); err != nil {
		return err
	}
	if err := uc.verifier.Revoke(ctx, identity.UserID); err != nil {
		logger.Error("SignOut Error: %v", err)
		return errors.Internal("Failed to sign out", err)
	}
	return nil
}

func (uc *AuthUseCase) UpdateAvatar(ctx context.Context, identity *entity.Identity, file io.Reader, contentType string) (*entity.User, error) {
	if err := requireIdentity(identity, "Please sign in"); err != nil {
		return nil, err
	}
	if uc.storage == nil {
		return nil, errors.New("STORAGE_UNAVAILABLE", "File storage is not configured", http.StatusServiceUnavailable, nil)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.Validation("Avatar must be an image")
	}

	user, err := uc.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	url, err := uc.storage.Upload(ctx, file, contentType, "avatars/"+identity.UserID)
	if err != nil {
		logger.Error("UpdateAvatar Error: %v", err)
		return nil, errors.Internal("Failed to upload avatar", err)
	}
	if err := uc.userRepo.UpdateAvatar(ctx, identity.UserID, url); err != nil {
		return nil, err
	}

	if user.Avatar != "" {
		if err := uc.storage.Delete(ctx, user.Avatar); err != nil {
			logger.Warn("UpdateAvatar: old avatar %s not deleted: %v", user.Avatar, err)
		}
	}

	user.Avatar = url
	return user, nil
}
