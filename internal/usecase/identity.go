package usecase

import (
	"fmt"
	"time"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/infrastructure/ratelimit"
	"assetbazaar/pkg/errors"
)

func requireIdentity(identity *entity.Identity, message string) error {
	if identity == nil || identity.UserID == "" {
		return errors.Unauthorized(message, nil)
	}
	return nil
}

func allow(rl *ratelimit.RateLimiter, userID, action, message string) error {
	if rl == nil {
		return nil
	}
	if ok, wait := rl.Allow(userID, action); !ok {
		return errors.TooManyRequests(message, fmt.Errorf("retry in %s", wait.Round(time.Second)))
	}
	return nil
}
