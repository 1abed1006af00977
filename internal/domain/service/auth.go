package service

import "context"

// Claims is what a verified token tells us about the caller.
type Claims struct {
	UserID string
	Name   string
	Email  string
	Avatar string
}

// TokenVerifier checks bearer tokens and can end every session of a user.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
	Revoke(ctx context.Context, userID string) error
}
