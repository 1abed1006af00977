package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"assetbazaar/internal/domain/service"
)

// FirebaseAuthClient verifies Firebase ID tokens.
type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

// Verify also rejects tokens issued before the user's last sign-out.
func (f *FirebaseAuthClient) Verify(ctx context.Context, token string) (*service.Claims, error) {
	result, err := f.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		return nil, err
	}

	claims := &service.Claims{UserID: result.UID}
	if v, ok := result.Claims["name"].(string); ok {
		claims.Name = v
	}
	if v, ok := result.Claims["email"].(string); ok {
		claims.Email = v
	}
	if v, ok := result.Claims["picture"].(string); ok {
		claims.Avatar = v
	}
	return claims, nil
}

func (f *FirebaseAuthClient) Revoke(ctx context.Context, userID string) error {
	if err := f.client.RevokeRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}

var _ service.TokenVerifier = (*FirebaseAuthClient)(nil)
