package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	adapter "assetbazaar/internal/adapter/repository"
	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/internal/infrastructure/datastore"
	"assetbazaar/internal/infrastructure/ratelimit"
)

type fixture struct {
	store  *datastore.InstrumentedStore
	assets repository.AssetRepository
	users  repository.UserRepository
	convs  repository.ConversationRepository
	msgs   repository.MessageRepository
	txs    repository.TransactionRepository
	dd     repository.DueDiligenceRepository

	assetUC *AssetUseCase
	chatUC  *ChatUseCase
	ddUC    *DueDiligenceUseCase
	txUC    *TransactionUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := datastore.Instrument(datastore.NewMemoryStore())
	t.Cleanup(func() { store.Close() })

	f := &fixture{
		store:  store,
		assets: adapter.NewAssetRepository(store),
		users:  adapter.NewUserRepository(store),
		convs:  adapter.NewConversationRepository(store),
		msgs:   adapter.NewMessageRepository(store),
		txs:    adapter.NewTransactionRepository(store),
		dd:     adapter.NewDueDiligenceRepository(store),
	}
	limiter := ratelimit.NewRateLimiterWith(map[string]ratelimit.Policy{}, time.Now)
	f.assetUC = NewAssetUseCase(f.assets, f.txs, limiter)
	f.chatUC = NewChatUseCase(f.convs, f.msgs, f.assets, limiter)
	f.ddUC = NewDueDiligenceUseCase(f.dd, f.assets)
	f.txUC = NewTransactionUseCase(f.txs, f.assets)
	return f
}

func (f *fixture) seedAsset(t *testing.T, sellerID string, price float64, status entity.AssetStatus) *entity.DigitalAsset {
	t.Helper()
	a := &entity.DigitalAsset{
		Title:       "Niche site",
		Description: "Affiliate site in the gardening space",
		Category:    entity.CategoryWebsite,
		Price:       price,
		Status:      status,
		Seller:      entity.User{ID: sellerID},
	}
	require.NoError(t, f.assets.Create(context.Background(), a))
	return a
}

func as(userID string) *entity.Identity {
	return &entity.Identity{UserID: userID}
}

func ptr(v float64) *float64 { return &v }
