package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetbazaar/internal/adapter/api"
	"assetbazaar/internal/adapter/api/handler"
	"assetbazaar/internal/adapter/api/middleware"
	adapter "assetbazaar/internal/adapter/repository"
	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/internal/infrastructure/datastore"
	"assetbazaar/internal/infrastructure/jwtauth"
	"assetbazaar/internal/infrastructure/ratelimit"
	"assetbazaar/internal/usecase"
)

type testAPI struct {
	e      *echo.Echo
	jwt    *jwtauth.Manager
	assets repository.AssetRepository
	users  repository.UserRepository
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := datastore.Instrument(datastore.NewMemoryStore())
	t.Cleanup(func() { store.Close() })

	assetRepo := adapter.NewAssetRepository(store)
	userRepo := adapter.NewUserRepository(store)
	limiter := ratelimit.NewRateLimiterWith(map[string]ratelimit.Policy{
		ratelimit.ActionSearch: {Burst: 2, Every: time.Hour},
	}, time.Now)
	jwt := jwtauth.NewManager("test-secret", time.Hour)

	txRepo := adapter.NewTransactionRepository(store)

	assetUC := usecase.NewAssetUseCase(assetRepo, txRepo, limiter)
	authUC := usecase.NewAuthUseCase(userRepo, jwt, nil)
	chatUC := usecase.NewChatUseCase(adapter.NewConversationRepository(store), adapter.NewMessageRepository(store), assetRepo, limiter)
	ddUC := usecase.NewDueDiligenceUseCase(adapter.NewDueDiligenceRepository(store), assetRepo)
	txUC := usecase.NewTransactionUseCase(txRepo, assetRepo)

	handler.Setup(assetUC, authUC, chatUC, ddUC, txUC)
	handler.SetupHealthHandler("memory", store, nil)

	e := echo.New()
	e.Validator = api.NewValidator()
	Setup(e, middleware.NewAuthMiddleware(authUC), middleware.NewAdminMiddleware(authUC), limiter)

	return &testAPI{e: e, jwt: jwt, assets: assetRepo, users: userRepo}
}

func (a *testAPI) token(t *testing.T, uid string) string {
	t.Helper()
	token, err := a.jwt.Issue(uid, uid, uid+"@example.com")
	require.NoError(t, err)
	return token
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (a *testAPI) seed(t *testing.T, sellerID, title string, category entity.Category, price float64, status entity.AssetStatus) *entity.DigitalAsset {
	t.Helper()
	asset := &entity.DigitalAsset{
		Title:       title,
		Description: "Listing used in API tests",
		Category:    category,
		Price:       price,
		Status:      status,
		Seller:      entity.User{ID: sellerID},
	}
	require.NoError(t, a.assets.Create(context.Background(), asset))
	return asset
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)

	rec, _ := a.do(t, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend":"memory"`)
}

func TestBrowse_FiltersInclusiveBounds(t *testing.T) {
	a := newTestAPI(t)
	low := a.seed(t, "s1", "Low", entity.CategoryWebsite, 100, entity.AssetStatusActive)
	high := a.seed(t, "s1", "High", entity.CategoryWebsite, 500, entity.AssetStatusActive)
	a.seed(t, "s1", "Too expensive", entity.CategoryWebsite, 501, entity.AssetStatusActive)
	a.seed(t, "s1", "Wrong category", entity.CategoryApp, 200, entity.AssetStatusActive)
	a.seed(t, "s1", "Pending", entity.CategoryWebsite, 200, entity.AssetStatusPending)

	rec, env := a.do(t, http.MethodGet, "/v1/assets?category=website&min_price=100&max_price=500&sort=price", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var assets []entity.DigitalAsset
	require.NoError(t, json.Unmarshal(env.Data, &assets))
	ids := []string{}
	for _, as := range assets {
		ids = append(ids, as.ID)
	}
	assert.ElementsMatch(t, []string{low.ID, high.ID}, ids)

	rec, env = a.do(t, http.MethodGet, "/v1/assets?min_price=cheap", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	for _, bound := range []string{"min_price=NaN", "max_price=Inf", "min_revenue=-Infinity"} {
		rec, env = a.do(t, http.MethodGet, "/v1/assets?"+bound, "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, bound)
		assert.Equal(t, "BAD_REQUEST", env.Error.Code, bound)
	}
}

func TestSearch_BlankAndRateLimited(t *testing.T) {
	a := newTestAPI(t)
	a.seed(t, "s1", "Recipe blog", entity.CategoryWebsite, 100, entity.AssetStatusActive)

	rec, env := a.do(t, http.MethodGet, "/v1/assets/search?q=blog", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var found []entity.DigitalAsset
	require.NoError(t, json.Unmarshal(env.Data, &found))
	assert.Len(t, found, 1)

	rec, env = a.do(t, http.MethodGet, "/v1/assets/search?q=%20%20", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	rec, env = a.do(t, http.MethodGet, "/v1/assets/search?q=blog", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestAPI(t)
	asset := a.seed(t, "s1", "Site", entity.CategoryWebsite, 100, entity.AssetStatusActive)

	rec, env := a.do(t, http.MethodPost, "/v1/assets/"+asset.ID+"/purchase", "", `{"agreed_to_terms":true}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, _ = a.do(t, http.MethodGet, "/v1/me", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPurchaseFlow(t *testing.T) {
	a := newTestAPI(t)
	asset := a.seed(t, "seller", "Site", entity.CategoryWebsite, 2500, entity.AssetStatusActive)

	rec, env := a.do(t, http.MethodPost, "/v1/assets/"+asset.ID+"/purchase", a.token(t, "seller"), `{"agreed_to_terms":true}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You cannot purchase your own asset", env.Error.Message)

	rec, env = a.do(t, http.MethodPost, "/v1/assets/"+asset.ID+"/purchase", a.token(t, "buyer"), `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please agree to the terms and conditions", env.Error.Message)

	rec, env = a.do(t, http.MethodPost, "/v1/assets/"+asset.ID+"/purchase", a.token(t, "buyer"), `{"agreed_to_terms":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var tx entity.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &tx))
	assert.Equal(t, 2500.0, tx.Amount)

	rec, env = a.do(t, http.MethodPost, "/v1/transactions/"+tx.ID+"/complete", a.token(t, "buyer"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &tx))
	assert.Equal(t, entity.TransactionCompleted, tx.Status)

	stored, err := a.assets.GetByID(context.Background(), asset.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusSold, stored.Status)
}

func TestCreateListingAndListMine(t *testing.T) {
	a := newTestAPI(t)
	token := a.token(t, "seller")

	rec, env := a.do(t, http.MethodPost, "/v1/my-assets", token, `{"title":"Shop","description":"Store","category":"website","price":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, env = a.do(t, http.MethodPost, "/v1/my-assets", token, `{"title":"Shop","description":"Store","category":"website","price":900,"monthly_revenue":120}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created entity.DigitalAsset
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, entity.AssetStatusPending, created.Status)
	require.NotNil(t, created.MonthlyRevenue)
	assert.Equal(t, 120.0, *created.MonthlyRevenue)

	rec, env = a.do(t, http.MethodGet, "/v1/my-assets?page=1&limit=10", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []entity.DigitalAsset `json:"items"`
		Total int64                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)
}

func TestConversationRoutes(t *testing.T) {
	a := newTestAPI(t)
	asset := a.seed(t, "seller", "Site", entity.CategoryWebsite, 100, entity.AssetStatusActive)
	buyer := a.token(t, "buyer")

	rec, env := a.do(t, http.MethodPost, "/v1/assets/"+asset.ID+"/conversations", buyer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var conv entity.Conversation
	require.NoError(t, json.Unmarshal(env.Data, &conv))

	rec, env = a.do(t, http.MethodPost, "/v1/assets/"+asset.ID+"/conversations", buyer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var again entity.Conversation
	require.NoError(t, json.Unmarshal(env.Data, &again))
	assert.Equal(t, conv.ID, again.ID)

	rec, _ = a.do(t, http.MethodPost, "/v1/conversations/"+conv.ID+"/messages", buyer, `{"content":"Still for sale?"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = a.do(t, http.MethodGet, "/v1/conversations/"+conv.ID+"/messages", a.token(t, "seller"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []entity.Message
	require.NoError(t, json.Unmarshal(env.Data, &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "Still for sale?", msgs[0].Content)

	rec, env = a.do(t, http.MethodPut, "/v1/conversations/"+conv.ID+"/read", a.token(t, "seller"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":1}`, string(env.Data))

	rec, _ = a.do(t, http.MethodGet, "/v1/conversations/"+conv.ID+"/messages", a.token(t, "stranger"), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDueDiligenceRoutes(t *testing.T) {
	a := newTestAPI(t)
	asset := a.seed(t, "seller", "Site", entity.CategoryWebsite, 100, entity.AssetStatusActive)

	rec, env := a.do(t, http.MethodPost, "/v1/assets/"+asset.ID+"/due-diligence", a.token(t, "buyer"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var req entity.DueDiligenceRequest
	require.NoError(t, json.Unmarshal(env.Data, &req))
	require.Len(t, req.Items, 4)

	rec, _ = a.do(t, http.MethodPut, "/v1/verification-items/"+req.Items[0].ID, a.token(t, "seller"), `{"status":"approved"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = a.do(t, http.MethodPut, "/v1/verification-items/"+req.Items[0].ID, a.token(t, "seller"), `{"status":"verified","notes":"GA access checked"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var item entity.VerificationItem
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, entity.VerificationVerified, item.Status)

	rec, env = a.do(t, http.MethodGet, "/v1/due-diligence/"+req.ID+"/items", a.token(t, "buyer"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var items []entity.VerificationItem
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 4)
}

func TestAdminApprove(t *testing.T) {
	a := newTestAPI(t)
	asset := a.seed(t, "seller", "Site", entity.CategoryWebsite, 100, entity.AssetStatusPending)
	require.NoError(t, a.users.Create(context.Background(), &entity.User{ID: "root", Name: "Root", Role: entity.RoleAdmin}))

	rec, _ := a.do(t, http.MethodPost, "/v1/admin/assets/"+asset.ID+"/approve", a.token(t, "seller"), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := a.do(t, http.MethodPost, "/v1/admin/assets/"+asset.ID+"/approve", a.token(t, "root"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var approved entity.DigitalAsset
	require.NoError(t, json.Unmarshal(env.Data, &approved))
	assert.Equal(t, entity.AssetStatusActive, approved.Status)
}

func TestMeAndSignOut(t *testing.T) {
	a := newTestAPI(t)
	token := a.token(t, "jane")

	rec, env := a.do(t, http.MethodGet, "/v1/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me entity.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "jane@example.com", me.Email)

	rec, _ = a.do(t, http.MethodPost, "/v1/auth/signout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = a.do(t, http.MethodGet, "/v1/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = a.do(t, http.MethodPost, "/v1/me/avatar", a.token(t, "bob"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}
