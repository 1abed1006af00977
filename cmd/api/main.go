package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"assetbazaar/internal/adapter/api"
	"assetbazaar/internal/adapter/api/handler"
	apimiddleware "assetbazaar/internal/adapter/api/middleware"
	"assetbazaar/internal/adapter/api/router"
	"assetbazaar/internal/adapter/repository"
	"assetbazaar/internal/domain/service"
	"assetbazaar/internal/infrastructure/datastore"
	"assetbazaar/internal/infrastructure/firebase"
	"assetbazaar/internal/infrastructure/jwtauth"
	"assetbazaar/internal/infrastructure/ratelimit"
	"assetbazaar/internal/infrastructure/storage"
	"assetbazaar/internal/infrastructure/websocket"
	"assetbazaar/internal/usecase"
	"assetbazaar/pkg/config"
	"assetbazaar/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.LogLevel, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var firebaseApp *fbapp.App
	var credentials []option.ClientOption
	if cfg.UsesFirebase() {
		credentials = firebaseCredentials(cfg)
		firebaseApp, err = fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, credentials...)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase: %v", err)
		}
	}

	backend, err := openStore(ctx, cfg, credentials)
	if err != nil {
		logger.Fatal("Failed to open %s datastore: %v", cfg.Backend, err)
	}
	store := datastore.Instrument(backend)
	defer store.Close()

	verifier, jwtManager, err := newVerifier(ctx, cfg, firebaseApp)
	if err != nil {
		logger.Fatal("Failed to initialize %s auth: %v", cfg.AuthProvider, err)
	}

	var fileStorage service.FileStorage
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, credentials...)
		if err != nil {
			logger.Fatal("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		fileStorage = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET not set, avatar uploads are disabled")
	}

	assetRepo := repository.NewAssetRepository(store)
	userRepo := repository.NewUserRepository(store)
	conversationRepo := repository.NewConversationRepository(store)
	messageRepo := repository.NewMessageRepository(store)
	transactionRepo := repository.NewTransactionRepository(store)
	dueDiligenceRepo := repository.NewDueDiligenceRepository(store)

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine(ctx)

	assetUseCase := usecase.NewAssetUseCase(assetRepo, transactionRepo, rateLimiter)
	authUseCase := usecase.NewAuthUseCase(userRepo, verifier, fileStorage)
	chatUseCase := usecase.NewChatUseCase(conversationRepo, messageRepo, assetRepo, rateLimiter)
	dueDiligenceUseCase := usecase.NewDueDiligenceUseCase(dueDiligenceRepo, assetRepo)
	transactionUseCase := usecase.NewTransactionUseCase(transactionRepo, assetRepo)

	wsManager := websocket.NewManager(
		chatUseCase,
		assetUseCase,
		logger.BestEffort(),
		time.Duration(cfg.SearchDebounceMS)*time.Millisecond,
	)

	handler.Setup(assetUseCase, authUseCase, chatUseCase, dueDiligenceUseCase, transactionUseCase)
	handler.SetupHealthHandler(cfg.Backend, store, wsManager.Count)
	if jwtManager != nil {
		handler.SetupDevTokenHandler(jwtManager, authUseCase)
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger.Logger()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.AllowedOrigins}))

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authUseCase)
	adminMiddleware := apimiddleware.NewAdminMiddleware(authUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, authUseCase, cfg.AllowedOrigins)

	router.Setup(e, authMiddleware, adminMiddleware, rateLimiter)
	router.SetupDevRouter(e, cfg.Environment)
	router.SetupWebSocketRouter(e, wsHandler)

	go func() {
		logger.Info("Starting server on port %s (backend=%s, auth=%s)", cfg.ServerPort, cfg.Backend, cfg.AuthProvider)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	wsManager.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}
}

// firebaseCredentials prefers the inline service account used in hosted
// deployments and falls back to a key file for local development.
func firebaseCredentials(cfg *config.Config) []option.ClientOption {
	if cfg.FirebaseCredentialJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialJSON))}
	}
	if cfg.FirebaseCredentialPath != "" {
		if _, err := os.Stat(cfg.FirebaseCredentialPath); err != nil {
			logger.Fatal("Service account file does not exist: %s", cfg.FirebaseCredentialPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.FirebaseCredentialPath)
		return []option.ClientOption{option.WithCredentialsFile(cfg.FirebaseCredentialPath)}
	}
	logger.Info("Using application default credentials")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, credentials []option.ClientOption) (datastore.Store, error) {
	switch cfg.Backend {
	case "memory":
		logger.Warn("Using in-memory datastore, data is lost on restart")
		return datastore.NewMemoryStore(), nil

	case "firestore":
		client, err := firestore.NewClient(ctx, cfg.FirebaseProject, credentials...)
		if err != nil {
			return nil, err
		}
		return datastore.NewFirestoreStore(client), nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		pg, err := datastore.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := datastore.Migrate(ctx, pg.DB().DB, "up"); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return pg, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// newVerifier returns the JWT manager as well when it is the active
// provider so development tokens can be minted.
func newVerifier(ctx context.Context, cfg *config.Config, app *fbapp.App) (service.TokenVerifier, *jwtauth.Manager, error) {
	switch cfg.AuthProvider {
	case "firebase":
		authClient, err := app.Auth(ctx)
		if err != nil {
			return nil, nil, err
		}
		return firebase.NewFirebaseAuthClient(authClient), nil, nil

	case "jwt":
		if cfg.JWTSecret == "your-secret-key" && !cfg.IsDevelopment() {
			return nil, nil, fmt.Errorf("JWT_SECRET must be set outside development")
		}
		manager := jwtauth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)
		return manager, manager, nil
	}
	return nil, nil, fmt.Errorf("unknown auth provider %q", cfg.AuthProvider)
}
