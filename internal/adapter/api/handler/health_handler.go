package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"assetbazaar/internal/infrastructure/datastore"
)

type HealthHandler struct {
	backend string
	store   *datastore.InstrumentedStore
	sockets func() int
}

var healthHandler *HealthHandler

func NewHealthHandler(backend string, store *datastore.InstrumentedStore, sockets func() int) *HealthHandler {
	return &HealthHandler{
		backend: backend,
		store:   store,
		sockets: sockets,
	}
}

func SetupHealthHandler(backend string, store *datastore.InstrumentedStore, sockets func() int) {
	healthHandler = NewHealthHandler(backend, store, sockets)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status":  "ok",
		"time":    time.Now().Format(time.RFC3339),
		"backend": h.backend,
	}
	if h.store != nil {
		body["store"] = h.store.Stats()
	}
	if h.sockets != nil {
		body["sockets"] = h.sockets()
	}
	return c.JSON(http.StatusOK, body)
}
