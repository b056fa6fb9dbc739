package datastore

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MaxBodySize caps the size of a stored collection
const MaxBodySize = "4M"

var resourceNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type handler struct {
	store *SnapshotStore
}

// NewServer returns an HTTP server exposing store as the remote key-value endpoint.
// An empty token disables authentication.
func NewServer(addr string, store *SnapshotStore, token string) *http.Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	RegisterRoutes(e, store, token)

	return &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// RegisterRoutes mounts the key-value endpoint on e.
func RegisterRoutes(e *echo.Echo, store *SnapshotStore, token string) {
	h := &handler{store: store}

	e.Use(middleware.Recover())
	e.GET("/healthz", h.health)

	g := e.Group("")
	g.Use(middleware.BodyLimit(MaxBodySize))
	if token != "" {
		g.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == token, nil
			},
		}))
	}

	g.GET("/:name", h.get)
	g.POST("/:name", h.put)
}

func (h *handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) get(c echo.Context) error {
	name := c.Param("name")
	if !resourceNamePattern.MatchString(name) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid resource name")
	}

	data, ok, err := h.store.Get(name)
	if err != nil {
		slog.Error("Failed to read resource", "name", name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read resource")
	}
	if !ok {
		return c.JSONBlob(http.StatusOK, []byte("[]"))
	}
	return c.JSONBlob(http.StatusOK, data)
}

func (h *handler) put(c echo.Context) error {
	name := c.Param("name")
	if !resourceNamePattern.MatchString(name) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid resource name")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read body")
	}

	// Only whole collections are accepted
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil || items == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON array")
	}

	if err := h.store.Put(name, body); err != nil {
		slog.Error("Failed to store resource", "name", name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store resource")
	}

	slog.Debug("Stored resource", "name", name, "items", len(items))
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "items": len(items)})
}
