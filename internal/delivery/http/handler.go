package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comparaprecios/backend/internal/domain"
	"github.com/comparaprecios/backend/internal/infrastructure/meli"
)

// SearchUsecase is the slice of the search service the handlers need.
type SearchUsecase interface {
	Search(ctx context.Context, query string) (*domain.SearchResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search   SearchUsecase
	adapters map[string]domain.SourceAdapter
	auth     *meli.AuthClient
}

// NewHandler creates a new HTTP handler. adapters is keyed by display name
// and backs the per-source debug endpoint; auth may be nil when the
// MercadoLibre OAuth app is not configured.
func NewHandler(search SearchUsecase, adapters []domain.SourceAdapter, auth *meli.AuthClient) *Handler {
	byName := make(map[string]domain.SourceAdapter, len(adapters))
	for _, adapter := range adapters {
		byName[adapter.Name()] = adapter
	}
	return &Handler{
		search:   search,
		adapters: byName,
		auth:     auth,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "comparaprecios-backend",
		"version": "1.0.0",
	})
}

// Search handles GET /search?q=. Adapter failures never produce an error
// status; only a missing query does.
func (h *Handler) Search(c *gin.Context) {
	result, err := h.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// DebugSource runs a single adapter directly, bypassing scoring and
// filtering, to inspect what a retailer integration returns.
func (h *Handler) DebugSource(c *gin.Context) {
	name := c.Param("source")
	adapter, ok := h.adapters[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("%v: %s", domain.ErrUnknownSource, name)})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	records, err := adapter.Fetch(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"source": name,
			"count":  0,
			"items":  []domain.ProductRecord{},
			"error":  err.Error(),
		})
		return
	}
	if records == nil {
		records = []domain.ProductRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"source": name,
		"count":  len(records),
		"items":  records,
	})
}

// MeliLogin redirects the browser to the MercadoLibre consent page.
func (h *Handler) MeliLogin(c *gin.Context) {
	if h.auth == nil || !h.auth.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "MercadoLibre OAuth is not configured (set COMPARAPRECIOS_MELI_CLIENT_ID and COMPARAPRECIOS_MELI_REDIRECT_URI)",
		})
		return
	}
	c.Redirect(http.StatusFound, h.auth.AuthorizationURL())
}

// MeliCallback receives the authorization code and exchanges it for a token.
func (h *Handler) MeliCallback(c *gin.Context) {
	if h.auth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "MercadoLibre OAuth is not configured"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusOK, gin.H{"ok": false, "message": "missing 'code' in callback"})
		return
	}

	if err := h.auth.Exchange(c.Request.Context(), code); err != nil {
		log.Printf("[MELI] code exchange failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "token exchange failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// MeliNotifications acknowledges MercadoLibre webhook notifications.
func (h *Handler) MeliNotifications(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid notification payload"})
		return
	}
	log.Printf("[MELI] notification received: %v", payload)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
