package api

import (
	"net/http"
	"strconv"
	"time"

	"catalog-service/internal/catalog"
	"catalog-service/internal/service"
	"catalog-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	sessions *service.SessionService
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(sessions *service.SessionService) *Handler {
	return &Handler{
		sessions: sessions,
		logger:   util.GetLogger(),
	}
}

// FiltersRequest updates one or both filters; absent fields are left alone
type FiltersRequest struct {
	Category *string `json:"category"`
	Query    *string `json:"query"`
}

// MountResponse is returned when a session is created
type MountResponse struct {
	SessionID string           `json:"session_id"`
	State     catalog.Snapshot `json:"state"`
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sessions", h.mountSession)
		v1.DELETE("/sessions/:id", h.unmountSession)

		session := v1.Group("/sessions/:id", h.provideSession())
		{
			session.GET("", h.getState)
			session.GET("/products", h.getProducts)
			session.GET("/filtered", h.getFiltered)
			session.GET("/categories", h.getCategories)
			session.PUT("/filters", h.updateFilters)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"sessions": h.sessions.Len(),
		"time":     time.Now().Unix(),
	})
}

// mountSession starts a session and returns its initial state
func (h *Handler) mountSession(c *gin.Context) {
	id, provider := h.sessions.Mount(c.Request.Context())

	c.JSON(http.StatusCreated, MountResponse{
		SessionID: id,
		State:     provider.Snapshot(),
	})
}

// unmountSession tears a session down
func (h *Handler) unmountSession(c *gin.Context) {
	if err := h.sessions.Unmount(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Session not found",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// provideSession scopes the session's provider to the request context
func (h *Handler) provideSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		provider, err := h.sessions.Get(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": "Session not found",
			})
			return
		}

		c.Request = c.Request.WithContext(catalog.WithProvider(c.Request.Context(), provider))
		c.Next()
	}
}

// provider reads the scoped provider. A miss means a route was registered
// outside provideSession, which is a wiring bug.
func (h *Handler) provider(c *gin.Context) (*catalog.Provider, bool) {
	provider, err := catalog.FromContext(c.Request.Context())
	if err != nil {
		h.logger.Error("Catalog handler used outside a session scope",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Configuration error",
			"details": err.Error(),
		})
		return nil, false
	}
	return provider, true
}

// getState returns the full consumer view
func (h *Handler) getState(c *gin.Context) {
	provider, ok := h.provider(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, provider.Snapshot())
}

// getProducts returns the unfiltered catalog
func (h *Handler) getProducts(c *gin.Context) {
	provider, ok := h.provider(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": provider.Products(),
	})
}

// getFiltered returns the products matching the session's filters
func (h *Handler) getFiltered(c *gin.Context) {
	provider, ok := h.provider(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":          provider.Filtered(),
		"selected_category": provider.SelectedCategory(),
		"search_query":      provider.SearchQuery(),
	})
}

// getCategories returns the distinct categories
func (h *Handler) getCategories(c *gin.Context) {
	provider, ok := h.provider(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": provider.Categories(),
	})
}

// updateFilters sets the category and/or search query
func (h *Handler) updateFilters(c *gin.Context) {
	provider, ok := h.provider(c)
	if !ok {
		return
	}

	var req FiltersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.Category != nil {
		provider.SetSelectedCategory(*req.Category)
	}
	if req.Query != nil {
		provider.SetSearchQuery(*req.Query)
	}

	c.JSON(http.StatusOK, provider.Snapshot())
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
