package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"soup_menu_bot/internal/app"
	"soup_menu_bot/internal/domain/menu"
	"soup_menu_bot/internal/domain/soup"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Pinger reports whether a backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options wires the HTTP surface to the application services.
type Options struct {
	Queries       *app.QueryService // Public page and JSON API
	Teams         *app.QueryService // Nil disables the Teams webhook
	Admin         *app.AdminService
	Registry      *prometheus.Registry
	DB            Pinger
	Logger        *logrus.Entry
	Environment   string
	CORSOrigins   []string // Empty allows every origin
	AdminUser     string
	AdminPassword string // Empty leaves /admin unprotected
	TeamsSecret   string // Base64 HMAC key of the outgoing webhook; empty skips verification
}

type handlers struct {
	queries     *app.QueryService
	teams       *app.QueryService
	admin       *app.AdminService
	db          Pinger
	logger      *logrus.Entry
	teamsSecret []byte
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts Options) (*gin.Engine, error) {
	if opts.Environment == "production" || opts.Environment == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}

	h := &handlers{
		queries: opts.Queries,
		teams:   opts.Teams,
		admin:   opts.Admin,
		db:      opts.DB,
		logger:  opts.Logger,
	}
	if opts.TeamsSecret != "" {
		key, err := decodeTeamsSecret(opts.TeamsSecret)
		if err != nil {
			return nil, err
		}
		h.teamsSecret = key
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(gin.Recovery(), loggingMiddleware(opts.Logger), apiCORS(opts.CORSOrigins))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)
	router.GET("/readyz", h.ready)
	if opts.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{Registry: opts.Registry})))
	}

	router.GET("/", h.publicPage)

	var adminMiddleware []gin.HandlerFunc
	if opts.AdminPassword != "" {
		adminMiddleware = append(adminMiddleware, gin.BasicAuth(gin.Accounts{opts.AdminUser: opts.AdminPassword}))
	} else if gin.Mode() == gin.ReleaseMode {
		opts.Logger.Warn("ADMIN_WEB_PASSWORD is not set, the admin UI is not protected")
	}
	adminRoutes := router.Group("/admin", adminMiddleware...)
	{
		adminRoutes.GET("", h.adminPage)
		adminRoutes.POST("/soups", h.createSoup)
		adminRoutes.POST("/soups/:id/delete", h.deleteSoup)
		adminRoutes.POST("/soups/:id/price", h.updatePrice)
		adminRoutes.POST("/locations", h.createLocation)
	}

	api := router.Group("/api")
	{
		api.GET("/test", h.apiTest)
		api.GET("/soups/:date", h.apiSoupsForDate)
		if opts.Teams != nil {
			api.POST("/teams/messages", h.teamsMessage)
		}
	}

	return router, nil
}

var templateFuncs = template.FuncMap{
	"price": func(c soup.Cents) string { return menu.FormatPrice(c) },
	"isoDate": func(t time.Time) string {
		return t.Format(isoDateLayout)
	},
}

// apiCORS applies CORS to /api only. It runs as global middleware so preflight
// requests for unrouted OPTIONS reach it.
func apiCORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	corsHandler := cors.New(cfg)

	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			corsHandler(c)
		}
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":      method,
			"path":        path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
		})
		status := c.Writer.Status()
		switch {
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Error("Request completed with errors")
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Debug("Request completed")
		}
	}
}

func (h *handlers) ready(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Server runs the router on an http.Server so it can be shut down gracefully.
type Server struct {
	httpServer *http.Server
	logger     *logrus.Entry
}

func NewServer(addr string, handler http.Handler, logger *logrus.Entry) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
