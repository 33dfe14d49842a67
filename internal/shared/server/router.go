package server

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"lanshare-backend/internal/collections"
	"lanshare-backend/internal/notes"
	"lanshare-backend/internal/shared/config"
	"lanshare-backend/internal/shared/metrics"
	"lanshare-backend/internal/shared/server/middleware"
	"lanshare-backend/internal/shared/server/respond"
	"lanshare-backend/internal/shared/util"
	"lanshare-backend/internal/shares"
)

const (
	poweredBy   = "LAN File Share"
	uploadGroup = "UPLOAD"
)

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config      config.Config
	Shares      *shares.Handler
	Collections *collections.Handler
	Notes       *notes.Handler
	// Limiter is shared by all upload routes. Nil builds a fresh one.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		func(c *gin.Context) {
			c.Header("X-Powered-By", poweredBy)
			c.Next()
		},
	)

	uploadLimit := middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: uploadGroup,
		Limiter:      deps.Limiter,
		Rules: map[string]middleware.RateLimitRule{
			uploadGroup: {Rate: cfg.UploadRatePerSec, Burst: cfg.UploadBurst},
		},
	})

	r.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{"status": "ok", "port": cfg.Port, "host": cfg.Host})
	})
	r.GET("/info", func(c *gin.Context) {
		respond.OK(c, gin.H{
			"baseUrl": util.BaseURL(cfg.PublicBaseURL, c.Request),
			"port":    cfg.Port,
			"dataDir": cfg.DataDir,
		})
	})
	r.GET("/bootstrap", func(c *gin.Context) {
		target, err := bootstrapURL(cfg.FrontendURL, util.BaseURL(cfg.PublicBaseURL, c.Request))
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "config_error", "FRONTEND_URL is invalid", nil)
			return
		}
		c.Redirect(http.StatusFound, target)
	})
	r.GET("/metrics", metrics.Handler())

	if deps.Shares != nil {
		deps.Shares.RegisterRoutes(r, uploadLimit)
	}
	if deps.Collections != nil {
		deps.Collections.RegisterRoutes(r, uploadLimit)
	}
	if deps.Notes != nil {
		deps.Notes.RegisterRoutes(r)
	}

	return r
}

// bootstrapURL appends api=<base> to the frontend URL, keeping any existing
// query parameters.
func bootstrapURL(frontendURL, base string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(frontendURL))
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("api", base)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Addr normalizes the listen address.
func Addr(host, port string) string {
	port = strings.TrimPrefix(strings.TrimSpace(port), ":")
	if port == "" {
		port = "3000"
	}
	return net.JoinHostPort(strings.TrimSpace(host), port)
}
