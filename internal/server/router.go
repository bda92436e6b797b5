// Package server assembles the HTTP API: ambient middleware, the
// operational probes and every domain's routes under /api.
package server

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	filmhandler "github.com/narwhalmedia/wrongopinions/internal/film/handler"
	musichandler "github.com/narwhalmedia/wrongopinions/internal/music/handler"
	userhandler "github.com/narwhalmedia/wrongopinions/internal/user/handler"
	weekhandler "github.com/narwhalmedia/wrongopinions/internal/week/handler"
	"github.com/narwhalmedia/wrongopinions/pkg/auth"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
	"github.com/narwhalmedia/wrongopinions/pkg/logger"
	"github.com/narwhalmedia/wrongopinions/pkg/middleware"
)

// Handlers are the domain handlers mounted under /api.
type Handlers struct {
	Users *userhandler.HTTPHandler
	Films *filmhandler.HTTPHandler
	Music *musichandler.HTTPHandler
	Weeks *weekhandler.HTTPHandler
}

// Options carries what the router needs besides the handlers.
type Options struct {
	Version    string
	Debug      bool
	DB         *gorm.DB
	JWT        *auth.JWTManager
	Principals middleware.PrincipalLoader
	Logger     interfaces.Logger
}

// NewRouter builds the gin engine.
func NewRouter(opts Options, h Handlers) *gin.Engine {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(opts.Logger))
	router.Use(middleware.ErrorHandler())

	probes := &probes{version: opts.Version, db: opts.DB}
	router.GET("/health", probes.health)
	router.GET("/ready", probes.ready)

	api := router.Group("/api")
	protected := api.Group("")
	protected.Use(middleware.RequireAuth(opts.JWT, opts.Principals))

	h.Users.RegisterRoutes(api, protected)
	h.Films.RegisterRoutes(protected)
	h.Music.RegisterRoutes(protected)
	h.Weeks.RegisterRoutes(protected)

	return router
}
