package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/logger"
)

const readyTimeout = 2 * time.Second

type probes struct {
	version string
	db      *gorm.DB
}

// health handles GET /health
func (p *probes) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": p.version,
	})
}

// ready handles GET /ready
func (p *probes) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := database.Ping(ctx, p.db); err != nil {
		logger.FromContext(c.Request.Context()).Warn("readiness check failed", logger.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not ready",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "ok",
	})
}
