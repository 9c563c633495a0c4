// Package httpapi exposes the shape counter over HTTP with gin.
//
//	GET  /health               liveness
//	GET  /version              build information
//	POST /api/v1/detect        multipart "image" (+ optional "labels=true")
//	GET  /api/v1/result/:md5   last cached result for an image hash
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildInfo is reported by /version.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// NewRouter wires the routes, recovery and request logging.
func NewRouter(h *Handler, info BuildInfo, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(Logger(logger))
	r.MaxMultipartMemory = h.maxUpload

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": info.Version,
			"backend": h.backend.Name(),
		})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, info)
	})

	api := r.Group("/api/v1")
	{
		api.POST("/detect", h.Detect)
		api.GET("/result/:md5", h.GetByMD5)
	}

	return r
}
