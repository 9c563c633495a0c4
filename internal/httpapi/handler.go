package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ironsheep/shape-counter/internal/cache"
	"github.com/ironsheep/shape-counter/internal/imaging"
	"github.com/ironsheep/shape-counter/internal/shapes"
	"github.com/ironsheep/shape-counter/internal/vision"
)

// DefaultMaxUpload is used when Options.MaxUpload is not positive.
const DefaultMaxUpload = 10 << 20

// ResultStore persists detection results. *cache.RedisCache implements it.
type ResultStore interface {
	Get(ctx context.Context, key string) (*cache.Entry, error)
	Set(ctx context.Context, key string, e *cache.Entry) error
}

// DetectResponse is returned by the detect and result endpoints.
type DetectResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Cached  bool         `json:"cached"`
	Data    *cache.Entry `json:"data,omitempty"`
}

// ErrorResponse is returned on failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Options configures a Handler.
type Options struct {
	Backend   vision.Backend
	Params    shapes.Params
	Palette   shapes.Palette
	MaxUpload int64

	// Store caches results; nil disables caching.
	Store  ResultStore
	Logger *zap.Logger
}

// Handler serves the shape counting endpoints.
type Handler struct {
	backend   vision.Backend
	params    shapes.Params
	palette   shapes.Palette
	maxUpload int64
	store     ResultStore
	logger    *zap.Logger
}

// NewHandler creates a handler from opts. A nil Store disables result caching.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		backend:   opts.Backend,
		params:    opts.Params,
		palette:   opts.Palette,
		maxUpload: opts.MaxUpload,
		store:     opts.Store,
		logger:    opts.Logger,
	}
	if h.backend == nil {
		h.backend = vision.NewNative()
	}
	if h.params == (shapes.Params{}) {
		h.params = shapes.DefaultParams()
	}
	if h.palette == (shapes.Palette{}) {
		h.palette = shapes.DefaultPalette()
	}
	if h.maxUpload <= 0 {
		h.maxUpload = DefaultMaxUpload
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

// Detect counts the shapes in the uploaded "image" form file.
func (h *Handler) Detect(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "missing image file",
			Error:   err.Error(),
		})
		return
	}
	if file.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: fmt.Sprintf("file exceeds the %d MB limit", h.maxUpload>>20),
		})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "failed to read upload", Error: err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "failed to read upload", Error: err.Error()})
		return
	}

	p := h.params
	if c.DefaultPostForm("labels", "false") == "true" {
		p.Labels = true
	}

	md5 := cache.BytesMD5(data)
	key := cache.Key(md5, h.backend.Name(), p)
	ctx := c.Request.Context()

	h.logger.Info("file uploaded",
		zap.String("filename", file.Filename),
		zap.String("md5", md5),
		zap.Int64("size", file.Size),
		zap.Bool("labels", p.Labels))

	if h.store != nil {
		cached, err := h.store.Get(ctx, key)
		if err != nil {
			h.logger.Warn("failed to get cache", zap.Error(err))
		}
		if cached != nil {
			h.logger.Info("cache hit", zap.String("cache_key", key))
			c.JSON(http.StatusOK, DetectResponse{Success: true, Message: "ok", Cached: true, Data: cached})
			return
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: shapes.ErrImageLoad.Error(),
			Error:   err.Error(),
		})
		return
	}

	d := shapes.NewDetector(h.backend,
		shapes.WithParams(p),
		shapes.WithPalette(h.palette),
		shapes.WithLogger(h.logger),
	)
	res, err := d.Detect(img)
	if err != nil {
		h.logger.Error("failed to process image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "detection failed", Error: err.Error()})
		return
	}

	enc, err := imaging.EncodePNGBase64(res.Annotated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "failed to encode result", Error: err.Error()})
		return
	}

	entry := &cache.Entry{
		MD5:       md5,
		Backend:   d.Backend(),
		Params:    p,
		Counts:    res.Counts,
		Shapes:    res.Shapes,
		Image:     enc.ImageBase64,
		CreatedAt: time.Now().UTC(),
	}

	if h.store != nil {
		// Keyed by parameters for hits, and by hash alone for lookups.
		for _, k := range []string{key, md5} {
			if err := h.store.Set(ctx, k, entry); err != nil {
				h.logger.Warn("failed to set cache", zap.String("cache_key", k), zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, DetectResponse{Success: true, Message: "ok", Data: entry})
}

// GetByMD5 returns the most recent result stored for an image hash.
func (h *Handler) GetByMD5(c *gin.Context) {
	md5 := c.Param("md5")
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "result cache disabled"})
		return
	}

	entry, err := h.store.Get(c.Request.Context(), md5)
	if err != nil {
		h.logger.Error("failed to get result", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "lookup failed", Error: err.Error()})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "no result for " + md5})
		return
	}

	c.JSON(http.StatusOK, DetectResponse{Success: true, Message: "ok", Cached: true, Data: entry})
}
