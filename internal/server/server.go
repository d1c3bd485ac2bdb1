package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/parcelgraph/internal/config"
	"github.com/agenthands/parcelgraph/internal/core"
	"github.com/agenthands/parcelgraph/internal/core/model"
	"github.com/agenthands/parcelgraph/internal/ingest"
	"github.com/agenthands/parcelgraph/internal/logging"
)

type Server struct {
	Engine *core.Engine
	cfg    *config.Config
	logger logging.Logger
}

func NewServer(engine *core.Engine, cfg *config.Config, logger logging.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Server{
		Engine: engine,
		cfg:    cfg,
		logger: logger.Named("http"),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.POST("/sync", s.Sync)
	r.POST("/detect", s.Detect)
	r.GET("/health", s.Health)
	r.GET("/stats", s.Stats)
	r.GET("/metrics", gin.WrapH(s.Engine.Metrics().Handler()))

	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("latency", time.Since(start)))
	}
}

// SyncRequest is the JSON body of POST /sync and POST /detect.
type SyncRequest struct {
	Parcels []model.Parcel `json:"parcels"`
}

func (s *Server) Sync(c *gin.Context) {
	records, ok := s.bindRecords(c)
	if !ok {
		return
	}

	report, err := s.Engine.Sync(c.Request.Context(), records)
	if err != nil {
		s.logger.Error("sync request failed", logging.Err(err))
		c.JSON(statusOf(err), gin.H{"error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) Detect(c *gin.Context) {
	records, ok := s.bindRecords(c)
	if !ok {
		return
	}

	report, err := s.Engine.Detect(records)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) Health(c *gin.Context) {
	if err := s.Engine.Health(c.Request.Context()); err != nil {
		s.logger.Warn("health check failed", logging.Err(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Stats(c *gin.Context) {
	stats, err := s.Engine.Stats(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to read stats", logging.Err(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to read store statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// bindRecords accepts either a JSON SyncRequest or a multipart form with a
// CSV upload in the "file" field, decoded with the configured columns.
func (s *Server) bindRecords(c *gin.Context) ([]model.Parcel, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return s.bindUpload(c)
	}

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return nil, false
	}
	return req.Parcels, true
}

func (s *Server) bindUpload(c *gin.Context) ([]model.Parcel, bool) {
	limit := s.cfg.Server.MaxUploadMB << 20
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("missing upload: %v", err)})
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open upload"})
		return nil, false
	}
	defer f.Close()

	sep := s.cfg.Input.Separator
	if v := c.PostForm("separator"); v != "" {
		sep = v
	}
	runes := []rune(sep)
	if len(runes) != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("separator must be a single character, got %q", sep)})
		return nil, false
	}

	batch, err := ingest.ReadCSV(f, runes[0], s.cfg.Input.Columns)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	for _, inv := range batch.Invalid {
		s.logger.Warn("upload row rejected", logging.Err(inv))
	}
	return batch.Parcels, true
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, core.ErrNoValidRecords):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrStoreRead):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
