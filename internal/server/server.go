package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/logging"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/model"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// DefaultPrefix is the path prefix all routes are mounted under.
const DefaultPrefix = "/api"

// Config holds server configuration options.
type Config struct {
	Port int

	// Prefix is the route prefix. Empty means DefaultPrefix; "/" mounts at
	// the root.
	Prefix string

	// Script is a recorded NDJSON stream to replay for every request. When
	// empty the stream is synthesized from the request.
	Script []byte

	// ChunkSize is the number of bytes written per flush. Zero writes the
	// whole stream at once.
	ChunkSize int

	// Delay is the pause between chunks.
	Delay time.Duration

	// Steps is the number of progress events in a synthesized stream.
	Steps int

	// Sample is served on /sample-data. Nil uses GenerateSampleData.
	Sample *model.SampleData

	APIKeySet bool

	// AllowOrigins lists the CORS origins allowed to call the server.
	// Empty allows any origin.
	AllowOrigins []string

	Logger *logging.Logger
}

// Server is a mock solver.
type Server struct {
	cfg    Config
	logger *logging.Logger

	mu       sync.RWMutex
	server   *http.Server
	listener net.Listener
	started  bool

	// streams counts optimization streams served
	streams int
}

// NewServer creates a new Server instance.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.ChunkSize < 0 {
		return nil, errors.New("chunk size must not be negative")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}

	c := *cfg
	switch c.Prefix {
	case "":
		c.Prefix = DefaultPrefix
	case "/":
		c.Prefix = ""
	default:
		c.Prefix = "/" + strings.Trim(c.Prefix, "/")
	}
	if c.Steps <= 0 {
		c.Steps = DefaultSteps
	}

	logger := c.Logger
	if logger == nil {
		logger = logging.With("component", "mock-solver")
	}

	return &Server{cfg: c, logger: logger}, nil
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.cfg.Port
}

// Prefix returns the route prefix.
func (s *Server) Prefix() string {
	return s.cfg.Prefix
}

// StreamsServed returns the number of optimization streams started.
func (s *Server) StreamsServed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streams
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = s.cfg.AllowOrigins
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	r.Use(cors.New(corsCfg))

	api := r.Group(s.cfg.Prefix)
	api.GET("/health", s.handleHealth)
	api.GET("/sample-data", s.handleSample)
	api.POST("/optimize-stream", s.handleStream)
	api.POST("/optimize-analytics", s.handleOptimize)
	return r
}

// Start starts the HTTP server.
// The server runs until ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("server already started")
	}

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: streams may run for minutes
	}
	s.started = true
	srv := s.server
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	err = srv.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.started = false
	return nil
}

// ListenAddr returns the actual address the server is listening on.
// Useful when port 0 is used to get an available port.
// Returns empty string if not started.
func (s *Server) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, model.Health{
		Status:    "ok",
		Service:   "mock-solver",
		APIKeySet: s.cfg.APIKeySet,
	})
}

func (s *Server) handleSample(c *gin.Context) {
	data := s.cfg.Sample
	if data == nil {
		data = GenerateSampleData(time.Now().UnixNano())
	}
	c.JSON(http.StatusOK, data)
}

func (s *Server) handleStream(c *gin.Context) {
	req, ok := s.decodeRequest(c)
	if !ok {
		return
	}

	body := s.cfg.Script
	if len(body) == 0 {
		body = Synthesize(req, s.cfg.Steps)
	}

	s.mu.Lock()
	s.streams++
	s.mu.Unlock()

	logger := s.logger.With("requestID", c.GetHeader("X-Request-ID"))
	logger.Debug("streaming optimization", "bytes", len(body), "chunk", s.cfg.ChunkSize)

	w := c.Writer
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	chunk := s.cfg.ChunkSize
	if chunk == 0 {
		chunk = len(body)
	}

	for off := 0; off < len(body); off += chunk {
		if off > 0 && s.cfg.Delay > 0 {
			timer := time.NewTimer(s.cfg.Delay)
			select {
			case <-c.Request.Context().Done():
				timer.Stop()
				logger.Debug("client went away", "offset", off)
				return
			case <-timer.C:
			}
		}

		end := min(off+chunk, len(body))
		if _, err := w.Write(body[off:end]); err != nil {
			logger.Debug("write failed", "error", err)
			return
		}
		w.Flush()
	}
}

func (s *Server) handleOptimize(c *gin.Context) {
	req, ok := s.decodeRequest(c)
	if !ok {
		return
	}

	result, err := FinalResult(s.cfg.Script, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) decodeRequest(c *gin.Context) (*model.Request, bool) {
	var req model.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return nil, false
	}
	if err := model.ValidateRequest(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return &req, true
}
