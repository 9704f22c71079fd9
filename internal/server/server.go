// Package server is the HTTP and WebSocket front end for the conversation
// controller and the public fill pages.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formchat/internal/logger"
	"github.com/goliatone/go-formchat/internal/metrics"
	"github.com/goliatone/go-formchat/pkg/conversation"
	"github.com/goliatone/go-formchat/pkg/render"
	"github.com/goliatone/go-formchat/pkg/renderers/vanilla"
	"github.com/goliatone/go-formchat/pkg/speech"
	"github.com/goliatone/go-formchat/pkg/submission"
)

const shutdownTimeout = 10 * time.Second

// ControllerFactory builds a fresh controller for a new conversation.
type ControllerFactory func() (*conversation.Controller, error)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the base logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics records HTTP and websocket metrics and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithTheme applies a resolved theme to every rendered page.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithSubmissions enables the public fill pages at /forms/:publicId.
func WithSubmissions(svc *submission.Service) Option {
	return func(s *Server) {
		s.submissions = svc
	}
}

// WithRenderer replaces the HTML renderer used for previews and fill pages.
func WithRenderer(r render.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithIDGenerator overrides conversation id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithQuietPeriod sets how long a dictated transcript received over the
// websocket must stay unchanged before it is sent as a message.
func WithQuietPeriod(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.quietPeriod = d
		}
	}
}

// Server routes HTTP requests to conversations and the submission service.
type Server struct {
	factory     ControllerFactory
	submissions *submission.Service
	renderer    render.Renderer
	theme       *theme.RendererConfig
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	newID       func() string
	quietPeriod time.Duration
	engine      *gin.Engine

	mu            sync.RWMutex
	conversations map[string]*conversation.Controller
}

// New wires the routes. factory is required; the fill pages are only mounted
// when a submission service is configured.
func New(factory ControllerFactory, opts ...Option) (*Server, error) {
	if factory == nil {
		return nil, errors.New("server: controller factory is required")
	}
	s := &Server{
		factory:       factory,
		logger:        logger.Nop(),
		newID:         uuid.NewString,
		quietPeriod:   speech.DefaultQuietPeriod,
		conversations: make(map[string]*conversation.Controller),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.renderer == nil {
		r, err := vanilla.New(vanilla.WithDefaultStyles())
		if err != nil {
			return nil, fmt.Errorf("server: build renderer: %w", err)
		}
		s.renderer = r
	}
	s.engine = s.routes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(s.recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	r.StaticFS("/assets", http.FS(vanilla.AssetsFS()))

	api := r.Group("/api")
	{
		api.GET("/suggestions", s.handleSuggestions)
		api.POST("/conversations", s.handleNewConversation)
		api.GET("/conversations/:id", s.handleSnapshot)
		api.POST("/conversations/:id/create", s.handleCreate)
		api.POST("/conversations/:id/messages", s.handleMessage)
		api.POST("/conversations/:id/publish", s.handlePublish)
		api.GET("/conversations/:id/preview", s.handlePreview)
		api.GET("/conversations/:id/ws", s.handleWebsocket)
		if s.submissions != nil {
			api.GET("/forms/:publicId/submissions", s.handleSubmissions)
		}
	}

	if s.submissions != nil {
		r.GET("/forms/:publicId", s.handleFillPage)
		r.POST("/forms/:publicId", s.handleFillSubmit)
	}
	return r
}

func (s *Server) conversation(id string) (*conversation.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctrl, ok := s.conversations[id]
	return ctrl, ok
}

func (s *Server) openConversation() (string, *conversation.Controller, error) {
	ctrl, err := s.factory()
	if err != nil {
		return "", nil, err
	}
	id := s.newID()
	s.mu.Lock()
	s.conversations[id] = ctrl
	s.mu.Unlock()
	return id, ctrl, nil
}

func (s *Server) requestContext(c *gin.Context) context.Context {
	l := s.logger.With().
		Str("method", c.Request.Method).
		Str("route", c.FullPath()).
		Logger()
	return logger.WithContext(c.Request.Context(), l)
}
