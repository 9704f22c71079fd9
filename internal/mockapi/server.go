// Package mockapi is a local stand-in for the generation and persistence
// collaborators. It serves the embedded OpenAPI contract over SQLite and
// replaces the language model with a keyword-driven generator.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/routers"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formchat/api"
	"github.com/goliatone/go-formchat/internal/logger"
)

// DefaultBasePath matches the path of the default collaborator URL.
const DefaultBasePath = "/api"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithBasePath mounts the API under prefix instead of DefaultBasePath.
func WithBasePath(prefix string) Option {
	return func(s *Server) {
		s.basePath = "/" + strings.Trim(prefix, "/")
		if s.basePath == "/" {
			s.basePath = ""
		}
	}
}

// WithPublicIDGenerator overrides form public id generation.
func WithPublicIDGenerator(fn func() string) Option {
	return func(s *Server) {
		if fn != nil {
			s.newPublicID = fn
		}
	}
}

// Server implements the collaborator endpoints.
type Server struct {
	store       *Store
	router      routers.Router
	logger      zerolog.Logger
	basePath    string
	newPublicID func() string
	engine      *gin.Engine
}

// New builds the mock server over store.
func New(ctx context.Context, store *Store, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, errors.New("mockapi: store is required")
	}
	doc, err := api.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("mockapi: %w", err)
	}
	router, err := newContractRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("mockapi: build contract router: %w", err)
	}

	s := &Server{
		store:       store,
		router:      router,
		logger:      logger.Nop(),
		basePath:    DefaultBasePath,
		newPublicID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.engine = s.routes()
	return s, nil
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Str("base_path", s.basePath).Msg("mock collaborator listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("mockapi: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	g := r.Group(s.basePath, s.contract())
	g.POST("/Chat", s.createForm)
	g.PUT("/Chat/form/public/:formId", s.refineForm)
	g.PUT("/Forms/:formId/finaljson", s.publishFinal)
	g.GET("/Forms/public/:formId/finaljson", s.loadFinal)
	g.POST("/Forms/public/:formId/submit", s.submitForm)
	g.GET("/Forms/:formId/submissions", s.listSubmissions)
	g.GET("/forms", s.listForms)
	g.POST("/Auth/login", s.login)
	g.POST("/Auth/register", s.register)
	return r
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("mock request")
	}
}
