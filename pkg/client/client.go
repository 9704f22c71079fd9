// Package client talks to the generation and persistence collaborators over
// HTTP/JSON and adapts them to the conversation and submission ports.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formchat/internal/logger"
)

// DefaultTimeout bounds a request when the caller's context has no deadline.
const DefaultTimeout = 60 * time.Second

// Client is an HTTP client for the collaborator API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	session *Session
	timeout time.Duration
	logger  *zerolog.Logger
	agent   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithSession attaches the session whose token authorizes requests.
func WithSession(s *Session) Option {
	return func(c *Client) {
		if s != nil {
			c.session = s
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used when the request context carries none.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = &l
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.agent = agent
	}
}

// New builds a client rooted at baseURL (for example
// "https://host/api").
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("client: base url is required")
	}
	parsed, err := url.Parse(strings.TrimRight(trimmed, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL: parsed,
		http:    &http.Client{},
		session: &Session{},
		timeout: DefaultTimeout,
		agent:   "formchat",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Session returns the session attached to the client.
func (c *Client) Session() *Session {
	return c.session
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// CreateForm calls POST /Chat.
func (c *Client) CreateForm(ctx context.Context, req CreateFormRequest) (CreateFormResponse, error) {
	var out CreateFormResponse
	err := c.do(ctx, "create form", http.MethodPost, "/Chat", req, &out)
	return out, err
}

// Refine calls PUT /Chat/form/public/{formID}.
func (c *Client) Refine(ctx context.Context, formID string, req RefineRequest) (RefineResponse, error) {
	var out RefineResponse
	err := c.do(ctx, "refine form", http.MethodPut, "/Chat/form/public/"+url.PathEscape(formID), req, &out)
	return out, err
}

// PublishFinal calls PUT /Forms/{formID}/finaljson.
func (c *Client) PublishFinal(ctx context.Context, formID string, req FinalJSON) error {
	return c.do(ctx, "publish form", http.MethodPut, "/Forms/"+url.PathEscape(formID)+"/finaljson", req, nil)
}

// LoadFinal calls GET /Forms/public/{formID}/finaljson.
func (c *Client) LoadFinal(ctx context.Context, formID string) (FinalJSON, error) {
	var out FinalJSON
	err := c.do(ctx, "load form", http.MethodGet, "/Forms/public/"+url.PathEscape(formID)+"/finaljson", nil, &out)
	return out, err
}

// Submit calls POST /Forms/public/{formID}/submit.
func (c *Client) Submit(ctx context.Context, formID string, req SubmitRequest) error {
	return c.do(ctx, "submit form", http.MethodPost, "/Forms/public/"+url.PathEscape(formID)+"/submit", req, nil)
}

// Submissions calls GET /Forms/{formID}/submissions.
func (c *Client) Submissions(ctx context.Context, formID string) ([]Submission, error) {
	var out []Submission
	err := c.do(ctx, "list submissions", http.MethodGet, "/Forms/"+url.PathEscape(formID)+"/submissions", nil, &out)
	if out == nil && err == nil {
		out = []Submission{}
	}
	return out, err
}

// Forms calls GET /forms.
func (c *Client) Forms(ctx context.Context) ([]FormSummary, error) {
	var out []FormSummary
	err := c.do(ctx, "list forms", http.MethodGet, "/forms", nil, &out)
	if out == nil && err == nil {
		out = []FormSummary{}
	}
	return out, err
}

// Login calls POST /Auth/login and stores the token on the session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, "/Auth/login", req, &out); err != nil {
		return out, err
	}
	if out.Token != "" {
		c.session.Set(out.Token, out.User.Name)
	}
	return out, nil
}

// Register calls POST /Auth/register. A returned token is stored on the
// session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, "register", http.MethodPost, "/Auth/register", req, &out); err != nil {
		return out, err
	}
	if out.Token != "" {
		c.session.Set(out.Token, out.User.Name)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL.String() + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &TransportError{Op: op, Method: method, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.agent != "" {
		req.Header.Set("User-Agent", c.agent)
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.log(ctx)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("component", "client").Str("op", op).Str("method", method).Str("path", path).
			Msg("request failed")
		return &TransportError{Op: op, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Method: method, Path: path, Status: resp.StatusCode, Err: err}
	}

	log.Debug().Str("component", "client").Str("op", op).Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(data)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		log.Warn().Str("component", "client").Str("op", op).Int("status", resp.StatusCode).Msg("non-success response")
		return &TransportError{
			Op:     op,
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   text,
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{
			Op:     op,
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

func (c *Client) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	if c.logger != nil {
		return c.logger
	}
	return logger.From(ctx)
}
