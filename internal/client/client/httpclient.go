package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/fraudwatch/internal/client/models"
	"github.com/dmitrijs2005/fraudwatch/internal/common"
	"github.com/dmitrijs2005/fraudwatch/internal/logging"
	"github.com/google/uuid"
)

const DefaultBaseURL = "http://localhost:5000/api"

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// UnauthorizedFunc is run synchronously on every 401, before the error is
// returned to the caller.
type UnauthorizedFunc func(ctx context.Context)

type HTTPClient struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized UnauthorizedFunc
	log            logging.Logger
	newRequestID   func() string
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) { c.tokens = ts }
}

func WithUnauthorizedHandler(fn UnauthorizedFunc) Option {
	return func(c *HTTPClient) { c.onUnauthorized = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithTimeout sets the per-request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{},
		log:          logging.Discard(),
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUnauthorizedHandler installs the 401 hook after construction, for
// callers whose handler depends on the client itself.
func (c *HTTPClient) SetUnauthorizedHandler(fn UnauthorizedFunc) {
	c.onUnauthorized = fn
}

// errorBody covers the error shapes the service sends: its own handlers use
// "error" or "message", the JWT layer answers 401/422 with "msg".
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

// do performs one JSON round trip. in may be nil; out may be nil when the
// body is of no interest.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}

	requestID := c.newRequestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	log := c.log.With("method", method, "path", path, "request_id", requestID)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "err", err)
		return newTransportError(err)
	}
	defer resp.Body.Close()

	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := newStatusError(resp.StatusCode, readErrorMessage(resp.Body))
		if errors.Is(se, ErrUnauthorized) && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return se
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ServiceError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("invalid response from %s: %v", path, err),
			Err:     err,
		}
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(b) == 0 {
		return ""
	}
	var eb errorBody
	if json.Unmarshal(b, &eb) == nil {
		for _, m := range []string{eb.Error, eb.Message, eb.Msg} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(b))
}

type authResponse struct {
	Success *bool           `json:"success"`
	Error   string          `json:"error"`
	Token   string          `json:"token"`
	User    models.Identity `json:"user"`
}

// result converts the body into an AuthResult. A 2xx reply that still says
// success=false is reported as a rejected request.
func (r *authResponse) result() (*AuthResult, error) {
	if r.Success != nil && !*r.Success {
		return nil, newStatusError(http.StatusBadRequest, r.Error)
	}
	return &AuthResult{Identity: r.User, Token: r.Token}, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string, role models.Role) (*AuthResult, error) {
	req := struct {
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role,omitempty"`
	}{email, password, role}

	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/login", req, &resp); err != nil {
		return nil, err
	}
	return resp.result()
}

func (c *HTTPClient) Register(ctx context.Context, user Registration) (*AuthResult, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/register", user, &resp); err != nil {
		return nil, err
	}
	return resp.result()
}

func (c *HTTPClient) Predict(ctx context.Context, transactions []ScoringTransaction) (*PredictResult, error) {
	req := struct {
		Transactions []ScoringTransaction `json:"transactions"`
	}{transactions}

	var resp PredictResult
	if err := c.do(ctx, http.MethodPost, "/predict", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	var resp ModelInfo
	if err := c.do(ctx, http.MethodGet, "/model-info", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) DatasetInfo(ctx context.Context) (*DatasetInfo, error) {
	var resp DatasetInfo
	if err := c.do(ctx, http.MethodGet, "/dataset-info", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Health(ctx context.Context) (*Health, error) {
	var resp Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) TrainFromCSV(ctx context.Context) (*TrainResult, error) {
	var resp TrainResult
	if err := c.do(ctx, http.MethodPost, "/train-from-csv", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.Identity, error) {
	var resp struct {
		User models.Identity `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/user", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *HTTPClient) Users(ctx context.Context) ([]models.Identity, error) {
	var resp struct {
		Users []models.Identity `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

var _ Client = (*HTTPClient)(nil)
