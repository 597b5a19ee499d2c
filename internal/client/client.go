// Package client is a typed HTTP client for the Argumetrics API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/ayush/argumetrics/internal/models"
)

// ErrUnauthorized matches any 401 response via errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

const sessionCookie = "session_id"

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Status)
	}
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Client calls the API over HTTP. The session lives in its cookie jar.
// The argument list and archetype report are cached until a create or
// delete through this client succeeds.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client

	mu        sync.Mutex
	arguments []models.Argument
	report    []models.ArchetypeCount
	// bumped by invalidate; a fetch that started under an older
	// generation does not fill the cache
	generation uint64
}

func New(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{baseURL: u, httpClient: &http.Client{Jar: jar}}, nil
}

// SessionToken returns the current session token, or "" when logged out.
func (c *Client) SessionToken() string {
	for _, ck := range c.httpClient.Jar.Cookies(c.baseURL) {
		if ck.Name == sessionCookie {
			return ck.Value
		}
	}
	return ""
}

// SetSessionToken restores a session saved by an earlier process.
func (c *Client) SetSessionToken(token string) {
	if token == "" {
		return
	}
	c.httpClient.Jar.SetCookies(c.baseURL, []*http.Cookie{{Name: sessionCookie, Value: token, Path: "/"}})
}

// Register calls POST /api/register.
func (c *Client) Register(ctx context.Context, in models.InsertUser) (*models.User, error) {
	if err := models.ValidateUser(in); err != nil {
		return nil, err
	}
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/api/register", in, &user); err != nil {
		return nil, err
	}
	c.invalidate()
	return &user, nil
}

// Login calls POST /api/login.
func (c *Client) Login(ctx context.Context, in models.InsertUser) (*models.User, error) {
	if err := models.ValidateUser(in); err != nil {
		return nil, err
	}
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/api/login", in, &user); err != nil {
		return nil, err
	}
	c.invalidate()
	return &user, nil
}

// Logout calls POST /api/logout.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

// CurrentUser calls GET /api/user.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Arguments returns the catalog, oldest first.
func (c *Client) Arguments(ctx context.Context) ([]models.Argument, error) {
	c.mu.Lock()
	cached, gen := c.arguments, c.generation
	c.mu.Unlock()
	if cached != nil {
		return append([]models.Argument(nil), cached...), nil
	}

	args := []models.Argument{}
	if err := c.do(ctx, http.MethodGet, "/api/arguments", nil, &args); err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.generation == gen {
		c.arguments = args
	}
	c.mu.Unlock()
	return append([]models.Argument(nil), args...), nil
}

// Argument calls GET /api/arguments/{id}.
func (c *Client) Argument(ctx context.Context, id int64) (*models.Argument, error) {
	var arg models.Argument
	if err := c.do(ctx, http.MethodGet, "/api/arguments/"+strconv.FormatInt(id, 10), nil, &arg); err != nil {
		return nil, err
	}
	return &arg, nil
}

// CreateArgument validates locally, then calls POST /api/arguments.
func (c *Client) CreateArgument(ctx context.Context, in models.InsertArgument) (*models.Argument, error) {
	if err := models.ValidateArgument(in); err != nil {
		return nil, err
	}
	var arg models.Argument
	if err := c.do(ctx, http.MethodPost, "/api/arguments", in, &arg); err != nil {
		return nil, err
	}
	c.invalidate()
	return &arg, nil
}

// DeleteArgument calls DELETE /api/arguments/{id}.
func (c *Client) DeleteArgument(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, "/api/arguments/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

// ArchetypeReport calls GET /api/reports/archetypes.
func (c *Client) ArchetypeReport(ctx context.Context) ([]models.ArchetypeCount, error) {
	c.mu.Lock()
	cached, gen := c.report, c.generation
	c.mu.Unlock()
	if cached != nil {
		return append([]models.ArchetypeCount(nil), cached...), nil
	}

	report := []models.ArchetypeCount{}
	if err := c.do(ctx, http.MethodGet, "/api/reports/archetypes", nil, &report); err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.generation == gen {
		c.report = report
	}
	c.mu.Unlock()
	return append([]models.ArchetypeCount(nil), report...), nil
}

// Activity calls GET /api/activity. A limit of 0 uses the server default.
func (c *Client) Activity(ctx context.Context, limit int) ([]models.Activity, error) {
	path := "/api/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	entries := []models.Activity{}
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ExportArguments calls POST /api/exports/arguments.
func (c *Client) ExportArguments(ctx context.Context) (*models.Export, error) {
	var exp models.Export
	if err := c.do(ctx, http.MethodPost, "/api/exports/arguments", nil, &exp); err != nil {
		return nil, err
	}
	return &exp, nil
}

func (c *Client) invalidate() {
	c.mu.Lock()
	c.arguments = nil
	c.report = nil
	c.generation++
	c.mu.Unlock()
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

// checkResp returns an *APIError if the status is not 2xx, carrying the
// server's message when the body has one.
func checkResp(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}
