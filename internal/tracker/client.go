// Package tracker is a client for the Backlog issue tracker API (v2).
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/logger"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

const apiPrefix = "/api/v2"

// Client talks to one Backlog space.
type Client struct {
	httpClient *http.Client
	spaceURL   string
	apiKey     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// New creates a client for spaceURL (e.g. https://acme.backlog.com).
func New(spaceURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		spaceURL:   strings.TrimRight(spaceURL, "/"),
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether both the space URL and API key are set.
func (c *Client) Configured() bool {
	return c.spaceURL != "" && c.apiKey != ""
}

// SpaceURL returns the base URL of the space.
func (c *Client) SpaceURL() string {
	return c.spaceURL
}

// IssueURL returns the browser URL of an issue.
func (c *Client) IssueURL(issueKey string) string {
	return c.spaceURL + "/view/" + issueKey
}

// ListIssues returns one page of issues matching q.
func (c *Client) ListIssues(ctx context.Context, q IssueQuery) ([]models.Issue, error) {
	var raw []issueJSON
	if err := c.get(ctx, "/issues", q.values(), &raw); err != nil {
		return nil, err
	}
	issues := make([]models.Issue, 0, len(raw))
	for _, item := range raw {
		issues = append(issues, item.toModel())
	}
	return issues, nil
}

// GetIssue returns a single issue by key or id.
func (c *Client) GetIssue(ctx context.Context, issueKey string) (*models.Issue, error) {
	var raw issueJSON
	if err := c.get(ctx, "/issues/"+url.PathEscape(issueKey), nil, &raw); err != nil {
		return nil, err
	}
	issue := raw.toModel()
	return &issue, nil
}

// CreateIssue validates p and creates the issue.
func (c *Client) CreateIssue(ctx context.Context, p CreateIssueParams) (*models.Issue, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var raw issueJSON
	if err := c.post(ctx, "/issues", p.values(), &raw); err != nil {
		return nil, err
	}
	issue := raw.toModel()
	return &issue, nil
}

// ListProjects returns the projects visible to the API key.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var raw []projectJSON
	if err := c.get(ctx, "/projects", nil, &raw); err != nil {
		return nil, err
	}
	projects := make([]models.Project, 0, len(raw))
	for _, item := range raw {
		projects = append(projects, item.toModel())
	}
	return projects, nil
}

// ListProjectUsers returns the members of a project.
func (c *Client) ListProjectUsers(ctx context.Context, projectIDOrKey string) ([]models.User, error) {
	var raw []userJSON
	if err := c.get(ctx, "/projects/"+url.PathEscape(projectIDOrKey)+"/users", nil, &raw); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(raw))
	for _, item := range raw {
		users = append(users, item.toModel())
	}
	return users, nil
}

// ListIssueTypes returns the issue types of a project.
func (c *Client) ListIssueTypes(ctx context.Context, projectID int64) ([]models.IssueType, error) {
	var raw []namedRef
	path := "/projects/" + strconv.FormatInt(projectID, 10) + "/issueTypes"
	if err := c.get(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	types := make([]models.IssueType, 0, len(raw))
	for _, item := range raw {
		types = append(types, models.IssueType{ID: item.ID, Name: item.Name})
	}
	return types, nil
}

// ListCategories returns the categories of a project.
func (c *Client) ListCategories(ctx context.Context, projectID int64) ([]models.Category, error) {
	var raw []namedRef
	path := "/projects/" + strconv.FormatInt(projectID, 10) + "/categories"
	if err := c.get(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	categories := make([]models.Category, 0, len(raw))
	for _, item := range raw {
		categories = append(categories, models.Category{ID: item.ID, Name: item.Name})
	}
	return categories, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, form, out)
}

func (c *Client) do(ctx context.Context, method, path string, query, form url.Values, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("apiKey", c.apiKey)
	endpoint := c.spaceURL + apiPrefix + path + "?" + query.Encode()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: creating request: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	requestID := uuid.NewString()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("Backlog request failed", "request_id", requestID, "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("failed to close response body", "error", closeErr)
		}
	}()

	logger.Debug("Backlog request",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", ErrRequestFailed, err)
	}
	return nil
}

func statusError(status int, data []byte) error {
	var eb errorBody
	msg := ""
	if err := json.Unmarshal(data, &eb); err == nil {
		msg = eb.message()
	}
	if msg == "" {
		msg = fmt.Sprintf("Backlog API エラー (%d)", status)
	}
	apiErr := &APIError{StatusCode: status, Message: msg}
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ErrRateLimited, apiErr)
	}
	return apiErr
}

// IsAPIError reports whether err carries an API rejection, and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
