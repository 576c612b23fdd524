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

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/freedevconnect/freedev/internal/cli/config"
)

// TokenStore is the slice of durable storage the client needs: the current
// token is read fresh before every request rather than captured once, and a
// 401 response deletes it.
type TokenStore interface {
	LoadToken() (string, error)
	DeleteToken() error
}

// Client is the single point of outbound request configuration for the
// FreeDev Connect API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenStore
	onUnauthorized func()
	log            zerolog.Logger
}

// New creates a new API client
func New(baseURL string, tokens TokenStore, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		tokens: tokens,
		log:    log,
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// OnUnauthorized registers the callback fired after a 401 on an
// authenticated request. Sign-in and sign-up 401s are excluded: a rejected
// credential attempt is not an expired session. The client only clears the
// durable token; what happens next (clearing session state, telling the user
// to log in again) is the subscriber's decision.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// errorBody covers both message shapes seen from the API
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// do performs one authenticated API request: token attachment, diagnostic
// logging, status handling and JSON decoding all live here so no call site
// repeats them.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.send(ctx, method, path, body, out, true)
}

// doPublic is do for the endpoints that exist to establish a session in the
// first place. No token is attached, and a 401 means the submitted
// credentials were rejected, not that the current session expired, so it
// must not tear the session down.
func (c *Client) doPublic(ctx context.Context, method, path string, body, out any) error {
	return c.send(ctx, method, path, body, out, false)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any, authed bool) error {
	requestID := ulid.Make().String()
	resolvedURL := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, resolvedURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Read the token from durable storage rather than from session memory so
	// a token refreshed by another command in the same process is picked up.
	if authed {
		if token, err := c.tokens.LoadToken(); err == nil && token != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		}
	}

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", resolvedURL).
		Msg("API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().
			Str("request_id", requestID).
			Str("url", resolvedURL).
			Err(err).
			Msg("API request failed")
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Str("url", resolvedURL).
		Msg("API response")

	if resp.StatusCode == http.StatusUnauthorized && authed {
		c.handleUnauthorized()
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errBody errorBody
		data, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(data, &errBody)
		return &APIError{Status: resp.StatusCode, Message: errBody.text()}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// handleUnauthorized clears the durable token and notifies the subscriber.
// The caller still receives the original 401 error afterwards.
func (c *Client) handleUnauthorized() {
	if err := c.tokens.DeleteToken(); err != nil {
		c.log.Warn().Err(err).Msg("Failed to clear token after 401")
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// SignIn authenticates with email and password
func (c *Client) SignIn(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doPublic(ctx, http.MethodPost, "/auth/signin", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignUp registers a new account
func (c *Client) SignUp(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doPublic(ctx, http.MethodPost, "/auth/signup", reg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me fetches the authoritative copy of the current user
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp meResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, errors.New("empty current-user response")
	}
	return resp.User, nil
}

// ListProjects returns projects matching the given filters
func (c *Client) ListProjects(ctx context.Context, filters ProjectFilters) ([]Project, error) {
	params := url.Values{}
	if filters.Search != "" {
		params.Set("search", filters.Search)
	}
	if filters.Skill != "" {
		params.Set("skill", filters.Skill)
	}
	if filters.ClientID != "" {
		params.Set("clientId", filters.ClientID)
	}

	path := "/projects"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var projects []Project
	if err := c.do(ctx, http.MethodGet, path, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches a single project by ID
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+id, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject posts a new project
func (c *Client) CreateProject(ctx context.Context, input ProjectInput) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodPost, "/projects", input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject updates an existing project
func (c *Client) UpdateProject(ctx context.Context, id string, input ProjectInput) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+id, input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes a project
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+id, nil, nil)
}

// ProjectApplications lists the proposals received on a project
func (c *Client) ProjectApplications(ctx context.Context, projectID string) ([]Application, error) {
	var apps []Application
	if err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/applications", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// MyApplications lists the current freelancer's own proposals
func (c *Client) MyApplications(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := c.do(ctx, http.MethodGet, "/applications/freelancer", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// CreateApplication submits a proposal on a project
func (c *Client) CreateApplication(ctx context.Context, input ApplicationInput) (*Application, error) {
	var app Application
	if err := c.do(ctx, http.MethodPost, "/applications", input, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// UpdateApplication revises the message or rate of a pending proposal
func (c *Client) UpdateApplication(ctx context.Context, id string, input ApplicationUpdate) (*Application, error) {
	var app Application
	if err := c.do(ctx, http.MethodPut, "/applications/"+id, input, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// DeleteApplication withdraws a proposal
func (c *Client) DeleteApplication(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/applications/"+id, nil, nil)
}

// Profile fetches the current user's full profile
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial profile update
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, "/users/profile", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns users matching the given filters
func (c *Client) ListUsers(ctx context.Context, filters UserFilters) ([]User, error) {
	params := url.Values{}
	if filters.Role != "" {
		params.Set("role", string(filters.Role))
	}
	if filters.Status != "" {
		params.Set("status", filters.Status)
	}

	path := "/users"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var users []User
	if err := c.do(ctx, http.MethodGet, path, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one user's public profile
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/"+id, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetUserStatus suspends or reactivates an account (admin only)
func (c *Client) SetUserStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, http.MethodPut, "/users/"+id+"/status", body, nil)
}

// DeleteUser removes an account (admin only)
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+id, nil, nil)
}

// GetFreelanceDashboard fetches the freelancer landing view
func (c *Client) GetFreelanceDashboard(ctx context.Context) (*FreelanceDashboard, error) {
	var dash FreelanceDashboard
	if err := c.do(ctx, http.MethodGet, "/freelance-dashboard", nil, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

// GetClientDashboard fetches the client landing view
func (c *Client) GetClientDashboard(ctx context.Context) (*ClientDashboard, error) {
	var dash ClientDashboard
	if err := c.do(ctx, http.MethodGet, "/client-dashboard", nil, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}
