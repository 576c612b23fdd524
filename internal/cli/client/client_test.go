package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/freedevconnect/freedev/internal/logger"
)

// memTokens is an in-memory TokenStore for tests
type memTokens struct {
	token   string
	deleted int
}

func (m *memTokens) LoadToken() (string, error) {
	if m.token == "" {
		return "", errors.New("no stored session")
	}
	return m.token, nil
}

func (m *memTokens) DeleteToken() error {
	m.token = ""
	m.deleted++
	return nil
}

func newTestClient(baseURL string, tokens *memTokens) *Client {
	return New(baseURL, tokens, zerolog.New(io.Discard))
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(meResponse{User: &User{ID: "user-123", Role: RoleClient}})
	}))
	defer server.Close()

	c := newTestClient(server.URL, &memTokens{token: "jwt-abc"})

	if _, err := c.Me(context.Background()); err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if gotAuth != "Bearer jwt-abc" {
		t.Errorf("expected 'Bearer jwt-abc', got %q", gotAuth)
	}
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	var hadAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hadAuth = r.Header["Authorization"]
		json.NewEncoder(w).Encode([]Project{})
	}))
	defer server.Close()

	c := newTestClient(server.URL, &memTokens{})

	if _, err := c.ListProjects(context.Background(), ProjectFilters{}); err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if hadAuth {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestClient_UnauthorizedClearsTokenAndNotifies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid or expired token"})
	}))
	defer server.Close()

	tokens := &memTokens{token: "stale-token"}
	c := newTestClient(server.URL, tokens)

	notified := 0
	c.OnUnauthorized(func() { notified++ })

	_, err := c.Me(context.Background())
	if err == nil {
		t.Fatal("expected an error from a 401 response")
	}

	if !IsUnauthorized(err) {
		t.Errorf("expected IsUnauthorized to hold, got %v", err)
	}
	if tokens.token != "" {
		t.Error("expected durable token removed after 401")
	}
	if tokens.deleted != 1 {
		t.Errorf("expected exactly one token deletion, got %d", tokens.deleted)
	}
	if notified != 1 {
		t.Errorf("expected unauthorized callback fired once, got %d", notified)
	}
}

func TestClient_ErrorMessageFromServer(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "message key",
			status: http.StatusUnauthorized,
			body:   `{"message": "Invalid email or password"}`,
			want:   "Invalid email or password",
		},
		{
			name:   "error key",
			status: http.StatusConflict,
			body:   `{"error": "An account with this email already exists"}`,
			want:   "An account with this email already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			c := newTestClient(server.URL, &memTokens{})

			_, err := c.SignIn(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
			if err == nil {
				t.Fatal("expected an error")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if got := ErrorMessage(err); got != tt.want {
				t.Errorf("expected message %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClient_SignInRejectionLeavesSessionAlone(t *testing.T) {
	var hadAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message": "Invalid email or password"}`)
	}))
	defer server.Close()

	tokens := &memTokens{token: "jwt-of-current-session"}
	c := newTestClient(server.URL, tokens)
	c.SetHTTPClient(server.Client())
	c.OnUnauthorized(func() { t.Error("unauthorized callback fired on a rejected sign-in") })

	_, err := c.SignIn(context.Background(), Credentials{Email: "ada@example.com", Password: "wrong"})
	if err == nil {
		t.Fatal("expected an error from a rejected sign-in")
	}

	// The rejection concerns the submitted credentials, not the session:
	// the message is surfaced and the current session is untouched.
	if got := ErrorMessage(err); got != "Invalid email or password" {
		t.Errorf("expected the server's message, got %q", got)
	}
	if tokens.token != "jwt-of-current-session" {
		t.Error("expected the existing token untouched by a rejected sign-in")
	}
	if tokens.deleted != 0 {
		t.Errorf("expected no token deletion, got %d", tokens.deleted)
	}
	if hadAuth {
		t.Error("expected no Authorization header on a sign-in request")
	}
}

func TestClient_NonUnauthorizedKeepsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"message": "Internal server error"}`)
	}))
	defer server.Close()

	tokens := &memTokens{token: "jwt-abc"}
	c := newTestClient(server.URL, tokens)
	c.OnUnauthorized(func() { t.Error("unauthorized callback fired on a 500") })

	if _, err := c.Me(context.Background()); err == nil {
		t.Fatal("expected an error from a 500 response")
	}
	if tokens.token != "jwt-abc" {
		t.Error("expected token untouched by a non-401 failure")
	}
}

func TestClient_SignInDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/signin" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}

		var creds Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "ada@example.com" {
			t.Errorf("unexpected email %q", creds.Email)
		}

		json.NewEncoder(w).Encode(AuthResponse{
			Token: "jwt-abc",
			User:  &User{ID: "user-123", Email: creds.Email, Role: RoleFreedev},
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL, &memTokens{})

	resp, err := c.SignIn(context.Background(), Credentials{Email: "ada@example.com", Password: "correct-horse-battery"})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if resp.Token != "jwt-abc" {
		t.Errorf("expected token 'jwt-abc', got %q", resp.Token)
	}
	if resp.User == nil || resp.User.Role != RoleFreedev {
		t.Errorf("unexpected user: %+v", resp.User)
	}
}

func TestClient_ListProjectsBuildsQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]Project{{ID: "proj-1", Title: "API rework"}})
	}))
	defer server.Close()

	c := newTestClient(server.URL, &memTokens{})

	projects, err := c.ListProjects(context.Background(), ProjectFilters{Search: "api", Skill: "go"})
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if gotQuery != "search=api&skill=go" {
		t.Errorf("unexpected query string %q", gotQuery)
	}
}

func TestClient_LogsRequestAndResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Project{})
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := New(server.URL, &memTokens{}, logger.New(&buf, zerolog.DebugLevel))

	if _, err := c.ListProjects(context.Background(), ProjectFilters{}); err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}

	logged := buf.String()
	if !strings.Contains(logged, "API request") || !strings.Contains(logged, "API response") {
		t.Errorf("expected request and response debug lines, got %q", logged)
	}
	if !strings.Contains(logged, "request_id") {
		t.Errorf("expected a request_id on the debug lines, got %q", logged)
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	unauthorized := &APIError{Status: http.StatusUnauthorized, Message: "nope"}
	if !errors.Is(unauthorized, ErrUnauthorized) {
		t.Error("expected 401 APIError to unwrap to ErrUnauthorized")
	}

	forbidden := &APIError{Status: http.StatusForbidden, Message: "nope"}
	if errors.Is(forbidden, ErrUnauthorized) {
		t.Error("expected 403 APIError not to unwrap to ErrUnauthorized")
	}
}
