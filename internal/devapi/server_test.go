package devapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	srv, err := New(Config{
		DatabaseURL: ":memory:",
		JWTSecret:   "test-secret",
	}, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

// request sends a JSON request and decodes the response body into out
func request(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reqBody)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				t.Fatalf("failed to decode response %q: %v", data, err)
			}
		}
	}
	return resp.StatusCode
}

// signUpUser registers an account and returns its token and user
func signUpUser(t *testing.T, ts *httptest.Server, email, role string) (string, *User) {
	t.Helper()

	var resp AuthResponse
	status := request(t, ts, http.MethodPost, "/api/auth/signup", "", SignUpRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "longenoughpassword",
		Role:      role,
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("signup failed with status %d", status)
	}
	return resp.Token, resp.User
}

func seedAdmin(t *testing.T, srv *Server, ts *httptest.Server) string {
	t.Helper()

	hash, err := HashPassword("adminpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	admin := &User{
		FirstName:    "Site",
		LastName:     "Admin",
		Email:        "admin@example.com",
		PasswordHash: hash,
		Role:         RoleAdmin,
		Status:       StatusActive,
	}
	if err := srv.DB().Create(admin).Error; err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	var resp AuthResponse
	status := request(t, ts, http.MethodPost, "/api/auth/signin", "", SignInRequest{
		Email:    "admin@example.com",
		Password: "adminpassword123",
	}, &resp)
	if status != http.StatusOK {
		t.Fatalf("admin signin failed with status %d", status)
	}
	return resp.Token
}

func TestSignUpAndSignIn(t *testing.T) {
	_, ts := newTestServer(t)

	token, user := signUpUser(t, ts, "ada@example.com", RoleFreedev)
	if token == "" {
		t.Fatal("expected a token from signup")
	}
	if user.Role != RoleFreedev {
		t.Errorf("expected freedev role, got %q", user.Role)
	}
	if user.Status != StatusActive {
		t.Errorf("expected active status, got %q", user.Status)
	}

	var resp AuthResponse
	status := request(t, ts, http.MethodPost, "/api/auth/signin", "", SignInRequest{
		Email:    "ada@example.com",
		Password: "longenoughpassword",
	}, &resp)
	if status != http.StatusOK {
		t.Fatalf("signin failed with status %d", status)
	}
	if resp.User.ID != user.ID {
		t.Errorf("expected the same account, got %q", resp.User.ID)
	}
}

func TestSignUp_RejectsShortPassword(t *testing.T) {
	_, ts := newTestServer(t)

	var errResp map[string]string
	status := request(t, ts, http.MethodPost, "/api/auth/signup", "", SignUpRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     "short@example.com",
		Password:  "tooshort",
		Role:      RoleClient,
	}, &errResp)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for a short password, got %d", status)
	}
	if errResp["message"] != "Password must be at least 14 characters" {
		t.Errorf("unexpected message %q", errResp["message"])
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	_, ts := newTestServer(t)

	signUpUser(t, ts, "dup@example.com", RoleClient)

	var errResp map[string]string
	status := request(t, ts, http.MethodPost, "/api/auth/signup", "", SignUpRequest{
		FirstName: "Second",
		LastName:  "User",
		Email:     "dup@example.com",
		Password:  "longenoughpassword",
		Role:      RoleClient,
	}, &errResp)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate email, got %d", status)
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	_, ts := newTestServer(t)

	signUpUser(t, ts, "ada@example.com", RoleClient)

	var errResp map[string]string
	status := request(t, ts, http.MethodPost, "/api/auth/signin", "", SignInRequest{
		Email:    "ada@example.com",
		Password: "wrongpassword1234",
	}, &errResp)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if errResp["message"] != "Invalid email or password" {
		t.Errorf("unexpected message %q", errResp["message"])
	}
}

func TestCurrentUser(t *testing.T) {
	_, ts := newTestServer(t)

	token, user := signUpUser(t, ts, "ada@example.com", RoleFreedev)

	var resp struct {
		User *User `json:"user"`
	}
	status := request(t, ts, http.MethodGet, "/api/auth/me", token, nil, &resp)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Errorf("unexpected current user: %+v", resp.User)
	}

	status = request(t, ts, http.MethodGet, "/api/auth/me", "garbage-token", nil, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 for a bad token, got %d", status)
	}

	status = request(t, ts, http.MethodGet, "/api/auth/me", "", nil, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", status)
	}
}

func TestProjectLifecycle(t *testing.T) {
	_, ts := newTestServer(t)

	clientToken, _ := signUpUser(t, ts, "client@example.com", RoleClient)
	freelancerToken, _ := signUpUser(t, ts, "dev@example.com", RoleFreedev)

	// Freelancers cannot post projects
	status := request(t, ts, http.MethodPost, "/api/projects", freelancerToken, ProjectRequest{Title: "Nope"}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for a freelancer posting, got %d", status)
	}

	var project Project
	status = request(t, ts, http.MethodPost, "/api/projects", clientToken, ProjectRequest{
		Title:       "API rework",
		Description: "Rebuild the billing API",
		Budget:      12000,
		Skills:      []string{"go", "postgres"},
	}, &project)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if project.Status != ProjectOpen {
		t.Errorf("expected open status, got %q", project.Status)
	}

	// Public read
	var projects []Project
	status = request(t, ts, http.MethodGet, "/api/projects?skill=go", "", nil, &projects)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project for skill=go, got %d", len(projects))
	}

	status = request(t, ts, http.MethodGet, "/api/projects?skill=rust", "", nil, &projects)
	if status != http.StatusOK || len(projects) != 0 {
		t.Errorf("expected no projects for skill=rust, got %d (status %d)", len(projects), status)
	}

	// Only the owner may edit
	status = request(t, ts, http.MethodPut, "/api/projects/"+project.ID, freelancerToken, ProjectRequest{Title: "Hijacked"}, nil)
	if status != http.StatusForbidden {
		t.Errorf("expected 403 for a non-owner edit, got %d", status)
	}

	var updated Project
	status = request(t, ts, http.MethodPut, "/api/projects/"+project.ID, clientToken, ProjectRequest{
		Title:  "API rework v2",
		Budget: 15000,
	}, &updated)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if updated.Title != "API rework v2" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}

	status = request(t, ts, http.MethodDelete, "/api/projects/"+project.ID, clientToken, nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}

	status = request(t, ts, http.MethodGet, "/api/projects/"+project.ID, "", nil, nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", status)
	}
}

func TestApplicationFlow(t *testing.T) {
	_, ts := newTestServer(t)

	clientToken, _ := signUpUser(t, ts, "client@example.com", RoleClient)
	freelancerToken, _ := signUpUser(t, ts, "dev@example.com", RoleFreedev)

	var project Project
	request(t, ts, http.MethodPost, "/api/projects", clientToken, ProjectRequest{Title: "CLI tool"}, &project)

	// Clients cannot apply
	status := request(t, ts, http.MethodPost, "/api/applications", clientToken, ApplicationRequest{
		ProjectID: project.ID,
		Message:   "I would like to build this",
	}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for a client applying, got %d", status)
	}

	var app Application
	status = request(t, ts, http.MethodPost, "/api/applications", freelancerToken, ApplicationRequest{
		ProjectID:    project.ID,
		Message:      "I would like to build this",
		ProposedRate: 600,
	}, &app)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if app.Status != ApplicationPending {
		t.Errorf("expected pending status, got %q", app.Status)
	}

	// Applying twice is a conflict
	status = request(t, ts, http.MethodPost, "/api/applications", freelancerToken, ApplicationRequest{
		ProjectID: project.ID,
		Message:   "Again",
	}, nil)
	if status != http.StatusConflict {
		t.Errorf("expected 409 for a duplicate application, got %d", status)
	}

	// Only the project owner sees the proposals
	status = request(t, ts, http.MethodGet, "/api/projects/"+project.ID+"/applications", freelancerToken, nil, nil)
	if status != http.StatusForbidden {
		t.Errorf("expected 403 for a non-owner listing, got %d", status)
	}

	var received []Application
	status = request(t, ts, http.MethodGet, "/api/projects/"+project.ID+"/applications", clientToken, nil, &received)
	if status != http.StatusOK || len(received) != 1 {
		t.Fatalf("expected 1 received proposal, got %d (status %d)", len(received), status)
	}

	var mine []Application
	status = request(t, ts, http.MethodGet, "/api/applications/freelancer", freelancerToken, nil, &mine)
	if status != http.StatusOK || len(mine) != 1 {
		t.Fatalf("expected 1 own application, got %d (status %d)", len(mine), status)
	}
	if mine[0].Project == nil || mine[0].Project.Title != "CLI tool" {
		t.Error("expected the project preloaded on own applications")
	}

	// Revising a pending proposal is owner-only
	newRate := 700.0
	var revised Application
	status = request(t, ts, http.MethodPut, "/api/applications/"+app.ID, freelancerToken,
		ApplicationUpdateRequest{ProposedRate: &newRate}, &revised)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on revise, got %d", status)
	}
	if revised.ProposedRate != 700 {
		t.Errorf("expected revised rate 700, got %v", revised.ProposedRate)
	}
	if revised.Message != "I would like to build this" {
		t.Errorf("untouched field changed: %q", revised.Message)
	}

	status = request(t, ts, http.MethodPut, "/api/applications/"+app.ID, clientToken,
		ApplicationUpdateRequest{ProposedRate: &newRate}, nil)
	if status != http.StatusForbidden {
		t.Errorf("expected 403 for a non-owner revise, got %d", status)
	}

	status = request(t, ts, http.MethodDelete, "/api/applications/"+app.ID, freelancerToken, nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204 on withdraw, got %d", status)
	}
}

func TestProfileUpdate(t *testing.T) {
	_, ts := newTestServer(t)

	token, _ := signUpUser(t, ts, "dev@example.com", RoleFreedev)

	title := "Backend engineer"
	rate := 650.0
	var updated User
	status := request(t, ts, http.MethodPut, "/api/users/profile", token, ProfileUpdateRequest{
		Title:     &title,
		DailyRate: &rate,
	}, &updated)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if updated.Title != title || updated.DailyRate != rate {
		t.Errorf("partial update not applied: %+v", updated)
	}
	if updated.FirstName != "Test" {
		t.Errorf("untouched field changed: %q", updated.FirstName)
	}

	// The public profile reflects the update and never leaks the hash
	var public map[string]any
	status = request(t, ts, http.MethodGet, "/api/users/"+updated.ID, "", nil, &public)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on the public profile, got %d", status)
	}
	if public["title"] != title {
		t.Errorf("expected public title %q, got %v", title, public["title"])
	}
	if _, leaked := public["passwordHash"]; leaked {
		t.Error("public profile must not expose the password hash")
	}
}

func TestAdminModeration(t *testing.T) {
	srv, ts := newTestServer(t)

	adminToken := seedAdmin(t, srv, ts)
	_, target := signUpUser(t, ts, "dev@example.com", RoleFreedev)
	clientToken, _ := signUpUser(t, ts, "client@example.com", RoleClient)

	// Non-admins are turned away
	status := request(t, ts, http.MethodPut, fmt.Sprintf("/api/users/%s/status", target.ID), clientToken,
		StatusUpdateRequest{Status: StatusSuspended}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-admin, got %d", status)
	}

	var suspended User
	status = request(t, ts, http.MethodPut, fmt.Sprintf("/api/users/%s/status", target.ID), adminToken,
		StatusUpdateRequest{Status: StatusSuspended}, &suspended)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if suspended.Status != StatusSuspended {
		t.Errorf("expected suspended, got %q", suspended.Status)
	}

	// A suspended account can no longer sign in
	status = request(t, ts, http.MethodPost, "/api/auth/signin", "", SignInRequest{
		Email:    "dev@example.com",
		Password: "longenoughpassword",
	}, nil)
	if status != http.StatusForbidden {
		t.Errorf("expected 403 for a suspended sign-in, got %d", status)
	}

	status = request(t, ts, http.MethodDelete, "/api/users/"+target.ID, adminToken, nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
}

func TestDashboards(t *testing.T) {
	_, ts := newTestServer(t)

	clientToken, _ := signUpUser(t, ts, "client@example.com", RoleClient)
	freelancerToken, _ := signUpUser(t, ts, "dev@example.com", RoleFreedev)

	var project Project
	request(t, ts, http.MethodPost, "/api/projects", clientToken, ProjectRequest{Title: "Data pipeline"}, &project)
	request(t, ts, http.MethodPost, "/api/applications", freelancerToken, ApplicationRequest{
		ProjectID:    project.ID,
		Message:      "Pick me",
		ProposedRate: 500,
	}, nil)

	var freelance FreelanceDashboardResponse
	status := request(t, ts, http.MethodGet, "/api/freelance-dashboard", freelancerToken, nil, &freelance)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(freelance.Applications) != 1 {
		t.Errorf("expected 1 application on the dashboard, got %d", len(freelance.Applications))
	}
	if len(freelance.Projects) != 1 {
		t.Errorf("expected 1 open project on the dashboard, got %d", len(freelance.Projects))
	}

	var clientDash ClientDashboardResponse
	status = request(t, ts, http.MethodGet, "/api/client-dashboard", clientToken, nil, &clientDash)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(clientDash.Projects) != 1 || len(clientDash.Proposals) != 1 {
		t.Errorf("expected 1 project and 1 proposal, got %d and %d",
			len(clientDash.Projects), len(clientDash.Proposals))
	}
	if clientDash.Stats.ActiveProjects != 1 {
		t.Errorf("expected 1 active project, got %d", clientDash.Stats.ActiveProjects)
	}

	// The dashboards are role-bound in both directions
	status = request(t, ts, http.MethodGet, "/api/client-dashboard", freelancerToken, nil, nil)
	if status != http.StatusForbidden {
		t.Errorf("expected 403 for a freelancer on the client dashboard, got %d", status)
	}
	status = request(t, ts, http.MethodGet, "/api/freelance-dashboard", clientToken, nil, nil)
	if status != http.StatusForbidden {
		t.Errorf("expected 403 for a client on the freelance dashboard, got %d", status)
	}
}
