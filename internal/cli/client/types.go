package client

import "time"

// Role identifies what a user can do on the marketplace
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleClient  Role = "client"
	RoleFreedev Role = "freedev"
)

// User statuses as returned by the API
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// User represents the marketplace account attached to a session
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Status    string    `json:"status"`
	Title     string    `json:"title,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Skills    []string  `json:"skills,omitempty"`
	DailyRate float64   `json:"dailyRate,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// FullName returns the display name used in command output
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Credentials is the sign-in request body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up request body
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
}

// AuthResponse is returned by both sign-in and sign-up
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// meResponse wraps the current-user payload of GET /auth/me
type meResponse struct {
	User *User `json:"user"`
}

// Project is a posted client project
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Budget      float64   `json:"budget"`
	Skills      []string  `json:"skills,omitempty"`
	Status      string    `json:"status"`
	ClientID    string    `json:"clientId"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// ProjectFilters narrows a project listing
type ProjectFilters struct {
	Search   string
	Skill    string
	ClientID string
}

// ProjectInput carries the writable project fields for create and update
type ProjectInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Budget      float64  `json:"budget"`
	Skills      []string `json:"skills,omitempty"`
}

// Application is a freelancer's proposal on a project
type Application struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	FreelancerID string    `json:"freelancerId"`
	Message      string    `json:"message"`
	ProposedRate float64   `json:"proposedRate"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	Project      *Project  `json:"project,omitempty"`
}

// ApplicationInput carries the writable application fields
type ApplicationInput struct {
	ProjectID    string  `json:"projectId"`
	Message      string  `json:"message"`
	ProposedRate float64 `json:"proposedRate"`
}

// ApplicationUpdate carries the fields a freelancer may revise on a pending
// proposal. Pointers distinguish "leave unchanged" from "set to zero value".
type ApplicationUpdate struct {
	Message      *string  `json:"message,omitempty"`
	ProposedRate *float64 `json:"proposedRate,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Pointers distinguish
// "leave unchanged" from "set to zero value".
type ProfileUpdate struct {
	FirstName *string   `json:"firstName,omitempty"`
	LastName  *string   `json:"lastName,omitempty"`
	Title     *string   `json:"title,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Skills    *[]string `json:"skills,omitempty"`
	DailyRate *float64  `json:"dailyRate,omitempty"`
}

// UserFilters narrows a user listing
type UserFilters struct {
	Role   Role
	Status string
}

// DashboardStats summarizes activity for the role dashboards
type DashboardStats struct {
	ActiveProjects    int     `json:"activeProjects"`
	CompletedProjects int     `json:"completedProjects"`
	TotalEarned       float64 `json:"totalEarned"`
}

// FreelanceDashboard is the freelancer landing view
type FreelanceDashboard struct {
	Applications []Application  `json:"applications"`
	Projects     []Project      `json:"projects"`
	Stats        DashboardStats `json:"stats"`
}

// ClientDashboard is the client landing view
type ClientDashboard struct {
	Projects  []Project      `json:"projects"`
	Proposals []Application  `json:"proposals"`
	Stats     DashboardStats `json:"stats"`
}
