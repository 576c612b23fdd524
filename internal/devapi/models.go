package devapi

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Marketplace roles
const (
	RoleAdmin   = "admin"
	RoleClient  = "client"
	RoleFreedev = "freedev"
)

// Account statuses
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Project and application statuses
const (
	ProjectOpen        = "open"
	ProjectInProgress  = "in_progress"
	ProjectCompleted   = "completed"
	ApplicationPending = "pending"
)

// BaseModel provides common fields and an auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User is a marketplace account: admin, client or freelancer
type User struct {
	BaseModel
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"not null"`
	Status       string    `json:"status" gorm:"not null;default:active"`
	Title        string    `json:"title,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Skills       []string  `json:"skills,omitempty" gorm:"serializer:json"`
	DailyRate    float64   `json:"dailyRate,omitempty"`
	UpdatedAt    time.Time `json:"-" gorm:"autoUpdateTime"`
}

// Project is a client's posted project
type Project struct {
	BaseModel
	Title       string   `json:"title" gorm:"not null"`
	Description string   `json:"description" gorm:"type:text"`
	Budget      float64  `json:"budget"`
	Skills      []string `json:"skills,omitempty" gorm:"serializer:json"`
	Status      string   `json:"status" gorm:"not null;default:open"`
	ClientID    string   `json:"clientId" gorm:"not null"`

	Client *User `json:"-" gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}

// Application is a freelancer's proposal on a project
type Application struct {
	BaseModel
	ProjectID    string  `json:"projectId" gorm:"not null"`
	FreelancerID string  `json:"freelancerId" gorm:"not null"`
	Message      string  `json:"message" gorm:"type:text"`
	ProposedRate float64 `json:"proposedRate"`
	Status       string  `json:"status" gorm:"not null;default:pending"`

	Project    *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Freelancer *User    `json:"-" gorm:"foreignKey:FreelancerID;constraint:OnDelete:CASCADE"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Project{}, &Application{})
}
