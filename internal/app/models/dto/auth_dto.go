package dto

import (
	"time"

	"github.com/yigit/volunteerhub/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"vera@example.org"`
	Password string `json:"password" binding:"required" example:"correct-horse-7"`
}

// RegisterRequest creates a volunteer account, or an organization account
// together with its organization
type RegisterRequest struct {
	Email     string          `json:"email" binding:"required,email" example:"vera@example.org"`
	Password  string          `json:"password" binding:"required,min=8" example:"correct-horse-7"`
	FirstName string          `json:"firstName" binding:"required,max=100" example:"Vera"`
	LastName  string          `json:"lastName" binding:"max=100" example:"Lind"`
	Phone     *string         `json:"phone,omitempty" example:"+1 555 123 4567"`
	RoleType  models.RoleType `json:"roleType" binding:"required,oneof=VOLUNTEER ORGANIZATION" example:"VOLUNTEER" enums:"VOLUNTEER,ORGANIZATION"`

	OrganizationName        string  `json:"organizationName" binding:"required_if=RoleType ORGANIZATION,max=200" example:"Green Shores"`
	OrganizationDescription string  `json:"organizationDescription"`
	OrganizationWebsite     *string `json:"organizationWebsite,omitempty" binding:"omitempty,url"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"86400"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID          int64      `json:"id" example:"7"`
	Email       string     `json:"email" example:"vera@example.org"`
	FirstName   string     `json:"firstName" example:"Vera"`
	LastName    string     `json:"lastName" example:"Lind"`
	Phone       *string    `json:"phone,omitempty"`
	RoleType    string     `json:"roleType" example:"VOLUNTEER"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewUserResponse converts a user model into its response
func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Phone:       user.Phone,
		RoleType:    string(user.RoleType),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// OrganizationResponse represents an organization
type OrganizationResponse struct {
	ID          int64   `json:"id" example:"1"`
	Name        string  `json:"name" example:"Green Shores"`
	Description string  `json:"description"`
	Email       string  `json:"email"`
	Website     *string `json:"website,omitempty"`
}

// NewOrganizationResponse converts an organization model into its response
func NewOrganizationResponse(org *models.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:          org.ID,
		Name:        org.Name,
		Description: org.Description,
		Email:       org.Email,
		Website:     org.Website,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token         TokenResponse          `json:"token"`
	User          UserResponse           `json:"user"`
	Organizations []OrganizationResponse `json:"organizations,omitempty"`
}
