package models

import (
	"encoding/json"
	"time"

	"projectmanager/internal/domain/errors"
)

// Role is the closed set of user roles. The zero value is not a valid role.
type Role struct {
	name string
}

var (
	RoleManager  = Role{name: "manager"}
	RoleEmployee = Role{name: "employee"}
)

// ParseRole is the only way to build a Role from untrusted input.
func ParseRole(s string) (Role, error) {
	switch s {
	case RoleManager.name:
		return RoleManager, nil
	case RoleEmployee.name:
		return RoleEmployee, nil
	}
	return Role{}, errors.ErrInvalidRole
}

func (r Role) String() string { return r.name }

func (r Role) IsZero() bool { return r.name == "" }

func (r Role) IsManager() bool { return r == RoleManager }

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.name)
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.ErrInvalidRole
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Project struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type Task struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ProjectID   int64   `json:"project_id"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type CreateUserRequest struct {
	FirstName       string `json:"first_name" validate:"required,max=50"`
	LastName        string `json:"last_name" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email,max=100"`
	Role            string `json:"role" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// UpdateUserRequest carries a partial update; nil fields are left unchanged.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name" validate:"omitempty,max=50"`
	Email     *string `json:"email" validate:"omitempty,email,max=100"`
	Role      *string `json:"role"`
}

type CreateProjectRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
}

type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description *string `json:"description"`
}

// PageRequest is a normalized page selection: Page >= 1, PerPage >= 1.
type PageRequest struct {
	Page    int
	PerPage int
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is the list envelope returned by every paginated endpoint.
type Page[T any] struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Pages   int `json:"pages"`
	Data    []T `json:"data"`
}

func NewPage[T any](items []T, total int, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.PerPage > 0 {
		pages = (total + req.PerPage - 1) / req.PerPage
	}
	return Page[T]{
		Total:   total,
		Page:    req.Page,
		PerPage: req.PerPage,
		Pages:   pages,
		Data:    items,
	}
}
