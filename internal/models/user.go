package models

import (
	"io"
	"time"
)

// Роли пользователей.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// User - пользователь маркетплейса.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	City      string    `json:"city,omitempty"`
	Role      string    `json:"role,omitempty"`
	AvatarURL string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Admin - учётная запись back-office.
type Admin struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// AdminInput - тело POST/PUT /auth/admin. Пустой Password при обновлении не меняет пароль.
type AdminInput struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// File - файл для multipart-загрузки.
type File struct {
	// FieldName - имя поля формы; пустое - используется дефолт эндпойнта.
	FieldName string
	Name      string
	Content   io.Reader
}

// SignupInput - поля multipart-формы POST /auth/user/signup.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	City      string
	Avatar    *File
}
