// models содержит доменные сущности клиента маркетплейса.
// Теги json соответствуют REST API бэкенда (camelCase).
package models

import "time"

// TokenPair - текущая пара токенов клиента.
//
// Особенности:
//   - AccessToken - JWT; клиент читает только payload, подпись не проверяет;
//   - RefreshToken - непрозрачная строка;
//   - ExpiresAt - из claim exp access-токена; нулевое значение - срок неизвестен.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// LoginRequest - тело POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse - ответ POST /auth/login.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user,omitempty"`
}

// RefreshRequest - тело POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse - ответ POST /auth/refresh.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// ResetPasswordRequest - тело POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// MessageResponse - типовой ответ бэкенда без полезной нагрузки.
type MessageResponse struct {
	Message string `json:"message"`
}

// CheckTokenResponse - ответ GET /auth/check-token.
type CheckTokenResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}
