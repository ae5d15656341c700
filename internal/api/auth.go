package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pribylovaa/car-market/internal/models"
	"github.com/pribylovaa/car-market/internal/pkg/redact"
)

// Login - POST /auth/login. При успехе пара токенов сохраняется в менеджере.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	const op = "api.Login"

	var out models.LoginResponse
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		JSON:   models.LoginRequest{Email: email, Password: password},
		NoAuth: true,
	}, &out)
	if err != nil {
		return nil, err
	}

	if out.AccessToken == "" {
		return nil, fmt.Errorf("%s: response has no accessToken", op)
	}

	if err := c.tokens.SetTokens(ctx, out.AccessToken, out.RefreshToken); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.log.Info("login_succeeded",
		slog.String("op", op),
		slog.String("email", redact.Email(email)),
	)

	return &out, nil
}

// Logout завершает сессию локально: все три значения удаляются из хранилища.
func (c *Client) Logout(ctx context.Context) error {
	return c.tokens.ClearTokens(ctx)
}

// Signup - POST /auth/user/signup (multipart, аватар опционален).
// Если бэкенд сразу выдал токены, они сохраняются.
func (c *Client) Signup(ctx context.Context, in models.SignupInput) (*models.LoginResponse, error) {
	const op = "api.Signup"

	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%s: email and password are required", op)
	}

	form := &Multipart{Fields: map[string]string{
		"email":    in.Email,
		"password": in.Password,
	}}
	for k, v := range map[string]string{
		"firstName": in.FirstName,
		"lastName":  in.LastName,
		"phone":     in.Phone,
		"city":      in.City,
	} {
		if v != "" {
			form.Fields[k] = v
		}
	}

	if in.Avatar != nil {
		avatar := *in.Avatar
		if avatar.FieldName == "" {
			avatar.FieldName = "avatar"
		}
		form.Files = append(form.Files, avatar)
	}

	var out models.LoginResponse
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/user/signup",
		Form:   form,
		NoAuth: true,
	}, &out)
	if err != nil {
		return nil, err
	}

	if out.AccessToken != "" {
		if err := c.tokens.SetTokens(ctx, out.AccessToken, out.RefreshToken); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &out, nil
}

// Me - GET /auth/me, текущий пользователь.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/me"}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// ForgotPassword - POST /auth/forgot-password.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*models.MessageResponse, error) {
	var out models.MessageResponse
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/forgot-password",
		JSON:   map[string]string{"email": email},
		NoAuth: true,
	}, &out)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// CheckResetToken - GET /auth/check-token?token=...
func (c *Client) CheckResetToken(ctx context.Context, token string) (*models.CheckTokenResponse, error) {
	if token == "" {
		return nil, errors.New("api.CheckResetToken: empty token")
	}

	var out models.CheckTokenResponse
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/auth/check-token",
		Query:  url.Values{"token": {token}},
		NoAuth: true,
	}, &out)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// ResetPassword - POST /auth/reset-password.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (*models.MessageResponse, error) {
	var out models.MessageResponse
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/reset-password",
		JSON:   models.ResetPasswordRequest{Token: token, Password: password},
		NoAuth: true,
	}, &out)
	if err != nil {
		return nil, err
	}

	return &out, nil
}
