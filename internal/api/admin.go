package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/pribylovaa/car-market/internal/models"
)

const adminPath = "/auth/admin"

func adminItemPath(id string) (string, error) {
	if id == "" {
		return "", errors.New("api: empty admin id")
	}

	return adminPath + "/" + url.PathEscape(id), nil
}

// ListAdmins - GET /auth/admin.
func (c *Client) ListAdmins(ctx context.Context, opts ListOptions) ([]models.Admin, error) {
	var out []models.Admin
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: adminPath, Query: opts.Values()}, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// GetAdmin - GET /auth/admin/:id.
func (c *Client) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	p, err := adminItemPath(id)
	if err != nil {
		return nil, err
	}

	var out models.Admin
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: p}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// CreateAdmin - POST /auth/admin.
func (c *Client) CreateAdmin(ctx context.Context, in models.AdminInput) (*models.Admin, error) {
	var out models.Admin
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: adminPath, JSON: in}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// UpdateAdmin - PUT /auth/admin/:id.
func (c *Client) UpdateAdmin(ctx context.Context, id string, in models.AdminInput) (*models.Admin, error) {
	p, err := adminItemPath(id)
	if err != nil {
		return nil, err
	}

	var out models.Admin
	if err := c.Do(ctx, Request{Method: http.MethodPut, Path: p, JSON: in}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// DeleteAdmin - DELETE /auth/admin/:id.
func (c *Client) DeleteAdmin(ctx context.Context, id string) error {
	p, err := adminItemPath(id)
	if err != nil {
		return err
	}

	return c.Do(ctx, Request{Method: http.MethodDelete, Path: p}, nil)
}

// ListUsers - GET /auth/users.
func (c *Client) ListUsers(ctx context.Context, opts ListOptions) (*models.Page[models.User], error) {
	var out models.Page[models.User]
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/users", Query: opts.Values()}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
