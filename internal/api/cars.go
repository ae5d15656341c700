package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/pribylovaa/car-market/internal/models"
)

// ListCars - GET /car/all.
func (c *Client) ListCars(ctx context.Context, opts ListOptions) (*models.Page[models.Car], error) {
	return c.listCars(ctx, "/car/all", opts)
}

// ListPremiumCars - GET /car/premium.
func (c *Client) ListPremiumCars(ctx context.Context, opts ListOptions) (*models.Page[models.Car], error) {
	return c.listCars(ctx, "/car/premium", opts)
}

func (c *Client) listCars(ctx context.Context, path string, opts ListOptions) (*models.Page[models.Car], error) {
	var out models.Page[models.Car]
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: opts.Values()}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// GetCar - GET /car/:id.
func (c *Client) GetCar(ctx context.Context, id string) (*models.Car, error) {
	if id == "" {
		return nil, errors.New("api.GetCar: empty id")
	}

	var out models.Car
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/car/" + url.PathEscape(id)}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// CreateUserCar - POST /user-cars, объявление от имени текущего пользователя.
func (c *Client) CreateUserCar(ctx context.Context, in models.CarInput) (*models.Car, error) {
	var out models.Car
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/user-cars", JSON: in}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// UploadCarImages - POST /car-images/upload (multipart, поле images).
func (c *Client) UploadCarImages(ctx context.Context, files []models.File) (*models.UploadResult, error) {
	if len(files) == 0 {
		return nil, errors.New("api.UploadCarImages: no files")
	}

	form := &Multipart{Files: make([]models.File, 0, len(files))}
	for _, f := range files {
		if f.FieldName == "" {
			f.FieldName = "images"
		}
		form.Files = append(form.Files, f)
	}

	var out models.UploadResult
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/car-images/upload", Form: form}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
