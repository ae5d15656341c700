package models

import "time"

// Car - объявление о продаже автомобиля.
type Car struct {
	ID           string    `json:"id"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Price        float64   `json:"price"`
	Mileage      int       `json:"mileage,omitempty"`
	Fuel         string    `json:"fuel,omitempty"`
	Transmission string    `json:"transmission,omitempty"`
	Condition    string    `json:"condition,omitempty"`
	Color        string    `json:"color,omitempty"`
	City         string    `json:"city,omitempty"`
	Description  string    `json:"description,omitempty"`
	Images       []string  `json:"images,omitempty"`
	IsPremium    bool      `json:"isPremium,omitempty"`
	Status       string    `json:"status,omitempty"`
	OwnerID      string    `json:"ownerId,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// CarInput - тело POST /user-cars.
type CarInput struct {
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Price        float64 `json:"price"`
	Mileage      int     `json:"mileage,omitempty"`
	Fuel         string  `json:"fuel,omitempty"`
	Transmission string  `json:"transmission,omitempty"`
	Condition    string  `json:"condition,omitempty"`
	Color        string  `json:"color,omitempty"`
	City         string  `json:"city,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// UploadResult - ответ POST /car-images/upload.
type UploadResult struct {
	URLs []string `json:"urls"`
}
