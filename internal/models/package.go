package models

import (
	"time"

	"github.com/google/uuid"
)

// Package represents a catalog entry available for purchase.
type Package struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Version     string    `db:"version" json:"version"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Images      []string  `db:"images" json:"images"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Image represents an externally hosted image accepted through the ingest endpoint.
type Image struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	ImageURL  string    `db:"image_url" json:"imageUrl"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
