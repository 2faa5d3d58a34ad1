package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	Name            string      `db:"name" json:"name"`
	Email           string      `db:"email" json:"email"`
	PasswordHash    string      `db:"password_hash" json:"-"` // Не отдаем хеш пароля
	Role            string      `db:"role" json:"role"`
	Blocked         bool        `db:"blocked" json:"blocked"`
	ProfileImageURL *string     `db:"profile_image_url" json:"profileImageUrl,omitempty"`
	Packages        []uuid.UUID `db:"-" json:"packages"` // Purchased package references, loaded separately
	CreatedAt       time.Time   `db:"created_at" json:"createdAt"`
}
