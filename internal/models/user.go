package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize in JSON
	Phone        *string   `json:"phone" db:"phone"`
	PhotoPath    *string   `json:"photo_path" db:"photo_path"`
	StateCode    *string   `json:"state_code" db:"state_code"`
	CityName     *string   `json:"city_name" db:"city_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
