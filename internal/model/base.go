package model

import (
	"time"
)

// Base contains the columns every table carries.
type Base struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
