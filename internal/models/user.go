package models

import "time"

// User is an appraiser account in the credential store.
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	ID           int64     `json:"id"`
}
