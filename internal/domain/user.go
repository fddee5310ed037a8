package domain

import "time"

// User is an API consumer identified by an opaque token.
type User struct {
	ID           int64
	Token        string
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
