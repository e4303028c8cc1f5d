package domain

import "time"

// User is a resource owner able to sign in with the password grant.
type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2id PHC or bcrypt
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
