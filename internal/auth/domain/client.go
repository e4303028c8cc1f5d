package domain

import "time"

type Client struct {
	ID         string
	Name       string
	SecretHash string // empty for public clients
	Scopes     []string
	Protected  bool // If true, client cannot be deleted (e.g., bootstrap client)
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Confidential reports whether the client must present a secret.
func (c Client) Confidential() bool { return c.SecretHash != "" }
