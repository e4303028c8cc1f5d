package domain

// BootstrapData seeds an empty store with an administrator and the first
// confidential client.
type BootstrapData struct {
	AdminUsername string
	AdminPassword string // generated when empty
	ClientName    string
	ClientScopes  []string
}
