package auth

// Provider validates API tokens. The single-user deployment ships with the
// static-token provider; anything smarter plugs in here.
type Provider interface {
	ValidateToken(token string) error
}
