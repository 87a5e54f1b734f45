package domain

// TokenClaims carries the identity embedded in a service token.
type TokenClaims struct {
	// ClientID names the credential holder, e.g. "api-client"
	ClientID string `json:"client_id"`

	// Scope is the granted permission set
	Scope string `json:"scope"`

	IssuedAt  int64 `json:"issued_at"`
	ExpiresAt int64 `json:"expires_at"`
}

// Scopes.
const (
	ScopeRun string = "run"
)
