package auth

import "time"

const (
	// Token constants.
	TokenKeySize     = 32
	DefaultAccessTTL = 30 * time.Minute

	// TokenTypeAccess marks access tokens in the token_type claim.
	TokenTypeAccess = "access"

	// BearerScheme is the token_type returned to clients.
	BearerScheme = "bearer"
)
