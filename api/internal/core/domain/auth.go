package domain

type contextKey string

// UserContextKey stores verified token claims on the request context.
const UserContextKey contextKey = "cifra_claims"

// UserClaims is the verified identity attached to an authenticated request.
type UserClaims struct {
	Subject string
	TokenID string
}
