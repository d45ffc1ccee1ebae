package domain

// TokenVerifier verifies a bearer token and returns the authenticated
// user ID. Token issuance belongs to the auth subsystem; this module
// only verifies.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
