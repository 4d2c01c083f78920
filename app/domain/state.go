package domain

// AuthState is the Session Manager's position in the authentication
// lifecycle. Transitions:
//
//	SIGNED_OUT -> AUTHENTICATING -> MFA_PENDING -> AUTHENTICATED
//
// with AUTHENTICATED -> SIGNED_OUT on explicit sign-out and any state ->
// SIGNED_OUT on unrecoverable failure.
type AuthState string

const (
	StateSignedOut      AuthState = "SIGNED_OUT"
	StateAuthenticating AuthState = "AUTHENTICATING"
	StateMFAPending     AuthState = "MFA_PENDING"
	StateAuthenticated  AuthState = "AUTHENTICATED"
)

// Cache keys for the session material persisted across restarts.
const (
	CacheKeyCredentials = "awsCredentials"
	CacheKeySession     = "currSession"
	CacheKeyIsLoggedIn  = "isLoggedIn"
)

// UnauthenticatedIdentity scopes records written by callers without an
// established identity.
const UnauthenticatedIdentity = "UNAUTH"
