package domain

import "time"

// AccessCredentials are the short-lived service-access keys derived from
// a Session through the identity pool federation. They are expendable:
// regenerated whenever absent, expired or rejected.
type AccessCredentials struct {
	AccessKeyID     string    `json:"accessKeyId"`
	SecretAccessKey string    `json:"secretAccessKey"`
	SessionToken    string    `json:"sessionToken"`
	Expiration      time.Time `json:"expiration,omitempty"`
	IdentityID      string    `json:"identityId,omitempty"`
}

// expirySkew keeps credentials from being handed out moments before the
// provider rejects them.
const expirySkew = 30 * time.Second

// IsExpired reports whether the credentials are past (or within a small
// skew of) their expiry. Credentials without an expiry never expire
// locally; the service rejecting them forces regeneration.
func (c *AccessCredentials) IsExpired() bool {
	if c.Expiration.IsZero() {
		return false
	}
	return time.Now().After(c.Expiration.Add(-expirySkew))
}

// Valid reports whether the key material is present and unexpired.
func (c *AccessCredentials) Valid() bool {
	if c == nil || c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return false
	}
	return !c.IsExpired()
}
