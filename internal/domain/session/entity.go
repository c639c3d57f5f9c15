// internal/domain/session/entity.go
package session

// Session is the in-memory representation of the authenticated identity.
// All timestamps are epoch seconds, matching the token claims they come from.
//
// Invariant: LoggedIn implies AccessToken is non-empty and ExpiresAt > IssuedAt.
type Session struct {
	Subject     string `json:"subject"`
	UserID      string `json:"user_id"`
	Issuer      string `json:"issuer"`
	Audience    string `json:"audience"`
	IssuedAt    int64  `json:"issued_at"`
	TokenID     string `json:"token_id"`
	ExpiresAt   int64  `json:"expires_at"`
	AccessToken string `json:"access_token"`
	LoggedIn    bool   `json:"logged_in"`
}

// Empty reports whether the session carries no identity at all.
func (s Session) Empty() bool {
	return !s.LoggedIn && s.AccessToken == "" && s.Subject == ""
}
