// internal/domain/session/dto.go
package session

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=255"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name"`
}

// Status is the derived view handed to UI consumers. It never includes the
// access token itself.
type Status struct {
	Authenticated   bool   `json:"authenticated"`
	Expired         bool   `json:"expired"`
	Subject         string `json:"subject,omitempty"`
	UserID          string `json:"user_id,omitempty"`
	Issuer          string `json:"issuer,omitempty"`
	ExpiresAt       int64  `json:"expires_at,omitempty"`
	TimeUntilExpiry int64  `json:"time_until_expiry_seconds"`
}
