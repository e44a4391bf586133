package models

// Session is the authenticated caller, resolved once per request from the
// access token and handed to every service call.
type Session struct {
	UserID   string
	Email    string
	FullName string
	Role     UserRole
	District string
}

// SessionFromClaims builds a session from validated token claims.
func SessionFromClaims(c *JWTClaims) Session {
	if c == nil {
		return Session{}
	}
	return Session{
		UserID:   c.UserID,
		Email:    c.Email,
		FullName: c.FullName,
		Role:     c.Role,
		District: c.District,
	}
}

// Authenticated reports whether the session belongs to a signed-in user.
func (s Session) Authenticated() bool {
	return s.UserID != "" && s.Role.Valid()
}

// DisplayName is the label written into activity entries.
func (s Session) DisplayName() string {
	if s.FullName != "" {
		return s.FullName
	}
	return s.Email
}
