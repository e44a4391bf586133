package models

import "time"

// DistrictAdmin is a district staff account attached to a derived district.
type DistrictAdmin struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// District is derived by grouping requests and users on the district name.
type District struct {
	Name           string          `json:"name"`
	Admins         []DistrictAdmin `json:"admins"`
	AdminCount     int             `json:"adminCount"`
	RequestCount   int             `json:"requestCount"`
	ActiveRequests int             `json:"activeRequests"`
	LastActive     *time.Time      `json:"lastActive,omitempty"`
}

// CreateDistrictAccountRequest provisions a district staff login.
type CreateDistrictAccountRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Contact  string `json:"contact" validate:"omitempty,max=200"`
}
