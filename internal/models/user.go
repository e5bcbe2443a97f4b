package models

// User represents the authenticated profile returned by the backend.
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"` // "customer", "manager" or "admin"
}

// FullName joins the first and last name for display.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsManager reports whether the user may access manager-only operations.
func (u *User) IsManager() bool {
	return u.Role == "manager" || u.Role == "admin"
}

// LoginRequest is the request body for /login/.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the request body for /register/.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// AuthResponse is returned by both /login/ and /register/.
type AuthResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user"`
}

// LogoutRequest carries the refresh token to be blacklisted by /logout/.
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}
