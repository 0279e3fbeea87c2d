package models

// User is the signed-in person when OIDC authentication is enabled.
// It lives only in the session.
type User struct {
	Sub   string `json:"sub"` // OIDC subject identifier
	Email string `json:"email"`
	Name  string `json:"name"`
}

// DisplayName returns the name, falling back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
