package domain

// Principal is the authenticated identity attached to a request after a
// strategy resolves it. Read-only downstream; never persisted.
type Principal struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsZero reports whether no principal was resolved (public endpoints).
func (p Principal) IsZero() bool { return p.Sub == "" }

// PrincipalFromUser derives the request principal for a user record.
func PrincipalFromUser(u User) Principal {
	return Principal{Sub: u.ID, Email: u.Email, Role: u.Role}
}
