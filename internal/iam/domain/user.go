package domain

import "time"

// Role is the authorization role attached to a user. The set is closed;
// per-endpoint allowed-role lists are declared at the routing layer.
type Role string

const (
	RoleRegular Role = "regular"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleRegular || r == RoleAdmin
}

type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2id encoded
	Role         Role

	// OTPSecret is stored in clear: the raw secret is needed to verify
	// future codes, so hashing it is not an option. OTPEnabled gates
	// whether sign-in demands a code.
	OTPEnabled bool
	OTPSecret  string

	CreatedAt time.Time
	UpdatedAt time.Time
}
