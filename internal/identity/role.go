package identity

import "fmt"

// Role is the closed set of access tiers. Gated operations switch on it
// exhaustively instead of comparing tier-name strings from the database.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleProvider Role = "provider"
	RolePatient  Role = "patient"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleProvider, RolePatient:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Actor identifies the authenticated caller of an operation. It is passed
// explicitly into every gated service method rather than read from any
// ambient request state.
type Actor struct {
	AccountID int64
	Email     string
	Role      Role
}
