package authdomain

// Role represents a user's role for authorization purposes.
type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// RoleFor maps the users.is_admin flag to a role.
func RoleFor(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RolePlayer
}

// IsValid checks if the role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RolePlayer, RoleAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
