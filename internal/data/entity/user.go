package entity

type UserRole string

const (
	RoleAdmin       UserRole = "Admin"
	RoleFlightOwner UserRole = "FlightOwner"
	RoleUser        UserRole = "User"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleFlightOwner, RoleUser:
		return true
	}
	return false
}

type User struct {
	Base
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password"`
	Phone        *string    `db:"phone"`
	Gender       *string    `db:"gender"`
	Address      *string    `db:"address"`
	Roles        []UserRole `db:"roles"`
	IsActive     bool       `db:"is_active"`
}

func (u *User) HasRole(role UserRole) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleNames returns the roles as plain strings, the form used in tokens and
// in the roles column.
func RoleNames(roles []UserRole) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

func ParseRoles(names []string) []UserRole {
	roles := make([]UserRole, 0, len(names))
	for _, n := range names {
		if r := UserRole(n); r.Valid() {
			roles = append(roles, r)
		}
	}
	return roles
}
