package models

// Role is the kind of account a user holds.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// User is a credential record.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"` // bcrypt hash
	Role     Role   `json:"role"`
}

// Session is the authenticated identity: a User without its password.
type Session struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session strips the password from u.
func (u User) Session() Session {
	return Session{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
