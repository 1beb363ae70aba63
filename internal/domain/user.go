package domain

type User struct {
	ID    ID     `json:"id"`
	Phone string `json:"phone"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// Session is an authenticated customer. Token is an opaque JWT whose exp
// claim bounds the session lifetime.
type Session struct {
	Token string
	User  User
}
