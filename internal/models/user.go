package models

// account roles carried in the auth token
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the slice of an account the settlement engine sees. Profile
// management lives elsewhere.
type User struct {
	ID    string
	Email string
	Name  string
	Phone string
	Role  string
}

// TokenPayload is the verified content of an auth token.
type TokenPayload struct {
	UserID string
	Role   string
}
