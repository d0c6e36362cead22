package model

// RegisterParams contains the fields submitted at registration.
type RegisterParams struct {
	FullName string
	Email    string
	Password string
	Role     Role
}

// SessionResult is returned by successful registration and login.
type SessionResult struct {
	User  PublicUser
	Token string
}

// UpdateProfileParams contains a self-service profile edit. Empty fields
// keep their stored value; Password confirms the edit.
type UpdateProfileParams struct {
	FullName string
	Email    string
	Password string
}

// UserPage is one page of the non-admin account listing.
type UserPage struct {
	Users       []PublicUser
	TotalUsers  int
	CurrentPage int
	TotalPages  int
}
