package users

import "time"

// User is a stored account. PasswordHash always holds a bcrypt hash.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public view of a User. It never carries the credential.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Public strips the credential from u.
func (u *User) Public() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// NewUser carries the fields needed to create an account.
type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

// UpdateFields is a partial profile update; nil fields are left untouched.
type UpdateFields struct {
	Email     *string
	FirstName *string
	LastName  *string
}
