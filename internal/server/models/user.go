// Package models holds the server-side domain types.
package models

import "time"

// User is a stored account. PasswordHash is a bcrypt digest; it never
// leaves the service layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsAdm        bool
	CreatedOn    time.Time
	UpdatedOn    time.Time
}

// UserView is the public projection of a User.
type UserView struct {
	ID        string    `json:"uuid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdm     bool      `json:"isAdm"`
	CreatedOn time.Time `json:"createdOn"`
	UpdatedOn time.Time `json:"updatedOn"`
}

// View returns the sanitized projection of u.
func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsAdm:     u.IsAdm,
		CreatedOn: u.CreatedOn,
		UpdatedOn: u.UpdatedOn,
	}
}

// UserPatch carries the optional fields of an edit. Nil or empty values
// keep the stored value.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
}
