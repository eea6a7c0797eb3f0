// Package model defines the data structures used throughout the application.
package model

import "time"

// AuthProvider records how an account was created and how it may log in.
type AuthProvider string

const (
	// ProviderLocal accounts have a bcrypt password hash and log in with it.
	ProviderLocal AuthProvider = "local"
	// ProviderGoogle accounts were bootstrapped by a federated login and have
	// no local password at all. Password login for them always fails.
	ProviderGoogle AuthProvider = "google"
)

// User is a registered account as stored in the users table.
//
// PasswordHash is tagged `json:"-"` so it can never leak through a handler
// that serializes the whole struct. It is empty for federated accounts.
//
// The bookmark and favorite sets are NOT fields here: they live once, in the
// relation tables, and are read back with ProjectRepository.ListProjectDetails.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Provider     AuthProvider `json:"provider"`
	Bio          string       `json:"bio"`
	ProfilePic   string       `json:"profilePic"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// HasPassword reports whether the account can log in with a local password.
func (u *User) HasPassword() bool {
	return u.Provider != ProviderGoogle && u.PasswordHash != ""
}

// Identity is the request-scoped view of the caller, attached to the request
// context by the auth middleware and returned by the session endpoints.
// It has no password, bio, bookmarks or favorites fields.
type Identity struct {
	ID         string       `json:"id"`
	Username   string       `json:"username"`
	Email      string       `json:"email"`
	ProfilePic string       `json:"profilePic"`
	Provider   AuthProvider `json:"provider"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Identity projects the user onto its request-scoped view.
func (u *User) Identity() *Identity {
	return &Identity{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		Provider:   u.Provider,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Profile is the public view served by GET /user/get/profile/{userId}.
type Profile struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic"`
}

// Profile projects the user onto its public view.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Bio:        u.Bio,
		ProfilePic: u.ProfilePic,
	}
}

// UserSummary is the minimal projection used when expanding references.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
