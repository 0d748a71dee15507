// Package model defines the records passed between repositories, services
// and handlers. They are plain structs: no database or HTTP types leak in.
package model

import "time"

// User is a registered account.
//
// Bio is a pointer because the column is nullable: nil means "no bio",
// which is different from an empty string.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Bio       *string   `json:"bio"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser is the input to UserRepository.Create. IsActive defaults to true
// when nil.
type NewUser struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Bio      *string `json:"bio,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// UserPatch is a partial update. Only non-nil fields are written.
//
// A nil Bio leaves the bio alone; ClearBio sets it to NULL instead. Bio
// wins when both are set.
type UserPatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	ClearBio bool    `json:"-"`
	IsActive *bool   `json:"isActive,omitempty"`
}
