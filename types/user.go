package types

import "time"

// User represents an account in the system.
// It contains identity, credentials, and optional profile data.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	// It is immutable after registration.
	Username string `json:"username" db:"username"`

	// HashedPassword stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	HashedPassword string `json:"-" db:"hashed_password"`

	// Height is the user's height in centimeters, if provided.
	Height *float64 `json:"height" db:"height"`

	// Weight is the user's weight in kilograms, if provided.
	Weight *float64 `json:"weight" db:"weight"`

	// Age is the user's age in years, if provided.
	Age *int `json:"age" db:"age"`

	// Gender is the user's self-reported gender, if provided.
	Gender *string `json:"gender" db:"gender"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Profile is the externally visible subset of a User. Absent fields
// serialize as JSON null.
type Profile struct {
	Height *float64 `json:"height"`
	Weight *float64 `json:"weight"`
	Age    *int     `json:"age"`
	Gender *string  `json:"gender"`
}

// Profile returns the user's profile fields, excluding all credential
// material.
func (u User) Profile() Profile {
	return Profile{
		Height: u.Height,
		Weight: u.Weight,
		Age:    u.Age,
		Gender: u.Gender,
	}
}
