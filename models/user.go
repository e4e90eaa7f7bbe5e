package models

import "time"

// Well-known role labels. Role is free-form text in the store; these are the
// values the desktop shell and the auth layer recognise.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleStudent  = "student"
)

// User represents a person whose attendance is tracked.
// It maps to the `users` table in SQLite.
type User struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
	Role  string `db:"role" json:"role"`
	// BiotimeID is the identifier of the user in the external Biotime system.
	// Nil when the user has not been linked yet.
	BiotimeID *string   `db:"biotime_id" json:"biotime_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
