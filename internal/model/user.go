package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column.  The json tags are
// omitted because these structs are used internally by the repository
// layer; handlers define separate response types with appropriate tags.
//
// Fields:
//  UserID       – primary key (UUID).
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  Name..Street – profile attributes editable via the profile endpoint.
//  CreatedAt    – timestamp of creation.
type User struct {
	UserID       string    // users.user_id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	Name         string    // users.name
	Email        string    // users.email
	MobileNo     string    // users.mobile_no
	Gender       *string   // users.gender (nullable)
	Age          *uint8    // users.age (nullable)
	DOB          *string   // users.dob (nullable)
	Country      *string   // users.country (nullable)
	State        *string   // users.state (nullable)
	City         *string   // users.city (nullable)
	Street       *string   // users.street (nullable)
	CreatedAt    time.Time // users.created_at
}
