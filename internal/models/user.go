package models

import "time"

// User represents a registrable account in the system.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never expose this to the client
	Online       bool       `json:"online"`
	LastLogin    *time.Time `json:"lastLogin"` // nil until the first successful login
	CreatedAt    time.Time  `json:"createdAt"`
}
