package domain

import "time"

// User is a registered account. Only credentials and the identity facts that
// get embedded in tokens live here; profile data belongs to the profile
// service.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
