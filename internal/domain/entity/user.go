// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the account that owns every other entity in the system. All
// repository operations are scoped by the user's ID acting as the owner id.
type User struct {
	ID           uuid.UUID // Unique identifier, generated by the database.
	Email        string    // Login identifier, unique across all users.
	Name         string    // Optional display name; empty when never set.
	PasswordHash string    // bcrypt hash of the password. Never exposed outside the core.
	CreatedAt    time.Time // Timestamp of account creation.
	UpdatedAt    time.Time // Timestamp of the last modification.
}
