package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a user-created label for organizing parts. Tags are flat (no
// hierarchy) and scoped to a single owner: both the name and the derived slug
// are unique per owner, not globally.
type Tag struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID // The user this tag belongs to.
	Name      string    // Display name, unique per owner.
	Color     *string   // Optional hex color for UI use.
	Slug      string    // URL-safe derivation of Name, unique per owner.
	CreatedAt time.Time
}
