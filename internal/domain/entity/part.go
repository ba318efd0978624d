package entity

import (
	"time"

	"github.com/google/uuid"
)

// Part is a spare part or consumable (oil, filters, brake pads) referenced by
// maintenance items. Parts carry a many-to-many association with Tags; the Tag
// side never references back to avoid cyclic graphs.
type Part struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID // The user this part belongs to.
	Name        string
	Description *string
	PriceCents  *int64 // Non-negative when present.
	Currency    *string
	URL         *string
	Tags        []*Tag // Hydrated tag set, deduplicated, stable order.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
