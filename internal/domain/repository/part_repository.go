package repository

import (
	"context"
	"errors"

	"garage/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for part persistence.
var (
	// ErrPartNotFound is returned when a part does not exist for the owner.
	ErrPartNotFound = errors.New("part not found")
	// ErrPartInUse is returned when deleting a part that maintenance items
	// still reference (FK RESTRICT).
	ErrPartInUse = errors.New("part is referenced by maintenance items")
)

// PartFilter narrows ListByOwner/CountByOwner results.
type PartFilter struct {
	// Search matches case-insensitively against name and description.
	Search string
	// TagIDs keeps only parts associated with at least one of the given tags.
	TagIDs []uuid.UUID
}

// PartUpdate is a partial update: nil fields are left untouched.
// Tag associations are replaced through ReplaceTags, not here.
type PartUpdate struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Currency    *string
	URL         *string
}

// PartRepository is the ownership-scoped persistence contract for parts.
// Reads hydrate the tag set from the part_tags join; writes to the
// association go through ReplaceTags with full-replace semantics.
type PartRepository interface {
	// FindByID returns the part, tags hydrated, when both id and owner match.
	FindByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.Part, error)

	// FindByIDs returns the owner's parts among the given ids, without tags.
	// Used for referential checks on maintenance items.
	FindByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*entity.Part, error)

	// ListByOwner returns up to limit parts matching the filter, newest first,
	// tags hydrated.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter PartFilter, limit, offset int) ([]*entity.Part, error)

	// CountByOwner returns the total number of parts matching the filter.
	CountByOwner(ctx context.Context, ownerID uuid.UUID, filter PartFilter) (int64, error)

	// Create persists a new part without touching associations.
	Create(ctx context.Context, part *entity.Part) error

	// ReplaceTags replaces the part's tag associations with exactly the given
	// set: delete all existing rows, insert the new ones. An empty list
	// removes every association.
	ReplaceTags(ctx context.Context, partID uuid.UUID, tagIDs []uuid.UUID) error

	// Update applies the non-nil patch fields and returns the refreshed part,
	// tags hydrated.
	Update(ctx context.Context, id, ownerID uuid.UUID, patch PartUpdate) (*entity.Part, error)

	// Delete removes the part when owned by ownerID. ErrPartInUse when
	// maintenance items still reference it.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}
