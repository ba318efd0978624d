package repository

import (
	"context"
	"errors"

	"garage/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for tag persistence.
var (
	// ErrTagNotFound is returned when a tag does not exist for the owner.
	ErrTagNotFound = errors.New("tag not found")
	// ErrTagAlreadyExists is returned when the owner already has a tag with
	// the same name or slug.
	ErrTagAlreadyExists = errors.New("tag already exists")
)

// TagUpdate is a partial update: nil fields are left untouched. Slug travels
// with Name; the caller re-derives it whenever the name changes.
type TagUpdate struct {
	Name  *string
	Slug  *string
	Color *string
}

// TagRepository is the ownership-scoped persistence contract for tags.
type TagRepository interface {
	// FindByID returns the tag only when both id and owner match.
	FindByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.Tag, error)

	// FindByIDs returns the owner's tags among the given ids. Ids that do not
	// resolve are simply absent from the result; the caller decides whether
	// that is an error.
	FindByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*entity.Tag, error)

	// ListByOwner returns up to limit tags of the owner, ordered by name.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Tag, error)

	// CountByOwner returns the total number of tags of the owner.
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// Create persists a new tag. ErrTagAlreadyExists on a per-owner
	// name or slug collision.
	Create(ctx context.Context, tag *entity.Tag) error

	// Update applies the non-nil patch fields and returns the refreshed tag.
	Update(ctx context.Context, id, ownerID uuid.UUID, patch TagUpdate) (*entity.Tag, error)

	// Delete removes the tag and, via cascade, all of its part associations.
	// The parts themselves stay untouched.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}
