package usecase

import (
	"context"

	"garage/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CreatePartInput defines the data required to create a part. Every listed
// tag id must resolve to a tag of the same owner.
type CreatePartInput struct {
	Name        string
	Description *string
	PriceCents  *int64
	Currency    *string
	URL         *string
	TagIDs      []uuid.UUID
}

// UpdatePartInput is a partial update: nil fields are left untouched.
// TagIDs is a pointer to a slice so "not provided" (nil) and "replace with
// this exact set, possibly empty" (non-nil) stay distinguishable.
type UpdatePartInput struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Currency    *string
	URL         *string
	TagIDs      *[]uuid.UUID
}

// ListPartsInput narrows and pages the part list.
type ListPartsInput struct {
	Search string
	TagIDs []uuid.UUID
	Page   PageRequest
}

// --- Output DTOs ---

// PartListOutput is one page of parts, tags hydrated, plus page metadata.
type PartListOutput struct {
	Parts    []*entity.Part
	PageInfo PageInfo
}

// PartUsecase defines the owner-scoped part operations. Reads return parts
// with their tag sets hydrated.
type PartUsecase interface {
	CreatePart(ctx context.Context, ownerID uuid.UUID, input CreatePartInput) (*entity.Part, error)
	GetPart(ctx context.Context, ownerID, partID uuid.UUID) (*entity.Part, error)
	ListParts(ctx context.Context, ownerID uuid.UUID, input ListPartsInput) (*PartListOutput, error)
	UpdatePart(ctx context.Context, ownerID, partID uuid.UUID, input UpdatePartInput) (*entity.Part, error)
	DeletePart(ctx context.Context, ownerID, partID uuid.UUID) error
}
