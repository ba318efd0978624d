package usecase

import (
	"context"

	"garage/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CreateTagInput defines the data required to create a tag. The slug is
// derived from the name, never supplied.
type CreateTagInput struct {
	Name  string
	Color *string
}

// UpdateTagInput is a partial update: nil fields are left untouched.
// Renaming a tag re-derives its slug.
type UpdateTagInput struct {
	Name  *string
	Color *string
}

// --- Output DTOs ---

// TagListOutput is one page of tags plus its page metadata.
type TagListOutput struct {
	Tags     []*entity.Tag
	PageInfo PageInfo
}

// TagUsecase defines the owner-scoped tag operations.
type TagUsecase interface {
	CreateTag(ctx context.Context, ownerID uuid.UUID, input CreateTagInput) (*entity.Tag, error)
	GetTag(ctx context.Context, ownerID, tagID uuid.UUID) (*entity.Tag, error)
	ListTags(ctx context.Context, ownerID uuid.UUID, page PageRequest) (*TagListOutput, error)
	UpdateTag(ctx context.Context, ownerID, tagID uuid.UUID, input UpdateTagInput) (*entity.Tag, error)
	DeleteTag(ctx context.Context, ownerID, tagID uuid.UUID) error
}
