package postgres

import (
	"context"

	"garage/internal/domain/entity"
	domainerrors "garage/internal/domain/errors"
	"garage/internal/domain/repository"
	"garage/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// tagRepository implements the repository.TagRepository interface.
type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository is the constructor for tagRepository.
func NewTagRepository(db *gorm.DB) repository.TagRepository {
	return &tagRepository{
		db: db,
	}
}

// FindByID returns the tag only when both id and owner match.
func (repo *tagRepository) FindByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.Tag, error) {
	var tagM model.TagModel

	if err := repo.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&tagM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTagNotFound
		}

		return nil, errors.Wrap(err, "failed to find tag by ID")
	}

	return toTagDomain(&tagM), nil
}

// FindByIDs returns the owner's tags among the given ids. Unresolvable ids
// are simply absent from the result.
func (repo *tagRepository) FindByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*entity.Tag, error) {
	if len(ids) == 0 {
		return []*entity.Tag{}, nil
	}

	var tagModels []*model.TagModel

	if err := repo.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Find(&tagModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find tags by IDs")
	}

	tags := make([]*entity.Tag, 0, len(tagModels))
	for _, tagM := range tagModels {
		tags = append(tags, toTagDomain(tagM))
	}

	return tags, nil
}

// ListByOwner returns a page of the owner's tags, ordered by name.
func (repo *tagRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Tag, error) {
	var tagModels []*model.TagModel

	query := repo.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&tagModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list tags")
	}

	tags := make([]*entity.Tag, 0, len(tagModels))
	for _, tagM := range tagModels {
		tags = append(tags, toTagDomain(tagM))
	}

	return tags, nil
}

// CountByOwner returns the total number of tags of the owner.
func (repo *tagRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.TagModel{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count tags")
	}

	return count, nil
}

// Create persists a new tag.
func (repo *tagRepository) Create(ctx context.Context, tag *entity.Tag) error {
	tagM := fromTagDomain(tag)

	if err := repo.db.WithContext(ctx).Create(tagM).Error; err != nil {
		// The per-owner unique indexes on name and slug both surface here.
		if isUniqueConstraintViolation(err) {
			return repository.ErrTagAlreadyExists
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required tag information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create tag")
	}

	tag.ID = tagM.ID
	tag.CreatedAt = tagM.CreatedAt

	return nil
}

// Update applies the non-nil patch fields and returns the refreshed tag.
func (repo *tagRepository) Update(ctx context.Context, id, ownerID uuid.UUID, patch repository.TagUpdate) (*entity.Tag, error) {
	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Slug != nil {
		updates["slug"] = *patch.Slug
	}
	if patch.Color != nil {
		updates["color"] = *patch.Color
	}

	if len(updates) > 0 {
		result := repo.db.WithContext(ctx).
			Model(&model.TagModel{}).
			Where("id = ? AND owner_id = ?", id, ownerID).
			Updates(updates)
		if result.Error != nil {
			if isUniqueConstraintViolation(result.Error) {
				return nil, repository.ErrTagAlreadyExists
			}

			return nil, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update tag")
		}
		if result.RowsAffected == 0 {
			return nil, repository.ErrTagNotFound
		}
	}

	return repo.FindByID(ctx, id, ownerID)
}

// Delete removes the tag; part associations cascade away, the parts stay.
func (repo *tagRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.TagModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete tag")
	}

	if result.RowsAffected == 0 {
		return repository.ErrTagNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toTagDomain converts a GORM TagModel to a domain Tag entity.
func toTagDomain(data *model.TagModel) *entity.Tag {
	if data == nil {
		return nil
	}

	return &entity.Tag{
		ID:        data.ID,
		OwnerID:   data.OwnerID,
		Name:      data.Name,
		Slug:      data.Slug,
		Color:     data.Color,
		CreatedAt: data.CreatedAt,
	}
}

// fromTagDomain converts a domain Tag entity to a GORM TagModel.
func fromTagDomain(data *entity.Tag) *model.TagModel {
	if data == nil {
		return nil
	}

	return &model.TagModel{
		ID:        data.ID,
		OwnerID:   data.OwnerID,
		Name:      data.Name,
		Slug:      data.Slug,
		Color:     data.Color,
		CreatedAt: data.CreatedAt,
	}
}
