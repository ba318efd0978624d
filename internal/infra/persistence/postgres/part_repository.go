package postgres

import (
	"context"
	"time"

	"garage/internal/domain/entity"
	domainerrors "garage/internal/domain/errors"
	"garage/internal/domain/repository"
	"garage/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// partRepository implements the repository.PartRepository interface. Reads
// hydrate the tag set through a single joined query over part_tags; the flat
// rows are regrouped in memory.
type partRepository struct {
	db *gorm.DB
}

// NewPartRepository is the constructor for partRepository.
func NewPartRepository(db *gorm.DB) repository.PartRepository {
	return &partRepository{
		db: db,
	}
}

// partTagRow is one flat row of the part→tag join. Tag columns are pointers:
// a LEFT JOIN yields NULLs for parts without tags.
type partTagRow struct {
	PartID       uuid.UUID  `gorm:"column:part_id"`
	TagID        *uuid.UUID `gorm:"column:tag_id"`
	TagOwnerID   *uuid.UUID `gorm:"column:tag_owner_id"`
	TagName      *string    `gorm:"column:tag_name"`
	TagSlug      *string    `gorm:"column:tag_slug"`
	TagColor     *string    `gorm:"column:tag_color"`
	TagCreatedAt *time.Time `gorm:"column:tag_created_at"`
}

// loadTagsForParts runs the join for the given parts and groups the flat rows
// into per-part tag lists, deduplicated by tag id, ordered by tag name.
// Shared with the maintenance repository for its part→tag hop.
func loadTagsForParts(ctx context.Context, db *gorm.DB, partIDs []uuid.UUID) (*rowGrouper[uuid.UUID, entity.Tag], error) {
	grouper := newRowGrouper[uuid.UUID, entity.Tag]()
	if len(partIDs) == 0 {
		return grouper, nil
	}

	var rows []partTagRow

	if err := db.WithContext(ctx).
		Table("part_tags").
		Select("part_tags.part_id AS part_id, tags.id AS tag_id, tags.owner_id AS tag_owner_id, tags.name AS tag_name, tags.slug AS tag_slug, tags.color AS tag_color, tags.created_at AS tag_created_at").
		Joins("LEFT JOIN tags ON tags.id = part_tags.tag_id").
		Where("part_tags.part_id IN ?", partIDs).
		Order("tags.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load tags for parts")
	}

	for _, row := range rows {
		grouper.Add(row.PartID, row.TagID, func() *entity.Tag {
			tag := &entity.Tag{
				ID:    *row.TagID,
				Name:  derefString(row.TagName),
				Slug:  derefString(row.TagSlug),
				Color: row.TagColor,
			}
			if row.TagOwnerID != nil {
				tag.OwnerID = *row.TagOwnerID
			}
			if row.TagCreatedAt != nil {
				tag.CreatedAt = *row.TagCreatedAt
			}

			return tag
		})
	}

	return grouper, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// FindByID returns the part, tags hydrated, when both id and owner match.
func (repo *partRepository) FindByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.Part, error) {
	var partM model.PartModel

	if err := repo.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&partM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPartNotFound
		}

		return nil, errors.Wrap(err, "failed to find part by ID")
	}

	part := toPartDomain(&partM)

	grouper, err := loadTagsForParts(ctx, repo.db, []uuid.UUID{part.ID})
	if err != nil {
		return nil, err
	}
	part.Tags = grouper.Children(part.ID)

	return part, nil
}

// FindByIDs returns the owner's parts among the given ids, without tags.
func (repo *partRepository) FindByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*entity.Part, error) {
	if len(ids) == 0 {
		return []*entity.Part{}, nil
	}

	var partModels []*model.PartModel

	if err := repo.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Find(&partModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find parts by IDs")
	}

	parts := make([]*entity.Part, 0, len(partModels))
	for _, partM := range partModels {
		parts = append(parts, toPartDomain(partM))
	}

	return parts, nil
}

// ListByOwner returns a page of the owner's parts matching the filter, newest
// first, tags hydrated.
func (repo *partRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter repository.PartFilter, limit, offset int) ([]*entity.Part, error) {
	var partModels []*model.PartModel

	query := repo.applyPartFilter(repo.db.WithContext(ctx), ownerID, filter).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&partModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list parts")
	}

	parts := make([]*entity.Part, 0, len(partModels))
	partIDs := make([]uuid.UUID, 0, len(partModels))
	for _, partM := range partModels {
		parts = append(parts, toPartDomain(partM))
		partIDs = append(partIDs, partM.ID)
	}

	grouper, err := loadTagsForParts(ctx, repo.db, partIDs)
	if err != nil {
		return nil, err
	}
	for _, part := range parts {
		part.Tags = grouper.Children(part.ID)
	}

	return parts, nil
}

// CountByOwner returns the total number of parts matching the filter.
func (repo *partRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID, filter repository.PartFilter) (int64, error) {
	var count int64

	if err := repo.applyPartFilter(repo.db.WithContext(ctx), ownerID, filter).
		Model(&model.PartModel{}).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count parts")
	}

	return count, nil
}

// applyPartFilter builds the shared WHERE clause for list and count so the
// page and its total can never disagree.
func (repo *partRepository) applyPartFilter(query *gorm.DB, ownerID uuid.UUID, filter repository.PartFilter) *gorm.DB {
	query = query.Where("owner_id = ?", ownerID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if len(filter.TagIDs) > 0 {
		query = query.Where("id IN (SELECT part_id FROM part_tags WHERE tag_id IN ?)", filter.TagIDs)
	}

	return query
}

// Create persists a new part without touching associations.
func (repo *partRepository) Create(ctx context.Context, part *entity.Part) error {
	partM := fromPartDomain(part)

	if err := repo.db.WithContext(ctx).Omit("Tags").Create(partM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid owner reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required part information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create part")
	}

	part.ID = partM.ID
	part.CreatedAt = partM.CreatedAt
	part.UpdatedAt = partM.UpdatedAt

	return nil
}

// ReplaceTags replaces the part's tag associations with exactly the given
// set: delete everything, insert the new rows. An empty list clears the
// association entirely.
func (repo *partRepository) ReplaceTags(ctx context.Context, partID uuid.UUID, tagIDs []uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("part_id = ?", partID).
		Delete(&model.PartTagModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to clear part tags")
	}

	if len(tagIDs) == 0 {
		return nil
	}

	rows := make([]model.PartTagModel, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		rows = append(rows, model.PartTagModel{PartID: partID, TagID: tagID})
	}

	if err := repo.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrInvalidTags
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to insert part tags")
	}

	return nil
}

// partUpdateColumns maps the non-nil patch fields to their columns.
// updated_at is always stamped, so even an empty patch touches the row.
func partUpdateColumns(patch repository.PartUpdate) map[string]any {
	updates := map[string]any{"updated_at": time.Now()}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.PriceCents != nil {
		updates["price_cents"] = *patch.PriceCents
	}
	if patch.Currency != nil {
		updates["currency"] = *patch.Currency
	}
	if patch.URL != nil {
		updates["url"] = *patch.URL
	}

	return updates
}

// Update applies the non-nil patch fields and returns the refreshed part.
func (repo *partRepository) Update(ctx context.Context, id, ownerID uuid.UUID, patch repository.PartUpdate) (*entity.Part, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.PartModel{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(partUpdateColumns(patch))
	if result.Error != nil {
		return nil, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update part")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrPartNotFound
	}

	return repo.FindByID(ctx, id, ownerID)
}

// Delete removes the part when owned by ownerID. The RESTRICT constraint on
// maintenance_items.part_id keeps parts referenced by history alive.
func (repo *partRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.PartModel{})
	if result.Error != nil {
		if isForeignKeyConstraintViolation(result.Error) {
			return repository.ErrPartInUse
		}

		return errors.Wrap(result.Error, "failed to delete part")
	}

	if result.RowsAffected == 0 {
		return repository.ErrPartNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toPartDomain converts a GORM PartModel to a domain Part entity. Tags are
// hydrated separately from the join.
func toPartDomain(data *model.PartModel) *entity.Part {
	if data == nil {
		return nil
	}

	return &entity.Part{
		ID:          data.ID,
		OwnerID:     data.OwnerID,
		Name:        data.Name,
		Description: data.Description,
		PriceCents:  data.PriceCents,
		Currency:    data.Currency,
		URL:         data.URL,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// fromPartDomain converts a domain Part entity to a GORM PartModel.
func fromPartDomain(data *entity.Part) *model.PartModel {
	if data == nil {
		return nil
	}

	return &model.PartModel{
		ID:          data.ID,
		OwnerID:     data.OwnerID,
		Name:        data.Name,
		Description: data.Description,
		PriceCents:  data.PriceCents,
		Currency:    data.Currency,
		URL:         data.URL,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
