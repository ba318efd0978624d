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

// maintenanceRepository implements the repository.MaintenanceRepository
// interface. Reads hydrate three hops: record → items → part → tags. Each hop
// is one joined query; the flat rows are regrouped and deduplicated in memory.
type maintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository is the constructor for maintenanceRepository.
func NewMaintenanceRepository(db *gorm.DB) repository.MaintenanceRepository {
	return &maintenanceRepository{
		db: db,
	}
}

// maintenanceItemRow is one flat row of the item→part join. Part columns are
// pointers since the LEFT JOIN yields NULLs when the part row is gone.
type maintenanceItemRow struct {
	RecordID           uuid.UUID  `gorm:"column:record_id"`
	ItemID             *uuid.UUID `gorm:"column:item_id"`
	ItemPartID         *uuid.UUID `gorm:"column:item_part_id"`
	Quantity           *float64   `gorm:"column:quantity"`
	Unit               *string    `gorm:"column:unit"`
	PriceCentsOverride *int64     `gorm:"column:price_cents_override"`
	ItemNotes          *string    `gorm:"column:item_notes"`
	PartID             *uuid.UUID `gorm:"column:part_id"`
	PartOwnerID        *uuid.UUID `gorm:"column:part_owner_id"`
	PartName           *string    `gorm:"column:part_name"`
	PartDescription    *string    `gorm:"column:part_description"`
	PartPriceCents     *int64     `gorm:"column:part_price_cents"`
	PartCurrency       *string    `gorm:"column:part_currency"`
	PartURL            *string    `gorm:"column:part_url"`
	PartCreatedAt      *time.Time `gorm:"column:part_created_at"`
	PartUpdatedAt      *time.Time `gorm:"column:part_updated_at"`
}

// loadItemsForRecords hydrates the item lists for the given records,
// including each item's part and the part's tags. Items are deduplicated by
// id and kept in insertion order (v7 ids are time-sortable).
func (repo *maintenanceRepository) loadItemsForRecords(ctx context.Context, recordIDs []uuid.UUID) (*rowGrouper[uuid.UUID, entity.MaintenanceItem], error) {
	grouper := newRowGrouper[uuid.UUID, entity.MaintenanceItem]()
	if len(recordIDs) == 0 {
		return grouper, nil
	}

	var rows []maintenanceItemRow

	if err := repo.db.WithContext(ctx).
		Table("maintenance_items").
		Select("maintenance_items.record_id AS record_id, maintenance_items.id AS item_id, maintenance_items.part_id AS item_part_id, maintenance_items.quantity AS quantity, maintenance_items.unit AS unit, maintenance_items.price_cents_override AS price_cents_override, maintenance_items.notes AS item_notes, parts.id AS part_id, parts.owner_id AS part_owner_id, parts.name AS part_name, parts.description AS part_description, parts.price_cents AS part_price_cents, parts.currency AS part_currency, parts.url AS part_url, parts.created_at AS part_created_at, parts.updated_at AS part_updated_at").
		Joins("LEFT JOIN parts ON parts.id = maintenance_items.part_id").
		Where("maintenance_items.record_id IN ?", recordIDs).
		Order("maintenance_items.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load maintenance items")
	}

	partIDs := make([]uuid.UUID, 0, len(rows))
	seenParts := make(map[uuid.UUID]struct{})
	for _, row := range rows {
		if row.PartID == nil {
			continue
		}
		if _, ok := seenParts[*row.PartID]; ok {
			continue
		}
		seenParts[*row.PartID] = struct{}{}
		partIDs = append(partIDs, *row.PartID)
	}

	tags, err := loadTagsForParts(ctx, repo.db, partIDs)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		grouper.Add(row.RecordID, row.ItemID, func() *entity.MaintenanceItem {
			item := &entity.MaintenanceItem{
				ID:                 *row.ItemID,
				RecordID:           row.RecordID,
				Unit:               row.Unit,
				PriceCentsOverride: row.PriceCentsOverride,
				Notes:              row.ItemNotes,
			}
			if row.ItemPartID != nil {
				item.PartID = *row.ItemPartID
			}
			if row.Quantity != nil {
				item.Quantity = *row.Quantity
			}
			// A NULL part id means the join found no part row; the item is
			// kept but carries no hydrated part.
			if row.PartID != nil {
				part := &entity.Part{
					ID:          *row.PartID,
					Name:        derefString(row.PartName),
					Description: row.PartDescription,
					PriceCents:  row.PartPriceCents,
					Currency:    row.PartCurrency,
					URL:         row.PartURL,
					Tags:        tags.Children(*row.PartID),
				}
				if row.PartOwnerID != nil {
					part.OwnerID = *row.PartOwnerID
				}
				if row.PartCreatedAt != nil {
					part.CreatedAt = *row.PartCreatedAt
				}
				if row.PartUpdatedAt != nil {
					part.UpdatedAt = *row.PartUpdatedAt
				}
				item.Part = part
			}

			return item
		})
	}

	return grouper, nil
}

// FindByID returns the record with items hydrated when both id and owner match.
func (repo *maintenanceRepository) FindByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.MaintenanceRecord, error) {
	var recordM model.MaintenanceRecordModel

	if err := repo.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&recordM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMaintenanceRecordNotFound
		}

		return nil, errors.Wrap(err, "failed to find maintenance record by ID")
	}

	record := toMaintenanceRecordDomain(&recordM)

	items, err := repo.loadItemsForRecords(ctx, []uuid.UUID{record.ID})
	if err != nil {
		return nil, err
	}
	record.Items = items.Children(record.ID)

	return record, nil
}

// ListByOwner returns a page of the owner's records matching the filter,
// ordered by HappenedAt descending, items hydrated.
func (repo *maintenanceRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter repository.MaintenanceFilter, limit, offset int) ([]*entity.MaintenanceRecord, error) {
	var recordModels []*model.MaintenanceRecordModel

	query := repo.applyMaintenanceFilter(repo.db.WithContext(ctx), ownerID, filter).
		Order("happened_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&recordModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list maintenance records")
	}

	records := make([]*entity.MaintenanceRecord, 0, len(recordModels))
	recordIDs := make([]uuid.UUID, 0, len(recordModels))
	for _, recordM := range recordModels {
		records = append(records, toMaintenanceRecordDomain(recordM))
		recordIDs = append(recordIDs, recordM.ID)
	}

	items, err := repo.loadItemsForRecords(ctx, recordIDs)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		record.Items = items.Children(record.ID)
	}

	return records, nil
}

// CountByOwner returns the total number of records matching the filter.
func (repo *maintenanceRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID, filter repository.MaintenanceFilter) (int64, error) {
	var count int64

	if err := repo.applyMaintenanceFilter(repo.db.WithContext(ctx), ownerID, filter).
		Model(&model.MaintenanceRecordModel{}).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count maintenance records")
	}

	return count, nil
}

// applyMaintenanceFilter builds the shared WHERE clause for list and count.
// From/To bound happened_at inclusively.
func (repo *maintenanceRepository) applyMaintenanceFilter(query *gorm.DB, ownerID uuid.UUID, filter repository.MaintenanceFilter) *gorm.DB {
	query = query.Where("owner_id = ?", ownerID)

	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.From != nil {
		query = query.Where("happened_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("happened_at <= ?", *filter.To)
	}

	return query
}

// Create persists a new record together with its items.
func (repo *maintenanceRepository) Create(ctx context.Context, record *entity.MaintenanceRecord) error {
	recordM := fromMaintenanceRecordDomain(record)

	if err := repo.db.WithContext(ctx).Omit("Items").Create(recordM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid vehicle reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required record information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create maintenance record")
	}

	record.ID = recordM.ID
	record.CreatedAt = recordM.CreatedAt
	record.UpdatedAt = recordM.UpdatedAt

	if len(record.Items) > 0 {
		if err := repo.insertItems(ctx, record.ID, record.Items); err != nil {
			return err
		}
	}

	return nil
}

// ReplaceItems replaces the record's item set with exactly the given list.
func (repo *maintenanceRepository) ReplaceItems(ctx context.Context, recordID uuid.UUID, items []*entity.MaintenanceItem) error {
	if err := repo.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Delete(&model.MaintenanceItemModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to clear maintenance items")
	}

	if len(items) == 0 {
		return nil
	}

	return repo.insertItems(ctx, recordID, items)
}

func (repo *maintenanceRepository) insertItems(ctx context.Context, recordID uuid.UUID, items []*entity.MaintenanceItem) error {
	itemModels := make([]*model.MaintenanceItemModel, 0, len(items))
	for _, item := range items {
		itemM := fromMaintenanceItemDomain(item)
		itemM.RecordID = recordID
		itemModels = append(itemModels, itemM)
	}

	if err := repo.db.WithContext(ctx).Omit("Part").Create(&itemModels).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrInvalidParts
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required item information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to insert maintenance items")
	}

	for i, itemM := range itemModels {
		items[i].ID = itemM.ID
		items[i].RecordID = itemM.RecordID
	}

	return nil
}

// maintenanceUpdateColumns maps the non-nil patch fields to their columns.
// updated_at is always stamped, so even an empty patch touches the row.
func maintenanceUpdateColumns(patch repository.MaintenanceRecordUpdate) map[string]any {
	updates := map[string]any{"updated_at": time.Now()}
	if patch.HappenedAt != nil {
		updates["happened_at"] = *patch.HappenedAt
	}
	if patch.OdometerReading != nil {
		updates["odometer_reading"] = *patch.OdometerReading
	}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}

	return updates
}

// Update applies the non-nil patch fields and returns the refreshed record.
func (repo *maintenanceRepository) Update(ctx context.Context, id, ownerID uuid.UUID, patch repository.MaintenanceRecordUpdate) (*entity.MaintenanceRecord, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.MaintenanceRecordModel{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(maintenanceUpdateColumns(patch))
	if result.Error != nil {
		return nil, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update maintenance record")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrMaintenanceRecordNotFound
	}

	return repo.FindByID(ctx, id, ownerID)
}

// Delete removes the record and, via cascade, its items.
func (repo *maintenanceRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.MaintenanceRecordModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete maintenance record")
	}

	if result.RowsAffected == 0 {
		return repository.ErrMaintenanceRecordNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toMaintenanceRecordDomain converts a GORM model to a domain entity. Items
// are hydrated separately from the join.
func toMaintenanceRecordDomain(data *model.MaintenanceRecordModel) *entity.MaintenanceRecord {
	if data == nil {
		return nil
	}

	return &entity.MaintenanceRecord{
		ID:              data.ID,
		OwnerID:         data.OwnerID,
		VehicleID:       data.VehicleID,
		HappenedAt:      data.HappenedAt,
		OdometerReading: data.OdometerReading,
		Title:           data.Title,
		Notes:           data.Notes,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

// fromMaintenanceRecordDomain converts a domain entity to a GORM model.
func fromMaintenanceRecordDomain(data *entity.MaintenanceRecord) *model.MaintenanceRecordModel {
	if data == nil {
		return nil
	}

	return &model.MaintenanceRecordModel{
		ID:              data.ID,
		OwnerID:         data.OwnerID,
		VehicleID:       data.VehicleID,
		HappenedAt:      data.HappenedAt,
		OdometerReading: data.OdometerReading,
		Title:           data.Title,
		Notes:           data.Notes,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

// fromMaintenanceItemDomain converts a domain item to a GORM model.
func fromMaintenanceItemDomain(data *entity.MaintenanceItem) *model.MaintenanceItemModel {
	if data == nil {
		return nil
	}

	return &model.MaintenanceItemModel{
		ID:                 data.ID,
		RecordID:           data.RecordID,
		PartID:             data.PartID,
		Quantity:           data.Quantity,
		Unit:               data.Unit,
		PriceCentsOverride: data.PriceCentsOverride,
		Notes:              data.Notes,
	}
}
