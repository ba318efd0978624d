package repository

import (
	"context"
	"errors"
	"time"

	"garage/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrMaintenanceRecordNotFound is returned when a maintenance record does not
// exist for the owner.
var ErrMaintenanceRecordNotFound = errors.New("maintenance record not found")

// MaintenanceFilter narrows ListByOwner/CountByOwner results.
type MaintenanceFilter struct {
	// VehicleID keeps only records of one vehicle.
	VehicleID *uuid.UUID
	// From/To bound HappenedAt inclusively on either side.
	From *time.Time
	To   *time.Time
}

// MaintenanceRecordUpdate is a partial update of the record's scalar fields:
// nil fields are left untouched. The item set is replaced through
// ReplaceItems, not here.
type MaintenanceRecordUpdate struct {
	HappenedAt      *time.Time
	OdometerReading *float64
	Title           *string
	Notes           *string
}

// MaintenanceRepository is the ownership-scoped persistence contract for
// maintenance records and their items. Items have no lifecycle of their own:
// they are created with, replaced under, and cascade-deleted with the record.
type MaintenanceRepository interface {
	// FindByID returns the record with items hydrated (each item carrying its
	// part and the part's tags) when both id and owner match.
	FindByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.MaintenanceRecord, error)

	// ListByOwner returns up to limit records matching the filter, ordered by
	// HappenedAt descending, items hydrated.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter MaintenanceFilter, limit, offset int) ([]*entity.MaintenanceRecord, error)

	// CountByOwner returns the total number of records matching the filter.
	CountByOwner(ctx context.Context, ownerID uuid.UUID, filter MaintenanceFilter) (int64, error)

	// Create persists a new record together with its items.
	Create(ctx context.Context, record *entity.MaintenanceRecord) error

	// ReplaceItems replaces the record's item set with exactly the given list.
	ReplaceItems(ctx context.Context, recordID uuid.UUID, items []*entity.MaintenanceItem) error

	// Update applies the non-nil patch fields and returns the refreshed
	// record, items hydrated.
	Update(ctx context.Context, id, ownerID uuid.UUID, patch MaintenanceRecordUpdate) (*entity.MaintenanceRecord, error)

	// Delete removes the record and, via cascade, its items.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}
