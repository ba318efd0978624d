package usecase

import (
	"context"
	"time"

	"garage/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// MaintenanceItemInput is one line of a record: a part and how much of it was
// used. The part id must resolve to a part of the same owner.
type MaintenanceItemInput struct {
	PartID             uuid.UUID
	Quantity           float64
	Unit               *string
	PriceCentsOverride *int64
	Notes              *string
}

// CreateMaintenanceRecordInput defines the data required to create a record
// together with its items.
type CreateMaintenanceRecordInput struct {
	VehicleID       uuid.UUID
	HappenedAt      time.Time
	Title           string
	OdometerReading *float64
	Notes           *string
	Items           []MaintenanceItemInput
}

// UpdateMaintenanceRecordInput is a partial update of the record's scalar
// fields. Items is a pointer to a slice so "not provided" and "replace with
// this exact list, possibly empty" stay distinguishable.
type UpdateMaintenanceRecordInput struct {
	HappenedAt      *time.Time
	Title           *string
	OdometerReading *float64
	Notes           *string
	Items           *[]MaintenanceItemInput
}

// ListMaintenanceRecordsInput narrows and pages the record list.
type ListMaintenanceRecordsInput struct {
	VehicleID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Page      PageRequest
}

// --- Output DTOs ---

// MaintenanceListOutput is one page of records, items hydrated, plus page
// metadata.
type MaintenanceListOutput struct {
	Records  []*entity.MaintenanceRecord
	PageInfo PageInfo
}

// MaintenanceUsecase defines the owner-scoped maintenance record operations.
// Reads hydrate the full graph: record → items → part → tags.
type MaintenanceUsecase interface {
	CreateRecord(ctx context.Context, ownerID uuid.UUID, input CreateMaintenanceRecordInput) (*entity.MaintenanceRecord, error)
	GetRecord(ctx context.Context, ownerID, recordID uuid.UUID) (*entity.MaintenanceRecord, error)
	ListRecords(ctx context.Context, ownerID uuid.UUID, input ListMaintenanceRecordsInput) (*MaintenanceListOutput, error)
	UpdateRecord(ctx context.Context, ownerID, recordID uuid.UUID, input UpdateMaintenanceRecordInput) (*entity.MaintenanceRecord, error)
	DeleteRecord(ctx context.Context, ownerID, recordID uuid.UUID) error
}
