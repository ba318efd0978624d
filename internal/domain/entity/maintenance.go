package entity

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceRecord documents one maintenance event on a vehicle (an oil
// change, an inspection). Its items are owned exclusively by the record and
// are deleted with it.
type MaintenanceRecord struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID // The user this record belongs to.
	VehicleID       uuid.UUID // The vehicle the work was done on.
	HappenedAt      time.Time // The date the work happened, not when it was entered.
	OdometerReading *float64  // Vehicle odometer at the time, when noted.
	Title           string
	Notes           *string
	Items           []*MaintenanceItem // Hydrated item list.
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MaintenanceItem is one line of a maintenance record: a part and how much of
// it was used. Items inherit ownership transitively through their record.
type MaintenanceItem struct {
	ID                 uuid.UUID
	RecordID           uuid.UUID
	PartID             uuid.UUID
	Part               *Part    // Resolved part, hydrated with its tags on reads.
	Quantity           float64  // Strictly positive.
	Unit               *string  // e.g. "l", "pcs"; free-form.
	PriceCentsOverride *int64   // Per-item price override; non-negative when present.
	Notes              *string
}
