package repository

import (
	"context"
	"errors"

	"garage/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrVehicleNotFound is returned when a vehicle does not exist or belongs to a
// different owner; the two cases are deliberately indistinguishable.
var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleUpdate is a partial update: nil fields are left untouched.
type VehicleUpdate struct {
	LicensePlate    *string
	VIN             *string
	Manufacturer    *string
	Model           *string
	BuildYear       *int
	FuelType        *string
	OdometerUnit    *entity.OdometerUnit
	OdometerReading *float64
}

// VehicleRepository is the ownership-scoped persistence contract for vehicles.
// Every operation carries the owner id as a mandatory filter; an id alone is
// never enough to reach a row.
type VehicleRepository interface {
	// FindByID returns the vehicle only when both id and owner match.
	FindByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.Vehicle, error)

	// ListByOwner returns up to limit vehicles of the owner, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Vehicle, error)

	// CountByOwner returns the total number of vehicles of the owner.
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// Create persists a new vehicle stamped with its owner id.
	Create(ctx context.Context, vehicle *entity.Vehicle) error

	// Update applies the non-nil patch fields, stamps UpdatedAt and returns the
	// refreshed vehicle. ErrVehicleNotFound when no row matched (id, owner).
	Update(ctx context.Context, id, ownerID uuid.UUID, patch VehicleUpdate) (*entity.Vehicle, error)

	// Delete removes the vehicle when owned by ownerID.
	// ErrVehicleNotFound when no row was removed.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}
