package usecase

import (
	"context"

	"garage/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CreateVehicleInput defines the data required to create a vehicle. Optional
// fields are pointers; nil means "not provided".
type CreateVehicleInput struct {
	Manufacturer    string
	Model           string
	OdometerUnit    entity.OdometerUnit
	LicensePlate    *string
	VIN             *string
	BuildYear       *int
	FuelType        *string
	OdometerReading *float64
}

// UpdateVehicleInput is a partial update: nil fields are left untouched.
type UpdateVehicleInput struct {
	Manufacturer    *string
	Model           *string
	OdometerUnit    *entity.OdometerUnit
	LicensePlate    *string
	VIN             *string
	BuildYear       *int
	FuelType        *string
	OdometerReading *float64
}

// --- Output DTOs ---

// VehicleListOutput is one page of vehicles plus its page metadata.
type VehicleListOutput struct {
	Vehicles []*entity.Vehicle
	PageInfo PageInfo
}

// VehicleUsecase defines the owner-scoped vehicle operations. Every call
// carries the acting user's id; a vehicle of another owner is
// indistinguishable from a missing one.
type VehicleUsecase interface {
	CreateVehicle(ctx context.Context, ownerID uuid.UUID, input CreateVehicleInput) (*entity.Vehicle, error)
	GetVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) (*entity.Vehicle, error)
	ListVehicles(ctx context.Context, ownerID uuid.UUID, page PageRequest) (*VehicleListOutput, error)
	UpdateVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID, input UpdateVehicleInput) (*entity.Vehicle, error)
	DeleteVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) error
}
