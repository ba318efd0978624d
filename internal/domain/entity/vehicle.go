package entity

import (
	"time"

	"github.com/google/uuid"
)

// OdometerUnit is the unit a vehicle's usage is measured in. Road vehicles
// track kilometres; stationary engines and boats track operating hours.
type OdometerUnit string

const (
	OdometerUnitKilometers OdometerUnit = "KM"
	OdometerUnitHours      OdometerUnit = "HOURS"
)

// Valid reports whether the unit is one of the supported values.
func (u OdometerUnit) Valid() bool {
	return u == OdometerUnitKilometers || u == OdometerUnitHours
}

// MinBuildYear is the oldest accepted build year; anything earlier is treated
// as a data-entry mistake.
const MinBuildYear = 1950

// Vehicle is a user-owned vehicle that maintenance records are filed against.
// Optional fields are pointers; nil means "never provided".
type Vehicle struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID // The user this vehicle belongs to; mandatory filter on every access.
	LicensePlate    *string
	VIN             *string
	Manufacturer    string
	Model           string
	BuildYear       *int // Within [MinBuildYear, currentYear+1] when present.
	FuelType        *string
	OdometerUnit    OdometerUnit
	OdometerReading *float64 // Non-negative when present.
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
