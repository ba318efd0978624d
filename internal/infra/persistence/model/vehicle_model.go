package model

import (
	"time"

	"github.com/google/uuid"
)

// VehicleModel mirrors the 'vehicles' table. Optional columns are pointers so
// NULL survives the round trip.
type VehicleModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OwnerID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Manufacturer    string    `gorm:"type:varchar(100);not null"`
	ModelName       string    `gorm:"column:model;type:varchar(100);not null"`
	LicensePlate    *string   `gorm:"type:varchar(32)"`
	VIN             *string   `gorm:"column:vin;type:varchar(64)"`
	BuildYear       *int      `gorm:"type:int"`
	FuelType        *string   `gorm:"type:varchar(50)"`
	OdometerUnit    string    `gorm:"type:varchar(10);not null"`
	OdometerReading *float64  `gorm:"type:numeric"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	MaintenanceRecords []MaintenanceRecordModel `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (VehicleModel) TableName() string {
	return "vehicles"
}
