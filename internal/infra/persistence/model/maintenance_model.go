package model

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceRecordModel mirrors the 'maintenance_records' table.
type MaintenanceRecordModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OwnerID         uuid.UUID `gorm:"type:uuid;not null;index"`
	VehicleID       uuid.UUID `gorm:"type:uuid;not null;index"`
	HappenedAt      time.Time `gorm:"not null;index"`
	OdometerReading *float64  `gorm:"type:numeric"`
	Title           string    `gorm:"type:varchar(200);not null"`
	Notes           *string   `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []MaintenanceItemModel `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (MaintenanceRecordModel) TableName() string {
	return "maintenance_records"
}

// MaintenanceItemModel mirrors the 'maintenance_items' table. The part
// reference is RESTRICT on delete so a part used by history cannot vanish.
type MaintenanceItemModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	RecordID           uuid.UUID `gorm:"type:uuid;not null;index"`
	PartID             uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity           float64   `gorm:"type:numeric;not null"`
	Unit               *string   `gorm:"type:varchar(32)"`
	PriceCentsOverride *int64    `gorm:"type:bigint"`
	Notes              *string   `gorm:"type:text"`

	Part *PartModel `gorm:"foreignKey:PartID;constraint:OnDelete:RESTRICT"`
}

// TableName explicitly sets the table name for GORM.
func (MaintenanceItemModel) TableName() string {
	return "maintenance_items"
}
