package model

import (
	"time"

	"github.com/google/uuid"
)

// PartModel mirrors the 'parts' table. Price is stored in cents to avoid
// floating-point money.
type PartModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Description *string   `gorm:"type:text"`
	PriceCents  *int64    `gorm:"type:bigint"`
	Currency    *string   `gorm:"type:varchar(8)"`
	URL         *string   `gorm:"column:url;type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Tags []*TagModel `gorm:"many2many:part_tags;joinForeignKey:PartID;joinReferences:TagID"`
}

// TableName explicitly sets the table name for GORM.
func (PartModel) TableName() string {
	return "parts"
}
