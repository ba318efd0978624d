package model

import (
	"time"

	"github.com/google/uuid"
)

// TagModel mirrors the 'tags' table. Name and slug are unique per owner, not
// globally.
type TagModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tags_owner_name;uniqueIndex:idx_tags_owner_slug"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_tags_owner_name"`
	Slug      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_tags_owner_slug"`
	Color     *string   `gorm:"type:varchar(32)"`
	CreatedAt time.Time

	Parts []*PartModel `gorm:"many2many:part_tags;joinForeignKey:TagID;joinReferences:PartID"`
}

// TableName explicitly sets the table name for GORM.
func (TagModel) TableName() string {
	return "tags"
}

// PartTagModel mirrors the 'part_tags' join table. Rows cascade away with
// either side.
type PartTagModel struct {
	PartID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID  uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName explicitly sets the table name for GORM.
func (PartTagModel) TableName() string {
	return "part_tags"
}
