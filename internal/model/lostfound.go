package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LostFoundReport struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ReporterID    string    `gorm:"size:36;not null;index:idx_lost_found_reporter_created,priority:1" json:"reporter_id"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	LocationFound string    `gorm:"size:200;not null" json:"location_found"`
	ContactInfo   string    `gorm:"size:10;not null" json:"contact_info"`
	ImageURL      string    `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt     time.Time `gorm:"index:idx_lost_found_reporter_created,priority:2" json:"created_at"`

	Reporter User `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"-"`
}

func (LostFoundReport) TableName() string { return "lost_found" }

func (r *LostFoundReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
