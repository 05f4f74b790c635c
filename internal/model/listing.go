package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Listing struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID      string    `gorm:"size:36;not null;index:idx_listing_owner_created,priority:1" json:"owner_id,omitempty"`
	OwnerEmail   string    `gorm:"size:128;not null" json:"owner_email,omitempty"`
	OwnerName    string    `gorm:"size:128;not null" json:"owner_name"`
	ProductTitle string    `gorm:"size:200;not null" json:"product_title"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	Price        float64   `gorm:"not null" json:"price"`
	ContactInfo  string    `gorm:"size:64;not null" json:"contact_info,omitempty"`
	IsSold       bool      `gorm:"not null;default:false" json:"is_sold"`
	CreatedAt    time.Time `gorm:"index:idx_listing_owner_created,priority:2" json:"created_at"`

	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Listing) TableName() string { return "marketplace" }

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
