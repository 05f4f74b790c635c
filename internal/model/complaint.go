package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Complaint struct {
	ID          string    `gorm:"primaryKey;size:36"`
	AuthorID    string    `gorm:"size:36;not null;index:idx_complaint_author_created,priority:1"`
	Content     string    `gorm:"type:text;not null"`
	IsAnonymous bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"index:idx_complaint_author_created,priority:2"`

	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Complaint) TableName() string { return "complaint_box" }

func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Upvote (complaint_id, user_id) 唯一，并发重复点赞由唯一索引兜底
type Upvote struct {
	ID          string `gorm:"primaryKey;size:36"`
	ComplaintID string `gorm:"size:36;not null;uniqueIndex:uniq_upvote_pair,priority:1"`
	UserID      string `gorm:"size:36;not null;uniqueIndex:uniq_upvote_pair,priority:2;index"`
	CreatedAt   time.Time

	Complaint Complaint `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE" json:"-"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Upvote) TableName() string { return "complaint_upvotes" }

func (u *Upvote) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
