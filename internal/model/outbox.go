package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

const (
	EventComplaintCreated    = "complaint.created"
	EventListingCreated      = "listing.created"
	EventListingSold         = "listing.sold"
	EventLostFoundCreated    = "lost_found.created"
	EventLostFoundResolved   = "lost_found.resolved"
	EventAnnouncementCreated = "announcement.created"
)

// OutboxEvent 领域事件表，与业务写入同一事务，由 worker 投递到 kafka
type OutboxEvent struct {
	ID          uint64         `gorm:"primaryKey"`
	EventType   string         `gorm:"size:32;not null"`
	AggregateID string         `gorm:"size:36;not null"`
	Payload     datatypes.JSON `gorm:"not null"`
	Status      int8           `gorm:"not null;default:0;index"`
	Retry       int            `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (OutboxEvent) TableName() string { return "outbox_events" }
