package service

import (
	"context"
	"time"

	"Campus_Portal/internal/model"
	"Campus_Portal/internal/repository/sqlstore"
)

// 以下接口由 repository/sqlstore 与 repository/redis 实现，测试中用 mock 替换

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
	UpdateRole(ctx context.Context, email, role string) error
	SessionCode(ctx context.Context, userID string) (string, error)
	CreateStudentProfile(ctx context.Context, userID, sessionCode string) error
}

type SessionStore interface {
	AddUserToken(ctx context.Context, userID, token string) error
	GetUserToken(ctx context.Context, userID string) (string, error)
	ExtendUserToken(ctx context.Context, userID string) error
	DeleteUserToken(ctx context.Context, userID string) error
}

type CodeStore interface {
	SetPending(ctx context.Context, scope, email, code string) error
	Confirm(ctx context.Context, scope, email string) error
	DeletePending(ctx context.Context, scope, email string) error
	GetConfirmed(ctx context.Context, scope, email string) (string, error)
	DeleteConfirmed(ctx context.Context, scope, email string) error
}

type ComplaintStore interface {
	Create(ctx context.Context, c *model.Complaint) error
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]sqlstore.ComplaintRow, error)
	UpvotedBy(ctx context.Context, userID string, complaintIDs []string) (map[string]bool, error)
}

type UpvoteStore interface {
	Exists(ctx context.Context, complaintID, userID string) (bool, error)
	Add(ctx context.Context, complaintID, userID string) error
	Remove(ctx context.Context, complaintID, userID string) (bool, error)
}

type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) error
	List(ctx context.Context, limit, offset int) ([]model.Listing, error)
	MarkSold(ctx context.Context, id, ownerID string) (bool, error)
}

type LostFoundStore interface {
	Create(ctx context.Context, r *model.LostFoundReport) error
	List(ctx context.Context, limit, offset int) ([]model.LostFoundReport, error)
	Resolve(ctx context.Context, id, reporterID string) error
}

type AnnouncementStore interface {
	Create(ctx context.Context, a *model.Announcement) error
	List(ctx context.Context, limit, offset int) ([]sqlstore.AnnouncementRow, error)
}

type FacultyStore interface {
	Create(ctx context.Context, p *model.FacultyProfile) error
	FindByUserID(ctx context.Context, userID string) (*model.FacultyProfile, error)
	List(ctx context.Context, department, q string) ([]model.FacultyProfile, error)
}

type ChatStore interface {
	Create(ctx context.Context, m *model.ChatMessage) error
	Recent(ctx context.Context, limit int, now time.Time) ([]model.ChatMessage, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ChatPublisher interface {
	Publish(ctx context.Context, msg model.ChatMessage) error
}

type OutboxStore interface {
	ListPending(ctx context.Context, batchSize, maxRetry int) ([]model.OutboxEvent, error)
	MarkSent(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64) error
}

type Locker interface {
	Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, token string) error
}

// Page 分页参数，widget 模式由 handler 换算成 Limit=3
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
	WidgetSize      = 3
)

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
