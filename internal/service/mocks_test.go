package service_test

import (
	"context"
	"time"

	"Campus_Portal/internal/model"
	"Campus_Portal/internal/repository/sqlstore"

	"github.com/stretchr/testify/mock"
)

type MockUserStore struct{ mock.Mock }

func (m *MockUserStore) Create(ctx context.Context, user *model.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserStore) UpdatePassword(ctx context.Context, userID, hash string) error {
	return m.Called(userID, hash).Error(0)
}

func (m *MockUserStore) UpdateRole(ctx context.Context, email, role string) error {
	return m.Called(email, role).Error(0)
}

func (m *MockUserStore) SessionCode(ctx context.Context, userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockUserStore) CreateStudentProfile(ctx context.Context, userID, sessionCode string) error {
	return m.Called(userID, sessionCode).Error(0)
}

type MockSessionStore struct{ mock.Mock }

func (m *MockSessionStore) AddUserToken(ctx context.Context, userID, token string) error {
	return m.Called(userID, token).Error(0)
}

func (m *MockSessionStore) GetUserToken(ctx context.Context, userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) ExtendUserToken(ctx context.Context, userID string) error {
	return m.Called(userID).Error(0)
}

func (m *MockSessionStore) DeleteUserToken(ctx context.Context, userID string) error {
	return m.Called(userID).Error(0)
}

type MockCodeStore struct{ mock.Mock }

func (m *MockCodeStore) SetPending(ctx context.Context, scope, email, code string) error {
	return m.Called(scope, email, code).Error(0)
}

func (m *MockCodeStore) Confirm(ctx context.Context, scope, email string) error {
	return m.Called(scope, email).Error(0)
}

func (m *MockCodeStore) DeletePending(ctx context.Context, scope, email string) error {
	return m.Called(scope, email).Error(0)
}

func (m *MockCodeStore) GetConfirmed(ctx context.Context, scope, email string) (string, error) {
	args := m.Called(scope, email)
	return args.String(0), args.Error(1)
}

func (m *MockCodeStore) DeleteConfirmed(ctx context.Context, scope, email string) error {
	return m.Called(scope, email).Error(0)
}

type MockCodeVerifier struct{ mock.Mock }

func (m *MockCodeVerifier) VerifyCode(ctx context.Context, scope, email, code string) error {
	return m.Called(scope, email, code).Error(0)
}

type MockComplaintStore struct{ mock.Mock }

func (m *MockComplaintStore) Create(ctx context.Context, c *model.Complaint) error {
	return m.Called(c).Error(0)
}

func (m *MockComplaintStore) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockComplaintStore) List(ctx context.Context, limit, offset int) ([]sqlstore.ComplaintRow, error) {
	args := m.Called(limit, offset)
	rows, _ := args.Get(0).([]sqlstore.ComplaintRow)
	return rows, args.Error(1)
}

func (m *MockComplaintStore) UpvotedBy(ctx context.Context, userID string, ids []string) (map[string]bool, error) {
	args := m.Called(userID, ids)
	out, _ := args.Get(0).(map[string]bool)
	return out, args.Error(1)
}

// MemoryUpvoteStore 带状态的内存实现，用来验证切换两次后计数回到原值
type MemoryUpvoteStore struct {
	votes  map[string]bool
	addErr error
}

func NewMemoryUpvoteStore() *MemoryUpvoteStore {
	return &MemoryUpvoteStore{votes: map[string]bool{}}
}

func (s *MemoryUpvoteStore) key(c, u string) string { return c + "|" + u }

func (s *MemoryUpvoteStore) Exists(ctx context.Context, complaintID, userID string) (bool, error) {
	return s.votes[s.key(complaintID, userID)], nil
}

func (s *MemoryUpvoteStore) Add(ctx context.Context, complaintID, userID string) error {
	if s.addErr != nil {
		return s.addErr
	}
	k := s.key(complaintID, userID)
	if s.votes[k] {
		return sqlstore.ErrDuplicate
	}
	s.votes[k] = true
	return nil
}

func (s *MemoryUpvoteStore) Remove(ctx context.Context, complaintID, userID string) (bool, error) {
	k := s.key(complaintID, userID)
	had := s.votes[k]
	delete(s.votes, k)
	return had, nil
}

func (s *MemoryUpvoteStore) Count(complaintID string) int {
	n := 0
	for k := range s.votes {
		if len(k) > len(complaintID) && k[:len(complaintID)+1] == complaintID+"|" {
			n++
		}
	}
	return n
}

type MockListingStore struct{ mock.Mock }

func (m *MockListingStore) Create(ctx context.Context, l *model.Listing) error {
	return m.Called(l).Error(0)
}

func (m *MockListingStore) List(ctx context.Context, limit, offset int) ([]model.Listing, error) {
	args := m.Called(limit, offset)
	out, _ := args.Get(0).([]model.Listing)
	return out, args.Error(1)
}

func (m *MockListingStore) MarkSold(ctx context.Context, id, ownerID string) (bool, error) {
	args := m.Called(id, ownerID)
	return args.Bool(0), args.Error(1)
}

type MockLostFoundStore struct{ mock.Mock }

func (m *MockLostFoundStore) Create(ctx context.Context, r *model.LostFoundReport) error {
	return m.Called(r).Error(0)
}

func (m *MockLostFoundStore) List(ctx context.Context, limit, offset int) ([]model.LostFoundReport, error) {
	args := m.Called(limit, offset)
	out, _ := args.Get(0).([]model.LostFoundReport)
	return out, args.Error(1)
}

func (m *MockLostFoundStore) Resolve(ctx context.Context, id, reporterID string) error {
	return m.Called(id, reporterID).Error(0)
}

type MockAnnouncementStore struct{ mock.Mock }

func (m *MockAnnouncementStore) Create(ctx context.Context, a *model.Announcement) error {
	return m.Called(a).Error(0)
}

func (m *MockAnnouncementStore) List(ctx context.Context, limit, offset int) ([]sqlstore.AnnouncementRow, error) {
	args := m.Called(limit, offset)
	out, _ := args.Get(0).([]sqlstore.AnnouncementRow)
	return out, args.Error(1)
}

type MockFacultyStore struct{ mock.Mock }

func (m *MockFacultyStore) Create(ctx context.Context, p *model.FacultyProfile) error {
	return m.Called(p).Error(0)
}

func (m *MockFacultyStore) FindByUserID(ctx context.Context, userID string) (*model.FacultyProfile, error) {
	args := m.Called(userID)
	p, _ := args.Get(0).(*model.FacultyProfile)
	return p, args.Error(1)
}

func (m *MockFacultyStore) List(ctx context.Context, department, q string) ([]model.FacultyProfile, error) {
	args := m.Called(department, q)
	out, _ := args.Get(0).([]model.FacultyProfile)
	return out, args.Error(1)
}

type MockChatStore struct{ mock.Mock }

func (m *MockChatStore) Create(ctx context.Context, msg *model.ChatMessage) error {
	return m.Called(msg).Error(0)
}

func (m *MockChatStore) Recent(ctx context.Context, limit int, now time.Time) ([]model.ChatMessage, error) {
	args := m.Called(limit, now)
	out, _ := args.Get(0).([]model.ChatMessage)
	return out, args.Error(1)
}

func (m *MockChatStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, msg model.ChatMessage) error {
	return m.Called(msg).Error(0)
}

type MockOutboxStore struct{ mock.Mock }

func (m *MockOutboxStore) ListPending(ctx context.Context, batchSize, maxRetry int) ([]model.OutboxEvent, error) {
	args := m.Called(batchSize, maxRetry)
	out, _ := args.Get(0).([]model.OutboxEvent)
	return out, args.Error(1)
}

func (m *MockOutboxStore) MarkSent(ctx context.Context, id uint64) error {
	return m.Called(id).Error(0)
}

func (m *MockOutboxStore) MarkFailed(ctx context.Context, id uint64) error {
	return m.Called(id).Error(0)
}

type MockLocker struct{ mock.Mock }

func (m *MockLocker) Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	args := m.Called(name, token, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocker) Release(ctx context.Context, name, token string) error {
	return m.Called(name, token).Error(0)
}
