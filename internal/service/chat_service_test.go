package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"Campus_Portal/internal/model"
	"Campus_Portal/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestChatPost_UsesSessionCode(t *testing.T) {
	store := new(MockChatStore)
	bus := new(MockPublisher)
	store.On("Create", mock.MatchedBy(func(m *model.ChatMessage) bool {
		return m.SessionCode == student.SessionCode && m.ExpiresAt.Sub(m.CreatedAt) == time.Hour
	})).Return(nil)
	bus.On("Publish", mock.MatchedBy(func(m model.ChatMessage) bool { return m.Message == "hello" })).Return(nil)
	svc := service.NewChatService(store, bus, 100, time.Hour)

	msg, err := svc.Post(context.Background(), student, " hello ")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Message)
	bus.AssertExpectations(t)
}

func TestChatPost_PublishFailureKeepsMessage(t *testing.T) {
	store := new(MockChatStore)
	bus := new(MockPublisher)
	store.On("Create", mock.Anything).Return(nil)
	bus.On("Publish", mock.Anything).Return(errors.New("redis gone"))
	svc := service.NewChatService(store, bus, 100, time.Hour)

	_, err := svc.Post(context.Background(), student, "hi")
	assert.NoError(t, err)
}

func TestChatPost_Rejects(t *testing.T) {
	store := new(MockChatStore)
	svc := service.NewChatService(store, new(MockPublisher), 100, time.Hour)
	ctx := context.Background()

	_, err := svc.Post(ctx, faculty, "hi")
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = svc.Post(ctx, &model.Principal{UserID: "u", Role: model.RoleStudent, SessionCode: "s@campus.edu"}, "hi")
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = svc.Post(ctx, &model.Principal{UserID: "u", Role: model.RoleStudent}, "hi")
	assert.ErrorIs(t, err, service.ErrForbidden)

	var verr *service.ValidationError
	_, err = svc.Post(ctx, student, strings.Repeat("a", 501))
	assert.ErrorAs(t, err, &verr)
	_, err = svc.Post(ctx, student, "   ")
	assert.ErrorAs(t, err, &verr)
	store.AssertNotCalled(t, "Create", mock.Anything)
}

func TestChatHistoryAndSweep(t *testing.T) {
	store := new(MockChatStore)
	store.On("Recent", 20, mock.AnythingOfType("time.Time")).Return([]model.ChatMessage{{ID: "m1"}}, nil)
	store.On("DeleteExpired", mock.AnythingOfType("time.Time")).Return(int64(3), nil)
	svc := service.NewChatService(store, new(MockPublisher), 20, time.Hour)

	msgs, err := svc.History(context.Background())
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	n, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
