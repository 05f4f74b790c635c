package service_test

import (
	"context"
	"errors"
	"testing"

	"Campus_Portal/internal/model"
	"Campus_Portal/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOutboxRelayer_DrainOnce(t *testing.T) {
	repo := new(MockOutboxStore)
	repo.On("ListPending", 10, mock.Anything).Return([]model.OutboxEvent{
		{ID: 1, EventType: model.EventComplaintCreated, AggregateID: "c1"},
		{ID: 2, EventType: model.EventListingSold, AggregateID: "l1"},
	}, nil)
	repo.On("MarkSent", uint64(1)).Return(nil)
	repo.On("MarkFailed", uint64(2)).Return(nil)

	var seen []string
	sender := func(ctx context.Context, ev *model.OutboxEvent) error {
		seen = append(seen, ev.AggregateID)
		if ev.ID == 2 {
			return errors.New("broker unavailable")
		}
		return nil
	}
	r := service.NewOutboxRelayer(repo, sender, 10, 0)

	assert.Equal(t, 1, r.DrainOnce(context.Background()))
	assert.Equal(t, []string{"c1", "l1"}, seen)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "MarkSent", uint64(2))
}

func TestOutboxRelayer_QueryError(t *testing.T) {
	repo := new(MockOutboxStore)
	repo.On("ListPending", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	r := service.NewOutboxRelayer(repo, func(context.Context, *model.OutboxEvent) error {
		t.Fatal("sender must not run")
		return nil
	}, 10, 0)

	assert.Zero(t, r.DrainOnce(context.Background()))
}
