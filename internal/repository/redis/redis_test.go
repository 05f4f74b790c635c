package redis_test

import (
	"context"
	"testing"
	"time"

	"Campus_Portal/internal/model"
	rrepo "Campus_Portal/internal/repository/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionRepository(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	repo := &rrepo.SessionRepository{RDB: client, TTL: time.Minute}

	_, err := repo.GetUserToken(ctx, "u1")
	assert.ErrorIs(t, err, rrepo.ErrTokenNotFound)

	require.NoError(t, repo.AddUserToken(ctx, "u1", "tok"))
	tok, err := repo.GetUserToken(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	mr.FastForward(50 * time.Second)
	require.NoError(t, repo.ExtendUserToken(ctx, "u1"))
	mr.FastForward(50 * time.Second)
	_, err = repo.GetUserToken(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteUserToken(ctx, "u1"))
	_, err = repo.GetUserToken(ctx, "u1")
	assert.ErrorIs(t, err, rrepo.ErrTokenNotFound)
}

func TestEmailRepository_PendingToConfirmed(t *testing.T) {
	_, client := newRedis(t)
	ctx := context.Background()
	repo := &rrepo.EmailRepository{RDB: client}

	// 没有 pending 时无法确认
	assert.ErrorIs(t, repo.Confirm(ctx, rrepo.ScopeRegister, "a@campus.edu"), rrepo.ErrCodeConfirmedFailed)

	require.NoError(t, repo.SetPending(ctx, rrepo.ScopeRegister, "a@campus.edu", "123456"))
	_, err := repo.GetConfirmed(ctx, rrepo.ScopeRegister, "a@campus.edu")
	assert.ErrorIs(t, err, rrepo.ErrEmailNotFound)

	require.NoError(t, repo.Confirm(ctx, rrepo.ScopeRegister, "a@campus.edu"))
	code, err := repo.GetConfirmed(ctx, rrepo.ScopeRegister, "a@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	// scope 之间互不影响
	_, err = repo.GetConfirmed(ctx, rrepo.ScopeReset, "a@campus.edu")
	assert.ErrorIs(t, err, rrepo.ErrEmailNotFound)

	require.NoError(t, repo.DeleteConfirmed(ctx, rrepo.ScopeRegister, "a@campus.edu"))
	_, err = repo.GetConfirmed(ctx, rrepo.ScopeRegister, "a@campus.edu")
	assert.ErrorIs(t, err, rrepo.ErrEmailNotFound)
}

func TestDistLock(t *testing.T) {
	_, client := newRedis(t)
	ctx := context.Background()
	lock := &rrepo.DistLock{RDB: client}

	got, err := lock.Acquire(ctx, "sweep", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = lock.Acquire(ctx, "sweep", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, got)

	// 非持有者释放无效
	require.NoError(t, lock.Release(ctx, "sweep", "b"))
	got, _ = lock.Acquire(ctx, "sweep", "b", time.Minute)
	assert.False(t, got)

	require.NoError(t, lock.Release(ctx, "sweep", "a"))
	got, err = lock.Acquire(ctx, "sweep", "b", time.Minute)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestChatBus_PublishSubscribe(t *testing.T) {
	_, client := newRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := &rrepo.ChatBus{RDB: client, Channel: "chat:messages"}

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, model.ChatMessage{ID: "m1", SessionCode: "@ABCDE_#", Message: "hi"}))

	select {
	case msg := <-ch:
		assert.Equal(t, "m1", msg.ID)
		assert.Equal(t, "hi", msg.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
