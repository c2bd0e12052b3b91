package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVRepository_PutAndGet(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	repo := NewKVRepository(rdb, "links")
	ctx := context.Background()

	mock.ExpectSet("links:k3Xp9", "https://example.com/page", 0).SetVal("OK")
	mock.ExpectGet("links:k3Xp9").SetVal("https://example.com/page")

	require.NoError(t, repo.Put(ctx, "k3Xp9", "https://example.com/page"))
	val, found, err := repo.Get(ctx, "k3Xp9")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://example.com/page", val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepository_GetMissing(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	repo := NewKVRepository(rdb, "links")

	mock.ExpectGet("links:nope1").RedisNil()

	val, found, err := repo.Get(context.Background(), "nope1")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepository_GetError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	repo := NewKVRepository(rdb, "links")

	mock.ExpectGet("links:abcde").SetErr(errors.New("connection refused"))

	_, found, err := repo.Get(context.Background(), "abcde")

	assert.Error(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepository_PutIfAbsent(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	repo := NewKVRepository(rdb, "links")
	ctx := context.Background()

	mock.ExpectSetNX("links:abcde", "https://a.example", 0).SetVal(true)
	mock.ExpectSetNX("links:abcde", "https://b.example", 0).SetVal(false)

	wrote, err := repo.PutIfAbsent(ctx, "abcde", "https://a.example")
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = repo.PutIfAbsent(ctx, "abcde", "https://b.example")
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepository_Delete(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	repo := NewKVRepository(rdb, "links")

	mock.ExpectDel("links:abcde").SetVal(1)

	assert.NoError(t, repo.Delete(context.Background(), "abcde"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
