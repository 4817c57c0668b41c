package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_MissOnNil(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db)

	mock.ExpectGet("market-depth:test").RedisNil()

	_, ok, err := c.Get(context.Background(), "market-depth:test")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_SetThenGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db)
	ctx := context.Background()

	payload := []byte(`{"spread":0.1}`)
	mock.ExpectSet("market-depth:test", payload, 120*time.Second).SetVal("OK")
	mock.ExpectGet("market-depth:test").SetVal(string(payload))

	require.NoError(t, c.Set(ctx, "market-depth:test", payload, 120*time.Second))

	got, ok, err := c.Get(ctx, "market-depth:test")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_BackendErrorSurfaces(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db)

	mock.ExpectGet("k").SetErr(assert.AnError)

	_, _, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis get")
}
