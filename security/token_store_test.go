package security

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenRepository_GetMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewFileTokenRepository(filepath.Join(t.TempDir(), "refresh_tokens.json"))

	rec, err := repo.Get(ctx, "unknown-user")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFileTokenRepository_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "refresh_tokens.json")
	repo := NewFileTokenRepository(path)

	err := repo.Upsert(ctx, TokenRecord{UserID: "demo-user", RefreshToken: "refresh-1"})
	require.NoError(t, err)

	rec, err := repo.Get(ctx, "demo-user")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "refresh-1", rec.RefreshToken)

	// File on disk is a single JSON array.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []TokenRecord
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 1)
}

func TestFileTokenRepository_UpsertReplacesExisting(t *testing.T) {
	ctx := context.Background()
	repo := NewFileTokenRepository(filepath.Join(t.TempDir(), "refresh_tokens.json"))

	require.NoError(t, repo.Upsert(ctx, TokenRecord{UserID: "demo-user", RefreshToken: "refresh-1"}))
	require.NoError(t, repo.Upsert(ctx, TokenRecord{UserID: "demo-user", RefreshToken: "refresh-2"}))

	rec, err := repo.Get(ctx, "demo-user")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "refresh-2", rec.RefreshToken)

	records, err := repo.readAll()
	require.NoError(t, err)
	assert.Len(t, records, 1, "upsert must not grow the record set for a known principal")
}

func TestFileTokenRepository_MultiplePrincipals(t *testing.T) {
	ctx := context.Background()
	repo := NewFileTokenRepository(filepath.Join(t.TempDir(), "refresh_tokens.json"))

	require.NoError(t, repo.Upsert(ctx, TokenRecord{UserID: "alpha", RefreshToken: "ra"}))
	require.NoError(t, repo.Upsert(ctx, TokenRecord{UserID: "beta", RefreshToken: "rb"}))

	recA, err := repo.Get(ctx, "alpha")
	require.NoError(t, err)
	require.NotNil(t, recA)
	assert.Equal(t, "ra", recA.RefreshToken)

	recB, err := repo.Get(ctx, "beta")
	require.NoError(t, err)
	require.NotNil(t, recB)
	assert.Equal(t, "rb", recB.RefreshToken)
}

func TestFileTokenRepository_RejectsEmptyPrincipal(t *testing.T) {
	repo := NewFileTokenRepository(filepath.Join(t.TempDir(), "refresh_tokens.json"))
	err := repo.Upsert(context.Background(), TokenRecord{RefreshToken: "r"})
	assert.Error(t, err)
}

func newTestRedisRepo(t *testing.T) *RedisTokenRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisTokenRepository(client)
}

func TestRedisTokenRepository_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRedisRepo(t)

	require.NoError(t, repo.Upsert(ctx, TokenRecord{
		UserID:       "demo-user",
		RefreshToken: "refresh-1",
		AccessToken:  "access-1",
		ExpiryDate:   1736935200000,
	}))

	rec, err := repo.Get(ctx, "demo-user")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "refresh-1", rec.RefreshToken)
	assert.Equal(t, "access-1", rec.AccessToken)
	assert.Equal(t, int64(1736935200000), rec.ExpiryDate)
}

func TestRedisTokenRepository_GetMissing(t *testing.T) {
	repo := newTestRedisRepo(t)

	rec, err := repo.Get(context.Background(), "unknown-user")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRedisTokenRepository_UpsertReplacesExisting(t *testing.T) {
	ctx := context.Background()
	repo := newTestRedisRepo(t)

	require.NoError(t, repo.Upsert(ctx, TokenRecord{UserID: "demo-user", RefreshToken: "refresh-1"}))
	require.NoError(t, repo.Upsert(ctx, TokenRecord{UserID: "demo-user", RefreshToken: "refresh-2"}))

	rec, err := repo.Get(ctx, "demo-user")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "refresh-2", rec.RefreshToken)
}
