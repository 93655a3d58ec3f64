package security

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// TokenRecord is one principal's calendar authorization. At most one record
// exists per principal id.
type TokenRecord struct {
	UserID       string `json:"userId"`
	RefreshToken string `json:"refreshToken"`
	AccessToken  string `json:"accessToken,omitempty"`
	ExpiryDate   int64  `json:"expiryDate,omitempty"` // unix milliseconds
}

// TokenRepository stores one TokenRecord per principal. Get returns
// (nil, nil) when no record is on file so callers can distinguish
// "not authenticated" from storage failures.
type TokenRepository interface {
	Get(ctx context.Context, principalID string) (*TokenRecord, error)
	Upsert(ctx context.Context, rec TokenRecord) error
}

// FileTokenRepository persists the token set as a single JSON array on disk.
//
// Every Upsert is a full read-modify-write of the file: two concurrent
// upserts for different principals can lose one of the updates. Tokens are
// only written from the OAuth callback, so the window is accepted rather
// than locked against.
type FileTokenRepository struct {
	path string
}

// NewFileTokenRepository creates a repository backed by the JSON file at path.
// A missing file reads as an empty token set.
func NewFileTokenRepository(path string) *FileTokenRepository {
	return &FileTokenRepository{path: path}
}

func (r *FileTokenRepository) Get(ctx context.Context, principalID string) (*TokenRecord, error) {
	records, err := r.readAll()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].UserID == principalID {
			return &records[i], nil
		}
	}
	return nil, nil
}

func (r *FileTokenRepository) Upsert(ctx context.Context, rec TokenRecord) error {
	if rec.UserID == "" {
		return fmt.Errorf("token record missing userId")
	}

	records, err := r.readAll()
	if err != nil {
		return err
	}

	replaced := false
	for i := range records {
		if records[i].UserID == rec.UserID {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}

	return r.writeAll(records)
}

func (r *FileTokenRepository) readAll() ([]TokenRecord, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var records []TokenRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", r.path, err)
	}
	return records, nil
}

func (r *FileTokenRepository) writeAll(records []TokenRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token records: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// RedisTokenRepository stores one JSON-marshaled TokenRecord per key. Used
// when the service runs against a shared Redis instead of local disk.
type RedisTokenRepository struct {
	client *redis.Client
}

// NewRedisTokenRepository creates a repository backed by the given Redis client.
func NewRedisTokenRepository(client *redis.Client) *RedisTokenRepository {
	return &RedisTokenRepository{client: client}
}

func (r *RedisTokenRepository) key(principalID string) string {
	return fmt.Sprintf("calendar_token:%s", principalID)
}

func (r *RedisTokenRepository) Get(ctx context.Context, principalID string) (*TokenRecord, error) {
	data, err := r.client.Get(ctx, r.key(principalID)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to retrieve token: %w", err)
	}

	var rec TokenRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token record: %w", err)
	}
	return &rec, nil
}

func (r *RedisTokenRepository) Upsert(ctx context.Context, rec TokenRecord) error {
	if rec.UserID == "" {
		return fmt.Errorf("token record missing userId")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal token record: %w", err)
	}

	if err := r.client.Set(ctx, r.key(rec.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store token in Redis: %w", err)
	}

	log.Printf("Stored calendar token for principal %s", rec.UserID)
	return nil
}
