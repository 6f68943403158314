package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheEntry is one memoized catalog response. Bucket separates the track
// cache from the genre cache.
type CacheEntry struct {
	Bucket    string `gorm:"primaryKey;size:32"`
	Key       string `gorm:"primaryKey;size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Value     string `gorm:"not null;default:''"`
}

func (s *Store) GetCacheEntry(ctx context.Context, bucket, key string) (string, error) {
	var v CacheEntry
	if err := s.db.WithContext(ctx).Where(&CacheEntry{Bucket: bucket, Key: key}).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("storage: failed to get cache entry %s/%s: %w", bucket, key, err)
	}
	return v.Value, nil
}

func (s *Store) SetCacheEntry(ctx context.Context, bucket, key, value string) error {
	now := time.Now().UTC()
	v := &CacheEntry{
		Bucket:    bucket,
		Key:       key,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bucket"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(v).Error
	if err != nil {
		return fmt.Errorf("storage: failed to set cache entry %s/%s: %w", bucket, key, err)
	}
	return nil
}

// ListCacheEntries returns every entry of the bucket ordered by key.
func (s *Store) ListCacheEntries(ctx context.Context, bucket string) ([]*CacheEntry, error) {
	vs := []*CacheEntry{}
	q := s.db.WithContext(ctx).Where(&CacheEntry{Bucket: bucket}).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}})
	if err := q.Find(&vs).Error; err != nil {
		return nil, fmt.Errorf("storage: failed to list cache entries %s: %w", bucket, err)
	}
	return vs, nil
}

func (s *Store) CountCacheEntries(ctx context.Context, bucket string) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&CacheEntry{}).Where(&CacheEntry{Bucket: bucket}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("storage: failed to count cache entries %s: %w", bucket, err)
	}
	return int(n), nil
}
