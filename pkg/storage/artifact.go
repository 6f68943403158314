package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Artifact records one published report file.
type Artifact struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name     string `gorm:"index;not null;default:''"`
	Kind     string `gorm:"not null;default:''"`
	Backend  string `gorm:"not null;default:''"`
	Size     int64  `gorm:"not null;default:0"`
	Checksum string `gorm:"not null;default:''"`
}

func (s *Store) GetArtifact(ctx context.Context, id string) (*Artifact, error) {
	var v Artifact
	if err := s.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: failed to get artifact %s: %w", id, err)
	}
	return &v, nil
}

func (s *Store) SetArtifact(ctx context.Context, v *Artifact) error {
	if err := s.db.WithContext(ctx).Save(v).Error; err != nil {
		return fmt.Errorf("storage: failed to set artifact %s: %w", v.ID, err)
	}
	return nil
}

func (s *Store) ListArtifacts(ctx context.Context, page, size int, orderBy string, filter ...Filter) ([]*Artifact, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * size
	vs := []*Artifact{}

	q := s.db.WithContext(ctx).Offset(offset).Limit(size)
	for _, f := range filter {
		q = q.Where(f.Query, f.Args...)
	}
	if orderBy != "" {
		q = q.Order(orderBy)
	}
	if err := q.Find(&vs).Error; err != nil {
		return nil, fmt.Errorf("storage: failed to list artifacts: %w", err)
	}
	return vs, nil
}
