package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Repository is the narrow contract the engine and reaper consume. Each
// operation is individually atomic; no cross-call transactions are assumed.
// Mutations against a missing id are no-ops, not errors.
type Repository interface {
	Insert(ctx context.Context, email, codeHash, kind string, expiresAt time.Time, requestIP, userAgent string) (uint, error)
	GetLatestActive(ctx context.Context, email, kind string) (*Record, error)
	MarkUsed(ctx context.Context, id uint, usedAt time.Time) error
	IncrementAttempts(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context, email, kind string) error
	DeleteExpired(ctx context.Context, now time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Insert(ctx context.Context, email, codeHash, kind string, expiresAt time.Time, requestIP, userAgent string) (uint, error) {
	record := &Record{
		Email:     email,
		CodeHash:  codeHash,
		Kind:      kind,
		ExpiresAt: expiresAt,
		RequestIP: requestIP,
		UserAgent: userAgent,
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return 0, fmt.Errorf("failed to insert otp record: %w", err)
	}

	return record.ID, nil
}

func (r *gormRepository) GetLatestActive(ctx context.Context, email, kind string) (*Record, error) {
	var record Record
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND kind = ? AND used = ?", email, kind, false).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load otp record: %w", err)
	}

	return &record, nil
}

func (r *gormRepository) MarkUsed(ctx context.Context, id uint, usedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&Record{}).
		Where("id = ?", id).
		Updates(map[string]any{"used": true, "used_at": usedAt}).Error
	if err != nil {
		return fmt.Errorf("failed to mark otp record as used: %w", err)
	}
	return nil
}

func (r *gormRepository) IncrementAttempts(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&Record{}).
		Where("id = ?", id).
		UpdateColumn("attempt_count", gorm.Expr("attempt_count + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("failed to increment otp attempt count: %w", err)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&Record{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete otp record: %w", err)
	}
	return nil
}

func (r *gormRepository) DeleteAll(ctx context.Context, email, kind string) error {
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND kind = ?", email, kind).
		Delete(&Record{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete otp records: %w", err)
	}
	return nil
}

func (r *gormRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	err := r.db.WithContext(ctx).
		Where("used = ? AND expires_at <= ?", false, now).
		Delete(&Record{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete expired otp records: %w", err)
	}
	return nil
}
