package journal

import (
	"context"

	"gorm.io/gorm"

	"scandiary/domain"
	"scandiary/entities"
)

type (
	JournalRepository interface {
		RecordScan(ctx context.Context, record *entities.ScanRecord) error
		RecentScans(ctx context.Context, limit int) ([]*entities.ScanRecord, error)
		PendingReview(ctx context.Context) ([]*entities.ScanRecord, error)
	}

	journalRepository struct {
		db *gorm.DB
	}
)

func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) RecordScan(ctx context.Context, record *entities.ScanRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *journalRepository) RecentScans(ctx context.Context, limit int) ([]*entities.ScanRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []*entities.ScanRecord
	if err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *journalRepository) PendingReview(ctx context.Context) ([]*entities.ScanRecord, error) {
	var records []*entities.ScanRecord
	if err := r.db.WithContext(ctx).
		Where("needs_review = ? AND outcome = ?", true, domain.OutcomeLoggedReview).
		Order("created_at desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
