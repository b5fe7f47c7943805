package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"measure-reading-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	FindMeasure(ctx context.Context, id string) (*model.Measure, error)
	FindMeasures(ctx context.Context, filter MeasureFilter) ([]model.Measure, error)
	CreateMeasure(ctx context.Context, m *model.Measure) error
	ConfirmMeasure(ctx context.Context, id string, value int) error
	Ping(ctx context.Context) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store. The handle should be opened
// with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// FindMeasure loads a single measure by id.
func (s *gormStore) FindMeasure(ctx context.Context, id string) (*model.Measure, error) {
	var m model.Measure
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMeasureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find measure %s: %w", id, err)
	}
	return &m, nil
}

// FindMeasures returns the measures matching filter, oldest reading first.
func (s *gormStore) FindMeasures(ctx context.Context, filter MeasureFilter) ([]model.Measure, error) {
	q := s.db.WithContext(ctx).Where("customer_code = ?", filter.CustomerCode)
	if filter.MeasureType != "" {
		q = q.Where("measure_type = ?", filter.MeasureType)
	}
	if filter.From != nil {
		q = q.Where("measure_datetime >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("measure_datetime < ?", filter.To.UTC())
	}

	var measures []model.Measure
	if err := q.Order("measure_datetime ASC").Find(&measures).Error; err != nil {
		return nil, fmt.Errorf("failed to list measures for customer %s: %w", filter.CustomerCode, err)
	}
	return measures, nil
}

// CreateMeasure inserts m, filling in its id and billing month.
func (s *gormStore) CreateMeasure(ctx context.Context, m *model.Measure) error {
	err := s.db.WithContext(ctx).Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateMeasure
	}
	if err != nil {
		return fmt.Errorf("failed to create measure for customer %s: %w", m.CustomerCode, err)
	}
	return nil
}

// ConfirmMeasure sets the confirmed value on an unconfirmed measure. The
// has_confirmed guard lives in the WHERE clause so only one of two concurrent
// confirmations can win.
func (s *gormStore) ConfirmMeasure(ctx context.Context, id string, value int) error {
	res := s.db.WithContext(ctx).
		Model(&model.Measure{}).
		Where("id = ? AND has_confirmed = ?", id, false).
		Updates(map[string]any{
			"measure_value": value,
			"has_confirmed": true,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to confirm measure %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyConfirmed
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
