package store

import (
	"errors"
	"time"

	"measure-reading-backend/internal/model"
)

var (
	ErrMeasureNotFound  = errors.New("measure not found")
	ErrDuplicateMeasure = errors.New("measure already exists for billing month")
	ErrAlreadyConfirmed = errors.New("measure already confirmed")
)

// MeasureFilter narrows a measure query. Zero-valued fields are ignored.
type MeasureFilter struct {
	CustomerCode string
	MeasureType  model.MeasureType
	// From and To bound MeasureDatetime as [From, To).
	From *time.Time
	To   *time.Time
}
