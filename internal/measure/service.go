package measure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"measure-reading-backend/internal/apperr"
	"measure-reading-backend/internal/extract"
	"measure-reading-backend/internal/model"
	"measure-reading-backend/internal/parse"
	"measure-reading-backend/internal/store"
)

// ReadingPrompt instructs the reading service to answer with the bare meter value.
const ReadingPrompt = "Return only the value as an integer, without any additional text or punctuation, " +
	"as shown in the meter shown in the image. For example, the return should have the following format: " +
	"Example 1: 50. Example 2: 200. Example 3: 500. If the value cannot be identified, the return must be 0."

const imageURLPrefix = "data:image/jpeg;base64,"

// CreateResult is returned by Create.
type CreateResult struct {
	MeasureUUID  string `json:"measure_uuid"`
	MeasureValue int    `json:"measure_value"`
	ImageURL     string `json:"image_url"`
}

// ListedMeasure is one entry of a ListResult.
type ListedMeasure struct {
	MeasureUUID     string            `json:"measure_uuid"`
	MeasureDatetime time.Time         `json:"measure_datetime"`
	MeasureType     model.MeasureType `json:"measure_type"`
	HasConfirmed    bool              `json:"has_confirmed"`
	ImageURL        string            `json:"image_url"`
}

// ListResult is returned by List.
type ListResult struct {
	CustomerCode string          `json:"customer_code"`
	Measures     []ListedMeasure `json:"measures"`
}

// Service implements the measure use cases on top of a store and a reading
// service.
type Service struct {
	store     store.Store
	extractor extract.Extractor
}

// NewService creates a new measure service.
func NewService(s store.Store, e extract.Extractor) *Service {
	return &Service{store: s, extractor: e}
}

// Create records a new reading. It rejects a second reading of the same type
// for the same customer within one UTC calendar month, then asks the reading
// service for the meter value and stores the unconfirmed measure.
func (s *Service) Create(ctx context.Context, p CreatePayload) (*CreateResult, error) {
	in, err := p.Validate()
	if err != nil {
		return nil, err
	}

	if err := s.checkMonthlyReading(ctx, in); err != nil {
		return nil, err
	}

	text, err := s.extractor.Extract(ctx, in.Image, ReadingPrompt)
	if err != nil {
		return nil, &apperr.ExtractionError{Err: err}
	}
	value, err := parse.Reading(text)
	if err != nil {
		return nil, &apperr.ExtractionError{Err: err}
	}

	m := &model.Measure{
		CustomerCode:    in.CustomerCode,
		MeasureType:     in.MeasureType,
		MeasureDatetime: in.MeasureDatetime,
		MeasureValue:    value,
		HasConfirmed:    false,
		ImageURL:        imageURLPrefix + in.Image,
	}
	if err := s.store.CreateMeasure(ctx, m); err != nil {
		if errors.Is(err, store.ErrDuplicateMeasure) {
			return nil, apperr.ErrDoubleReport
		}
		return nil, err
	}

	return &CreateResult{
		MeasureUUID:  m.ID,
		MeasureValue: m.MeasureValue,
		ImageURL:     m.ImageURL,
	}, nil
}

func (s *Service) checkMonthlyReading(ctx context.Context, in *CreateInput) error {
	from, to := model.MonthRange(in.MeasureDatetime)
	readings, err := s.store.FindMeasures(ctx, store.MeasureFilter{
		CustomerCode: in.CustomerCode,
		From:         &from,
		To:           &to,
	})
	if err != nil {
		return err
	}

	for _, r := range readings {
		if r.MeasureType == in.MeasureType {
			return apperr.ErrDoubleReport
		}
	}
	return nil
}

// Confirm overwrites the value of an unconfirmed measure and marks it
// confirmed. A measure can be confirmed only once.
func (s *Service) Confirm(ctx context.Context, p ConfirmPayload) error {
	if err := p.Validate(); err != nil {
		return err
	}

	m, err := s.store.FindMeasure(ctx, p.MeasureUUID)
	if errors.Is(err, store.ErrMeasureNotFound) {
		return apperr.ErrMeasureNotFound
	}
	if err != nil {
		return err
	}

	if m.HasConfirmed {
		return apperr.ErrConfirmationDuplicate
	}

	err = s.store.ConfirmMeasure(ctx, m.ID, *p.ConfirmedValue)
	if errors.Is(err, store.ErrAlreadyConfirmed) {
		return apperr.ErrConfirmationDuplicate
	}
	return err
}

// List returns the readings of a customer, optionally restricted to one
// measure type. measureType is matched case-insensitively; empty means all.
func (s *Service) List(ctx context.Context, customerCode, measureType string) (*ListResult, error) {
	filter := store.MeasureFilter{CustomerCode: customerCode}
	if measureType != "" {
		t, ok := model.ParseMeasureType(measureType)
		if !ok {
			return nil, apperr.ErrInvalidType
		}
		filter.MeasureType = t
	}

	measures, err := s.store.FindMeasures(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list measures: %w", err)
	}
	if len(measures) == 0 {
		return nil, apperr.ErrMeasuresNotFound
	}

	result := &ListResult{
		CustomerCode: customerCode,
		Measures:     make([]ListedMeasure, 0, len(measures)),
	}
	for _, m := range measures {
		result.Measures = append(result.Measures, ListedMeasure{
			MeasureUUID:     m.ID,
			MeasureDatetime: m.MeasureDatetime.UTC(),
			MeasureType:     m.MeasureType,
			HasConfirmed:    m.HasConfirmed,
			ImageURL:        m.ImageURL,
		})
	}
	return result, nil
}
