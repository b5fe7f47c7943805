package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MeasureType identifies the utility a reading belongs to.
type MeasureType string

const (
	MeasureTypeWater MeasureType = "WATER"
	MeasureTypeGas   MeasureType = "GAS"
)

// ParseMeasureType matches s against the known types, ignoring case.
func ParseMeasureType(s string) (MeasureType, bool) {
	switch t := MeasureType(strings.ToUpper(strings.TrimSpace(s))); t {
	case MeasureTypeWater, MeasureTypeGas:
		return t, true
	default:
		return "", false
	}
}

// Measure represents a single meter reading.
type Measure struct {
	ID           string      `gorm:"primaryKey;size:36"`
	CustomerCode string      `gorm:"size:128;not null;uniqueIndex:idx_measures_customer_type_month,priority:1;index:idx_measures_customer_datetime,priority:1"`
	MeasureType  MeasureType `gorm:"size:16;not null;uniqueIndex:idx_measures_customer_type_month,priority:2"`
	// BillingMonth is the UTC "YYYY-MM" of MeasureDatetime.
	BillingMonth    string    `gorm:"size:7;not null;uniqueIndex:idx_measures_customer_type_month,priority:3"`
	MeasureDatetime time.Time `gorm:"not null;index:idx_measures_customer_datetime,priority:2"`
	MeasureValue    int       `gorm:"not null"`
	HasConfirmed    bool      `gorm:"not null;default:false"`
	ImageURL        string    `gorm:"type:text;not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// BeforeCreate assigns the id and derives the billing month.
func (m *Measure) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.MeasureDatetime = m.MeasureDatetime.UTC()
	m.BillingMonth = BillingMonth(m.MeasureDatetime)
	return nil
}

// BillingMonth formats the UTC calendar month containing t.
func BillingMonth(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// MonthRange returns the half-open UTC interval [start, end) of the calendar
// month containing t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
