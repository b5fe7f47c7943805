package measure

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"measure-reading-backend/internal/apperr"
	"measure-reading-backend/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("measuretype", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseMeasureType(fl.Field().String())
		return ok
	})
	v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.RFC3339, fl.Field().String())
		return err == nil
	})
	return v
}

// CreatePayload is the body of an upload request.
type CreatePayload struct {
	CustomerCode    string `json:"customer_code" validate:"required"`
	MeasureType     string `json:"measure_type" validate:"required,measuretype"`
	MeasureDatetime string `json:"measure_datetime" validate:"required,iso8601"`
	Image           string `json:"image" validate:"required,base64"`
}

// CreateInput is a validated CreatePayload.
type CreateInput struct {
	CustomerCode    string
	MeasureType     model.MeasureType
	MeasureDatetime time.Time
	Image           string
}

// Validate checks the payload and converts it to typed input.
func (p CreatePayload) Validate() (*CreateInput, error) {
	if err := structErrors(p); err != nil {
		return nil, err
	}

	measureType, _ := model.ParseMeasureType(p.MeasureType)
	measureDatetime, _ := time.Parse(time.RFC3339, p.MeasureDatetime)

	return &CreateInput{
		CustomerCode:    p.CustomerCode,
		MeasureType:     measureType,
		MeasureDatetime: measureDatetime.UTC(),
		Image:           p.Image,
	}, nil
}

// ConfirmPayload is the body of a confirm request. ConfirmedValue is a
// pointer so that an explicit zero is distinguishable from a missing field.
type ConfirmPayload struct {
	MeasureUUID    string `json:"measure_uuid" validate:"required"`
	ConfirmedValue *int   `json:"confirmed_value" validate:"required"`
}

// Validate checks the payload.
func (p ConfirmPayload) Validate() error {
	return structErrors(p)
}

var messages = map[string]string{
	"required":    "Required",
	"base64":      "Invalid base64",
	"iso8601":     "Invalid datetime",
	"measuretype": "Invalid enum value. Expected 'WATER' | 'GAS'",
}

// structErrors runs the struct validator and converts its result into an
// *apperr.ValidationError.
func structErrors(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &apperr.ValidationError{}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		verr.Add(fe.Field(), msg)
	}
	return verr
}
