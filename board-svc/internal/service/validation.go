package service

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"

	"tableboard/board-svc/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	ErrValidationFailed    = errors.New("validation failed")
	ErrTableNotFound       = errors.New("table not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrJoinNotFound        = errors.New("joined table record not found")
)

// ValidationError maps each offending field (json name) to the rule it broke.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "missing or invalid fields: " + strings.Join(names, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

func validationErrorFrom(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = fe.Tag()
	}
	return &ValidationError{Fields: fields}
}

type BookingRequest struct {
	TableID      int    `json:"table_id" validate:"required,gt=0"`
	CustomerName string `json:"customer_name" validate:"required"`
	DateTime     string `json:"date_time" validate:"required"`
	GuestCount   int    `json:"guest_count" validate:"gte=0"`
	Notes        string `json:"notes"`
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseDateTime(value string, loc *time.Location) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// reservation validates the request; nothing reaches the backend on failure.
func (r BookingRequest) reservation(now time.Time) (domain.Reservation, error) {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.DateTime = strings.TrimSpace(r.DateTime)
	r.Notes = strings.TrimSpace(r.Notes)

	if err := validate.Struct(r); err != nil {
		return domain.Reservation{}, validationErrorFrom(err)
	}

	at, ok := parseDateTime(r.DateTime, now.Location())
	if !ok {
		return domain.Reservation{}, &ValidationError{Fields: map[string]string{"date_time": "datetime"}}
	}

	return domain.Reservation{
		TableID:      r.TableID,
		CustomerName: r.CustomerName,
		DateTime:     at,
		GuestCount:   r.GuestCount,
		Notes:        r.Notes,
		CreatedAt:    now,
	}, nil
}

type joinRequest struct {
	TableIDs []int `json:"table_ids" validate:"min=2,dive,gt=0"`
}
