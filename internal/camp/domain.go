package camp

import (
	"errors"
	"time"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	ok := errors.As(err, &validationError)
	return ok
}

var (
	ErrMissingName   = NewValidationError("name is required")
	ErrMissingCampID = NewValidationError("camp_id is required")
)

// Camp is one camp event. On-peak dates bound the higher-rate window inside
// the camp period.
type Camp struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Year        *int       `json:"year"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	OnPeakStart *time.Time `json:"on_peak_start"`
	OnPeakEnd   *time.Time `json:"on_peak_end"`
	Status      string     `json:"status"`
}

// Rate is one line of a camp's rate card.
type Rate struct {
	ID       int64   `json:"id"`
	CampID   int64   `json:"camp_id"`
	Category string  `json:"category"`
	Item     string  `json:"item"`
	UserType string  `json:"user_type"`
	Amount   float64 `json:"amount"`
}

type UpsertRequest struct {
	Name        string  `json:"name"`
	Year        *int    `json:"year"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	OnPeakStart *string `json:"on_peak_start"`
	OnPeakEnd   *string `json:"on_peak_end"`
	Status      string  `json:"status"`
}

type RateRequest struct {
	CampID   int64   `json:"camp_id"`
	Category string  `json:"category"`
	Item     string  `json:"item"`
	UserType string  `json:"user_type"`
	Amount   float64 `json:"amount"`
}
