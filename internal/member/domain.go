package member

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
	ErrMissingFirstName = NewValidationError("first_name is required")
	ErrMissingLastName  = NewValidationError("last_name is required")
)

// Member is one membership row joined with the furthest paid-until date from
// the site-fee ledger, which is what the members screen lists.
type Member struct {
	ID               int64      `json:"id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Fellowship       string     `json:"fellowship"`
	Concession       string     `json:"concession"`
	SiteFeeStatus    string     `json:"site_fee_status"`
	SiteFeePaidUntil *time.Time `json:"site_fee_paid_until"`
}

// UpsertRequest carries the create/update payload. SiteFeePaidUntil
// distinguishes "not sent" (nil, leave the ledger alone) from "sent empty"
// (clear the ledger row).
type UpsertRequest struct {
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	Fellowship       string  `json:"fellowship"`
	Concession       string  `json:"concession"`
	SiteFeeStatus    string  `json:"site_fee_status"`
	SiteFeePaidUntil *string `json:"site_fee_paid_until"`
}

// Allocation is a site allocation row joined with its site number for the
// member history view.
type Allocation struct {
	ID         int64      `json:"id"`
	SiteID     int64      `json:"site_id"`
	MemberID   int64      `json:"member_id"`
	SiteNumber string     `json:"site_number"`
	StartDate  *time.Time `json:"start_date"`
	IsCurrent  bool       `json:"is_current"`
}

// HistoryPayment is a payment row with its camp name, as the history modal
// renders it.
type HistoryPayment struct {
	ID            int64      `json:"id"`
	CampID        *int64     `json:"camp_id"`
	CampName      *string    `json:"camp_name"`
	PaymentDate   time.Time  `json:"payment_date"`
	CampFee       float64    `json:"camp_fee"`
	SiteFee       float64    `json:"site_fee"`
	OtherAmount   float64    `json:"other_amount"`
	Total         float64    `json:"total"`
	Headcount     *int       `json:"headcount"`
	Notes         string     `json:"notes"`
	ArrivalDate   *time.Time `json:"arrival_date"`
	DepartureDate *time.Time `json:"departure_date"`
}

// HistoryCredit is a prepayment credit matched to the member.
type HistoryCredit struct {
	ID            int64      `json:"id"`
	CampID        *int64     `json:"camp_id"`
	Amount        float64    `json:"amount"`
	TransactionID string     `json:"transaction_id"`
	Date          *time.Time `json:"date"`
	Status        string     `json:"status"`
}

// History bundles everything the member history endpoint returns.
type History struct {
	Payments         []HistoryPayment `json:"payments"`
	Allocations      []Allocation     `json:"allocations"`
	Prepayments      []HistoryCredit  `json:"prepayments"`
	SiteFeePaidUntil *time.Time       `json:"site_fee_paid_until"`
}
