package payment

import (
	"errors"
	"time"
)

// Tender methods accepted at the counter.
const (
	MethodEFTPOS = "EFTPOS"
	MethodCash   = "Cash"
	MethodCheque = "Cheque"
)

// Statuses written onto prepayment credits during draw-down.
const (
	CreditStatusPartial = "Partial"
	CreditStatusApplied = "Applied"
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

var ErrMissingMember = NewValidationError("member_id is required")

// Record is one finalized payment row. Tender summary columns are kept
// denormalized alongside the detailed payment_tenders rows so reporting
// queries stay flat.
type Record struct {
	ID             int64      `json:"id"`
	MemberID       int64      `json:"member_id"`
	CampID         *int64     `json:"camp_id"`
	SiteID         *int64     `json:"site_id"`
	PaymentDate    time.Time  `json:"payment_date"`
	CampFee        float64    `json:"camp_fee"`
	SiteFee        float64    `json:"site_fee"`
	PrepaidApplied float64    `json:"prepaid_applied"`
	OtherAmount    float64    `json:"other_amount"`
	Total          float64    `json:"total"`
	Headcount      *int       `json:"headcount"`
	Notes          string     `json:"notes"`
	ArrivalDate    *time.Time `json:"arrival_date"`
	DepartureDate  *time.Time `json:"departure_date"`
	SiteType       *string    `json:"site_type"`
	TenderEftpos   float64    `json:"tender_eftpos"`
	TenderCash     float64    `json:"tender_cash"`
	TenderCheque   float64    `json:"tender_cheque"`
	Concession     bool       `json:"concession"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Tender struct {
	ID        int64   `json:"id"`
	PaymentID int64   `json:"payment_id"`
	Method    string  `json:"method"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference"`
}

// ListRow is a payment joined with the names the payments screen shows.
type ListRow struct {
	Record
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	CampName   *string `json:"camp_name"`
	SiteNumber *string `json:"site_number"`
}

// Credit is the slice of a prepayment row the draw-down step needs.
type Credit struct {
	ID     int64
	Amount float64
	Status string
}

// FeeCorrection is the explicit update operation on a posted payment.
// Only fee fields, notes and dates may be corrected after the fact.
type FeeCorrection struct {
	CampFee       float64 `json:"camp_fee"`
	SiteFee       float64 `json:"site_fee"`
	Total         float64 `json:"total"`
	Notes         string  `json:"notes"`
	PaymentDate   string  `json:"payment_date"`
	ArrivalDate   string  `json:"arrival_date"`
	DepartureDate string  `json:"departure_date"`
}

type TenderInput struct {
	Method    string  `json:"method"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference"`
}

// PostPaymentRequest is the typed shape of one posting submission. Amount
// fields default to zero when absent; Total is a pointer so a missing total
// can be recomputed from its parts.
type PostPaymentRequest struct {
	MemberID       int64         `json:"member_id"`
	CampID         *int64        `json:"camp_id"`
	SiteID         *int64        `json:"site_id"`
	CampFee        float64       `json:"camp_fee"`
	SiteFee        float64       `json:"site_fee"`
	OtherAmount    float64       `json:"other_amount"`
	PrepaidApplied float64       `json:"prepaid_applied"`
	Total          *float64      `json:"total"`
	Headcount      *int          `json:"headcount"`
	Notes          string        `json:"notes"`
	PaymentDate    string        `json:"payment_date"`
	ArrivalDate    string        `json:"arrival_date"`
	DepartureDate  string        `json:"departure_date"`
	SiteType       string        `json:"site_type"`
	Concession     bool          `json:"concession"`
	Tenders        []TenderInput `json:"tenders"`
	PrepaymentIDs  []int64       `json:"prepayment_ids"`
}

func (r *PostPaymentRequest) Validate() error {
	if r.MemberID == 0 {
		return ErrMissingMember
	}
	return nil
}

// ResolvedTotal returns the submitted total, or recomputes it from the fee
// parts when the client did not send one.
func (r *PostPaymentRequest) ResolvedTotal() float64 {
	if r.Total != nil {
		return *r.Total
	}
	return r.CampFee + r.SiteFee - r.PrepaidApplied + r.OtherAmount
}

// Store is the persistence surface the posting service runs against.
type Store interface {
	BeginPosting() (PostingTx, error)
	HasRecentDuplicate(memberID int64, total float64, since time.Time) (bool, error)
	CurrentSiteID(memberID int64) (*int64, error)
	FindAll(search string) ([]ListRow, error)
	UpdateFees(id int64, corr FeeCorrection) error
	Delete(id int64) error
	Summary(start, end time.Time) (Summary, error)
	CampByID(id int64) (*Camp, error)
	ActiveCamp() (*Camp, error)
	StayRows(campID int64) ([]StayRow, error)
}

// PostingTx is the transaction scope for a single posting. Every write in
// steps 3-6 goes through one PostingTx and is committed or rolled back as a
// unit.
type PostingTx interface {
	InsertPayment(rec *Record) (int64, error)
	InsertTender(paymentID int64, t Tender) error
	Expiry(memberID int64) (*time.Time, error)
	UpsertExpiry(memberID int64, paidUntil time.Time) error
	SetFeeStatus(memberID int64, status string) error
	Credit(id int64) (*Credit, error)
	ReduceCredit(id int64, newAmount float64, status string) error
	Commit() error
	Rollback() error
}
