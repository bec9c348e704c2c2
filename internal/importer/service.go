package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campo/CampManager/internal/member"
	"github.com/campo/CampManager/internal/payment"
	"github.com/campo/CampManager/internal/prepayment"
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
	ErrMissingFile   = NewValidationError("No file uploaded")
	ErrMissingCampID = NewValidationError("Camp ID required")
	ErrEmptyCSV      = NewValidationError("Empty CSV")
)

// Store opens one transaction per import, so a bad file leaves nothing
// half-written.
type Store interface {
	BeginImport() (ImportTx, error)
}

type ImportTx interface {
	MemberIDByName(firstName, lastName string) (*int64, error)
	MembersByName(firstName, lastName string) ([]int64, error)
	AnyMemberWithLastName(lastName string) (bool, error)
	InsertMember(firstName, lastName, fellowship, concession, feeStatus string) (int64, error)
	UpdateMemberDetails(id int64, fellowship, concession, feeStatus string) error
	UpsertPaidUntil(memberID int64, paidUntil time.Time) error
	SetFeeStatus(memberID int64, status string) error
	SiteIDByNumber(siteNumber string) (*int64, error)
	InsertSite(siteNumber, siteType string) (int64, error)
	EnsureAllocation(siteID, memberID int64) error
	HasDuplicateCredit(campID int64, transactionID, importedName string, amount float64) (bool, error)
	InsertCredit(c prepayment.Credit) (int64, error)
	InsertRate(campID int64, category, item, userType string, amount float64) (int64, error)
	InsertLegacyPayment(p LegacyPayment) (int64, error)
	InsertTender(paymentID int64, method string, amount float64) error
	Commit() error
	Rollback() error
}

// LegacyPayment is one migrated season row: the payment amounts plus stay
// dates. The repository writes it with an audit note marking its origin.
type LegacyPayment struct {
	MemberID       int64
	CampID         int64
	SiteID         *int64
	PaymentDate    time.Time
	CampFee        float64
	SiteFee        float64
	PrepaidApplied float64
	OtherAmount    float64
	Total          float64
	Headcount      int
	ArrivalDate    *time.Time
	DepartureDate  *time.Time
}

type MembersResult struct {
	Created int `json:"count"`
	Updated int `json:"updated"`
}

type PrepaymentsResult struct {
	Count   int `json:"count"`
	Matched int `json:"matched"`
	Skipped int `json:"skipped"`
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ImportMembers reads a member CSV with a flexible header row and inserts or
// updates each person. Optional columns carry a paid-until date and a site
// allocation.
func (s *Service) ImportMembers(reader io.Reader) (result MembersResult, err error) {
	records := csv.NewReader(reader)
	records.FieldsPerRecord = -1

	header, err := records.Read()
	if err != nil {
		return result, ErrEmptyCSV
	}
	columns := headerMap(header)

	tx, err := s.store.BeginImport()
	if err != nil {
		return result, err
	}
	defer func() {
		err = finishImport(tx, err, recover())
	}()

	for {
		row, readErr := records.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return result, readErr
		}

		firstName := mappedCell(row, columns, "first_name")
		lastName := mappedCell(row, columns, "last_name")
		if firstName == "" || lastName == "" {
			continue
		}

		concession := member.NormalizeConcession(mappedCell(row, columns, "concession"))
		feeStatus := normalizeFeeStatus(mappedCell(row, columns, "site_fee_status"))
		fellowship := mappedCell(row, columns, "fellowship")

		memberID, lookupErr := tx.MemberIDByName(firstName, lastName)
		if lookupErr != nil {
			return result, lookupErr
		}
		if memberID != nil {
			if err := tx.UpdateMemberDetails(*memberID, fellowship, concession, feeStatus); err != nil {
				return result, err
			}
			result.Updated++
		} else {
			id, insertErr := tx.InsertMember(firstName, lastName, fellowship, concession, feeStatus)
			if insertErr != nil {
				return result, insertErr
			}
			memberID = &id
			result.Created++
		}

		if siteNumber := mappedCell(row, columns, "site_number"); siteNumber != "" {
			siteID, siteErr := tx.SiteIDByNumber(siteNumber)
			if siteErr != nil {
				return result, siteErr
			}
			if siteID == nil {
				id, insertErr := tx.InsertSite(siteNumber, mappedCell(row, columns, "site_type"))
				if insertErr != nil {
					return result, insertErr
				}
				siteID = &id
			}
			if err := tx.EnsureAllocation(*siteID, *memberID); err != nil {
				return result, err
			}
		}

		if raw := mappedCell(row, columns, "site_fee_paid_until"); raw != "" {
			if paidUntil := parseCsvDate(raw); paidUntil != nil {
				if err := tx.UpsertPaidUntil(*memberID, *paidUntil); err != nil {
					return result, err
				}
				if err := tx.SetFeeStatus(*memberID, "Paid"); err != nil {
					return result, err
				}
			}
		}
	}
	return result, nil
}

// ImportPrepayments reads rows of first name, last name, amount and
// transaction id. Each new credit is auto-matched against the member list;
// rows already imported are skipped.
func (s *Service) ImportPrepayments(reader io.Reader, campID int64) (result PrepaymentsResult, err error) {
	if campID <= 0 {
		return result, ErrMissingCampID
	}
	records := csv.NewReader(reader)
	records.FieldsPerRecord = -1

	if _, err := records.Read(); err != nil {
		return result, ErrEmptyCSV
	}

	tx, err := s.store.BeginImport()
	if err != nil {
		return result, err
	}
	defer func() {
		err = finishImport(tx, err, recover())
	}()

	for {
		row, readErr := records.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return result, readErr
		}

		firstName := cell(row, 0, true)
		lastName := cell(row, 1, true)
		amount := parseAmount(cell(row, 2, true))
		transactionID := cell(row, 3, true)

		if (firstName == "" && lastName == "") || amount <= 0 {
			continue
		}
		importedName := strings.TrimSpace(firstName + " " + lastName)

		duplicate, dupErr := tx.HasDuplicateCredit(campID, transactionID, importedName, amount)
		if dupErr != nil {
			return result, dupErr
		}
		if duplicate {
			result.Skipped++
			continue
		}
		if transactionID == "" {
			// Imports without bank references still need a stable id for
			// later duplicate detection.
			transactionID = uuid.New().String()
		}

		matchedID, status, matchErr := s.resolveMatch(tx, firstName, lastName)
		if matchErr != nil {
			return result, matchErr
		}

		originalData, _ := json.Marshal(row)
		if _, err := tx.InsertCredit(prepayment.Credit{
			CampID:          &campID,
			ImportedName:    importedName,
			FirstName:       firstName,
			LastName:        lastName,
			Amount:          amount,
			TransactionID:   transactionID,
			MatchedMemberID: matchedID,
			OriginalData:    string(originalData),
			Status:          status,
		}); err != nil {
			return result, err
		}

		result.Count++
		if matchedID != nil {
			result.Matched++
		}
	}
	return result, nil
}

// resolveMatch decides a new credit's member link. One exact name match
// links it; several exact matches or a shared surname need an operator's
// eye; anything else stays unmatched.
func (s *Service) resolveMatch(tx ImportTx, firstName, lastName string) (*int64, string, error) {
	exact, err := tx.MembersByName(firstName, lastName)
	if err != nil {
		return nil, "", err
	}
	switch {
	case len(exact) == 1:
		return &exact[0], prepayment.StatusMatched, nil
	case len(exact) > 1:
		return nil, prepayment.StatusNeedsReview, nil
	}
	if lastName != "" {
		hit, err := tx.AnyMemberWithLastName(lastName)
		if err != nil {
			return nil, "", err
		}
		if hit {
			return nil, prepayment.StatusNeedsReview, nil
		}
	}
	return nil, prepayment.StatusUnmatched, nil
}

// Column positions of the legacy season spreadsheet. The layout is fixed:
// Year, First Name, Last Name, Site Type, Site Number, Arrive, Depart,
// Total Nights, Pre-paid, Camp Fees, Site Fees, Total, Eftpos, Cash,
// Cheque, Other, Concession, Payment Date, Site Fee Year Paid, Headcount.
const (
	legacyColFirstName   = 1
	legacyColLastName    = 2
	legacyColSiteNumber  = 4
	legacyColArrive      = 5
	legacyColDepart      = 6
	legacyColPrepaid     = 8
	legacyColCampFees    = 9
	legacyColSiteFees    = 10
	legacyColTotal       = 11
	legacyColEftpos      = 12
	legacyColCash        = 13
	legacyColCheque      = 14
	legacyColOther       = 15
	legacyColConcession  = 16
	legacyColPaymentDate = 17
	legacyColFeeYear     = 18
	legacyColHeadcount   = 19
)

// ImportLegacyPayments ingests an old season spreadsheet: one payment per
// row with its tender split and optional site-fee year. Members are created
// on first sight; sites are looked up but never created.
func (s *Service) ImportLegacyPayments(reader io.Reader, campID int64) (count int, err error) {
	if campID <= 0 {
		return 0, ErrMissingCampID
	}
	records := csv.NewReader(reader)
	records.FieldsPerRecord = -1

	if _, err := records.Read(); err != nil {
		return 0, ErrEmptyCSV
	}

	tx, err := s.store.BeginImport()
	if err != nil {
		return 0, err
	}
	defer func() {
		err = finishImport(tx, err, recover())
	}()

	for {
		row, readErr := records.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return count, readErr
		}
		if len(row) < 5 {
			continue
		}

		firstName := cell(row, legacyColFirstName, true)
		lastName := cell(row, legacyColLastName, true)
		if firstName == "" && lastName == "" {
			continue
		}

		concession := "No"
		if strings.EqualFold(cell(row, legacyColConcession, true), "yes") {
			concession = "Yes"
		}
		memberID, lookupErr := tx.MemberIDByName(firstName, lastName)
		if lookupErr != nil {
			return count, lookupErr
		}
		if memberID == nil {
			id, insertErr := tx.InsertMember(firstName, lastName, "", concession, "Unknown")
			if insertErr != nil {
				return count, insertErr
			}
			memberID = &id
		}

		var siteID *int64
		if siteNumber := cell(row, legacyColSiteNumber, true); siteNumber != "" {
			siteID, err = tx.SiteIDByNumber(siteNumber)
			if err != nil {
				return count, err
			}
		}

		paymentDate := time.Now()
		if parsed := parseCsvDate(cell(row, legacyColPaymentDate, true)); parsed != nil {
			paymentDate = *parsed
		}

		paymentID, payErr := tx.InsertLegacyPayment(LegacyPayment{
			MemberID:       *memberID,
			CampID:         campID,
			SiteID:         siteID,
			PaymentDate:    paymentDate,
			CampFee:        parseAmount(cell(row, legacyColCampFees, true)),
			SiteFee:        parseAmount(cell(row, legacyColSiteFees, true)),
			PrepaidApplied: parseAmount(cell(row, legacyColPrepaid, true)),
			OtherAmount:    parseAmount(cell(row, legacyColOther, true)),
			Total:          parseAmount(cell(row, legacyColTotal, true)),
			Headcount:      parseCount(cell(row, legacyColHeadcount, true)),
			ArrivalDate:    parseCsvDate(cell(row, legacyColArrive, true)),
			DepartureDate:  parseCsvDate(cell(row, legacyColDepart, true)),
		})
		if payErr != nil {
			return count, payErr
		}

		tenders := []struct {
			method string
			amount float64
		}{
			{payment.MethodEFTPOS, parseAmount(cell(row, legacyColEftpos, true))},
			{payment.MethodCash, parseAmount(cell(row, legacyColCash, true))},
			{payment.MethodCheque, parseAmount(cell(row, legacyColCheque, true))},
		}
		for _, tender := range tenders {
			if tender.amount <= 0 {
				continue
			}
			if err := tx.InsertTender(paymentID, tender.method, tender.amount); err != nil {
				return count, err
			}
		}

		if feeYear := cell(row, legacyColFeeYear, true); feeYear != "" {
			if paidUntil := parseCsvDate(feeYear); paidUntil != nil {
				if err := tx.UpsertPaidUntil(*memberID, *paidUntil); err != nil {
					return count, err
				}
				if err := tx.SetFeeStatus(*memberID, "Paid"); err != nil {
					return count, err
				}
			}
		}
		count++
	}
	return count, nil
}

// ImportRates reads a rate card CSV: category, item, user type, amount.
func (s *Service) ImportRates(reader io.Reader, campID int64) (count int, err error) {
	if campID <= 0 {
		return 0, ErrMissingCampID
	}
	records := csv.NewReader(reader)
	records.FieldsPerRecord = -1

	if _, err := records.Read(); err != nil {
		return 0, ErrEmptyCSV
	}

	tx, err := s.store.BeginImport()
	if err != nil {
		return 0, err
	}
	defer func() {
		err = finishImport(tx, err, recover())
	}()

	for {
		row, readErr := records.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return count, readErr
		}
		if len(row) < 4 {
			continue
		}

		category := cell(row, 0, true)
		item := cell(row, 1, true)
		userType := cell(row, 2, true)
		amount := parseAmount(cell(row, 3, true))
		if category == "" || item == "" {
			continue
		}

		if _, err := tx.InsertRate(campID, category, item, userType, amount); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func mappedCell(row []string, columns map[string]int, field string) string {
	index, ok := columns[field]
	return cell(row, index, ok)
}

func normalizeFeeStatus(raw string) string {
	valid := map[string]bool{"Paid": true, "Unpaid": true, "Overdue": true, "Exempt": true, "Unknown": true}
	candidate := strings.ToLower(strings.TrimSpace(raw))
	if candidate != "" {
		candidate = strings.ToUpper(candidate[:1]) + candidate[1:]
	}
	if valid[candidate] {
		return candidate
	}
	return "Unknown"
}

// finishImport commits on success, rolls back on error or panic.
func finishImport(tx ImportTx, err error, recovered interface{}) error {
	if recovered != nil {
		tx.Rollback()
		panic(recovered)
	}
	if err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
