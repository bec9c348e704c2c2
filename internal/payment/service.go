package payment

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Payments posted for the same member with the same total inside this window
// are treated as accidental double submissions.
const duplicateWindow = time.Minute

const dateLayout = "2006-01-02"

type Service struct {
	store Store
	now   func() time.Time
	loc   *time.Location
}

func NewService(store Store) *Service {
	loc, err := time.LoadLocation("Australia/Adelaide")
	if err != nil {
		loc = time.Local
	}
	return &Service{
		store: store,
		now:   time.Now,
		loc:   loc,
	}
}

// PostPayment records one payment: it guards against duplicate submissions,
// extends the member's site-fee expiry when a positive site fee is included,
// writes the payment and its tenders, and draws down any referenced
// prepayment credits. All writes run inside a single PostingTx; the returned
// duplicate flag is true when the call was collapsed onto an earlier
// submission and nothing was written.
func (s *Service) PostPayment(req *PostPaymentRequest) (id int64, duplicate bool, err error) {
	if err = req.Validate(); err != nil {
		return 0, false, err
	}

	total := req.ResolvedTotal()
	dup, err := s.store.HasRecentDuplicate(req.MemberID, total, s.now().Add(-duplicateWindow))
	if err != nil {
		return 0, false, err
	}
	if dup {
		log.Printf("Duplicate payment for member %d (total %.2f) ignored", req.MemberID, total)
		return 0, true, nil
	}

	siteID := req.SiteID
	if siteID == nil {
		siteID, err = s.store.CurrentSiteID(req.MemberID)
		if err != nil {
			return 0, false, err
		}
	}

	paymentDate := s.now()
	if req.PaymentDate != "" {
		if parsed, perr := parseTimestamp(req.PaymentDate); perr == nil {
			paymentDate = parsed
		}
	}
	arrival := parseOptionalDate(req.ArrivalDate)
	departure := parseOptionalDate(req.DepartureDate)

	var eftpos, cash, cheque float64
	for _, t := range req.Tenders {
		switch strings.ToUpper(t.Method) {
		case "EFTPOS":
			eftpos += t.Amount
		case "CASH":
			cash += t.Amount
		case "CHEQUE":
			cheque += t.Amount
		}
	}

	tx, err := s.store.BeginPosting()
	if err != nil {
		return 0, false, err
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else {
			err = tx.Commit()
		}
	}()

	notes := strings.TrimSpace(req.Notes)
	var newPaidUntil *time.Time
	if req.SiteFee > 0 {
		var current *time.Time
		current, err = tx.Expiry(req.MemberID)
		if err != nil {
			return 0, false, err
		}

		// Extensions stack onto unexpired time; a lapsed expiry floors the
		// baseline at today so a late payment never produces a date in the
		// past. The extension is a flat year regardless of the fee amount.
		today := dateOnly(s.now().In(s.loc))
		base := today
		if current != nil && dateOnly(*current).After(today) {
			base = dateOnly(*current)
		}
		next := base.AddDate(1, 0, 0)
		newPaidUntil = &next

		audit := fmt.Sprintf("Site contribution: +1 year ($%.2f). New paid until: %s",
			req.SiteFee, next.Format("02/01/2006"))
		if notes != "" {
			notes += "\n"
		}
		notes += audit
	}

	var siteType *string
	if req.SiteType != "" {
		siteType = &req.SiteType
	}

	rec := &Record{
		MemberID:       req.MemberID,
		CampID:         req.CampID,
		SiteID:         siteID,
		PaymentDate:    paymentDate,
		CampFee:        req.CampFee,
		SiteFee:        req.SiteFee,
		PrepaidApplied: req.PrepaidApplied,
		OtherAmount:    req.OtherAmount,
		Total:          total,
		Headcount:      req.Headcount,
		Notes:          notes,
		ArrivalDate:    arrival,
		DepartureDate:  departure,
		SiteType:       siteType,
		TenderEftpos:   eftpos,
		TenderCash:     cash,
		TenderCheque:   cheque,
		Concession:     req.Concession,
	}

	id, err = tx.InsertPayment(rec)
	if err != nil {
		return 0, false, err
	}

	for _, t := range req.Tenders {
		if t.Amount == 0 {
			continue
		}
		err = tx.InsertTender(id, Tender{Method: t.Method, Amount: t.Amount, Reference: t.Reference})
		if err != nil {
			return 0, false, err
		}
	}

	if newPaidUntil != nil {
		if err = tx.UpsertExpiry(req.MemberID, *newPaidUntil); err != nil {
			return 0, false, err
		}
		if err = tx.SetFeeStatus(req.MemberID, "Paid"); err != nil {
			return 0, false, err
		}
	}

	if req.PrepaidApplied > 0 {
		if err = s.drawDownCredits(tx, req.PrepaymentIDs, req.PrepaidApplied); err != nil {
			return 0, false, err
		}
	}

	return id, false, nil
}

// drawDownCredits consumes credits in caller order until the applied amount
// is covered. A credit larger than the remainder is reduced and marked
// Partial; smaller credits are zeroed and marked Applied. Credits already
// Applied or empty are skipped.
func (s *Service) drawDownCredits(tx PostingTx, creditIDs []int64, applied float64) error {
	remaining := applied
	for _, creditID := range creditIDs {
		if remaining <= 0 {
			break
		}
		credit, err := tx.Credit(creditID)
		if err != nil {
			return err
		}
		if credit == nil || credit.Status == CreditStatusApplied || credit.Amount <= 0 {
			continue
		}
		if credit.Amount > remaining {
			return tx.ReduceCredit(creditID, credit.Amount-remaining, CreditStatusPartial)
		}
		remaining -= credit.Amount
		if err := tx.ReduceCredit(creditID, 0, CreditStatusApplied); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) List(search string) ([]ListRow, error) {
	rows, err := s.store.FindAll(search)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return []ListRow{}, nil
	}
	return rows, nil
}

func (s *Service) UpdateFees(id int64, corr FeeCorrection) error {
	return s.store.UpdateFees(id, corr)
}

func (s *Service) Delete(id int64) error {
	return s.store.Delete(id)
}

// Summary aggregates tender and fee totals for the given date range,
// defaulting to today when no range is supplied.
func (s *Service) Summary(start, end string) (Summary, error) {
	var startAt, endAt time.Time
	if start != "" && end != "" {
		startDate, err := time.Parse(dateLayout, start)
		if err != nil {
			return Summary{}, NewValidationError("invalid start date")
		}
		endDate, err := time.Parse(dateLayout, end)
		if err != nil {
			return Summary{}, NewValidationError("invalid end date")
		}
		startAt = startDate
		endAt = endDate.Add(24*time.Hour - time.Second)
	} else {
		today := dateOnly(s.now().In(s.loc))
		startAt = today
		endAt = today.Add(24*time.Hour - time.Second)
	}
	return s.store.Summary(startAt, endAt)
}

// DashboardStats builds the occupancy dashboard for the given camp, or the
// latest active camp when no id is supplied.
func (s *Service) DashboardStats(campID *int64) (*DashboardStats, error) {
	var camp *Camp
	var err error
	if campID != nil {
		camp, err = s.store.CampByID(*campID)
	} else {
		camp, err = s.store.ActiveCamp()
	}
	if err != nil {
		return nil, err
	}
	if camp == nil {
		return nil, NewValidationError("No active camp found")
	}

	rows, err := s.store.StayRows(camp.ID)
	if err != nil {
		return nil, err
	}
	return buildDashboardStats(camp, rows, s.now().In(s.loc)), nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", dateLayout} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

func parseOptionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil
	}
	return &parsed
}

func safeRollback(tx PostingTx) {
	if err := tx.Rollback(); err != nil {
		log.Printf("Error during transaction rollback: %v", err)
	}
}
