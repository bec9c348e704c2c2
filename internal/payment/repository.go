package payment

import (
	"database/sql"
	"errors"
	"time"

	"github.com/campo/CampManager/internal/member"
	"github.com/campo/CampManager/internal/prepayment"
)

// Repository implements Store over Postgres. The ledger and credit accessors
// are owned by the member and prepayment packages; the repository stitches
// them into the posting transaction.
type Repository struct {
	db      *sql.DB
	ledger  *member.LedgerRepository
	credits *prepayment.Repository
}

func NewRepository(db *sql.DB, ledger *member.LedgerRepository, credits *prepayment.Repository) *Repository {
	return &Repository{db: db, ledger: ledger, credits: credits}
}

func (r *Repository) BeginPosting() (PostingTx, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	return &postingTx{tx: tx, ledger: r.ledger, credits: r.credits}, nil
}

func (r *Repository) HasRecentDuplicate(memberID int64, total float64, since time.Time) (bool, error) {
	var id int64
	err := r.db.QueryRow(
		`SELECT id FROM payments
		WHERE member_id = $1 AND total = $2 AND created_at > $3
		ORDER BY id DESC LIMIT 1`,
		memberID, total, since,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Repository) CurrentSiteID(memberID int64) (*int64, error) {
	var siteID int64
	err := r.db.QueryRow(
		"SELECT site_id FROM site_allocations WHERE member_id = $1 AND is_current LIMIT 1",
		memberID,
	).Scan(&siteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &siteID, nil
}

func (r *Repository) FindAll(search string) ([]ListRow, error) {
	query := `SELECT p.id, p.member_id, p.camp_id, p.site_id, p.payment_date,
			p.camp_fee, p.site_fee, p.prepaid_applied, p.other_amount, p.total,
			p.headcount, COALESCE(p.notes, ''), p.arrival_date, p.departure_date,
			p.site_type, p.tender_eftpos, p.tender_cash, p.tender_cheque,
			p.concession, p.created_at,
			COALESCE(m.first_name, ''), COALESCE(m.last_name, ''), c.name, s.site_number
		FROM payments p
		LEFT JOIN members m ON p.member_id = m.id
		LEFT JOIN camps c ON p.camp_id = c.id
		LEFT JOIN sites s ON p.site_id = s.id`
	var args []interface{}
	if search != "" {
		query += ` WHERE COALESCE(m.first_name,'') ILIKE '%' || $1 || '%'
			OR COALESCE(m.last_name,'') ILIKE '%' || $1 || '%'
			OR COALESCE(p.notes,'') ILIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	query += " ORDER BY p.payment_date DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []ListRow
	for rows.Next() {
		var row ListRow
		var headcount sql.NullInt64
		var arrival, departure sql.NullTime
		var concession int
		if err := rows.Scan(&row.ID, &row.MemberID, &row.CampID, &row.SiteID, &row.PaymentDate,
			&row.CampFee, &row.SiteFee, &row.PrepaidApplied, &row.OtherAmount, &row.Total,
			&headcount, &row.Notes, &arrival, &departure,
			&row.SiteType, &row.TenderEftpos, &row.TenderCash, &row.TenderCheque,
			&concession, &row.CreatedAt,
			&row.FirstName, &row.LastName, &row.CampName, &row.SiteNumber); err != nil {
			return nil, err
		}
		if headcount.Valid {
			hc := int(headcount.Int64)
			row.Headcount = &hc
		}
		if arrival.Valid {
			row.ArrivalDate = &arrival.Time
		}
		if departure.Valid {
			row.DepartureDate = &departure.Time
		}
		row.Concession = concession == 1
		payments = append(payments, row)
	}
	return payments, rows.Err()
}

func (r *Repository) UpdateFees(id int64, corr FeeCorrection) error {
	_, err := r.db.Exec(
		`UPDATE payments SET camp_fee = $1, site_fee = $2, total = $3, notes = $4,
			payment_date = $5, arrival_date = $6, departure_date = $7
		WHERE id = $8`,
		corr.CampFee, corr.SiteFee, corr.Total, corr.Notes,
		corr.PaymentDate, nullableDate(corr.ArrivalDate), nullableDate(corr.DepartureDate), id,
	)
	return err
}

// Delete removes a payment and its tender rows in one transaction.
func (r *Repository) Delete(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM payment_tenders WHERE payment_id = $1", id); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("DELETE FROM payments WHERE id = $1", id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Repository) Summary(start, end time.Time) (Summary, error) {
	var s Summary
	err := r.db.QueryRow(
		`SELECT
			COALESCE(SUM(pt.amount), 0),
			COALESCE(SUM(CASE WHEN pt.method = 'EFTPOS' THEN pt.amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN pt.method = 'Cash' THEN pt.amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN pt.method = 'Cheque' THEN pt.amount ELSE 0 END), 0),
			COALESCE(SUM(p.site_fee), 0),
			COALESCE(SUM(p.camp_fee), 0),
			COUNT(DISTINCT p.id),
			COALESCE(SUM(p.headcount), 0)
		FROM payments p
		LEFT JOIN payment_tenders pt ON p.id = pt.payment_id
		WHERE p.payment_date BETWEEN $1 AND $2`,
		start, end,
	).Scan(&s.TotalRevenue, &s.Eftpos, &s.Cash, &s.Cheque,
		&s.SiteContributionTotal, &s.CampFeeTotal, &s.PaymentCount, &s.HeadcountTotal)
	return s, err
}

func (r *Repository) CampByID(id int64) (*Camp, error) {
	return r.scanCamp(r.db.QueryRow(
		"SELECT id, name, start_date, end_date FROM camps WHERE id = $1", id))
}

func (r *Repository) ActiveCamp() (*Camp, error) {
	return r.scanCamp(r.db.QueryRow(
		"SELECT id, name, start_date, end_date FROM camps WHERE status = 'Active' ORDER BY start_date DESC LIMIT 1"))
}

func (r *Repository) scanCamp(row *sql.Row) (*Camp, error) {
	var camp Camp
	err := row.Scan(&camp.ID, &camp.Name, &camp.StartDate, &camp.EndDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &camp, nil
}

func (r *Repository) StayRows(campID int64) ([]StayRow, error) {
	rows, err := r.db.Query(
		`SELECT COALESCE(p.headcount, 0), p.arrival_date, p.departure_date,
			m.first_name, m.last_name, s.site_number
		FROM payments p
		JOIN members m ON p.member_id = m.id
		LEFT JOIN sites s ON p.site_id = s.id
		WHERE p.camp_id = $1
			AND p.arrival_date IS NOT NULL
			AND p.departure_date IS NOT NULL`,
		campID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stays []StayRow
	for rows.Next() {
		var stay StayRow
		if err := rows.Scan(&stay.Headcount, &stay.ArrivalDate, &stay.DepartureDate,
			&stay.FirstName, &stay.LastName, &stay.SiteNumber); err != nil {
			return nil, err
		}
		stays = append(stays, stay)
	}
	return stays, rows.Err()
}

func nullableDate(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

type postingTx struct {
	tx      *sql.Tx
	ledger  *member.LedgerRepository
	credits *prepayment.Repository
}

func (p *postingTx) InsertPayment(rec *Record) (int64, error) {
	concession := 0
	if rec.Concession {
		concession = 1
	}
	var id int64
	err := p.tx.QueryRow(
		`INSERT INTO payments (
			member_id, camp_id, site_id, payment_date,
			camp_fee, site_fee, prepaid_applied, other_amount,
			total, headcount, notes, arrival_date, departure_date,
			site_type, tender_eftpos, tender_cash, tender_cheque, concession
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id`,
		rec.MemberID, rec.CampID, rec.SiteID, rec.PaymentDate,
		rec.CampFee, rec.SiteFee, rec.PrepaidApplied, rec.OtherAmount,
		rec.Total, rec.Headcount, rec.Notes, rec.ArrivalDate, rec.DepartureDate,
		rec.SiteType, rec.TenderEftpos, rec.TenderCash, rec.TenderCheque, concession,
	).Scan(&id)
	return id, err
}

func (p *postingTx) InsertTender(paymentID int64, t Tender) error {
	_, err := p.tx.Exec(
		"INSERT INTO payment_tenders (payment_id, method, amount, reference) VALUES ($1, $2, $3, $4)",
		paymentID, t.Method, t.Amount, t.Reference,
	)
	return err
}

func (p *postingTx) Expiry(memberID int64) (*time.Time, error) {
	return p.ledger.ExpiryWithTransaction(p.tx, memberID)
}

func (p *postingTx) UpsertExpiry(memberID int64, paidUntil time.Time) error {
	return p.ledger.UpsertExpiryWithTransaction(p.tx, memberID, paidUntil)
}

func (p *postingTx) SetFeeStatus(memberID int64, status string) error {
	return p.ledger.SetFeeStatusWithTransaction(p.tx, memberID, status)
}

func (p *postingTx) Credit(id int64) (*Credit, error) {
	amount, status, found, err := p.credits.CreditWithTransaction(p.tx, id)
	if err != nil || !found {
		return nil, err
	}
	return &Credit{ID: id, Amount: amount, Status: status}, nil
}

func (p *postingTx) ReduceCredit(id int64, newAmount float64, status string) error {
	return p.credits.ReduceWithTransaction(p.tx, id, newAmount, status)
}

func (p *postingTx) Commit() error {
	return p.tx.Commit()
}

func (p *postingTx) Rollback() error {
	return p.tx.Rollback()
}
