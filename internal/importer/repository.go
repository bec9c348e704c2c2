package importer

import (
	"database/sql"
	"errors"
	"time"

	"github.com/campo/CampManager/internal/prepayment"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) BeginImport() (ImportTx, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	return &importTx{tx: tx}, nil
}

type importTx struct {
	tx *sql.Tx
}

func (t *importTx) MemberIDByName(firstName, lastName string) (*int64, error) {
	var id int64
	err := t.tx.QueryRow(
		"SELECT id FROM members WHERE LOWER(first_name) = LOWER($1) AND LOWER(last_name) = LOWER($2) LIMIT 1",
		firstName, lastName,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

func (t *importTx) MembersByName(firstName, lastName string) ([]int64, error) {
	rows, err := t.tx.Query(
		"SELECT id FROM members WHERE LOWER(first_name) = LOWER($1) AND LOWER(last_name) = LOWER($2)",
		firstName, lastName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (t *importTx) AnyMemberWithLastName(lastName string) (bool, error) {
	var id int64
	err := t.tx.QueryRow(
		"SELECT id FROM members WHERE LOWER(last_name) = LOWER($1) LIMIT 1",
		lastName,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (t *importTx) InsertMember(firstName, lastName, fellowship, concession, feeStatus string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(
		`INSERT INTO members (first_name, last_name, fellowship, concession, site_fee_status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		firstName, lastName, fellowship, concession, feeStatus,
	).Scan(&id)
	return id, err
}

func (t *importTx) UpdateMemberDetails(id int64, fellowship, concession, feeStatus string) error {
	_, err := t.tx.Exec(
		"UPDATE members SET fellowship = $1, concession = $2, site_fee_status = $3 WHERE id = $4",
		fellowship, concession, feeStatus, id,
	)
	return err
}

func (t *importTx) UpsertPaidUntil(memberID int64, paidUntil time.Time) error {
	var id int64
	err := t.tx.QueryRow(
		"SELECT id FROM site_fee_accounts WHERE member_id = $1 ORDER BY paid_until DESC LIMIT 1",
		memberID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_, err = t.tx.Exec(
				"INSERT INTO site_fee_accounts (member_id, paid_until, status) VALUES ($1, $2, 'Paid')",
				memberID, paidUntil,
			)
			return err
		}
		return err
	}
	_, err = t.tx.Exec("UPDATE site_fee_accounts SET paid_until = $1, status = 'Paid' WHERE id = $2", paidUntil, id)
	return err
}

func (t *importTx) SetFeeStatus(memberID int64, status string) error {
	_, err := t.tx.Exec("UPDATE members SET site_fee_status = $1 WHERE id = $2", status, memberID)
	return err
}

func (t *importTx) SiteIDByNumber(siteNumber string) (*int64, error) {
	var id int64
	err := t.tx.QueryRow("SELECT id FROM sites WHERE site_number = $1 LIMIT 1", siteNumber).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

func (t *importTx) InsertSite(siteNumber, siteType string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(
		"INSERT INTO sites (site_number, site_type, status) VALUES ($1, NULLIF($2, ''), 'Allocated') RETURNING id",
		siteNumber, siteType,
	).Scan(&id)
	return id, err
}

func (t *importTx) EnsureAllocation(siteID, memberID int64) error {
	var id int64
	err := t.tx.QueryRow(
		"SELECT id FROM site_allocations WHERE site_id = $1 AND member_id = $2 AND is_current",
		siteID, memberID,
	).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if _, err := t.tx.Exec(
		"INSERT INTO site_allocations (site_id, member_id, start_date, is_current) VALUES ($1, $2, CURRENT_DATE, TRUE)",
		siteID, memberID,
	); err != nil {
		return err
	}
	_, err = t.tx.Exec("UPDATE sites SET status = 'Allocated' WHERE id = $1", siteID)
	return err
}

func (t *importTx) HasDuplicateCredit(campID int64, transactionID, importedName string, amount float64) (bool, error) {
	var id int64
	err := t.tx.QueryRow(
		`SELECT id FROM prepayments
		WHERE camp_id = $1
			AND ((COALESCE(transaction_id, '') <> '' AND transaction_id = $2)
				OR (imported_name = $3 AND amount = $4))
		LIMIT 1`,
		campID, transactionID, importedName, amount,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (t *importTx) InsertCredit(c prepayment.Credit) (int64, error) {
	var id int64
	err := t.tx.QueryRow(
		`INSERT INTO prepayments
			(camp_id, imported_name, first_name, last_name, amount, transaction_id, date, matched_member_id, original_data, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		c.CampID, c.ImportedName, c.FirstName, c.LastName, c.Amount, c.TransactionID,
		c.Date, c.MatchedMemberID, c.OriginalData, c.Status,
	).Scan(&id)
	return id, err
}

func (t *importTx) InsertRate(campID int64, category, item, userType string, amount float64) (int64, error) {
	var id int64
	err := t.tx.QueryRow(
		`INSERT INTO camp_rates (camp_id, category, item, user_type, amount)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		campID, category, item, userType, amount,
	).Scan(&id)
	return id, err
}

func (t *importTx) InsertLegacyPayment(p LegacyPayment) (int64, error) {
	var id int64
	err := t.tx.QueryRow(
		`INSERT INTO payments (
			member_id, camp_id, site_id, payment_date,
			camp_fee, site_fee, prepaid_applied, other_amount,
			total, headcount, notes, arrival_date, departure_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'Legacy Import', $11, $12)
		RETURNING id`,
		p.MemberID, p.CampID, p.SiteID, p.PaymentDate,
		p.CampFee, p.SiteFee, p.PrepaidApplied, p.OtherAmount,
		p.Total, p.Headcount, p.ArrivalDate, p.DepartureDate,
	).Scan(&id)
	return id, err
}

func (t *importTx) InsertTender(paymentID int64, method string, amount float64) error {
	_, err := t.tx.Exec(
		"INSERT INTO payment_tenders (payment_id, method, amount) VALUES ($1, $2, $3)",
		paymentID, method, amount,
	)
	return err
}

func (t *importTx) Commit() error {
	return t.tx.Commit()
}

func (t *importTx) Rollback() error {
	return t.tx.Rollback()
}
