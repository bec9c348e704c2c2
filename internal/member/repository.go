package member

import (
	"database/sql"
	"errors"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// FindAll lists members with the furthest paid-until date from the site-fee
// ledger. A member may have no ledger row at all, so the join is outer.
func (r *Repository) FindAll() ([]Member, error) {
	rows, err := r.db.Query(
		`SELECT m.id, m.first_name, m.last_name, COALESCE(m.fellowship, ''),
			m.concession, m.site_fee_status, sfa.paid_until
		FROM members m
		LEFT JOIN (
			SELECT member_id, MAX(paid_until) AS paid_until
			FROM site_fee_accounts
			GROUP BY member_id
		) sfa ON m.id = sfa.member_id
		ORDER BY m.last_name, m.first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		var paidUntil sql.NullTime
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Fellowship,
			&m.Concession, &m.SiteFeeStatus, &paidUntil); err != nil {
			return nil, err
		}
		if paidUntil.Valid {
			m.SiteFeePaidUntil = &paidUntil.Time
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *Repository) Create(firstName, lastName, fellowship, concession, feeStatus string) (int64, error) {
	var id int64
	err := r.db.QueryRow(
		`INSERT INTO members (first_name, last_name, fellowship, concession, site_fee_status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		firstName, lastName, fellowship, concession, feeStatus,
	).Scan(&id)
	return id, err
}

func (r *Repository) Update(id int64, firstName, lastName, fellowship, concession, feeStatus string) error {
	_, err := r.db.Exec(
		`UPDATE members SET first_name = $1, last_name = $2, fellowship = $3,
			concession = $4, site_fee_status = $5
		WHERE id = $6`,
		firstName, lastName, fellowship, concession, feeStatus, id,
	)
	return err
}

// UpsertPaidUntil writes the ledger date outside any posting transaction,
// for direct administrative edits from the members screen.
func (r *Repository) UpsertPaidUntil(memberID int64, paidUntil time.Time) error {
	var id int64
	err := r.db.QueryRow(
		"SELECT id FROM site_fee_accounts WHERE member_id = $1 ORDER BY paid_until DESC LIMIT 1",
		memberID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_, err = r.db.Exec(
				"INSERT INTO site_fee_accounts (member_id, paid_until, status) VALUES ($1, $2, 'Paid')",
				memberID, paidUntil,
			)
			return err
		}
		return err
	}
	_, err = r.db.Exec("UPDATE site_fee_accounts SET paid_until = $1 WHERE id = $2", paidUntil, id)
	return err
}

func (r *Repository) DeletePaidUntil(memberID int64) error {
	_, err := r.db.Exec("DELETE FROM site_fee_accounts WHERE member_id = $1", memberID)
	return err
}

func (r *Repository) History(memberID int64) (*History, error) {
	history := &History{
		Payments:    []HistoryPayment{},
		Allocations: []Allocation{},
		Prepayments: []HistoryCredit{},
	}

	rows, err := r.db.Query(
		`SELECT p.id, p.camp_id, c.name, p.payment_date, p.camp_fee, p.site_fee,
			p.other_amount, p.total, p.headcount, COALESCE(p.notes, ''),
			p.arrival_date, p.departure_date
		FROM payments p
		LEFT JOIN camps c ON p.camp_id = c.id
		WHERE p.member_id = $1
		ORDER BY p.payment_date DESC`,
		memberID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p HistoryPayment
		var headcount sql.NullInt64
		var arrival, departure sql.NullTime
		if err := rows.Scan(&p.ID, &p.CampID, &p.CampName, &p.PaymentDate, &p.CampFee,
			&p.SiteFee, &p.OtherAmount, &p.Total, &headcount, &p.Notes,
			&arrival, &departure); err != nil {
			return nil, err
		}
		if headcount.Valid {
			hc := int(headcount.Int64)
			p.Headcount = &hc
		}
		if arrival.Valid {
			p.ArrivalDate = &arrival.Time
		}
		if departure.Valid {
			p.DepartureDate = &departure.Time
		}
		history.Payments = append(history.Payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	allocRows, err := r.db.Query(
		`SELECT sa.id, sa.site_id, sa.member_id, s.site_number, sa.start_date, sa.is_current
		FROM site_allocations sa
		JOIN sites s ON sa.site_id = s.id
		WHERE sa.member_id = $1
		ORDER BY sa.start_date DESC`,
		memberID,
	)
	if err != nil {
		return nil, err
	}
	defer allocRows.Close()
	for allocRows.Next() {
		var a Allocation
		var start sql.NullTime
		if err := allocRows.Scan(&a.ID, &a.SiteID, &a.MemberID, &a.SiteNumber,
			&start, &a.IsCurrent); err != nil {
			return nil, err
		}
		if start.Valid {
			a.StartDate = &start.Time
		}
		history.Allocations = append(history.Allocations, a)
	}
	if err := allocRows.Err(); err != nil {
		return nil, err
	}

	creditRows, err := r.db.Query(
		`SELECT id, camp_id, amount, COALESCE(transaction_id, ''), date, status
		FROM prepayments
		WHERE matched_member_id = $1
		ORDER BY id DESC`,
		memberID,
	)
	if err != nil {
		return nil, err
	}
	defer creditRows.Close()
	for creditRows.Next() {
		var c HistoryCredit
		var date sql.NullTime
		if err := creditRows.Scan(&c.ID, &c.CampID, &c.Amount, &c.TransactionID,
			&date, &c.Status); err != nil {
			return nil, err
		}
		if date.Valid {
			c.Date = &date.Time
		}
		history.Prepayments = append(history.Prepayments, c)
	}
	if err := creditRows.Err(); err != nil {
		return nil, err
	}

	var paidUntil sql.NullTime
	err = r.db.QueryRow(
		"SELECT MAX(paid_until) FROM site_fee_accounts WHERE member_id = $1",
		memberID,
	).Scan(&paidUntil)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if paidUntil.Valid {
		history.SiteFeePaidUntil = &paidUntil.Time
	}
	return history, nil
}

// Delete removes a member and everything hanging off them: allocations,
// ledger rows, payments with their tenders, and any matched prepayments are
// unmatched rather than deleted.
func (r *Repository) Delete(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	statements := []string{
		"DELETE FROM site_allocations WHERE member_id = $1",
		"DELETE FROM site_fee_accounts WHERE member_id = $1",
		"DELETE FROM payment_tenders WHERE payment_id IN (SELECT id FROM payments WHERE member_id = $1)",
		"DELETE FROM payments WHERE member_id = $1",
		"UPDATE prepayments SET matched_member_id = NULL, status = 'Unmatched' WHERE matched_member_id = $1",
		"DELETE FROM members WHERE id = $1",
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt, id); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// DeleteAll wipes the membership tables. It is a reset tool, so payments go
// too; imported prepayments are kept but unmatched.
func (r *Repository) DeleteAll() error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	statements := []string{
		"DELETE FROM site_allocations",
		"DELETE FROM site_fee_accounts",
		"DELETE FROM payment_tenders",
		"DELETE FROM payments",
		"UPDATE prepayments SET matched_member_id = NULL, status = 'Unmatched'",
		"DELETE FROM members",
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// MarkExpired flags members whose furthest paid-until date has passed.
// Returns how many rows changed so the scheduler can log it.
func (r *Repository) MarkExpired(before time.Time) (int64, error) {
	result, err := r.db.Exec(
		`UPDATE members SET site_fee_status = 'Expired'
		WHERE site_fee_status <> 'Expired'
			AND id IN (
				SELECT member_id FROM site_fee_accounts
				GROUP BY member_id
				HAVING MAX(paid_until) < $1
			)`,
		before,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
