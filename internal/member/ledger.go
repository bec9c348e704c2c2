package member

import (
	"database/sql"
	"errors"
	"time"
)

// LedgerRepository is the site-fee ledger accessor: one rolling paid-until
// date and one status flag per member. The payment posting service mutates
// it inside its own transaction, so the write methods take the caller's
// *sql.Tx.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ExpiryWithTransaction returns the member's current paid-until date, or nil
// when the member has no ledger row yet.
func (r *LedgerRepository) ExpiryWithTransaction(tx *sql.Tx, memberID int64) (*time.Time, error) {
	var paidUntil sql.NullTime
	err := tx.QueryRow(
		"SELECT MAX(paid_until) FROM site_fee_accounts WHERE member_id = $1",
		memberID,
	).Scan(&paidUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if !paidUntil.Valid {
		return nil, nil
	}
	return &paidUntil.Time, nil
}

// UpsertExpiryWithTransaction writes the new paid-until date, creating the
// ledger row if the member does not have one.
func (r *LedgerRepository) UpsertExpiryWithTransaction(tx *sql.Tx, memberID int64, paidUntil time.Time) error {
	var id int64
	err := tx.QueryRow(
		"SELECT id FROM site_fee_accounts WHERE member_id = $1 ORDER BY paid_until DESC LIMIT 1",
		memberID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_, err = tx.Exec(
				"INSERT INTO site_fee_accounts (member_id, paid_until, status) VALUES ($1, $2, 'Paid')",
				memberID, paidUntil,
			)
			return err
		}
		return err
	}
	_, err = tx.Exec(
		"UPDATE site_fee_accounts SET paid_until = $1, status = 'Paid' WHERE id = $2",
		paidUntil, id,
	)
	return err
}

// SetFeeStatusWithTransaction flags the member row itself.
func (r *LedgerRepository) SetFeeStatusWithTransaction(tx *sql.Tx, memberID int64, status string) error {
	_, err := tx.Exec("UPDATE members SET site_fee_status = $1 WHERE id = $2", status, memberID)
	return err
}
