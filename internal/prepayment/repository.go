package prepayment

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Credit struct {
	ID              int64      `json:"id"`
	CampID          *int64     `json:"camp_id"`
	ImportedName    string     `json:"imported_name"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Amount          float64    `json:"amount"`
	TransactionID   string     `json:"transaction_id"`
	Date            *time.Time `json:"date"`
	MatchedMemberID *int64     `json:"matched_member_id"`
	OriginalData    string     `json:"original_data"`
	Status          string     `json:"status"`
	MemberFirstName *string    `json:"member_first_name"`
	MemberLastName  *string    `json:"member_last_name"`
}

const (
	StatusUnmatched   = "Unmatched"
	StatusMatched     = "Matched"
	StatusNeedsReview = "Needs Review"
	StatusPartial     = "Partial"
	StatusApplied     = "Applied"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// FindByCamp lists credits for a camp with the matched member's name joined,
// optionally filtered by a search term and/or status.
func (r *Repository) FindByCamp(campID int64, search, status string) ([]Credit, error) {
	query := `SELECT p.id, p.camp_id, COALESCE(p.imported_name, ''), COALESCE(p.first_name, ''),
			COALESCE(p.last_name, ''), p.amount, COALESCE(p.transaction_id, ''), p.date,
			p.matched_member_id, COALESCE(p.original_data, ''), p.status,
			m.first_name, m.last_name
		FROM prepayments p
		LEFT JOIN members m ON p.matched_member_id = m.id
		WHERE p.camp_id = $1`
	args := []interface{}{campID}

	if search != "" {
		query += ` AND (COALESCE(p.first_name,'') ILIKE '%' || $2 || '%'
			OR COALESCE(p.last_name,'') ILIKE '%' || $2 || '%'
			OR COALESCE(p.transaction_id,'') ILIKE '%' || $2 || '%')`
		args = append(args, search)
	}
	if status != "" {
		query += fmt.Sprintf(" AND p.status = $%d", len(args)+1)
		args = append(args, status)
	}
	query += " ORDER BY p.id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credits []Credit
	for rows.Next() {
		var c Credit
		var date sql.NullTime
		if err := rows.Scan(&c.ID, &c.CampID, &c.ImportedName, &c.FirstName, &c.LastName,
			&c.Amount, &c.TransactionID, &date, &c.MatchedMemberID, &c.OriginalData,
			&c.Status, &c.MemberFirstName, &c.MemberLastName); err != nil {
			return nil, err
		}
		if date.Valid {
			c.Date = &date.Time
		}
		credits = append(credits, c)
	}
	return credits, rows.Err()
}

// Match links a credit to a member.
func (r *Repository) Match(id, memberID int64) error {
	_, err := r.db.Exec(
		"UPDATE prepayments SET matched_member_id = $1, status = $2 WHERE id = $3",
		memberID, StatusMatched, id,
	)
	return err
}

// DeleteAll removes every credit, or only a camp's credits when campID is
// given.
func (r *Repository) DeleteAll(campID *int64) error {
	if campID != nil {
		_, err := r.db.Exec("DELETE FROM prepayments WHERE camp_id = $1", *campID)
		return err
	}
	_, err := r.db.Exec("DELETE FROM prepayments")
	return err
}

// Insert stores one imported credit.
func (r *Repository) Insert(c Credit) (int64, error) {
	var id int64
	err := r.db.QueryRow(
		`INSERT INTO prepayments
			(camp_id, imported_name, first_name, last_name, amount, transaction_id, date, matched_member_id, original_data, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		c.CampID, c.ImportedName, c.FirstName, c.LastName, c.Amount, c.TransactionID,
		c.Date, c.MatchedMemberID, c.OriginalData, c.Status,
	).Scan(&id)
	return id, err
}

// CreditWithTransaction reads one credit's balance and status inside the
// caller's transaction. Returns nil when the credit does not exist.
func (r *Repository) CreditWithTransaction(tx *sql.Tx, id int64) (amount float64, status string, found bool, err error) {
	err = tx.QueryRow(
		"SELECT amount, COALESCE(status, '') FROM prepayments WHERE id = $1",
		id,
	).Scan(&amount, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", false, nil
		}
		return 0, "", false, err
	}
	return amount, status, true, nil
}

// ReduceWithTransaction writes a credit's new balance and status. Draw-down
// only ever decreases the amount.
func (r *Repository) ReduceWithTransaction(tx *sql.Tx, id int64, newAmount float64, status string) error {
	_, err := tx.Exec("UPDATE prepayments SET amount = $1, status = $2 WHERE id = $3", newAmount, status, id)
	return err
}
