package camp

import "database/sql"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const campColumns = "id, name, year, start_date, end_date, on_peak_start, on_peak_end, status"

func (r *Repository) FindAll() ([]Camp, error) {
	rows, err := r.db.Query("SELECT " + campColumns + " FROM camps ORDER BY start_date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCamps(rows)
}

func (r *Repository) FindActive() ([]Camp, error) {
	rows, err := r.db.Query("SELECT " + campColumns + " FROM camps WHERE status = 'Active' ORDER BY start_date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCamps(rows)
}

func scanCamps(rows *sql.Rows) ([]Camp, error) {
	var camps []Camp
	for rows.Next() {
		var c Camp
		var year sql.NullInt64
		var start, end, peakStart, peakEnd sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &year, &start, &end, &peakStart, &peakEnd, &c.Status); err != nil {
			return nil, err
		}
		if year.Valid {
			y := int(year.Int64)
			c.Year = &y
		}
		if start.Valid {
			c.StartDate = &start.Time
		}
		if end.Valid {
			c.EndDate = &end.Time
		}
		if peakStart.Valid {
			c.OnPeakStart = &peakStart.Time
		}
		if peakEnd.Valid {
			c.OnPeakEnd = &peakEnd.Time
		}
		camps = append(camps, c)
	}
	return camps, rows.Err()
}

func (r *Repository) Create(req *UpsertRequest) (int64, error) {
	var id int64
	err := r.db.QueryRow(
		`INSERT INTO camps (name, year, start_date, end_date, on_peak_start, on_peak_end, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		req.Name, req.Year, nullableDate(req.StartDate), nullableDate(req.EndDate),
		nullableDate(req.OnPeakStart), nullableDate(req.OnPeakEnd), req.Status,
	).Scan(&id)
	return id, err
}

func (r *Repository) Update(id int64, req *UpsertRequest) error {
	_, err := r.db.Exec(
		`UPDATE camps SET name = $1, year = $2, start_date = $3, end_date = $4,
			on_peak_start = $5, on_peak_end = $6, status = $7
		WHERE id = $8`,
		req.Name, req.Year, nullableDate(req.StartDate), nullableDate(req.EndDate),
		nullableDate(req.OnPeakStart), nullableDate(req.OnPeakEnd), req.Status, id,
	)
	return err
}

func (r *Repository) Delete(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	statements := []string{
		"DELETE FROM camp_rates WHERE camp_id = $1",
		"DELETE FROM camp_intranet_content WHERE camp_id = $1",
		"DELETE FROM camps WHERE id = $1",
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt, id); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *Repository) FindRates(campID int64) ([]Rate, error) {
	rows, err := r.db.Query(
		`SELECT id, camp_id, COALESCE(category, ''), COALESCE(item, ''), COALESCE(user_type, ''), amount
		FROM camp_rates WHERE camp_id = $1
		ORDER BY category, item, user_type`,
		campID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []Rate
	for rows.Next() {
		var rate Rate
		if err := rows.Scan(&rate.ID, &rate.CampID, &rate.Category, &rate.Item,
			&rate.UserType, &rate.Amount); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

func (r *Repository) CreateRate(req *RateRequest) (int64, error) {
	var id int64
	err := r.db.QueryRow(
		`INSERT INTO camp_rates (camp_id, category, item, user_type, amount)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		req.CampID, req.Category, req.Item, req.UserType, req.Amount,
	).Scan(&id)
	return id, err
}

func (r *Repository) UpdateRate(id int64, req *RateRequest) error {
	_, err := r.db.Exec(
		"UPDATE camp_rates SET category = $1, item = $2, user_type = $3, amount = $4 WHERE id = $5",
		req.Category, req.Item, req.UserType, req.Amount, id,
	)
	return err
}

func (r *Repository) DeleteRate(id int64) error {
	_, err := r.db.Exec("DELETE FROM camp_rates WHERE id = $1", id)
	return err
}

// CloneRates copies every rate row from one camp to another in a single
// transaction. The source camp's card is left untouched.
func (r *Repository) CloneRates(fromCampID, toCampID int64) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	result, err := tx.Exec(
		`INSERT INTO camp_rates (camp_id, category, item, user_type, amount)
		SELECT $1, category, item, user_type, amount FROM camp_rates WHERE camp_id = $2`,
		toCampID, fromCampID,
	)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	count, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	return count, tx.Commit()
}

func nullableDate(value *string) interface{} {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}
