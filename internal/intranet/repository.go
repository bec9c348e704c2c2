package intranet

import (
	"database/sql"
	"errors"
	"time"
)

// CampSummary is the slice of the active camp the intranet page shows.
type CampSummary struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Year      *int       `json:"year"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// Content is the editable intranet page body for one camp.
type Content struct {
	Program       string     `json:"program"`
	Notifications string     `json:"notifications"`
	Events        string     `json:"events"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

// Page is what both the public and admin endpoints return: the active camp
// (nil when none is active) and its content.
type Page struct {
	Camp    *CampSummary `json:"camp"`
	Content Content      `json:"content"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ActiveCamp() (*CampSummary, error) {
	var camp CampSummary
	var year sql.NullInt64
	var start, end sql.NullTime
	err := r.db.QueryRow(
		`SELECT id, name, year, start_date, end_date FROM camps
		WHERE status = 'Active' ORDER BY start_date DESC LIMIT 1`,
	).Scan(&camp.ID, &camp.Name, &year, &start, &end)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if year.Valid {
		y := int(year.Int64)
		camp.Year = &y
	}
	if start.Valid {
		camp.StartDate = &start.Time
	}
	if end.Valid {
		camp.EndDate = &end.Time
	}
	return &camp, nil
}

func (r *Repository) ContentFor(campID int64) (Content, error) {
	var content Content
	var updatedAt sql.NullTime
	err := r.db.QueryRow(
		"SELECT program, notifications, events, updated_at FROM camp_intranet_content WHERE camp_id = $1",
		campID,
	).Scan(&content.Program, &content.Notifications, &content.Events, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Content{}, nil
		}
		return Content{}, err
	}
	if updatedAt.Valid {
		content.UpdatedAt = &updatedAt.Time
	}
	return content, nil
}

func (r *Repository) Upsert(campID int64, program, notifications, events string) error {
	_, err := r.db.Exec(
		`INSERT INTO camp_intranet_content (camp_id, program, notifications, events, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (camp_id) DO UPDATE SET
			program = EXCLUDED.program,
			notifications = EXCLUDED.notifications,
			events = EXCLUDED.events,
			updated_at = NOW()`,
		campID, program, notifications, events,
	)
	return err
}
