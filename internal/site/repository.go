package site

import (
	"database/sql"
	"strings"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// FindAll lists every site with its current occupants merged in, so the
// sites screen renders from a single response.
func (r *Repository) FindAll() ([]Site, error) {
	rows, err := r.db.Query(
		`SELECT id, site_number, site_type, power, water, sewer, status, map_x, map_y
		FROM sites ORDER BY site_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []Site
	index := make(map[int64]int)
	for rows.Next() {
		var s Site
		var mapX, mapY sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.SiteNumber, &s.SiteType, &s.Power, &s.Water,
			&s.Sewer, &s.Status, &mapX, &mapY); err != nil {
			return nil, err
		}
		if mapX.Valid {
			s.MapX = &mapX.Float64
		}
		if mapY.Valid {
			s.MapY = &mapY.Float64
		}
		s.Occupants = []Occupant{}
		index[s.ID] = len(sites)
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	occRows, err := r.db.Query(
		`SELECT sa.site_id, sa.member_id, m.first_name, m.last_name
		FROM site_allocations sa
		JOIN members m ON m.id = sa.member_id
		WHERE sa.is_current
		ORDER BY m.last_name, m.first_name`)
	if err != nil {
		return nil, err
	}
	defer occRows.Close()
	for occRows.Next() {
		var siteID, memberID int64
		var firstName, lastName string
		if err := occRows.Scan(&siteID, &memberID, &firstName, &lastName); err != nil {
			return nil, err
		}
		i, ok := index[siteID]
		if !ok {
			continue
		}
		sites[i].Occupants = append(sites[i].Occupants, Occupant{
			ID:   memberID,
			Name: strings.TrimSpace(firstName + " " + lastName),
		})
	}
	if err := occRows.Err(); err != nil {
		return nil, err
	}

	for i := range sites {
		names := make([]string, 0, len(sites[i].Occupants))
		for _, o := range sites[i].Occupants {
			names = append(names, o.Name)
		}
		sites[i].OccupantName = strings.Join(names, ", ")
		if len(sites[i].Occupants) > 0 {
			id := sites[i].Occupants[0].ID
			sites[i].OccupantID = &id
		}
	}
	return sites, nil
}

// PublicMap returns the reduced pin data exposed without a session.
func (r *Repository) PublicMap() ([]MapPin, error) {
	rows, err := r.db.Query(
		`SELECT s.id, s.site_number, s.map_x, s.map_y, s.site_type,
			CASE WHEN sa.id IS NOT NULL THEN 'Occupied' ELSE 'Available' END,
			NULLIF(TRIM(COALESCE(m.first_name, '') || ' ' || COALESCE(m.last_name, '')), '')
		FROM sites s
		LEFT JOIN site_allocations sa ON s.id = sa.site_id AND sa.is_current
		LEFT JOIN members m ON sa.member_id = m.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pins []MapPin
	for rows.Next() {
		var p MapPin
		var mapX, mapY sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.SiteNumber, &mapX, &mapY, &p.SiteType,
			&p.Status, &p.OccupantName); err != nil {
			return nil, err
		}
		if mapX.Valid {
			p.MapX = &mapX.Float64
		}
		if mapY.Valid {
			p.MapY = &mapY.Float64
		}
		pins = append(pins, p)
	}
	return pins, rows.Err()
}

func (r *Repository) Create(req *UpsertRequest) (int64, error) {
	var id int64
	err := r.db.QueryRow(
		`INSERT INTO sites (site_number, site_type, power, water, sewer, map_x, map_y)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		req.SiteNumber, req.SiteType, req.Power, req.Water, req.Sewer, req.MapX, req.MapY,
	).Scan(&id)
	return id, err
}

func (r *Repository) Update(id int64, req *UpsertRequest) error {
	_, err := r.db.Exec(
		`UPDATE sites SET site_number = $1, site_type = $2, power = $3, water = $4, sewer = $5
		WHERE id = $6`,
		req.SiteNumber, req.SiteType, req.Power, req.Water, req.Sewer, id,
	)
	return err
}

func (r *Repository) Delete(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM site_allocations WHERE site_id = $1", id); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("DELETE FROM sites WHERE id = $1", id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Repository) UpdateMapCoords(id int64, mapX, mapY float64) error {
	_, err := r.db.Exec("UPDATE sites SET map_x = $1, map_y = $2 WHERE id = $3", mapX, mapY, id)
	return err
}

// Allocate makes the member a current occupant of the site and flags the
// site as allocated. Existing occupants are untouched, sites can be shared.
func (r *Repository) Allocate(siteID, memberID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	var existing int64
	err = tx.QueryRow(
		"SELECT id FROM site_allocations WHERE site_id = $1 AND member_id = $2 AND is_current",
		siteID, memberID,
	).Scan(&existing)
	if err == sql.ErrNoRows {
		if _, err := tx.Exec(
			"INSERT INTO site_allocations (site_id, member_id, start_date, is_current) VALUES ($1, $2, CURRENT_DATE, TRUE)",
			siteID, memberID,
		); err != nil {
			tx.Rollback()
			return err
		}
	} else if err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("UPDATE sites SET status = 'Allocated' WHERE id = $1", siteID); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Deallocate ends the member's current occupancy and frees the site when
// nobody is left on it.
func (r *Repository) Deallocate(siteID, memberID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		"UPDATE site_allocations SET is_current = FALSE WHERE site_id = $1 AND member_id = $2 AND is_current",
		siteID, memberID,
	); err != nil {
		tx.Rollback()
		return err
	}
	var remaining int
	if err := tx.QueryRow(
		"SELECT COUNT(*) FROM site_allocations WHERE site_id = $1 AND is_current",
		siteID,
	).Scan(&remaining); err != nil {
		tx.Rollback()
		return err
	}
	if remaining == 0 {
		if _, err := tx.Exec("UPDATE sites SET status = 'Available' WHERE id = $1", siteID); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *Repository) InsertWaitlist(e *WaitlistEntry) (int64, error) {
	var id int64
	err := r.db.QueryRow(
		`INSERT INTO waitlist
			(first_name, last_name, phone, site_type, adults, kids, special_considerations,
			intended_days, home_assembly, overflow_willing, subscription_willing, additional_comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		e.FirstName, e.LastName, e.Phone, e.SiteType, e.Adults, e.Kids, e.SpecialConsiderations,
		e.IntendedDays, e.HomeAssembly, e.OverflowWilling, e.SubscriptionWilling, e.AdditionalComments,
	).Scan(&id)
	return id, err
}

func (r *Repository) FindWaitlist() ([]WaitlistEntry, error) {
	rows, err := r.db.Query(
		`SELECT id, first_name, last_name, phone, COALESCE(site_type, ''), adults, kids,
			COALESCE(special_considerations, ''), COALESCE(intended_days, ''),
			COALESCE(home_assembly, ''), COALESCE(overflow_willing, ''),
			COALESCE(subscription_willing, ''), COALESCE(additional_comments, ''),
			priority, created_at
		FROM waitlist
		ORDER BY priority DESC, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []WaitlistEntry
	for rows.Next() {
		var e WaitlistEntry
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Phone, &e.SiteType,
			&e.Adults, &e.Kids, &e.SpecialConsiderations, &e.IntendedDays,
			&e.HomeAssembly, &e.OverflowWilling, &e.SubscriptionWilling,
			&e.AdditionalComments, &e.Priority, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *Repository) UpdateWaitlistPriority(id int64, priority int) error {
	_, err := r.db.Exec("UPDATE waitlist SET priority = $1 WHERE id = $2", priority, id)
	return err
}

func (r *Repository) DeleteWaitlist(id int64) error {
	_, err := r.db.Exec("DELETE FROM waitlist WHERE id = $1", id)
	return err
}
