package site

import (
	"errors"
	"time"
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

// Occupant is one member currently allocated to a site.
type Occupant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Site is a campsite row with its current occupants merged in. OccupantName
// and OccupantID are convenience fields the sites screen renders directly.
type Site struct {
	ID           int64      `json:"id"`
	SiteNumber   string     `json:"site_number"`
	SiteType     *string    `json:"site_type"`
	Power        string     `json:"power"`
	Water        string     `json:"water"`
	Sewer        string     `json:"sewer"`
	Status       string     `json:"status"`
	MapX         *float64   `json:"map_x"`
	MapY         *float64   `json:"map_y"`
	Occupants    []Occupant `json:"occupants"`
	OccupantName string     `json:"occupant_name"`
	OccupantID   *int64     `json:"occupant_id"`
}

// MapPin is the trimmed-down shape the public site map shows: no member ids,
// just whether the pin is taken and by whom.
type MapPin struct {
	ID           int64    `json:"id"`
	SiteNumber   string   `json:"site_number"`
	MapX         *float64 `json:"map_x"`
	MapY         *float64 `json:"map_y"`
	SiteType     *string  `json:"site_type"`
	Status       string   `json:"status"`
	OccupantName *string  `json:"occupant_name"`
}

type UpsertRequest struct {
	SiteNumber string   `json:"site_number"`
	SiteType   *string  `json:"site_type"`
	Power      string   `json:"power"`
	Water      string   `json:"water"`
	Sewer      string   `json:"sewer"`
	MapX       *float64 `json:"map_x"`
	MapY       *float64 `json:"map_y"`
}

// WaitlistEntry is one public waitlist submission.
type WaitlistEntry struct {
	ID                    int64     `json:"id"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	Phone                 string    `json:"phone"`
	SiteType              string    `json:"site_type"`
	Adults                int       `json:"adults"`
	Kids                  int       `json:"kids"`
	SpecialConsiderations string    `json:"special_considerations"`
	IntendedDays          string    `json:"intended_days"`
	HomeAssembly          string    `json:"home_assembly"`
	OverflowWilling       string    `json:"overflow_willing"`
	SubscriptionWilling   string    `json:"subscription_willing"`
	AdditionalComments    string    `json:"additional_comments"`
	Priority              int       `json:"priority"`
	CreatedAt             time.Time `json:"created_at"`
}
