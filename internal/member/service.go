package member

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type Store interface {
	FindAll() ([]Member, error)
	Create(firstName, lastName, fellowship, concession, feeStatus string) (int64, error)
	Update(id int64, firstName, lastName, fellowship, concession, feeStatus string) error
	UpsertPaidUntil(memberID int64, paidUntil time.Time) error
	DeletePaidUntil(memberID int64) error
	History(memberID int64) (*History, error)
	Delete(id int64) error
	DeleteAll() error
	MarkExpired(before time.Time) (int64, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) List() ([]Member, error) {
	return s.store.FindAll()
}

func (s *Service) Create(req *UpsertRequest) (int64, error) {
	if err := validate(req); err != nil {
		return 0, err
	}
	id, err := s.store.Create(req.FirstName, req.LastName, req.Fellowship,
		NormalizeConcession(req.Concession), feeStatusOrUnknown(req.SiteFeeStatus))
	if err != nil {
		return 0, err
	}
	if req.SiteFeePaidUntil != nil && strings.TrimSpace(*req.SiteFeePaidUntil) != "" {
		paidUntil, err := parsePaidUntil(*req.SiteFeePaidUntil)
		if err != nil {
			return 0, err
		}
		if err := s.store.UpsertPaidUntil(id, paidUntil); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (s *Service) Update(id int64, req *UpsertRequest) error {
	if err := validate(req); err != nil {
		return err
	}
	if err := s.store.Update(id, req.FirstName, req.LastName, req.Fellowship,
		NormalizeConcession(req.Concession), feeStatusOrUnknown(req.SiteFeeStatus)); err != nil {
		return err
	}
	if req.SiteFeePaidUntil == nil {
		return nil
	}
	// An explicit empty value clears the ledger date.
	raw := strings.TrimSpace(*req.SiteFeePaidUntil)
	if raw == "" {
		return s.store.DeletePaidUntil(id)
	}
	paidUntil, err := parsePaidUntil(raw)
	if err != nil {
		return err
	}
	return s.store.UpsertPaidUntil(id, paidUntil)
}

func (s *Service) History(id int64) (*History, error) {
	return s.store.History(id)
}

func (s *Service) Delete(id int64) error {
	return s.store.Delete(id)
}

func (s *Service) DeleteAll() error {
	return s.store.DeleteAll()
}

// RefreshFeeStatuses expires members whose paid-until date has lapsed. The
// scheduler runs it nightly; it is also safe to call at startup.
func (s *Service) RefreshFeeStatuses() (int64, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.store.MarkExpired(today)
}

func validate(req *UpsertRequest) error {
	if strings.TrimSpace(req.FirstName) == "" {
		return ErrMissingFirstName
	}
	if strings.TrimSpace(req.LastName) == "" {
		return ErrMissingLastName
	}
	return nil
}

// NormalizeConcession collapses the assorted truthy spellings seen in imports
// and form submissions down to Yes/No.
func NormalizeConcession(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "1", "true":
		return "Yes"
	default:
		return "No"
	}
}

func feeStatusOrUnknown(status string) string {
	if strings.TrimSpace(status) == "" {
		return "Unknown"
	}
	return status
}

// parsePaidUntil accepts a date or datetime string and keeps the date part.
func parsePaidUntil(raw string) (time.Time, error) {
	if len(raw) > len(dateLayout) {
		raw = raw[:len(dateLayout)]
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, NewValidationError("Invalid site_fee_paid_until date")
	}
	return parsed, nil
}
