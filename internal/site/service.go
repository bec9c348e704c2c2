package site

import "strings"

type Store interface {
	FindAll() ([]Site, error)
	PublicMap() ([]MapPin, error)
	Create(req *UpsertRequest) (int64, error)
	Update(id int64, req *UpsertRequest) error
	Delete(id int64) error
	UpdateMapCoords(id int64, mapX, mapY float64) error
	Allocate(siteID, memberID int64) error
	Deallocate(siteID, memberID int64) error
	InsertWaitlist(e *WaitlistEntry) (int64, error)
	FindWaitlist() ([]WaitlistEntry, error)
	UpdateWaitlistPriority(id int64, priority int) error
	DeleteWaitlist(id int64) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List() ([]Site, error) {
	return s.store.FindAll()
}

func (s *Service) PublicMap() ([]MapPin, error) {
	pins, err := s.store.PublicMap()
	if err != nil {
		return nil, err
	}
	if pins == nil {
		pins = []MapPin{}
	}
	return pins, nil
}

func (s *Service) Create(req *UpsertRequest) (int64, error) {
	if err := normalize(req); err != nil {
		return 0, err
	}
	return s.store.Create(req)
}

func (s *Service) Update(id int64, req *UpsertRequest) error {
	if err := normalize(req); err != nil {
		return err
	}
	return s.store.Update(id, req)
}

func (s *Service) Delete(id int64) error {
	return s.store.Delete(id)
}

func (s *Service) UpdateMapCoords(id int64, mapX, mapY float64) error {
	return s.store.UpdateMapCoords(id, mapX, mapY)
}

func (s *Service) Allocate(siteID, memberID int64) error {
	if siteID <= 0 || memberID <= 0 {
		return NewValidationError("site_id and member_id are required")
	}
	return s.store.Allocate(siteID, memberID)
}

func (s *Service) Deallocate(siteID, memberID int64) error {
	if siteID <= 0 || memberID <= 0 {
		return NewValidationError("site_id and member_id are required")
	}
	return s.store.Deallocate(siteID, memberID)
}

func (s *Service) SubmitWaitlist(e *WaitlistEntry) (int64, error) {
	if strings.TrimSpace(e.FirstName) == "" || strings.TrimSpace(e.LastName) == "" {
		return 0, NewValidationError("first_name and last_name are required")
	}
	if e.Adults < 0 || e.Kids < 0 {
		return 0, NewValidationError("adults and kids must not be negative")
	}
	return s.store.InsertWaitlist(e)
}

func (s *Service) Waitlist() ([]WaitlistEntry, error) {
	entries, err := s.store.FindWaitlist()
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []WaitlistEntry{}
	}
	return entries, nil
}

func (s *Service) UpdateWaitlistPriority(id int64, priority int) error {
	return s.store.UpdateWaitlistPriority(id, priority)
}

func (s *Service) DeleteWaitlist(id int64) error {
	return s.store.DeleteWaitlist(id)
}

func normalize(req *UpsertRequest) error {
	if strings.TrimSpace(req.SiteNumber) == "" {
		return NewValidationError("site_number is required")
	}
	req.Power = yesNo(req.Power)
	req.Water = yesNo(req.Water)
	req.Sewer = yesNo(req.Sewer)
	return nil
}

func yesNo(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "1", "true":
		return "Yes"
	default:
		return "No"
	}
}
