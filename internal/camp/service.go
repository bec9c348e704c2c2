package camp

import "strings"

type Store interface {
	FindAll() ([]Camp, error)
	FindActive() ([]Camp, error)
	Create(req *UpsertRequest) (int64, error)
	Update(id int64, req *UpsertRequest) error
	Delete(id int64) error
	FindRates(campID int64) ([]Rate, error)
	CreateRate(req *RateRequest) (int64, error)
	UpdateRate(id int64, req *RateRequest) error
	DeleteRate(id int64) error
	CloneRates(fromCampID, toCampID int64) (int64, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List() ([]Camp, error) {
	return s.store.FindAll()
}

func (s *Service) Active() ([]Camp, error) {
	camps, err := s.store.FindActive()
	if err != nil {
		return nil, err
	}
	if camps == nil {
		camps = []Camp{}
	}
	return camps, nil
}

func (s *Service) Create(req *UpsertRequest) (int64, error) {
	if err := validate(req); err != nil {
		return 0, err
	}
	return s.store.Create(req)
}

func (s *Service) Update(id int64, req *UpsertRequest) error {
	if err := validate(req); err != nil {
		return err
	}
	return s.store.Update(id, req)
}

func (s *Service) Delete(id int64) error {
	return s.store.Delete(id)
}

func (s *Service) Rates(campID int64) ([]Rate, error) {
	rates, err := s.store.FindRates(campID)
	if err != nil {
		return nil, err
	}
	if rates == nil {
		rates = []Rate{}
	}
	return rates, nil
}

func (s *Service) CreateRate(req *RateRequest) (int64, error) {
	if req.CampID <= 0 {
		return 0, ErrMissingCampID
	}
	return s.store.CreateRate(req)
}

func (s *Service) UpdateRate(id int64, req *RateRequest) error {
	return s.store.UpdateRate(id, req)
}

func (s *Service) DeleteRate(id int64) error {
	return s.store.DeleteRate(id)
}

func (s *Service) CloneRates(fromCampID, toCampID int64) (int64, error) {
	if fromCampID <= 0 || toCampID <= 0 {
		return 0, NewValidationError("from_camp_id and to_camp_id are required")
	}
	if fromCampID == toCampID {
		return 0, NewValidationError("Cannot clone a camp's rates onto itself")
	}
	return s.store.CloneRates(fromCampID, toCampID)
}

func validate(req *UpsertRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(req.Status) == "" {
		req.Status = "Planned"
	}
	return nil
}
