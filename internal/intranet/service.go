package intranet

import "errors"

// ErrNoActiveCamp is returned on save when no camp is currently active, so
// there is nowhere to attach the content.
var ErrNoActiveCamp = errors.New("No active camp set")

type Store interface {
	ActiveCamp() (*CampSummary, error)
	ContentFor(campID int64) (Content, error)
	Upsert(campID int64, program, notifications, events string) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ActivePage returns the active camp's intranet page. Without an active camp
// the page is empty rather than an error, so the public site renders cleanly
// between camps.
func (s *Service) ActivePage() (*Page, error) {
	camp, err := s.store.ActiveCamp()
	if err != nil {
		return nil, err
	}
	if camp == nil {
		return &Page{Camp: nil, Content: Content{}}, nil
	}
	content, err := s.store.ContentFor(camp.ID)
	if err != nil {
		return nil, err
	}
	return &Page{Camp: camp, Content: content}, nil
}

// Save upserts the active camp's content.
func (s *Service) Save(program, notifications, events string) error {
	camp, err := s.store.ActiveCamp()
	if err != nil {
		return err
	}
	if camp == nil {
		return ErrNoActiveCamp
	}
	return s.store.Upsert(camp.ID, program, notifications, events)
}
