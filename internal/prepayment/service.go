package prepayment

import "errors"

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

type Store interface {
	FindByCamp(campID int64, search, status string) ([]Credit, error)
	Match(id, memberID int64) error
	DeleteAll(campID *int64) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns a camp's credits. Without a camp there is nothing to show, so
// a nil camp id short-circuits to an empty result rather than an error.
func (s *Service) List(campID *int64, search, status string) ([]Credit, error) {
	if campID == nil {
		return []Credit{}, nil
	}
	credits, err := s.store.FindByCamp(*campID, search, status)
	if err != nil {
		return nil, err
	}
	if credits == nil {
		credits = []Credit{}
	}
	return credits, nil
}

func (s *Service) Match(id, memberID int64) error {
	if id <= 0 || memberID <= 0 {
		return NewValidationError("Missing ID or Member ID")
	}
	return s.store.Match(id, memberID)
}

func (s *Service) DeleteAll(campID *int64) error {
	return s.store.DeleteAll(campID)
}
