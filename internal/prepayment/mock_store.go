package prepayment

// MockStore is an in-memory Store for service and handler tests.
type MockStore struct {
	Credits        []Credit
	Matched        map[int64]int64
	DeletedAllFor  *int64
	DeletedAll     bool
	LastSearch     string
	LastStatus     string
	FailWith       error
}

func NewMockStore() *MockStore {
	return &MockStore{Matched: make(map[int64]int64)}
}

func (m *MockStore) FindByCamp(campID int64, search, status string) ([]Credit, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.LastSearch = search
	m.LastStatus = status
	var out []Credit
	for _, c := range m.Credits {
		if c.CampID != nil && *c.CampID == campID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockStore) Match(id, memberID int64) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Matched[id] = memberID
	return nil
}

func (m *MockStore) DeleteAll(campID *int64) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	if campID != nil {
		m.DeletedAllFor = campID
		return nil
	}
	m.DeletedAll = true
	return nil
}
