package member

import "time"

// MockStore is an in-memory Store for service tests.
type MockStore struct {
	Members       []Member
	PaidUntil     map[int64]time.Time
	Histories     map[int64]*History
	Deleted       []int64
	DeletedAll    bool
	ExpiredBefore *time.Time
	ExpiredCount  int64

	NextID   int64
	FailWith error
}

func NewMockStore() *MockStore {
	return &MockStore{
		PaidUntil: make(map[int64]time.Time),
		Histories: make(map[int64]*History),
		NextID:    1,
	}
}

func (m *MockStore) FindAll() ([]Member, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return m.Members, nil
}

func (m *MockStore) Create(firstName, lastName, fellowship, concession, feeStatus string) (int64, error) {
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	id := m.NextID
	m.NextID++
	m.Members = append(m.Members, Member{
		ID:            id,
		FirstName:     firstName,
		LastName:      lastName,
		Fellowship:    fellowship,
		Concession:    concession,
		SiteFeeStatus: feeStatus,
	})
	return id, nil
}

func (m *MockStore) Update(id int64, firstName, lastName, fellowship, concession, feeStatus string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	for i := range m.Members {
		if m.Members[i].ID == id {
			m.Members[i].FirstName = firstName
			m.Members[i].LastName = lastName
			m.Members[i].Fellowship = fellowship
			m.Members[i].Concession = concession
			m.Members[i].SiteFeeStatus = feeStatus
		}
	}
	return nil
}

func (m *MockStore) UpsertPaidUntil(memberID int64, paidUntil time.Time) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.PaidUntil[memberID] = paidUntil
	return nil
}

func (m *MockStore) DeletePaidUntil(memberID int64) error {
	delete(m.PaidUntil, memberID)
	return nil
}

func (m *MockStore) History(memberID int64) (*History, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return m.Histories[memberID], nil
}

func (m *MockStore) Delete(id int64) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockStore) DeleteAll() error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.DeletedAll = true
	return nil
}

func (m *MockStore) MarkExpired(before time.Time) (int64, error) {
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	m.ExpiredBefore = &before
	return m.ExpiredCount, nil
}
