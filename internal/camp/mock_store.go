package camp

// MockStore is an in-memory Store for service and handler tests.
type MockStore struct {
	Camps   []Camp
	Rates   []Rate
	Deleted []int64
	Cloned  [][2]int64

	NextID   int64
	FailWith error
}

func NewMockStore() *MockStore {
	return &MockStore{NextID: 1}
}

func (m *MockStore) FindAll() ([]Camp, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return m.Camps, nil
}

func (m *MockStore) FindActive() ([]Camp, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var active []Camp
	for _, c := range m.Camps {
		if c.Status == "Active" {
			active = append(active, c)
		}
	}
	return active, nil
}

func (m *MockStore) Create(req *UpsertRequest) (int64, error) {
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	id := m.NextID
	m.NextID++
	m.Camps = append(m.Camps, Camp{ID: id, Name: req.Name, Year: req.Year, Status: req.Status})
	return id, nil
}

func (m *MockStore) Update(id int64, req *UpsertRequest) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	for i := range m.Camps {
		if m.Camps[i].ID == id {
			m.Camps[i].Name = req.Name
			m.Camps[i].Year = req.Year
			m.Camps[i].Status = req.Status
		}
	}
	return nil
}

func (m *MockStore) Delete(id int64) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockStore) FindRates(campID int64) ([]Rate, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var rates []Rate
	for _, r := range m.Rates {
		if r.CampID == campID {
			rates = append(rates, r)
		}
	}
	return rates, nil
}

func (m *MockStore) CreateRate(req *RateRequest) (int64, error) {
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	id := m.NextID
	m.NextID++
	m.Rates = append(m.Rates, Rate{
		ID:       id,
		CampID:   req.CampID,
		Category: req.Category,
		Item:     req.Item,
		UserType: req.UserType,
		Amount:   req.Amount,
	})
	return id, nil
}

func (m *MockStore) UpdateRate(id int64, req *RateRequest) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	for i := range m.Rates {
		if m.Rates[i].ID == id {
			m.Rates[i].Category = req.Category
			m.Rates[i].Item = req.Item
			m.Rates[i].UserType = req.UserType
			m.Rates[i].Amount = req.Amount
		}
	}
	return nil
}

func (m *MockStore) DeleteRate(id int64) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockStore) CloneRates(fromCampID, toCampID int64) (int64, error) {
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	m.Cloned = append(m.Cloned, [2]int64{fromCampID, toCampID})
	var count int64
	for _, r := range m.Rates {
		if r.CampID == fromCampID {
			id := m.NextID
			m.NextID++
			copied := r
			copied.ID = id
			copied.CampID = toCampID
			m.Rates = append(m.Rates, copied)
			count++
		}
	}
	return count, nil
}
