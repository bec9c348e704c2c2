package site

// MockStore is an in-memory Store for service and handler tests.
type MockStore struct {
	Sites       []Site
	Pins        []MapPin
	Entries     []WaitlistEntry
	Allocations map[int64][]int64
	Coords      map[int64][2]float64
	Priorities  map[int64]int
	Deleted     []int64

	NextID   int64
	FailWith error
}

func NewMockStore() *MockStore {
	return &MockStore{
		Allocations: make(map[int64][]int64),
		Coords:      make(map[int64][2]float64),
		Priorities:  make(map[int64]int),
		NextID:      1,
	}
}

func (m *MockStore) FindAll() ([]Site, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return m.Sites, nil
}

func (m *MockStore) PublicMap() ([]MapPin, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return m.Pins, nil
}

func (m *MockStore) Create(req *UpsertRequest) (int64, error) {
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	id := m.NextID
	m.NextID++
	m.Sites = append(m.Sites, Site{
		ID:         id,
		SiteNumber: req.SiteNumber,
		SiteType:   req.SiteType,
		Power:      req.Power,
		Water:      req.Water,
		Sewer:      req.Sewer,
		Status:     "Available",
		MapX:       req.MapX,
		MapY:       req.MapY,
	})
	return id, nil
}

func (m *MockStore) Update(id int64, req *UpsertRequest) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	for i := range m.Sites {
		if m.Sites[i].ID == id {
			m.Sites[i].SiteNumber = req.SiteNumber
			m.Sites[i].SiteType = req.SiteType
			m.Sites[i].Power = req.Power
			m.Sites[i].Water = req.Water
			m.Sites[i].Sewer = req.Sewer
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

func (m *MockStore) UpdateMapCoords(id int64, mapX, mapY float64) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Coords[id] = [2]float64{mapX, mapY}
	return nil
}

func (m *MockStore) Allocate(siteID, memberID int64) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Allocations[siteID] = append(m.Allocations[siteID], memberID)
	return nil
}

func (m *MockStore) Deallocate(siteID, memberID int64) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	current := m.Allocations[siteID]
	var kept []int64
	for _, id := range current {
		if id != memberID {
			kept = append(kept, id)
		}
	}
	m.Allocations[siteID] = kept
	return nil
}

func (m *MockStore) InsertWaitlist(e *WaitlistEntry) (int64, error) {
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	id := m.NextID
	m.NextID++
	entry := *e
	entry.ID = id
	m.Entries = append(m.Entries, entry)
	return id, nil
}

func (m *MockStore) FindWaitlist() ([]WaitlistEntry, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return m.Entries, nil
}

func (m *MockStore) UpdateWaitlistPriority(id int64, priority int) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Priorities[id] = priority
	return nil
}

func (m *MockStore) DeleteWaitlist(id int64) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Deleted = append(m.Deleted, id)
	return nil
}
