package intranet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockStore struct {
	Camp     *CampSummary
	Contents map[int64]Content
	Saved    map[int64][3]string
	FailWith error
}

func newMockStore() *mockStore {
	return &mockStore{
		Contents: make(map[int64]Content),
		Saved:    make(map[int64][3]string),
	}
}

func (m *mockStore) ActiveCamp() (*CampSummary, error) {
	return m.Camp, m.FailWith
}

func (m *mockStore) ContentFor(campID int64) (Content, error) {
	return m.Contents[campID], m.FailWith
}

func (m *mockStore) Upsert(campID int64, program, notifications, events string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Saved[campID] = [3]string{program, notifications, events}
	return nil
}

func TestActivePage_NoActiveCamp(t *testing.T) {
	service := NewService(newMockStore())

	page, err := service.ActivePage()

	assert.NoError(t, err)
	assert.Nil(t, page.Camp)
	assert.Equal(t, Content{}, page.Content)
}

func TestActivePage_WithContent(t *testing.T) {
	store := newMockStore()
	store.Camp = &CampSummary{ID: 4, Name: "Easter Camp"}
	store.Contents[4] = Content{Program: "Friday: arrival"}
	service := NewService(store)

	page, err := service.ActivePage()

	assert.NoError(t, err)
	assert.Equal(t, int64(4), page.Camp.ID)
	assert.Equal(t, "Friday: arrival", page.Content.Program)
}

func TestSave_RequiresActiveCamp(t *testing.T) {
	store := newMockStore()
	service := NewService(store)

	err := service.Save("p", "n", "e")

	assert.ErrorIs(t, err, ErrNoActiveCamp)
	assert.Empty(t, store.Saved)
}

func TestSave_UpsertsActiveCamp(t *testing.T) {
	store := newMockStore()
	store.Camp = &CampSummary{ID: 4, Name: "Easter Camp"}
	service := NewService(store)

	err := service.Save("program", "notes", "events")

	assert.NoError(t, err)
	assert.Equal(t, [3]string{"program", "notes", "events"}, store.Saved[4])
}
