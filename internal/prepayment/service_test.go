package prepayment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestList_NoCampReturnsEmpty(t *testing.T) {
	store := NewMockStore()
	store.Credits = []Credit{{ID: 1, CampID: int64Ptr(3)}}
	service := NewService(store)

	credits, err := service.List(nil, "", "")

	assert.NoError(t, err)
	assert.Equal(t, []Credit{}, credits)
}

func TestList_FiltersByCamp(t *testing.T) {
	store := NewMockStore()
	store.Credits = []Credit{
		{ID: 1, CampID: int64Ptr(3)},
		{ID: 2, CampID: int64Ptr(4)},
	}
	service := NewService(store)

	credits, err := service.List(int64Ptr(3), "smith", StatusMatched)

	assert.NoError(t, err)
	assert.Len(t, credits, 1)
	assert.Equal(t, int64(1), credits[0].ID)
	assert.Equal(t, "smith", store.LastSearch)
	assert.Equal(t, StatusMatched, store.LastStatus)
}

func TestMatch_RequiresBothIDs(t *testing.T) {
	store := NewMockStore()
	service := NewService(store)

	assert.True(t, IsValidationError(service.Match(0, 5)))
	assert.True(t, IsValidationError(service.Match(5, 0)))
	assert.Empty(t, store.Matched)

	assert.NoError(t, service.Match(5, 9))
	assert.Equal(t, int64(9), store.Matched[5])
}

func TestDeleteAll_ScopedToCamp(t *testing.T) {
	store := NewMockStore()
	service := NewService(store)

	assert.NoError(t, service.DeleteAll(int64Ptr(3)))
	assert.Equal(t, int64(3), *store.DeletedAllFor)
	assert.False(t, store.DeletedAll)

	assert.NoError(t, service.DeleteAll(nil))
	assert.True(t, store.DeletedAll)
}
