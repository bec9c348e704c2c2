package camp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreate_RequiresName(t *testing.T) {
	store := NewMockStore()
	service := NewService(store)

	_, err := service.Create(&UpsertRequest{Status: "Active"})

	assert.ErrorIs(t, err, ErrMissingName)
	assert.Empty(t, store.Camps)
}

func TestCreate_DefaultsStatusToPlanned(t *testing.T) {
	store := NewMockStore()
	service := NewService(store)

	_, err := service.Create(&UpsertRequest{Name: "Easter Camp"})

	assert.NoError(t, err)
	assert.Equal(t, "Planned", store.Camps[0].Status)
}

func TestActive_FiltersByStatus(t *testing.T) {
	store := NewMockStore()
	store.Camps = []Camp{
		{ID: 1, Name: "Easter Camp", Status: "Active"},
		{ID: 2, Name: "Old Camp", Status: "Closed"},
	}
	service := NewService(store)

	camps, err := service.Active()

	assert.NoError(t, err)
	assert.Len(t, camps, 1)
	assert.Equal(t, int64(1), camps[0].ID)
}

func TestCreateRate_RequiresCampID(t *testing.T) {
	store := NewMockStore()
	service := NewService(store)

	_, err := service.CreateRate(&RateRequest{Category: "Accommodation"})

	assert.ErrorIs(t, err, ErrMissingCampID)
	assert.Empty(t, store.Rates)
}

func TestCloneRates_CopiesEveryRowAndLeavesSourceAlone(t *testing.T) {
	store := NewMockStore()
	store.NextID = 10
	store.Rates = []Rate{
		{ID: 1, CampID: 3, Category: "Accommodation", Item: "Powered Site", UserType: "Adult", Amount: 35},
		{ID: 2, CampID: 3, Category: "Accommodation", Item: "Unpowered Site", UserType: "Adult", Amount: 25},
		{ID: 3, CampID: 8, Category: "Meals", Item: "Dinner", UserType: "Adult", Amount: 15},
	}
	service := NewService(store)

	count, err := service.CloneRates(3, 4)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)

	source, _ := store.FindRates(3)
	cloned, _ := store.FindRates(4)
	assert.Len(t, source, 2)
	assert.Len(t, cloned, 2)
	assert.Equal(t, "Powered Site", cloned[0].Item)
	assert.Equal(t, float64(35), cloned[0].Amount)
}

func TestCloneRates_RejectsSelfClone(t *testing.T) {
	service := NewService(NewMockStore())

	_, err := service.CloneRates(3, 3)

	assert.True(t, IsValidationError(err))
}
