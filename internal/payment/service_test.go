package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestService(store *MockStore) *Service {
	service := NewService(store)
	service.now = func() time.Time {
		return time.Date(2025, time.March, 10, 15, 0, 0, 0, service.loc)
	}
	return service
}

func testToday() time.Time {
	return time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
}

func float64Ptr(v float64) *float64 { return &v }

func TestPostPayment_Basic(t *testing.T) {
	store := NewMockStore()
	service := newTestService(store)

	id, duplicate, err := service.PostPayment(&PostPaymentRequest{
		MemberID: 1,
		CampFee:  120,
		Total:    float64Ptr(120),
		Tenders: []TenderInput{
			{Method: MethodEFTPOS, Amount: 100, Reference: "rcpt-1"},
			{Method: MethodCash, Amount: 20},
			{Method: MethodCheque, Amount: 0},
		},
	})

	assert.NoError(t, err)
	assert.False(t, duplicate)
	assert.NotZero(t, id)
	assert.Equal(t, 1, store.Committed)
	if assert.Len(t, store.Payments, 1) {
		rec := store.Payments[0]
		assert.Equal(t, 120.0, rec.Total)
		assert.Equal(t, 100.0, rec.TenderEftpos)
		assert.Equal(t, 20.0, rec.TenderCash)
		assert.Equal(t, 0.0, rec.TenderCheque)
	}
	// the zero-amount cheque line is skipped
	assert.Len(t, store.Tenders, 2)
}

func TestPostPayment_MissingMember(t *testing.T) {
	service := newTestService(NewMockStore())

	_, _, err := service.PostPayment(&PostPaymentRequest{CampFee: 50})
	assert.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestPostPayment_DuplicateCollapsed(t *testing.T) {
	store := NewMockStore()
	service := newTestService(store)

	req := &PostPaymentRequest{MemberID: 7, CampFee: 80}
	_, duplicate, err := service.PostPayment(req)
	assert.NoError(t, err)
	assert.False(t, duplicate)

	id, duplicate, err := service.PostPayment(req)
	assert.NoError(t, err)
	assert.True(t, duplicate)
	assert.Zero(t, id)
	assert.Len(t, store.Payments, 1)
}

func TestPostPayment_DifferentTotalsBothPosted(t *testing.T) {
	store := NewMockStore()
	service := newTestService(store)

	_, _, err := service.PostPayment(&PostPaymentRequest{MemberID: 7, CampFee: 80})
	assert.NoError(t, err)
	_, duplicate, err := service.PostPayment(&PostPaymentRequest{MemberID: 7, CampFee: 95})
	assert.NoError(t, err)
	assert.False(t, duplicate)
	assert.Len(t, store.Payments, 2)
}

func TestPostPayment_ComputedTotal(t *testing.T) {
	store := NewMockStore()
	service := newTestService(store)

	_, _, err := service.PostPayment(&PostPaymentRequest{
		MemberID:       2,
		CampFee:        100,
		SiteFee:        50,
		OtherAmount:    5,
		PrepaidApplied: 30,
	})
	assert.NoError(t, err)
	if assert.Len(t, store.Payments, 1) {
		assert.Equal(t, 125.0, store.Payments[0].Total)
	}
}

func TestPostPayment_ExpiryNoPriorRecord(t *testing.T) {
	store := NewMockStore()
	service := newTestService(store)

	_, _, err := service.PostPayment(&PostPaymentRequest{MemberID: 3, SiteFee: 50})
	assert.NoError(t, err)

	expected := testToday().AddDate(1, 0, 0)
	assert.Equal(t, expected, store.ExpiryByMember[3])
	assert.Equal(t, "Paid", store.FeeStatus[3])
	if assert.Len(t, store.Payments, 1) {
		assert.Contains(t, store.Payments[0].Notes, "Site contribution: +1 year ($50.00). New paid until: 10/03/2026")
	}
}

func TestPostPayment_ExpiryStacksOntoUnexpired(t *testing.T) {
	store := NewMockStore()
	existing := testToday().AddDate(0, 0, 200)
	store.ExpiryByMember[3] = existing
	service := newTestService(store)

	_, _, err := service.PostPayment(&PostPaymentRequest{MemberID: 3, SiteFee: 50})
	assert.NoError(t, err)
	assert.Equal(t, existing.AddDate(1, 0, 0), store.ExpiryByMember[3])
}

func TestPostPayment_ExpiryFloorsAtTodayWhenLapsed(t *testing.T) {
	store := NewMockStore()
	store.ExpiryByMember[3] = testToday().AddDate(0, 0, -30)
	service := newTestService(store)

	_, _, err := service.PostPayment(&PostPaymentRequest{MemberID: 3, SiteFee: 50})
	assert.NoError(t, err)
	assert.Equal(t, testToday().AddDate(1, 0, 0), store.ExpiryByMember[3])
}

func TestPostPayment_NoExtensionOnNonPositiveFee(t *testing.T) {
	store := NewMockStore()
	existing := testToday().AddDate(0, 6, 0)
	store.ExpiryByMember[4] = existing
	service := newTestService(store)

	_, _, err := service.PostPayment(&PostPaymentRequest{MemberID: 4, SiteFee: 0, CampFee: 40})
	assert.NoError(t, err)
	_, _, err = service.PostPayment(&PostPaymentRequest{MemberID: 4, SiteFee: -50})
	assert.NoError(t, err)

	assert.Equal(t, existing, store.ExpiryByMember[4])
	assert.Empty(t, store.FeeStatus[4])
}

func TestPostPayment_DrawDownFullConsumption(t *testing.T) {
	store := NewMockStore()
	store.CreditsByID[10] = Credit{ID: 10, Amount: 100, Status: "Matched"}
	service := newTestService(store)

	_, _, err := service.PostPayment(&PostPaymentRequest{
		MemberID:       5,
		CampFee:        100,
		PrepaidApplied: 100,
		PrepaymentIDs:  []int64{10},
	})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, store.CreditsByID[10].Amount)
	assert.Equal(t, CreditStatusApplied, store.CreditsByID[10].Status)
}

func TestPostPayment_DrawDownPartialConsumption(t *testing.T) {
	store := NewMockStore()
	store.CreditsByID[10] = Credit{ID: 10, Amount: 100, Status: "Matched"}
	service := newTestService(store)

	_, _, err := service.PostPayment(&PostPaymentRequest{
		MemberID:       5,
		CampFee:        40,
		PrepaidApplied: 40,
		PrepaymentIDs:  []int64{10},
	})
	assert.NoError(t, err)
	assert.Equal(t, 60.0, store.CreditsByID[10].Amount)
	assert.Equal(t, CreditStatusPartial, store.CreditsByID[10].Status)
}

func TestPostPayment_DrawDownOrderDependent(t *testing.T) {
	store := NewMockStore()
	store.CreditsByID[1] = Credit{ID: 1, Amount: 30, Status: "Matched"}
	store.CreditsByID[2] = Credit{ID: 2, Amount: 100, Status: "Matched"}
	service := newTestService(store)

	_, _, err := service.PostPayment(&PostPaymentRequest{
		MemberID:       5,
		CampFee:        50,
		PrepaidApplied: 50,
		PrepaymentIDs:  []int64{1, 2},
	})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, store.CreditsByID[1].Amount)
	assert.Equal(t, CreditStatusApplied, store.CreditsByID[1].Status)
	assert.Equal(t, 80.0, store.CreditsByID[2].Amount)
	assert.Equal(t, CreditStatusPartial, store.CreditsByID[2].Status)
}

func TestPostPayment_DrawDownSkipsAppliedAndEmptyCredits(t *testing.T) {
	store := NewMockStore()
	store.CreditsByID[1] = Credit{ID: 1, Amount: 0, Status: CreditStatusApplied}
	store.CreditsByID[2] = Credit{ID: 2, Amount: 0, Status: "Matched"}
	store.CreditsByID[3] = Credit{ID: 3, Amount: 70, Status: "Matched"}
	service := newTestService(store)

	_, _, err := service.PostPayment(&PostPaymentRequest{
		MemberID:       5,
		CampFee:        25,
		PrepaidApplied: 25,
		PrepaymentIDs:  []int64{1, 2, 3, 99},
	})
	assert.NoError(t, err)
	assert.Equal(t, 45.0, store.CreditsByID[3].Amount)
	assert.Equal(t, CreditStatusPartial, store.CreditsByID[3].Status)
}

func TestPostPayment_AtomicRollback(t *testing.T) {
	store := NewMockStore()
	store.FailTenderInsert = true
	store.CreditsByID[10] = Credit{ID: 10, Amount: 100, Status: "Matched"}
	service := newTestService(store)

	_, _, err := service.PostPayment(&PostPaymentRequest{
		MemberID:       6,
		SiteFee:        50,
		PrepaidApplied: 50,
		PrepaymentIDs:  []int64{10},
		Tenders:        []TenderInput{{Method: MethodCash, Amount: 50}},
	})

	assert.Error(t, err)
	assert.Equal(t, 1, store.RolledBack)
	assert.Zero(t, store.Committed)
	assert.Empty(t, store.Payments)
	assert.Empty(t, store.Tenders)
	assert.Empty(t, store.ExpiryByMember)
	assert.Empty(t, store.FeeStatus)
	assert.Equal(t, 100.0, store.CreditsByID[10].Amount)
}

func TestPostPayment_RefundSignThrough(t *testing.T) {
	store := NewMockStore()
	service := newTestService(store)

	_, _, err := service.PostPayment(&PostPaymentRequest{
		MemberID: 8,
		SiteFee:  -75,
		Total:    float64Ptr(-75),
		Tenders:  []TenderInput{{Method: MethodCash, Amount: -75}},
	})
	assert.NoError(t, err)
	if assert.Len(t, store.Payments, 1) {
		assert.Equal(t, -75.0, store.Payments[0].Total)
		assert.Equal(t, -75.0, store.Payments[0].TenderCash)
	}
	if assert.Len(t, store.Tenders, 1) {
		assert.Equal(t, -75.0, store.Tenders[0].Amount)
	}
	assert.Empty(t, store.ExpiryByMember)
}

func TestPostPayment_InheritsCurrentSiteAllocation(t *testing.T) {
	store := NewMockStore()
	siteID := int64(42)
	store.CurrentSite = &siteID
	service := newTestService(store)

	_, _, err := service.PostPayment(&PostPaymentRequest{MemberID: 9, CampFee: 10})
	assert.NoError(t, err)
	if assert.Len(t, store.Payments, 1) && assert.NotNil(t, store.Payments[0].SiteID) {
		assert.Equal(t, siteID, *store.Payments[0].SiteID)
	}
}

func TestPostPayment_ExplicitSiteWins(t *testing.T) {
	store := NewMockStore()
	allocated := int64(42)
	store.CurrentSite = &allocated
	service := newTestService(store)

	explicit := int64(7)
	_, _, err := service.PostPayment(&PostPaymentRequest{MemberID: 9, CampFee: 10, SiteID: &explicit})
	assert.NoError(t, err)
	if assert.Len(t, store.Payments, 1) && assert.NotNil(t, store.Payments[0].SiteID) {
		assert.Equal(t, explicit, *store.Payments[0].SiteID)
	}
}
