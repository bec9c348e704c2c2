package importer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campo/CampManager/internal/prepayment"
)

func seedMember(store *MockStore, firstName, lastName string) int64 {
	id := store.NextID
	store.NextID++
	store.Members = append(store.Members, mockMember{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		FeeStatus: "Unknown",
	})
	return id
}

func TestImportMembersCreatesAndUpdates(t *testing.T) {
	store := NewMockStore()
	seedMember(store, "Jane", "Smith")
	service := NewService(store)

	csvData := strings.Join([]string{
		"First Name,Last Name,Fellowship,Concession,Fee Status,Paid Until,Site Number,Site Type",
		"Jane,Smith,Northside,yes,paid,,,",
		"John,Doe,Eastside,no,,2026-06-30,A12,Powered",
		",,,,,,,",
	}, "\n")

	result, err := service.ImportMembers(strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, store.Committed)
	assert.Equal(t, 0, store.RolledBack)

	require.Len(t, store.Members, 2)
	jane := store.Members[0]
	assert.Equal(t, "Northside", jane.Fellowship)
	assert.Equal(t, "Yes", jane.Concession)
	assert.Equal(t, "Paid", jane.FeeStatus)

	john := store.Members[1]
	assert.Equal(t, "No", john.Concession)
	assert.Equal(t, "Paid", john.FeeStatus)

	siteID, ok := store.Sites["A12"]
	require.True(t, ok)
	assert.True(t, store.Allocations[[2]int64{siteID, john.ID}])

	paidUntil, ok := store.PaidUntil[john.ID]
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC), paidUntil)
}

func TestImportMembersEmptyFile(t *testing.T) {
	service := NewService(NewMockStore())

	_, err := service.ImportMembers(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyCSV)
}

func TestImportPrepaymentsAutoMatch(t *testing.T) {
	store := NewMockStore()
	aliceID := seedMember(store, "Alice", "Brown")
	seedMember(store, "Bob", "Gray")
	seedMember(store, "Bob", "Gray")
	seedMember(store, "Carol", "White")
	service := NewService(store)

	csvData := strings.Join([]string{
		"First Name,Last Name,Amount,Transaction ID",
		"Alice,Brown,$150.00,TX-1",
		"Bob,Gray,200,TX-2",
		"Dana,White,75,TX-3",
		"Eve,Black,50,TX-4",
	}, "\n")

	result, err := service.ImportPrepayments(strings.NewReader(csvData), 7)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Count)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 1, store.Committed)

	require.Len(t, store.Credits, 4)
	byName := make(map[string]prepayment.Credit)
	for _, c := range store.Credits {
		byName[c.ImportedName] = c
	}

	alice := byName["Alice Brown"]
	assert.Equal(t, prepayment.StatusMatched, alice.Status)
	require.NotNil(t, alice.MatchedMemberID)
	assert.Equal(t, aliceID, *alice.MatchedMemberID)
	assert.Equal(t, 150.0, alice.Amount)

	bob := byName["Bob Gray"]
	assert.Equal(t, prepayment.StatusNeedsReview, bob.Status)
	assert.Nil(t, bob.MatchedMemberID)

	dana := byName["Dana White"]
	assert.Equal(t, prepayment.StatusNeedsReview, dana.Status)
	assert.Nil(t, dana.MatchedMemberID)

	eve := byName["Eve Black"]
	assert.Equal(t, prepayment.StatusUnmatched, eve.Status)
	assert.Nil(t, eve.MatchedMemberID)
}

func TestImportPrepaymentsSkipsDuplicates(t *testing.T) {
	store := NewMockStore()
	campID := int64(7)
	store.Credits = append(store.Credits,
		prepayment.Credit{ID: 90, CampID: &campID, ImportedName: "Old Import", Amount: 20, TransactionID: "TX-SEEN"},
		prepayment.Credit{ID: 91, CampID: &campID, ImportedName: "Alice Brown", Amount: 150, TransactionID: "TX-OTHER"},
	)
	service := NewService(store)

	csvData := strings.Join([]string{
		"First Name,Last Name,Amount,Transaction ID",
		"New,Person,20,TX-SEEN",
		"Alice,Brown,150,",
		"Fresh,Person,30,TX-NEW",
	}, "\n")

	result, err := service.ImportPrepayments(strings.NewReader(csvData), campID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, store.Credits, 3)
}

func TestImportPrepaymentsGeneratesTransactionID(t *testing.T) {
	store := NewMockStore()
	service := NewService(store)

	csvData := "First Name,Last Name,Amount,Transaction ID\nNo,Reference,40,\n"
	result, err := service.ImportPrepayments(strings.NewReader(csvData), 3)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Count)
	require.Len(t, store.Credits, 1)
	assert.NotEmpty(t, store.Credits[0].TransactionID)
}

func TestImportPrepaymentsRequiresCamp(t *testing.T) {
	service := NewService(NewMockStore())

	_, err := service.ImportPrepayments(strings.NewReader("a,b,c,d\n"), 0)
	assert.ErrorIs(t, err, ErrMissingCampID)
}

func TestImportPrepaymentsRollsBackOnFailure(t *testing.T) {
	store := NewMockStore()
	store.FailInsert = errors.New("insert failed")
	service := NewService(store)

	csvData := "First Name,Last Name,Amount,Transaction ID\nAlice,Brown,150,TX-1\n"
	_, err := service.ImportPrepayments(strings.NewReader(csvData), 7)

	assert.Error(t, err)
	assert.Equal(t, 0, store.Committed)
	assert.Equal(t, 1, store.RolledBack)
}

func TestImportLegacyPayments(t *testing.T) {
	store := NewMockStore()
	janeID := seedMember(store, "Jane", "Smith")
	siteID := store.NextID
	store.NextID++
	store.Sites["A12"] = siteID
	service := NewService(store)

	csvData := strings.Join([]string{
		"Year,First Name,Last Name,Site Type,Site Number,Arrive,Depart,Total Nights,Pre-paid,Camp Fees,Site Fees,Total,Eftpos,Cash,Cheque,Other,Concession,Payment Date,Site Fee Year Paid,Headcount",
		"2019,Jane,Smith,Powered,A12,2/1/2019,12/01/2019,10,0,200,150,350,250,100,0,0,no,2019-01-02,,4",
		"2019,John,Doe,,,,,,50,100,80,230,0,0,230,0,yes,5/1/2019,2020,2",
		"2019,short",
	}, "\n")

	count, err := service.ImportLegacyPayments(strings.NewReader(csvData), 9)
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.Equal(t, 1, store.Committed)
	require.Len(t, store.Members, 2)

	john := store.Members[1]
	assert.Equal(t, "Yes", john.Concession)
	assert.Equal(t, "Paid", john.FeeStatus)
	paidUntil, ok := store.PaidUntil[john.ID]
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC), paidUntil)

	byMember := make(map[int64]LegacyPayment)
	paymentIDs := make(map[int64]int64)
	for id, p := range store.Payments {
		byMember[p.MemberID] = p
		paymentIDs[p.MemberID] = id
	}
	require.Len(t, byMember, 2)

	janePayment := byMember[janeID]
	assert.Equal(t, int64(9), janePayment.CampID)
	require.NotNil(t, janePayment.SiteID)
	assert.Equal(t, siteID, *janePayment.SiteID)
	assert.Equal(t, 200.0, janePayment.CampFee)
	assert.Equal(t, 150.0, janePayment.SiteFee)
	assert.Equal(t, 350.0, janePayment.Total)
	assert.Equal(t, 4, janePayment.Headcount)
	assert.Equal(t, time.Date(2019, time.January, 2, 0, 0, 0, 0, time.UTC), janePayment.PaymentDate)
	require.NotNil(t, janePayment.ArrivalDate)
	assert.Equal(t, time.Date(2019, time.January, 2, 0, 0, 0, 0, time.UTC), *janePayment.ArrivalDate)
	require.NotNil(t, janePayment.DepartureDate)
	assert.Equal(t, time.Date(2019, time.January, 12, 0, 0, 0, 0, time.UTC), *janePayment.DepartureDate)

	johnPayment := byMember[john.ID]
	assert.Nil(t, johnPayment.SiteID)
	assert.Equal(t, 50.0, johnPayment.PrepaidApplied)
	assert.Equal(t, 230.0, johnPayment.Total)

	require.Len(t, store.Tenders, 3)
	byPayment := make(map[int64][]mockTender)
	for _, tender := range store.Tenders {
		byPayment[tender.PaymentID] = append(byPayment[tender.PaymentID], tender)
	}
	janeTenders := byPayment[paymentIDs[janeID]]
	require.Len(t, janeTenders, 2)
	assert.Equal(t, "EFTPOS", janeTenders[0].Method)
	assert.Equal(t, 250.0, janeTenders[0].Amount)
	assert.Equal(t, "Cash", janeTenders[1].Method)
	assert.Equal(t, 100.0, janeTenders[1].Amount)

	johnTenders := byPayment[paymentIDs[john.ID]]
	require.Len(t, johnTenders, 1)
	assert.Equal(t, "Cheque", johnTenders[0].Method)
	assert.Equal(t, 230.0, johnTenders[0].Amount)
}

func TestImportLegacyPaymentsRequiresCamp(t *testing.T) {
	service := NewService(NewMockStore())

	_, err := service.ImportLegacyPayments(strings.NewReader("a,b,c,d,e\n"), 0)
	assert.ErrorIs(t, err, ErrMissingCampID)
}

func TestImportLegacyPaymentsRollsBackOnFailure(t *testing.T) {
	store := NewMockStore()
	store.FailInsert = errors.New("insert failed")
	service := NewService(store)

	csvData := "h,h,h,h,h\n2019,Jane,Smith,,A1,,,,,100,0,100,100,0,0,0,no,2019-01-02,,1\n"
	_, err := service.ImportLegacyPayments(strings.NewReader(csvData), 9)

	assert.Error(t, err)
	assert.Equal(t, 0, store.Committed)
	assert.Equal(t, 1, store.RolledBack)
}

func TestImportRates(t *testing.T) {
	store := NewMockStore()
	service := NewService(store)

	csvData := strings.Join([]string{
		"Category,Item,User Type,Amount",
		"Site Fees,Powered Site,Adult,$45.50",
		"Site Fees,,Adult,10",
		"Meals,Dinner,Child,12",
	}, "\n")

	count, err := service.ImportRates(strings.NewReader(csvData), 4)
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	require.Len(t, store.Rates, 2)
	assert.Equal(t, mockRate{CampID: 4, Category: "Site Fees", Item: "Powered Site", UserType: "Adult", Amount: 45.5}, store.Rates[0])
}
