package importer

import (
	"strings"
	"time"

	"github.com/campo/CampManager/internal/prepayment"
)

type mockMember struct {
	ID         int64
	FirstName  string
	LastName   string
	Fellowship string
	Concession string
	FeeStatus  string
}

type mockRate struct {
	CampID   int64
	Category string
	Item     string
	UserType string
	Amount   float64
}

// MockStore backs importer tests with in-memory tables. The transaction it
// hands out writes straight through; Committed/RolledBack record the
// outcome.
type MockStore struct {
	Members     []mockMember
	Sites       map[string]int64
	Allocations map[[2]int64]bool
	PaidUntil   map[int64]time.Time
	Credits     []prepayment.Credit
	Rates       []mockRate
	Payments    map[int64]LegacyPayment
	Tenders     []mockTender

	NextID     int64
	Committed  int
	RolledBack int
	FailInsert error
}

type mockTender struct {
	PaymentID int64
	Method    string
	Amount    float64
}

func NewMockStore() *MockStore {
	return &MockStore{
		Sites:       make(map[string]int64),
		Allocations: make(map[[2]int64]bool),
		PaidUntil:   make(map[int64]time.Time),
		Payments:    make(map[int64]LegacyPayment),
		NextID:      1,
	}
}

func (m *MockStore) BeginImport() (ImportTx, error) {
	return &mockImportTx{store: m}, nil
}

type mockImportTx struct {
	store *MockStore
}

func (t *mockImportTx) MemberIDByName(firstName, lastName string) (*int64, error) {
	ids, _ := t.MembersByName(firstName, lastName)
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}

func (t *mockImportTx) MembersByName(firstName, lastName string) ([]int64, error) {
	var ids []int64
	for _, m := range t.store.Members {
		if strings.EqualFold(m.FirstName, firstName) && strings.EqualFold(m.LastName, lastName) {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (t *mockImportTx) AnyMemberWithLastName(lastName string) (bool, error) {
	for _, m := range t.store.Members {
		if strings.EqualFold(m.LastName, lastName) {
			return true, nil
		}
	}
	return false, nil
}

func (t *mockImportTx) InsertMember(firstName, lastName, fellowship, concession, feeStatus string) (int64, error) {
	if t.store.FailInsert != nil {
		return 0, t.store.FailInsert
	}
	id := t.store.NextID
	t.store.NextID++
	t.store.Members = append(t.store.Members, mockMember{
		ID:         id,
		FirstName:  firstName,
		LastName:   lastName,
		Fellowship: fellowship,
		Concession: concession,
		FeeStatus:  feeStatus,
	})
	return id, nil
}

func (t *mockImportTx) UpdateMemberDetails(id int64, fellowship, concession, feeStatus string) error {
	for i := range t.store.Members {
		if t.store.Members[i].ID == id {
			t.store.Members[i].Fellowship = fellowship
			t.store.Members[i].Concession = concession
			t.store.Members[i].FeeStatus = feeStatus
		}
	}
	return nil
}

func (t *mockImportTx) UpsertPaidUntil(memberID int64, paidUntil time.Time) error {
	t.store.PaidUntil[memberID] = paidUntil
	return nil
}

func (t *mockImportTx) SetFeeStatus(memberID int64, status string) error {
	for i := range t.store.Members {
		if t.store.Members[i].ID == memberID {
			t.store.Members[i].FeeStatus = status
		}
	}
	return nil
}

func (t *mockImportTx) SiteIDByNumber(siteNumber string) (*int64, error) {
	if id, ok := t.store.Sites[siteNumber]; ok {
		return &id, nil
	}
	return nil, nil
}

func (t *mockImportTx) InsertSite(siteNumber, siteType string) (int64, error) {
	id := t.store.NextID
	t.store.NextID++
	t.store.Sites[siteNumber] = id
	return id, nil
}

func (t *mockImportTx) EnsureAllocation(siteID, memberID int64) error {
	t.store.Allocations[[2]int64{siteID, memberID}] = true
	return nil
}

func (t *mockImportTx) HasDuplicateCredit(campID int64, transactionID, importedName string, amount float64) (bool, error) {
	for _, c := range t.store.Credits {
		if c.CampID == nil || *c.CampID != campID {
			continue
		}
		if transactionID != "" && c.TransactionID == transactionID {
			return true, nil
		}
		if c.ImportedName == importedName && c.Amount == amount {
			return true, nil
		}
	}
	return false, nil
}

func (t *mockImportTx) InsertCredit(c prepayment.Credit) (int64, error) {
	if t.store.FailInsert != nil {
		return 0, t.store.FailInsert
	}
	id := t.store.NextID
	t.store.NextID++
	c.ID = id
	t.store.Credits = append(t.store.Credits, c)
	return id, nil
}

func (t *mockImportTx) InsertRate(campID int64, category, item, userType string, amount float64) (int64, error) {
	if t.store.FailInsert != nil {
		return 0, t.store.FailInsert
	}
	id := t.store.NextID
	t.store.NextID++
	t.store.Rates = append(t.store.Rates, mockRate{
		CampID:   campID,
		Category: category,
		Item:     item,
		UserType: userType,
		Amount:   amount,
	})
	return id, nil
}

func (t *mockImportTx) InsertLegacyPayment(p LegacyPayment) (int64, error) {
	if t.store.FailInsert != nil {
		return 0, t.store.FailInsert
	}
	id := t.store.NextID
	t.store.NextID++
	t.store.Payments[id] = p
	return id, nil
}

func (t *mockImportTx) InsertTender(paymentID int64, method string, amount float64) error {
	t.store.Tenders = append(t.store.Tenders, mockTender{
		PaymentID: paymentID,
		Method:    method,
		Amount:    amount,
	})
	return nil
}

func (t *mockImportTx) Commit() error {
	t.store.Committed++
	return nil
}

func (t *mockImportTx) Rollback() error {
	t.store.RolledBack++
	return nil
}
