package payment

import (
	"errors"
	"time"
)

// MockStore is an in-memory Store for service tests. A mock posting
// transaction stages its writes and only copies them back on Commit, so
// rollback behaviour can be asserted.
type MockStore struct {
	DuplicateResult bool
	CurrentSite     *int64

	ExpiryByMember map[int64]time.Time
	FeeStatus      map[int64]string
	CreditsByID    map[int64]Credit

	Payments []Record
	Tenders  []Tender

	FailTenderInsert bool
	FailExpiryUpsert bool

	DuplicateSince time.Time
	Committed      int
	RolledBack     int

	ListRows    []ListRow
	SummaryData Summary
	CampData    *Camp
	Stays       []StayRow
}

func NewMockStore() *MockStore {
	return &MockStore{
		ExpiryByMember: map[int64]time.Time{},
		FeeStatus:      map[int64]string{},
		CreditsByID:    map[int64]Credit{},
	}
}

func (m *MockStore) BeginPosting() (PostingTx, error) {
	tx := &mockPostingTx{store: m, creditsByID: map[int64]Credit{}}
	for id, c := range m.CreditsByID {
		tx.creditsByID[id] = c
	}
	return tx, nil
}

func (m *MockStore) HasRecentDuplicate(memberID int64, total float64, since time.Time) (bool, error) {
	m.DuplicateSince = since
	if m.DuplicateResult {
		return true, nil
	}
	for _, p := range m.Payments {
		if p.MemberID == memberID && p.Total == total && p.CreatedAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStore) CurrentSiteID(memberID int64) (*int64, error) {
	return m.CurrentSite, nil
}

func (m *MockStore) FindAll(search string) ([]ListRow, error) {
	return m.ListRows, nil
}

func (m *MockStore) UpdateFees(id int64, corr FeeCorrection) error {
	return nil
}

func (m *MockStore) Delete(id int64) error {
	return nil
}

func (m *MockStore) Summary(start, end time.Time) (Summary, error) {
	return m.SummaryData, nil
}

func (m *MockStore) CampByID(id int64) (*Camp, error) {
	return m.CampData, nil
}

func (m *MockStore) ActiveCamp() (*Camp, error) {
	return m.CampData, nil
}

func (m *MockStore) StayRows(campID int64) ([]StayRow, error) {
	return m.Stays, nil
}

type mockPostingTx struct {
	store *MockStore

	payments    []Record
	tenders     []Tender
	expiry      map[int64]time.Time
	feeStatus   map[int64]string
	creditsByID map[int64]Credit

	done bool
}

func (tx *mockPostingTx) InsertPayment(rec *Record) (int64, error) {
	record := *rec
	record.ID = int64(len(tx.store.Payments)+len(tx.payments)) + 1
	record.CreatedAt = time.Now()
	tx.payments = append(tx.payments, record)
	return record.ID, nil
}

func (tx *mockPostingTx) InsertTender(paymentID int64, t Tender) error {
	if tx.store.FailTenderInsert {
		return errors.New("tender insert failed")
	}
	t.PaymentID = paymentID
	tx.tenders = append(tx.tenders, t)
	return nil
}

func (tx *mockPostingTx) Expiry(memberID int64) (*time.Time, error) {
	if expiry, ok := tx.store.ExpiryByMember[memberID]; ok {
		return &expiry, nil
	}
	return nil, nil
}

func (tx *mockPostingTx) UpsertExpiry(memberID int64, paidUntil time.Time) error {
	if tx.store.FailExpiryUpsert {
		return errors.New("expiry upsert failed")
	}
	if tx.expiry == nil {
		tx.expiry = map[int64]time.Time{}
	}
	tx.expiry[memberID] = paidUntil
	return nil
}

func (tx *mockPostingTx) SetFeeStatus(memberID int64, status string) error {
	if tx.feeStatus == nil {
		tx.feeStatus = map[int64]string{}
	}
	tx.feeStatus[memberID] = status
	return nil
}

func (tx *mockPostingTx) Credit(id int64) (*Credit, error) {
	if credit, ok := tx.creditsByID[id]; ok {
		return &credit, nil
	}
	return nil, nil
}

func (tx *mockPostingTx) ReduceCredit(id int64, newAmount float64, status string) error {
	credit, ok := tx.creditsByID[id]
	if !ok {
		return errors.New("no such credit")
	}
	credit.Amount = newAmount
	credit.Status = status
	tx.creditsByID[id] = credit
	return nil
}

func (tx *mockPostingTx) Commit() error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	tx.done = true
	tx.store.Committed++
	tx.store.Payments = append(tx.store.Payments, tx.payments...)
	tx.store.Tenders = append(tx.store.Tenders, tx.tenders...)
	for id, expiry := range tx.expiry {
		tx.store.ExpiryByMember[id] = expiry
	}
	for id, status := range tx.feeStatus {
		tx.store.FeeStatus[id] = status
	}
	tx.store.CreditsByID = tx.creditsByID
	return nil
}

func (tx *mockPostingTx) Rollback() error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	tx.done = true
	tx.store.RolledBack++
	return nil
}
