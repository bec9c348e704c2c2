package payment

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	database "github.com/campo/CampManager/db"
	"github.com/campo/CampManager/internal/member"
	"github.com/campo/CampManager/internal/prepayment"
)

// startPostgres spins up a throwaway database with the full schema applied.
func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("campmanager_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.ApplySchema(db))
	return db
}

func seedPostingFixtures(t *testing.T, db *sql.DB) (memberID, campID, siteID, creditID int64) {
	t.Helper()

	require.NoError(t, db.QueryRow(
		"INSERT INTO members (first_name, last_name) VALUES ('Grace', 'Hopper') RETURNING id",
	).Scan(&memberID))
	require.NoError(t, db.QueryRow(
		"INSERT INTO camps (name, year, start_date, end_date, status) VALUES ('Summer Camp', 2026, '2026-01-02', '2026-01-12', 'Active') RETURNING id",
	).Scan(&campID))
	require.NoError(t, db.QueryRow(
		"INSERT INTO sites (site_number) VALUES ('A12') RETURNING id",
	).Scan(&siteID))
	require.NoError(t, db.QueryRow(
		`INSERT INTO prepayments (camp_id, imported_name, first_name, last_name, amount, transaction_id, matched_member_id, status)
		VALUES ($1, 'Grace Hopper', 'Grace', 'Hopper', 100, 'TX-INT-1', $2, 'Matched') RETURNING id`,
		campID, memberID,
	).Scan(&creditID))
	return memberID, campID, siteID, creditID
}

func TestRepositoryPostingRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := startPostgres(t)
	repo := NewRepository(db, member.NewLedgerRepository(db), prepayment.NewRepository(db))
	memberID, campID, siteID, creditID := seedPostingFixtures(t, db)

	tx, err := repo.BeginPosting()
	require.NoError(t, err)

	headcount := 4
	paymentDate := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	paymentID, err := tx.InsertPayment(&Record{
		MemberID:       memberID,
		CampID:         &campID,
		SiteID:         &siteID,
		PaymentDate:    paymentDate,
		CampFee:        200,
		SiteFee:        150,
		PrepaidApplied: 60,
		Total:          290,
		Headcount:      &headcount,
		Notes:          "posted at the counter",
		TenderEftpos:   200,
		TenderCash:     90,
	})
	require.NoError(t, err)
	require.NotZero(t, paymentID)

	require.NoError(t, tx.InsertTender(paymentID, Tender{Method: MethodEFTPOS, Amount: 200}))
	require.NoError(t, tx.InsertTender(paymentID, Tender{Method: MethodCash, Amount: 90}))

	expiry, err := tx.Expiry(memberID)
	require.NoError(t, err)
	assert.Nil(t, expiry)

	paidUntil := time.Date(2027, time.January, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tx.UpsertExpiry(memberID, paidUntil))
	require.NoError(t, tx.SetFeeStatus(memberID, "Paid"))

	credit, err := tx.Credit(creditID)
	require.NoError(t, err)
	require.NotNil(t, credit)
	assert.Equal(t, 100.0, credit.Amount)
	require.NoError(t, tx.ReduceCredit(creditID, 40, CreditStatusPartial))

	require.NoError(t, tx.Commit())

	rows, err := repo.FindAll("")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Grace", rows[0].FirstName)
	assert.Equal(t, "Hopper", rows[0].LastName)
	assert.Equal(t, 290.0, rows[0].Total)
	require.NotNil(t, rows[0].CampName)
	assert.Equal(t, "Summer Camp", *rows[0].CampName)

	duplicate, err := repo.HasRecentDuplicate(memberID, 290, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, duplicate)

	summary, err := repo.Summary(
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, 290.0, summary.TotalRevenue)
	assert.Equal(t, 200.0, summary.Eftpos)
	assert.Equal(t, 90.0, summary.Cash)
	assert.Equal(t, 1, summary.PaymentCount)
	assert.Equal(t, 4, summary.HeadcountTotal)

	var remaining float64
	var status string
	require.NoError(t, db.QueryRow(
		"SELECT amount, status FROM prepayments WHERE id = $1", creditID,
	).Scan(&remaining, &status))
	assert.Equal(t, 40.0, remaining)
	assert.Equal(t, CreditStatusPartial, status)

	require.NoError(t, repo.Delete(paymentID))
	rows, err = repo.FindAll("")
	require.NoError(t, err)
	assert.Empty(t, rows)

	var tenders int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM payment_tenders WHERE payment_id = $1", paymentID,
	).Scan(&tenders))
	assert.Zero(t, tenders)
}

func TestRepositoryRollbackLeavesNothing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := startPostgres(t)
	repo := NewRepository(db, member.NewLedgerRepository(db), prepayment.NewRepository(db))
	memberID, campID, _, _ := seedPostingFixtures(t, db)

	tx, err := repo.BeginPosting()
	require.NoError(t, err)

	_, err = tx.InsertPayment(&Record{
		MemberID:    memberID,
		CampID:      &campID,
		PaymentDate: time.Date(2026, time.January, 6, 0, 0, 0, 0, time.UTC),
		CampFee:     50,
		Total:       50,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	rows, err := repo.FindAll("")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
