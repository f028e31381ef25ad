package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankcore/loan-engine/internal/config"
	"github.com/bankcore/loan-engine/internal/domain"
	"github.com/bankcore/loan-engine/internal/repository"
)

var testDB *sqlx.DB

const testDBName = "loan_engine_test"

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	teardown()
	os.Exit(code)
}

func setup() {
	godotenv.Load("../../../.env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config, skipping integration tests: %v\n", err)
		return
	}

	// Connect to the postgres database to create the test database.
	// When no server is reachable the suite skips instead of failing.
	cfg.Database.Name = "postgres"
	adminDB, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		fmt.Printf("Postgres unavailable, skipping integration tests: %v\n", err)
		return
	}
	defer adminDB.Close()

	adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", testDBName))
	if _, err = adminDB.Exec(fmt.Sprintf("CREATE DATABASE %s", testDBName)); err != nil {
		panic(fmt.Sprintf("Failed to create test database: %v", err))
	}

	cfg.Database.Name = testDBName
	testDB, err = sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}

	if err := executeInitSQL(testDB); err != nil {
		panic(fmt.Sprintf("Failed to initialize database schema: %v", err))
	}
}

func teardown() {
	if testDB == nil {
		return
	}
	testDB.Close()
	testDB = nil

	cfg, _ := config.Load()
	cfg.Database.Name = "postgres"

	adminDB, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return
	}
	defer adminDB.Close()

	adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", testDBName))
}

func executeInitSQL(db *sqlx.DB) error {
	sqlBytes, err := os.ReadFile("../../../migrations/init.sql")
	if err != nil {
		return fmt.Errorf("failed to read init.sql: %w", err)
	}

	if _, err = db.Exec(string(sqlBytes)); err != nil {
		return fmt.Errorf("failed to execute init.sql: %w", err)
	}

	return nil
}

func setupStore(t *testing.T) repository.DB {
	if testDB == nil {
		t.Skip("postgres not available")
	}
	cleanupTestData(testDB)
	return repository.New(testDB)
}

func cleanupTestData(db *sqlx.DB) {
	db.Exec("DELETE FROM document")
	db.Exec("DELETE FROM loan_payment")
	db.Exec("DELETE FROM loan")
	db.Exec("DELETE FROM loan_request")
	db.Exec("DELETE FROM fund")
	db.Exec("UPDATE bank_ledger SET total_funds = 0 WHERE id = 1")
}

func seedRequest(t *testing.T, store repository.DB, status string) *domain.LoanRequest {
	request := &domain.LoanRequest{
		ID:                uuid.New(),
		CustomerID:        uuid.New(),
		Status:            status,
		MaxDurationMonths: 12,
		Purpose:           "working capital",
		Details:           "inventory purchase",
		Amount:            decimal.NewFromInt(600),
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	require.NoError(t, store.CreateRequest(context.Background(), request))
	return request
}

func seedLoan(t *testing.T, store repository.DB, request *domain.LoanRequest) *domain.Loan {
	term := 6
	rate := 10.0
	loan := &domain.Loan{
		ID:           uuid.New(),
		CustomerID:   request.CustomerID,
		RequestID:    request.ID,
		Amount:       request.Amount,
		TermMonths:   &term,
		InterestRate: &rate,
		Status:       domain.LoanStatusInProgress,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, store.CreateLoan(context.Background(), loan))
	return loan
}

func TestLedger_EnsureAndUpdate(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	// init.sql seeds the row; EnsureLedger must be a no-op on conflict.
	require.NoError(t, store.EnsureLedger(ctx))
	require.NoError(t, store.EnsureLedger(ctx))

	ledger, err := store.GetLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(domain.LedgerID), ledger.ID)
	assert.True(t, ledger.TotalFunds.Equal(decimal.Zero))

	require.NoError(t, store.SetLedgerFunds(ctx, decimal.NewFromInt(1000)))

	ledger, err = store.GetLedger(ctx)
	require.NoError(t, err)
	assert.True(t, ledger.TotalFunds.Equal(decimal.NewFromInt(1000)))
}

func TestLedger_NeverGoesNegative(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.SetLedgerFunds(ctx, decimal.NewFromInt(-1))
	assert.Error(t, err, "check constraint must refuse a negative balance")
}

func TestFund_CreateAndListByProvider(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	providerID := uuid.New()

	for _, amount := range []int64{250, 750} {
		fund := &domain.Fund{
			ID:         uuid.New(),
			ProviderID: providerID,
			Amount:     decimal.NewFromInt(amount),
			CreatedAt:  time.Now(),
		}
		require.NoError(t, store.CreateFund(ctx, fund))
	}

	funds, err := store.ListFundsByProvider(ctx, providerID)
	require.NoError(t, err)
	assert.Len(t, funds, 2)

	other, err := store.ListFundsByProvider(ctx, uuid.New())
	require.NoError(t, err)
	assert.Len(t, other, 0)
}

func TestRequest_CreateGetUpdate(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	request := seedRequest(t, store, domain.RequestStatusPendingReview)

	got, err := store.GetRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, request.CustomerID, got.CustomerID)
	assert.Equal(t, domain.RequestStatusPendingReview, got.Status)
	assert.False(t, got.MinAmount.Valid)
	assert.Nil(t, got.InterestRate)

	rate := 10.0
	got.Status = domain.RequestStatusPendingCustomer
	got.MinAmount = decimal.NewNullDecimal(decimal.NewFromInt(100))
	got.MaxAmount = decimal.NewNullDecimal(decimal.NewFromInt(800))
	got.InterestRate = &rate
	require.NoError(t, store.UpdateRequest(ctx, got))

	updated, err := store.GetRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPendingCustomer, updated.Status)
	assert.True(t, updated.MinAmount.Valid)
	assert.True(t, updated.MaxAmount.Decimal.Equal(decimal.NewFromInt(800)))
	require.NotNil(t, updated.InterestRate)
	assert.Equal(t, 10.0, *updated.InterestRate)
}

func TestRequest_ListByStatusAndCustomer(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	pending := seedRequest(t, store, domain.RequestStatusPendingReview)
	seedRequest(t, store, domain.RequestStatusRejected)

	all, err := store.ListRequests(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := store.ListRequests(ctx, domain.RequestStatusPendingReview)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, pending.ID, filtered[0].ID)

	mine, err := store.ListRequestsByCustomer(ctx, pending.CustomerID, "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, pending.ID, mine[0].ID)
}

func TestPayments_TotalPaid(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	request := seedRequest(t, store, domain.RequestStatusApproved)
	loan := seedLoan(t, store, request)

	total, err := store.GetTotalPaid(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.Zero), "no payments yet")

	for _, amount := range []float64{100.50, 249.50} {
		payment := &domain.LoanPayment{
			ID:          uuid.New(),
			LoanID:      loan.ID,
			AmountPaid:  decimal.NewFromFloat(amount),
			PaymentDate: time.Now(),
		}
		require.NoError(t, store.CreatePayment(ctx, payment))
	}

	total, err = store.GetTotalPaid(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(350)))

	payments, err := store.ListPaymentsByLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestLoan_ListDeadlineCandidates(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	request := seedRequest(t, store, domain.RequestStatusApproved)
	loan := seedLoan(t, store, request)

	// Not yet due.
	candidates, err := store.ListDeadlineCandidates(ctx, time.Now())
	require.NoError(t, err)
	assert.Len(t, candidates, 0)

	// Seven months from now a six month loan is past its deadline.
	candidates, err = store.ListDeadlineCandidates(ctx, time.Now().AddDate(0, 7, 0))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, loan.ID, candidates[0].ID)

	// Settled loans drop out regardless of age.
	require.NoError(t, store.UpdateLoanStatus(ctx, loan.ID, domain.LoanStatusFullyPaid))
	candidates, err = store.ListDeadlineCandidates(ctx, time.Now().AddDate(0, 7, 0))
	require.NoError(t, err)
	assert.Len(t, candidates, 0)
}

func TestDocuments_ReassignToLoan(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	request := seedRequest(t, store, domain.RequestStatusApproved)
	loan := seedLoan(t, store, request)

	requestID := request.ID
	doc := &domain.Document{
		ID:          uuid.New(),
		Title:       "payslip.pdf",
		StoragePath: "documents/payslip.pdf",
		RequestID:   &requestID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, store.CreateDocument(ctx, doc))

	require.NoError(t, store.ReassignDocumentsToLoan(ctx, request.ID, loan.ID))

	byRequest, err := store.ListDocumentsByRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Len(t, byRequest, 0)

	byLoan, err := store.ListDocumentsByLoan(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, byLoan, 1)
	assert.Equal(t, doc.ID, byLoan[0].ID)
	assert.Nil(t, byLoan[0].RequestID)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.WithinTx(ctx, func(st repository.Store) error {
		if err := st.SetLedgerFunds(ctx, decimal.NewFromInt(500)); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	ledger, err := store.GetLedger(ctx)
	require.NoError(t, err)
	assert.True(t, ledger.TotalFunds.Equal(decimal.Zero), "update must roll back with the transaction")
}
