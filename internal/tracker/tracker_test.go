package tracker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/dvloznov/smsspend/internal/blobstore/memory"
	"github.com/dvloznov/smsspend/internal/domain"
	"github.com/dvloznov/smsspend/internal/extraction"
	"github.com/dvloznov/smsspend/internal/ledger"
	"github.com/dvloznov/smsspend/internal/logger"
	"github.com/dvloznov/smsspend/internal/persistence"
)

const starbucksSMS = "Your card ending 1234 was charged $24.50 at STARBUCKS on 05/12/2024."

// MockGenerator returns a canned model response.
type MockGenerator struct {
	mu       sync.Mutex
	Response string
	Err      error
	Calls    int
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return m.Response, m.Err
}

// FailingPersister wraps a bridge and fails saves on demand.
type FailingPersister struct {
	*persistence.Bridge
	Fail  bool
	Saves int
}

func (f *FailingPersister) Save(ctx context.Context, l *ledger.Ledger) error {
	f.Saves++
	if f.Fail {
		return errors.New("write refused")
	}
	return f.Bridge.Save(ctx, l)
}

func testCtx() context.Context {
	return logger.WithContext(context.Background(), zerolog.New(io.Discard))
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 12, 15, 30, 0, 0, time.Local)
}

func newTracker(t *testing.T, gen extraction.Generator) (*Tracker, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	opts := []Option{WithClock(fixedNow)}
	if gen != nil {
		opts = append(opts, WithExtractor(extraction.NewExtractor(gen, extraction.WithClock(fixedNow))))
	}
	tr, err := Open(testCtx(), persistence.NewBridge(store, "sms_expenses"), opts...)
	require.NoError(t, err)
	return tr, store
}

func TestImportFromText_EndToEnd(t *testing.T) {
	ctx := testCtx()
	gen := &MockGenerator{Response: `{"amount": 24.5, "merchant": "Starbucks", "date": "2024-05-12", "category": "Food"}`}
	tr, store := newTracker(t, gen)

	tx, err := tr.ImportFromText(ctx, starbucksSMS)
	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, 24.5, tx.Amount)
	assert.Equal(t, "Starbucks", tx.Merchant)
	assert.Equal(t, "2024-05-12", tx.Date)
	assert.Equal(t, "Food", tx.Category)
	assert.Equal(t, starbucksSMS, tx.OriginalSMS)

	txs := tr.GetTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, *tx, txs[0])

	d := tr.GetDashboardStats()
	assert.Equal(t, 24.5, d.TotalSpent)
	assert.Equal(t, 24.5, d.TodaySpent)
	assert.Equal(t, 1, d.TransactionCount)
	require.Len(t, d.WeeklySeries, 7)
	assert.Equal(t, 24.5, d.WeeklySeries[6].Amount)

	assert.Equal(t, 1, store.Puts())

	// The write is durable: a fresh tracker over the same store sees it
	reopened, err := Open(ctx, persistence.NewBridge(store, "sms_expenses"))
	require.NoError(t, err)
	assert.Equal(t, txs, reopened.GetTransactions())
}

func TestImportFromText_IncompleteLeavesLedgerUnchanged(t *testing.T) {
	gen := &MockGenerator{Response: `{"merchant": "Unknown"}`}
	tr, store := newTracker(t, gen)

	tx, err := tr.ImportFromText(testCtx(), "Thanks for your payment")
	assert.Nil(t, tx)
	require.ErrorIs(t, err, extraction.ErrIncomplete)

	var incomplete *extraction.IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"amount"}, incomplete.Missing)

	assert.Empty(t, tr.GetTransactions())
	assert.Equal(t, 0, store.Puts())
}

func TestImportFromText_BlankIsNoOp(t *testing.T) {
	gen := &MockGenerator{}
	tr, store := newTracker(t, gen)

	tx, err := tr.ImportFromText(testCtx(), "   \n")
	assert.NoError(t, err)
	assert.Nil(t, tx)
	assert.Equal(t, 0, gen.Calls)
	assert.Equal(t, 0, store.Puts())
}

func TestImportFromText_ServiceUnavailable(t *testing.T) {
	gen := &MockGenerator{Err: errors.New("503 from upstream")}
	tr, _ := newTracker(t, gen)

	_, err := tr.ImportFromText(testCtx(), starbucksSMS)
	assert.ErrorIs(t, err, extraction.ErrServiceUnavailable)
	assert.Empty(t, tr.GetTransactions())
}

func TestImportFromText_BlankWithoutExtractorIsNoOp(t *testing.T) {
	tr, store := newTracker(t, nil)

	tx, err := tr.ImportFromText(testCtx(), "   ")
	assert.NoError(t, err)
	assert.Nil(t, tx)
	assert.Equal(t, 0, store.Puts())
}

func TestAddTransaction_RejectsMalformed(t *testing.T) {
	ctx := testCtx()
	tr, store := newTracker(t, nil)

	err := tr.AddTransaction(ctx, domain.Transaction{ID: "neg", Amount: -5, Date: "2024-05-12", Merchant: "m"})
	assert.ErrorIs(t, err, ledger.ErrInvalidTransaction)
	err = tr.AddTransaction(ctx, domain.Transaction{ID: "bad", Amount: 5, Date: "garbage", Merchant: "m"})
	assert.ErrorIs(t, err, ledger.ErrInvalidTransaction)

	assert.Empty(t, tr.GetTransactions())
	assert.Equal(t, 0.0, tr.GetDashboardStats().TotalSpent)
	assert.Equal(t, 0, store.Puts())
}

func TestImportFromText_Disabled(t *testing.T) {
	tr, _ := newTracker(t, nil)
	assert.False(t, tr.ExtractionEnabled())

	_, err := tr.ImportFromText(testCtx(), starbucksSMS)
	assert.ErrorIs(t, err, extraction.ErrServiceUnavailable)
	assert.ErrorIs(t, err, ErrExtractionDisabled)
}

func TestAddManual(t *testing.T) {
	ctx := testCtx()
	tr, store := newTracker(t, nil)

	tx, err := tr.AddManual(ctx, domain.ManualEntry{Amount: "12,40", Merchant: "Bakery"})
	require.NoError(t, err)
	assert.Equal(t, 12.4, tx.Amount)
	assert.Equal(t, "2024-05-12", tx.Date)
	assert.Equal(t, domain.DefaultManualCategory, tx.Category)
	assert.Empty(t, tx.OriginalSMS)
	assert.Equal(t, 1, store.Puts())

	_, err = tr.AddManual(ctx, domain.ManualEntry{Amount: "-3", Merchant: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, tr.GetTransactions(), 1)
	assert.Equal(t, 1, store.Puts())
}

func TestAddTransaction_Ordering(t *testing.T) {
	ctx := testCtx()
	tr, _ := newTracker(t, nil)

	add := func(id, date string) {
		require.NoError(t, tr.AddTransaction(ctx, domain.Transaction{ID: id, Amount: 1, Date: date, Merchant: "m", Category: "Other"}))
	}
	add("a", "2024-05-10")
	add("b", "2024-05-12")
	add("c", "2024-05-11")
	add("d", "2024-05-12")

	var ids []string
	for _, tx := range tr.GetTransactions() {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{"d", "b", "c", "a"}, ids)

	buckets := tr.GetGroupedHistory()
	require.Len(t, buckets, 3)
	assert.Equal(t, "2024-05-12", buckets[0].Date)
	assert.Len(t, buckets[0].Transactions, 2)
}

func TestAddTransaction_Duplicate(t *testing.T) {
	ctx := testCtx()
	tr, _ := newTracker(t, nil)

	tx := domain.Transaction{ID: "x", Amount: 5, Date: "2024-05-12", Merchant: "m"}
	require.NoError(t, tr.AddTransaction(ctx, tx))
	assert.ErrorIs(t, tr.AddTransaction(ctx, tx), ledger.ErrDuplicateID)
	assert.Len(t, tr.GetTransactions(), 1)
}

func TestDeleteTransaction(t *testing.T) {
	ctx := testCtx()
	tr, store := newTracker(t, nil)

	require.NoError(t, tr.AddTransaction(ctx, domain.Transaction{ID: "x", Amount: 5, Date: "2024-05-12", Merchant: "m"}))
	require.NoError(t, tr.AddTransaction(ctx, domain.Transaction{ID: "y", Amount: 7, Date: "2024-05-11", Merchant: "n"}))
	puts := store.Puts()

	require.NoError(t, tr.DeleteTransaction(ctx, "missing"))
	assert.Equal(t, puts, store.Puts())
	assert.Len(t, tr.GetTransactions(), 2)

	require.NoError(t, tr.DeleteTransaction(ctx, "x"))
	txs := tr.GetTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "y", txs[0].ID)
	assert.Equal(t, 7.0, tr.GetDashboardStats().TotalSpent)
}

func TestSaveFailureKeepsLastGoodState(t *testing.T) {
	ctx := testCtx()
	p := &FailingPersister{Bridge: persistence.NewBridge(memory.NewStore(), "sms_expenses")}
	tr, err := Open(ctx, p, WithClock(fixedNow))
	require.NoError(t, err)

	require.NoError(t, tr.AddTransaction(ctx, domain.Transaction{ID: "x", Amount: 5, Date: "2024-05-12", Merchant: "m"}))

	p.Fail = true
	err = tr.AddTransaction(ctx, domain.Transaction{ID: "y", Amount: 7, Date: "2024-05-12", Merchant: "n"})
	assert.Error(t, err)
	err = tr.DeleteTransaction(ctx, "x")
	assert.Error(t, err)

	txs := tr.GetTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "x", txs[0].ID)
	assert.Equal(t, 3, p.Saves)
}

func TestOpen_MalformedBlobRefused(t *testing.T) {
	ctx := testCtx()
	store := memory.NewStore()
	require.NoError(t, store.Put(ctx, "sms_expenses", []byte("not json")))

	_, err := Open(ctx, persistence.NewBridge(store, "sms_expenses"))
	assert.ErrorIs(t, err, ledger.ErrPersistence)
}

func TestConcurrentMutations(t *testing.T) {
	ctx := testCtx()
	tr, _ := newTracker(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tr.AddManual(ctx, domain.ManualEntry{Amount: "1", Merchant: "m"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, tr.GetTransactions(), 20)
	assert.Equal(t, 20.0, tr.GetDashboardStats().TotalSpent)
}

func TestAddThenDelete_DashboardReturnsToZero(t *testing.T) {
	ctx := testCtx()
	tr, _ := newTracker(t, nil)

	tx := domain.Transaction{ID: domain.NewID(), Amount: 24.50, Merchant: "Starbucks", Date: "2024-05-12", Category: "Food"}
	require.NoError(t, tr.AddTransaction(ctx, tx))

	d := tr.GetDashboardStats()
	assert.Equal(t, 24.5, d.TodaySpent)

	require.NoError(t, tr.DeleteTransaction(ctx, tx.ID))
	d = tr.GetDashboardStats()
	assert.Equal(t, 0.0, d.TotalSpent)
	assert.Equal(t, 0, d.TransactionCount)
	assert.Equal(t, 0.0, d.TodaySpent)
}
