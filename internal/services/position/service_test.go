package position

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jcarver/folio/internal/common"
	"github.com/jcarver/folio/internal/interfaces"
	"github.com/jcarver/folio/internal/models"
)

// --- in-memory UserDataStore mock ---

type memUserStore struct {
	mu      sync.Mutex
	records map[string]*models.UserRecord
}

func newMemUserStore() *memUserStore {
	return &memUserStore{records: make(map[string]*models.UserRecord)}
}

func memKey(userID, subject, key string) string {
	return userID + "\x00" + subject + "\x00" + key
}

func (m *memUserStore) Get(_ context.Context, userID, subject, key string) (*models.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[memKey(userID, subject, key)]
	if !ok {
		return nil, fmt.Errorf("%s '%s' not found", subject, key)
	}
	copied := *rec
	return &copied, nil
}

func (m *memUserStore) Put(_ context.Context, record *models.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	copied.DateTime = time.Now()
	m.records[memKey(record.UserID, record.Subject, record.Key)] = &copied
	return nil
}

func (m *memUserStore) Delete(_ context.Context, userID, subject, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, memKey(userID, subject, key))
	return nil
}

func (m *memUserStore) List(_ context.Context, userID, subject string) ([]*models.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.UserRecord
	for _, rec := range m.records {
		if rec.UserID == userID && rec.Subject == subject {
			copied := *rec
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (m *memUserStore) Query(ctx context.Context, userID, subject string, _ interfaces.QueryOptions) ([]*models.UserRecord, error) {
	return m.List(ctx, userID, subject)
}

func (m *memUserStore) Close() error { return nil }

type memStorage struct {
	user *memUserStore
}

func (m *memStorage) InternalStore() interfaces.InternalStore { return nil }
func (m *memStorage) UserDataStore() interfaces.UserDataStore { return m.user }
func (m *memStorage) Close() error                            { return nil }

func newTestService() (*Service, *memStorage) {
	storage := &memStorage{user: newMemUserStore()}
	return NewService(storage, common.NewSilentLogger()), storage
}

func seedAllocation(t *testing.T, storage *memStorage, userID, ticker string, pct float64) {
	t.Helper()
	data, err := json.Marshal(models.AllocationTarget{Ticker: ticker, TargetPercentage: pct})
	if err != nil {
		t.Fatalf("marshal target: %v", err)
	}
	err = storage.user.Put(context.Background(), &models.UserRecord{
		UserID: userID, Subject: SubjectAllocation, Key: ticker, Value: string(data),
	})
	if err != nil {
		t.Fatalf("seed allocation: %v", err)
	}
}

// --- tests ---

func TestCreateAssignsIDAndValidates(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	transaction := tx(models.TransactionBuy, 1, 10, 100, 5)
	transaction.UserID = "alice"
	if err := svc.Create(ctx, &transaction); err != nil {
		t.Fatalf("create: %v", err)
	}
	if transaction.ID == "" {
		t.Error("expected a server-assigned transaction ID")
	}

	invalid := tx(models.TransactionBuy, 1, -1, 100, 0)
	invalid.UserID = "alice"
	if err := svc.Create(ctx, &invalid); err == nil {
		t.Error("expected validation error for negative shares")
	}
}

func TestListSortsByDate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, day := range []int{5, 1, 3} {
		transaction := tx(models.TransactionBuy, day, 1, 100, 0)
		transaction.UserID = "alice"
		if err := svc.Create(ctx, &transaction); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	txs, err := svc.List(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	for i := 1; i < len(txs); i++ {
		if txs[i].Date.Time.Before(txs[i-1].Date.Time) {
			t.Errorf("transactions out of date order at index %d", i)
		}
	}
}

func TestUpdateUnknownTransactionFails(t *testing.T) {
	svc, _ := newTestService()

	transaction := tx(models.TransactionBuy, 1, 10, 100, 0)
	transaction.UserID = "alice"
	transaction.ID = "missing"
	if err := svc.Update(context.Background(), &transaction); err == nil {
		t.Error("expected error updating unknown transaction")
	}
}

func TestPositionsMergeTargetsAndStatus(t *testing.T) {
	svc, storage := newTestService()
	ctx := context.Background()

	for _, spec := range []struct {
		ticker string
		shares float64
		price  float64
	}{
		{"VAS.AX", 10, 100}, // cost 1000
		{"VGS.AX", 10, 300}, // cost 3000
	} {
		transaction := tx(models.TransactionBuy, 1, spec.shares, spec.price, 0)
		transaction.Ticker = spec.ticker
		transaction.UserID = "alice"
		if err := svc.Create(ctx, &transaction); err != nil {
			t.Fatalf("create %s: %v", spec.ticker, err)
		}
	}
	seedAllocation(t, storage, "alice", "VAS.AX", 50)
	seedAllocation(t, storage, "alice", "VGS.AX", 50)

	view, err := svc.Positions(ctx, "alice")
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	if len(view.Positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(view.Positions))
	}
	if !approxEqual(view.TotalValue, 4000) {
		t.Errorf("expected total value 4000, got %v", view.TotalValue)
	}
	if !approxEqual(view.TotalAllocated, 100) {
		t.Errorf("expected total allocated 100, got %v", view.TotalAllocated)
	}

	byTicker := map[string]models.Position{}
	for _, pos := range view.Positions {
		byTicker[pos.Ticker] = pos
	}

	vas := byTicker["VAS.AX"]
	if !approxEqual(vas.CurrentAllocationPercentage, 25) {
		t.Errorf("VAS current%%: expected 25, got %v", vas.CurrentAllocationPercentage)
	}
	if vas.RebalancingStatus != models.StatusUnderweight {
		t.Errorf("VAS status: expected Underweight, got %s", vas.RebalancingStatus)
	}
	// -(-25)/100 * 4000 = 1000 to buy
	if !approxEqual(vas.RebalanceAmount, 1000) {
		t.Errorf("VAS rebalance amount: expected 1000, got %v", vas.RebalanceAmount)
	}

	vgs := byTicker["VGS.AX"]
	if vgs.RebalancingStatus != models.StatusOverweight {
		t.Errorf("VGS status: expected Overweight, got %s", vgs.RebalancingStatus)
	}
}

func TestPositionsDropsClosedPositions(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	buy := tx(models.TransactionBuy, 1, 10, 100, 0)
	buy.UserID = "alice"
	sell := tx(models.TransactionSell, 2, 10, 110, 0)
	sell.UserID = "alice"
	for _, transaction := range []*models.Transaction{&buy, &sell} {
		if err := svc.Create(ctx, transaction); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	view, err := svc.Positions(ctx, "alice")
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	if len(view.Positions) != 0 {
		t.Errorf("expected closed position to be dropped, got %d positions", len(view.Positions))
	}
}

func TestPositionsEmptyPortfolio(t *testing.T) {
	svc, _ := newTestService()

	view, err := svc.Positions(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	if len(view.Positions) != 0 || view.TotalValue != 0 {
		t.Errorf("expected empty view, got %+v", view)
	}
}
