package position

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jcarver/folio/internal/common"
	"github.com/jcarver/folio/internal/interfaces"
	"github.com/jcarver/folio/internal/models"
)

// Storage subjects for user domain records.
const (
	SubjectTransaction = "transaction"
	SubjectAllocation  = "allocation"
)

// Compile-time interface check
var _ interfaces.TransactionService = (*Service)(nil)

// Service implements TransactionService: transaction CRUD plus position
// derivation. Positions are recomputed synchronously from the full
// transaction list on every read; they are never stored.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new transaction/position service.
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// List returns all transactions for a user, oldest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	recs, err := s.storage.UserDataStore().List(ctx, userID, SubjectTransaction)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := make([]models.Transaction, 0, len(recs))
	for _, rec := range recs {
		var tx models.Transaction
		if err := json.Unmarshal([]byte(rec.Value), &tx); err != nil {
			s.logger.Warn().Str("key", rec.Key).Err(err).Msg("Skipping unreadable transaction record")
			continue
		}
		tx.UserID = userID
		txs = append(txs, tx)
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Time.Before(txs[j].Date.Time)
	})
	return txs, nil
}

// Create validates and stores a new transaction, assigning an ID.
func (s *Service) Create(ctx context.Context, tx *models.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	if err := s.put(ctx, tx); err != nil {
		return err
	}
	s.logger.Info().
		Str("user_id", tx.UserID).
		Str("ticker", tx.Ticker).
		Str("type", string(tx.Type)).
		Msg("Transaction recorded")
	return nil
}

// Update replaces an existing transaction.
func (s *Service) Update(ctx context.Context, tx *models.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if _, err := s.storage.UserDataStore().Get(ctx, tx.UserID, SubjectTransaction, tx.ID); err != nil {
		return fmt.Errorf("transaction '%s' not found: %w", tx.ID, err)
	}
	tx.UpdatedAt = time.Now()
	return s.put(ctx, tx)
}

// Delete removes a transaction.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.storage.UserDataStore().Delete(ctx, userID, SubjectTransaction, id); err != nil {
		return fmt.Errorf("failed to delete transaction '%s': %w", id, err)
	}
	s.logger.Info().Str("user_id", userID).Str("id", id).Msg("Transaction deleted")
	return nil
}

func (s *Service) put(ctx context.Context, tx *models.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if err := s.storage.UserDataStore().Put(ctx, &models.UserRecord{
		UserID:  tx.UserID,
		Subject: SubjectTransaction,
		Key:     tx.ID,
		Value:   string(data),
	}); err != nil {
		return fmt.Errorf("failed to save transaction '%s': %w", tx.ID, err)
	}
	return nil
}

// Positions recomputes all positions from the full transaction list and
// merges stored allocation targets. Closed positions (zero shares and zero
// cost) are dropped from the view.
func (s *Service) Positions(ctx context.Context, userID string) (*models.PortfolioView, error) {
	txs, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	targets, err := s.loadTargets(ctx, userID)
	if err != nil {
		return nil, err
	}

	byTicker := make(map[string][]models.Transaction)
	var order []string
	for _, tx := range txs {
		if _, seen := byTicker[tx.Ticker]; !seen {
			order = append(order, tx.Ticker)
		}
		byTicker[tx.Ticker] = append(byTicker[tx.Ticker], tx)
	}

	view := &models.PortfolioView{Positions: make([]models.Position, 0, len(order))}
	for _, ticker := range order {
		group := byTicker[ticker]
		agg := AggregateTransactions(group)
		if agg.TotalShares <= 0 && agg.TotalCost <= 0 {
			continue
		}
		pos := models.Position{
			Ticker:            ticker,
			CompanyName:       latestCompanyName(group),
			SecurityType:      models.NormalizeSecurityType(latestSecurityType(group)),
			TotalShares:       agg.TotalShares,
			TotalCost:         agg.TotalCost,
			AverageSharePrice: agg.AverageSharePrice,
		}
		view.Positions = append(view.Positions, pos)
		view.TotalValue += agg.TotalCost
	}

	// Percentages, target deltas and status need the portfolio total.
	for i := range view.Positions {
		pos := &view.Positions[i]
		if view.TotalValue > 0 {
			pos.CurrentAllocationPercentage = 100 * pos.TotalCost / view.TotalValue
		}
		if target, ok := targets[pos.Ticker]; ok {
			pos.TargetAllocationPercentage = target
		}
		pos.AllocationDifference = pos.CurrentAllocationPercentage - pos.TargetAllocationPercentage
		pos.RebalanceAmount = -pos.AllocationDifference / 100 * view.TotalValue
		pos.RebalancingStatus = models.StatusForDifference(pos.AllocationDifference)
		view.TotalAllocated += pos.TargetAllocationPercentage
	}

	return view, nil
}

// loadTargets reads the stored allocation targets as a ticker to percentage map.
func (s *Service) loadTargets(ctx context.Context, userID string) (map[string]float64, error) {
	recs, err := s.storage.UserDataStore().List(ctx, userID, SubjectAllocation)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocation targets: %w", err)
	}
	targets := make(map[string]float64, len(recs))
	for _, rec := range recs {
		var target models.AllocationTarget
		if err := json.Unmarshal([]byte(rec.Value), &target); err != nil {
			continue
		}
		targets[target.Ticker] = target.TargetPercentage
	}
	return targets, nil
}

// latestCompanyName returns the most recent non-empty company name.
func latestCompanyName(txs []models.Transaction) string {
	name := ""
	for _, tx := range txs {
		if tx.CompanyName != "" {
			name = tx.CompanyName
		}
	}
	return name
}

// latestSecurityType returns the most recent non-empty security type.
func latestSecurityType(txs []models.Transaction) string {
	st := ""
	for _, tx := range txs {
		if tx.SecurityType != "" {
			st = tx.SecurityType
		}
	}
	return st
}
