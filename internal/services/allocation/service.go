// Package allocation manages per-user target allocations.
package allocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jcarver/folio/internal/common"
	"github.com/jcarver/folio/internal/interfaces"
	"github.com/jcarver/folio/internal/models"
)

// Subject is the userdb subject under which targets are stored, one record
// per ticker.
const Subject = "allocation"

// ErrInvalidTargets marks Replace failures caused by the caller's payload
// rather than by storage. Callers can map it to a 400-class response.
var ErrInvalidTargets = errors.New("invalid allocation targets")

var _ interfaces.AllocationService = (*Service)(nil)

// Service implements AllocationService on top of the user data store.
// StrategyItems additionally needs current positions, which it reads through
// the transaction service.
type Service struct {
	storage      interfaces.StorageManager
	transactions interfaces.TransactionService
	logger       *common.Logger
}

// NewService creates a new allocation service.
func NewService(storage interfaces.StorageManager, transactions interfaces.TransactionService, logger *common.Logger) *Service {
	return &Service{
		storage:      storage,
		transactions: transactions,
		logger:       logger,
	}
}

// Get returns the stored target set, sorted by ticker.
func (s *Service) Get(ctx context.Context, userID string) (*models.AllocationSet, error) {
	targets, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildSet(targets), nil
}

// Replace swaps the stored target set for the given one. The payload is the
// complete desired state: tickers absent from it are deleted. If any write
// fails mid-way, the snapshot taken up front is restored so the stored set is
// never left half-replaced.
func (s *Service) Replace(ctx context.Context, userID string, targets []models.AllocationTarget) (*models.AllocationSet, error) {
	for i := range targets {
		if targets[i].Ticker == "" {
			return nil, fmt.Errorf("%w: target at index %d has no ticker", ErrInvalidTargets, i)
		}
		if targets[i].TargetPercentage < 0 {
			return nil, fmt.Errorf("%w: target for '%s' is negative", ErrInvalidTargets, targets[i].Ticker)
		}
	}
	seen := make(map[string]bool, len(targets))
	for i := range targets {
		if seen[targets[i].Ticker] {
			return nil, fmt.Errorf("%w: duplicate target for '%s'", ErrInvalidTargets, targets[i].Ticker)
		}
		seen[targets[i].Ticker] = true
	}

	snapshot, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.write(ctx, userID, targets, snapshot); err != nil {
		if restoreErr := s.write(ctx, userID, snapshot, targets); restoreErr != nil {
			s.logger.Error().Err(restoreErr).Str("user_id", userID).
				Msg("Failed to restore allocation snapshot after write failure")
		}
		return nil, fmt.Errorf("failed to replace allocations: %w", err)
	}

	set := buildSet(targets)
	if set.OverAllocated {
		s.logger.Warn().
			Str("user_id", userID).
			Float64("total", set.TotalAllocated).
			Msg("Allocation targets exceed 100%")
	}
	return set, nil
}

// write upserts the desired targets and deletes stored tickers absent from
// them. previous is whatever set the deletions should be diffed against.
func (s *Service) write(ctx context.Context, userID string, desired, previous []models.AllocationTarget) error {
	now := time.Now()
	keep := make(map[string]bool, len(desired))
	for i := range desired {
		target := desired[i]
		target.UpdatedAt = now
		keep[target.Ticker] = true
		data, err := json.Marshal(target)
		if err != nil {
			return fmt.Errorf("failed to marshal target '%s': %w", target.Ticker, err)
		}
		if err := s.storage.UserDataStore().Put(ctx, &models.UserRecord{
			UserID:  userID,
			Subject: Subject,
			Key:     target.Ticker,
			Value:   string(data),
		}); err != nil {
			return err
		}
	}
	for i := range previous {
		if keep[previous[i].Ticker] {
			continue
		}
		if err := s.storage.UserDataStore().Delete(ctx, userID, Subject, previous[i].Ticker); err != nil {
			return err
		}
	}
	return nil
}

// StrategyItems merges current positions with stored targets into the
// recommender's input rows. Tickers that have a target but no open position
// appear with zero value, so new holdings can still attract buys.
func (s *Service) StrategyItems(ctx context.Context, userID string) ([]models.StrategyItem, error) {
	view, err := s.transactions.Positions(ctx, userID)
	if err != nil {
		return nil, err
	}
	targets, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	targetPct := make(map[string]float64, len(targets))
	for i := range targets {
		targetPct[targets[i].Ticker] = targets[i].TargetPercentage
	}

	items := make([]models.StrategyItem, 0, len(view.Positions))
	covered := make(map[string]bool, len(view.Positions))
	for _, pos := range view.Positions {
		covered[pos.Ticker] = true
		items = append(items, models.StrategyItem{
			Ticker:            pos.Ticker,
			CurrentValue:      pos.TotalCost,
			CurrentPercentage: pos.CurrentAllocationPercentage,
			TargetPercentage:  pos.TargetAllocationPercentage,
		})
	}
	for _, target := range targets {
		if covered[target.Ticker] {
			continue
		}
		items = append(items, models.StrategyItem{
			Ticker:           target.Ticker,
			TargetPercentage: target.TargetPercentage,
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Ticker < items[j].Ticker })
	return items, nil
}

// load reads all stored targets for a user.
func (s *Service) load(ctx context.Context, userID string) ([]models.AllocationTarget, error) {
	recs, err := s.storage.UserDataStore().List(ctx, userID, Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocation targets: %w", err)
	}
	targets := make([]models.AllocationTarget, 0, len(recs))
	for _, rec := range recs {
		var target models.AllocationTarget
		if err := json.Unmarshal([]byte(rec.Value), &target); err != nil {
			s.logger.Warn().Str("key", rec.Key).Err(err).Msg("Skipping unreadable allocation record")
			continue
		}
		target.UpdatedAt = rec.DateTime
		targets = append(targets, target)
	}
	return targets, nil
}

func buildSet(targets []models.AllocationTarget) *models.AllocationSet {
	sorted := make([]models.AllocationTarget, len(targets))
	copy(sorted, targets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ticker < sorted[j].Ticker })

	var total float64
	for i := range sorted {
		total += sorted[i].TargetPercentage
	}
	return &models.AllocationSet{
		Allocations:    sorted,
		TotalAllocated: total,
		OverAllocated:  total > 100,
	}
}
