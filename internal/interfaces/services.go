package interfaces

import (
	"context"

	"github.com/jcarver/folio/internal/models"
)

// TransactionService manages the per-user transaction log and the positions
// derived from it.
type TransactionService interface {
	List(ctx context.Context, userID string) ([]models.Transaction, error)
	Create(ctx context.Context, tx *models.Transaction) error
	Update(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, userID, id string) error

	// Positions recomputes all positions from the full transaction list.
	Positions(ctx context.Context, userID string) (*models.PortfolioView, error)
}

// AllocationService manages target allocations and merges them with positions.
type AllocationService interface {
	Get(ctx context.Context, userID string) (*models.AllocationSet, error)
	// Replace atomically replaces the full target set; on failure the
	// previously stored set is left intact.
	Replace(ctx context.Context, userID string, targets []models.AllocationTarget) (*models.AllocationSet, error)
	// StrategyItems merges positions with stored targets into recommender input.
	StrategyItems(ctx context.Context, userID string) ([]models.StrategyItem, error)
}

// MarketSearcher provides ticker autocomplete.
type MarketSearcher interface {
	Search(ctx context.Context, query string) ([]models.TickerMatch, error)
}
