package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cashledger-api/internal/domain/enum"
)

// ReportRepository defines read-only rollups over cash collections.
// Nothing in this interface mutates state.
type ReportRepository interface {
	// GetSaleCounts returns the number of linked sales per collection in one query
	GetSaleCounts(ctx context.Context, collectionIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	// Summarize aggregates every monetary column over the matching collections,
	// keeping overages and shortages separate so neither nets against the other.
	Summarize(ctx context.Context, params *SummaryFilterParams) (*CollectionSummary, error)
}

// SummaryFilterParams contains filtering parameters for summary queries
type SummaryFilterParams struct {
	AgentID   *uuid.UUID
	Status    *enum.CollectionStatus
	StartDate *time.Time // inclusive, matched against collection_date
	EndDate   *time.Time // inclusive
}

// CollectionSummary is a tenant-wide (or filtered) rollup. Monetary figures are
// decimal amounts, already converted from cents by the store.
type CollectionSummary struct {
	TotalCollections int64 `json:"total_collections"`

	// Counts per lifecycle state
	OpenCount      int64 `json:"open_count"`
	SubmittedCount int64 `json:"submitted_count"`
	ApprovedCount  int64 `json:"approved_count"`

	TotalOpeningFloat float64 `json:"total_opening_float"`
	TotalCashSales    float64 `json:"total_cash_sales"`
	TotalExpenses     float64 `json:"total_expenses"`
	TotalExpectedCash float64 `json:"total_expected_cash"`
	TotalClosingCash  float64 `json:"total_closing_cash"`
	TotalVariance     float64 `json:"total_variance"`

	// Overages and shortages are reported as separate magnitudes; a manager needs
	// to see both, not their net.
	TotalOverages  float64 `json:"total_overages"`
	TotalShortages float64 `json:"total_shortages"`
}
