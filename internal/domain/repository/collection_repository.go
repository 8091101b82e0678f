package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cashledger-api/internal/domain/entity"
	"github.com/sangkips/cashledger-api/internal/domain/enum"
	"github.com/sangkips/cashledger-api/pkg/pagination"
)

// CollectionRepository defines the interface for cash collection data operations.
//
// The mutating operations carry the concurrency discipline of the ledger:
// ApplyCashSale and ApplyExpense adjust the running totals with in-place
// increments guarded by status = Open, and Submit/Approve are conditional
// state transitions. None of them read a total into application code and
// write it back.
type CollectionRepository interface {
	Create(ctx context.Context, collection *entity.CashCollection) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CashCollection, error)
	// GetWithChildren loads the collection with its expense and denomination rows
	GetWithChildren(ctx context.Context, id uuid.UUID) (*entity.CashCollection, error)
	List(ctx context.Context, params *CollectionFilterParams) ([]entity.CashCollection, int64, error)

	// ApplyCashSale links the sale to the collection, records the tendered cash on it,
	// and atomically adds the net cash to cash_sales and expected_cash. The whole unit
	// either commits or rolls back. Returns ErrSaleNotFound, ErrSaleAlreadyLinked,
	// ErrCollectionNotFound or ErrCollectionNotOpen.
	ApplyCashSale(ctx context.Context, collectionID, saleID uuid.UUID, cashReceived, changeGiven int64) error

	// ApplyExpense inserts the expense row and atomically adds its amount to expenses
	// while subtracting it from expected_cash, in one transaction.
	ApplyExpense(ctx context.Context, expense *entity.CashExpense) error

	// Submit persists the denomination rows, records closing cash, computes the variance
	// against the expected cash as seen inside the transaction, and flips Open -> Submitted.
	// The status check and the writes are a single conditional update so two concurrent
	// submits cannot both succeed. Returns the collection as written.
	Submit(ctx context.Context, collectionID uuid.UUID, closingCash int64, denominations []entity.CashDenomination, notes string, submittedAt time.Time) (*entity.CashCollection, error)

	// Approve flips Submitted -> Approved recording the approver, as a conditional
	// update; exactly one of two concurrent approvals can win.
	Approve(ctx context.Context, collectionID, approverID uuid.UUID, approvedAt time.Time) error
}

// CollectionFilterParams contains filtering parameters for collection queries
type CollectionFilterParams struct {
	Pagination *pagination.PaginationParams
	AgentID    *uuid.UUID
	Status     *enum.CollectionStatus
	StartDate  *time.Time // inclusive, matched against collection_date
	EndDate    *time.Time // inclusive
}

// SaleRepository defines the interface for the ledger's view of sales.
// Sales are registered by the van-sales flow; the ledger links them and
// reads them back per collection.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]entity.Sale, error)
}
