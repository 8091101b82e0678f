package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cashledger-api/internal/domain/entity"
	"github.com/sangkips/cashledger-api/internal/domain/enum"
	domainRepo "github.com/sangkips/cashledger-api/internal/domain/repository"
	"gorm.io/gorm"
)

type collectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository creates a new cash collection repository
func NewCollectionRepository(db *gorm.DB) domainRepo.CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, collection *entity.CashCollection) error {
	// One open collection per agent. The partial unique index on
	// (tenant_id, agent_id) WHERE status = 0 catches the race between
	// two concurrent starts.
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.CashCollection{}).
		Scopes(TenantScope(ctx)).
		Where("agent_id = ? AND status = ?", collection.AgentID, enum.CollectionStatusOpen).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return domainRepo.ErrOpenCollectionExists
	}

	err = r.db.WithContext(ctx).Create(collection).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrOpenCollectionExists
	}
	return err
}

func (r *collectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CashCollection, error) {
	var collection entity.CashCollection
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		First(&collection, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &collection, err
}

func (r *collectionRepository) GetWithChildren(ctx context.Context, id uuid.UUID) (*entity.CashCollection, error) {
	var collection entity.CashCollection
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("ExpenseItems").
		Preload("Denominations").
		First(&collection, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &collection, err
}

func (r *collectionRepository) List(ctx context.Context, params *domainRepo.CollectionFilterParams) ([]entity.CashCollection, int64, error) {
	var collections []entity.CashCollection
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CashCollection{}).Scopes(TenantScope(ctx))

	if params.AgentID != nil {
		query = query.Where("agent_id = ?", *params.AgentID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.StartDate != nil {
		query = query.Where("collection_date >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("collection_date <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("collection_date DESC, created_at DESC").
		Find(&collections).Error

	return collections, total, err
}

// ApplyCashSale links the sale and bumps the running totals in one transaction.
// The totals move with a single UPDATE ... SET col = col + ? guarded by the Open
// status, so concurrent postings to the same collection cannot lose updates.
func (r *collectionRepository) ApplyCashSale(ctx context.Context, collectionID, saleID uuid.UUID, cashReceived, changeGiven int64) error {
	netCash := cashReceived - changeGiven

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Sale{}).
			Scopes(TenantScope(ctx)).
			Where("id = ? AND cash_collection_id IS NULL", saleID).
			Updates(map[string]interface{}{
				"cash_collection_id": collectionID,
				"payment_received":   cashReceived,
				"change_given":       changeGiven,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var sale entity.Sale
			err := tx.Scopes(TenantScope(ctx)).First(&sale, "id = ?", saleID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainRepo.ErrSaleNotFound
			}
			if err != nil {
				return err
			}
			return domainRepo.ErrSaleAlreadyLinked
		}

		result = tx.Model(&entity.CashCollection{}).
			Scopes(TenantScope(ctx)).
			Where("id = ? AND status = ?", collectionID, enum.CollectionStatusOpen).
			Updates(map[string]interface{}{
				"cash_sales":    gorm.Expr("cash_sales + ?", netCash),
				"expected_cash": gorm.Expr("expected_cash + ?", netCash),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Rolls back the sale link as well
			return r.classifyNotOpen(ctx, tx, collectionID)
		}
		return nil
	})
}

// ApplyExpense inserts the expense row and bumps the totals; either both happen or neither
func (r *collectionRepository) ApplyExpense(ctx context.Context, expense *entity.CashExpense) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.CashCollection{}).
			Scopes(TenantScope(ctx)).
			Where("id = ? AND status = ?", expense.CollectionID, enum.CollectionStatusOpen).
			Updates(map[string]interface{}{
				"expenses":      gorm.Expr("expenses + ?", expense.Amount),
				"expected_cash": gorm.Expr("expected_cash - ?", expense.Amount),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.classifyNotOpen(ctx, tx, expense.CollectionID)
		}

		return tx.Create(expense).Error
	})
}

// Submit records the physical count and flips Open -> Submitted. The variance is
// computed inside the UPDATE against the expected_cash the transaction sees, so a
// posting racing with submission either lands before the flip or is rejected; the
// recorded variance can never be stale.
func (r *collectionRepository) Submit(ctx context.Context, collectionID uuid.UUID, closingCash int64, denominations []entity.CashDenomination, notes string, submittedAt time.Time) (*entity.CashCollection, error) {
	var collection entity.CashCollection

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.CashCollection{}).
			Scopes(TenantScope(ctx)).
			Where("id = ? AND status = ?", collectionID, enum.CollectionStatusOpen).
			Updates(map[string]interface{}{
				"closing_cash":     closingCash,
				"variance":         gorm.Expr("? - expected_cash", closingCash),
				"status":           enum.CollectionStatusSubmitted,
				"submission_notes": notes,
				"submitted_at":     submittedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.classifyNotOpen(ctx, tx, collectionID)
		}

		for i := range denominations {
			denominations[i].CollectionID = collectionID
		}
		if err := tx.Create(&denominations).Error; err != nil {
			return err
		}

		return tx.Scopes(TenantScope(ctx)).First(&collection, "id = ?", collectionID).Error
	})
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// Approve flips Submitted -> Approved. The WHERE clause on status makes this a
// compare-and-swap: of two concurrent approvals exactly one matches a row.
func (r *collectionRepository) Approve(ctx context.Context, collectionID, approverID uuid.UUID, approvedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&entity.CashCollection{}).
		Scopes(TenantScope(ctx)).
		Where("id = ? AND status = ?", collectionID, enum.CollectionStatusSubmitted).
		Updates(map[string]interface{}{
			"status":      enum.CollectionStatusApproved,
			"approved_by": approverID,
			"approved_at": approvedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var collection entity.CashCollection
		err := r.db.WithContext(ctx).Scopes(TenantScope(ctx)).First(&collection, "id = ?", collectionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainRepo.ErrCollectionNotFound
		}
		if err != nil {
			return err
		}
		return domainRepo.ErrCollectionNotSubmitted
	}
	return nil
}

// classifyNotOpen turns a zero-rows conditional update into the right sentinel
func (r *collectionRepository) classifyNotOpen(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID) error {
	var collection entity.CashCollection
	err := tx.Scopes(TenantScope(ctx)).First(&collection, "id = ?", collectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainRepo.ErrCollectionNotFound
	}
	if err != nil {
		return err
	}
	return domainRepo.ErrCollectionNotOpen
}
