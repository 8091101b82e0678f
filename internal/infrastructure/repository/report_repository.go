package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/cashledger-api/internal/domain/enum"
	domainRepo "github.com/sangkips/cashledger-api/internal/domain/repository"
	"gorm.io/gorm"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) domainRepo.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetSaleCounts(ctx context.Context, collectionIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(collectionIDs))
	if len(collectionIDs) == 0 {
		return counts, nil
	}

	tenantID, ok := GetTenantID(ctx)
	if !ok {
		return counts, nil
	}

	var rows []struct {
		CollectionID uuid.UUID `gorm:"column:collection_id"`
		SaleCount    int64     `gorm:"column:sale_count"`
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			s.cash_collection_id as collection_id,
			COUNT(s.id) as sale_count
		FROM sales s
		WHERE s.tenant_id = ?
		  AND s.cash_collection_id IN ?
		  AND s.deleted_at IS NULL
		GROUP BY s.cash_collection_id
	`, tenantID, collectionIDs).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.CollectionID] = row.SaleCount
	}
	return counts, nil
}

func (r *reportRepository) Summarize(ctx context.Context, params *domainRepo.SummaryFilterParams) (*domainRepo.CollectionSummary, error) {
	query := r.db.WithContext(ctx).Table("cash_collections").
		Scopes(TenantScope(ctx)).
		Where("deleted_at IS NULL")

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

	var summary domainRepo.CollectionSummary
	err := query.Select(`
		COUNT(*) as total_collections,
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) as open_count,
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) as submitted_count,
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) as approved_count,
		COALESCE(SUM(opening_float), 0) / 100.0 as total_opening_float,
		COALESCE(SUM(cash_sales), 0) / 100.0 as total_cash_sales,
		COALESCE(SUM(expenses), 0) / 100.0 as total_expenses,
		COALESCE(SUM(expected_cash), 0) / 100.0 as total_expected_cash,
		COALESCE(SUM(closing_cash), 0) / 100.0 as total_closing_cash,
		COALESCE(SUM(variance), 0) / 100.0 as total_variance,
		COALESCE(SUM(CASE WHEN variance > 0 THEN variance ELSE 0 END), 0) / 100.0 as total_overages,
		COALESCE(SUM(CASE WHEN variance < 0 THEN -variance ELSE 0 END), 0) / 100.0 as total_shortages`,
		enum.CollectionStatusOpen, enum.CollectionStatusSubmitted, enum.CollectionStatusApproved).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}

	return &summary, nil
}
