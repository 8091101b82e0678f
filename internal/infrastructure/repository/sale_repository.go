package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/cashledger-api/internal/domain/entity"
	domainRepo "github.com/sangkips/cashledger-api/internal/domain/repository"
	"gorm.io/gorm"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *saleRepository) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]entity.Sale, error) {
	var sales []entity.Sale
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Where("cash_collection_id = ?", collectionID).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}
