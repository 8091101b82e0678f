package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cashledger-api/internal/domain/entity"
	"github.com/sangkips/cashledger-api/internal/domain/enum"
	"github.com/sangkips/cashledger-api/internal/domain/repository"
	infraRepo "github.com/sangkips/cashledger-api/internal/infrastructure/repository"
	"github.com/sangkips/cashledger-api/pkg/apperror"
	"github.com/sangkips/cashledger-api/pkg/pagination"
)

// ReportService answers read-only queries over cash collections.
// It never mutates ledger state.
type ReportService struct {
	collectionRepo repository.CollectionRepository
	saleRepo       repository.SaleRepository
	reportRepo     repository.ReportRepository
}

// NewReportService creates a new report service
func NewReportService(
	collectionRepo repository.CollectionRepository,
	saleRepo repository.SaleRepository,
	reportRepo repository.ReportRepository,
) *ReportService {
	return &ReportService{
		collectionRepo: collectionRepo,
		saleRepo:       saleRepo,
		reportRepo:     reportRepo,
	}
}

// GetCollection returns the full collection with its expenses, denominations
// and linked sales
func (s *ReportService) GetCollection(ctx context.Context, id uuid.UUID) (*entity.CashCollection, error) {
	if _, ok := infraRepo.GetTenantID(ctx); !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	collection, err := s.collectionRepo.GetWithChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, apperror.NewNotFoundError("Cash collection")
	}

	sales, err := s.saleRepo.ListByCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	collection.Sales = sales

	return collection, nil
}

// CollectionListItem pairs a collection with the number of sales posted to it
type CollectionListItem struct {
	Collection entity.CashCollection `json:"collection"`
	SaleCount  int64                 `json:"sale_count"`
}

// ListCollectionsInput represents the list collections input
type ListCollectionsInput struct {
	Pagination *pagination.PaginationParams
	AgentID    *uuid.UUID
	Status     *enum.CollectionStatus
	StartDate  *time.Time
	EndDate    *time.Time
}

// ListCollections returns collections matching the filters, newest first,
// each with its linked sale count
func (s *ReportService) ListCollections(ctx context.Context, input *ListCollectionsInput) (*pagination.PaginatedResult[CollectionListItem], error) {
	if _, ok := infraRepo.GetTenantID(ctx); !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}

	params := &repository.CollectionFilterParams{
		Pagination: input.Pagination,
		AgentID:    input.AgentID,
		Status:     input.Status,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
	}

	collections, total, err := s.collectionRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(collections))
	for i := range collections {
		ids[i] = collections[i].ID
	}
	counts, err := s.reportRepo.GetSaleCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]CollectionListItem, len(collections))
	for i := range collections {
		items[i] = CollectionListItem{
			Collection: collections[i],
			SaleCount:  counts[collections[i].ID],
		}
	}

	return pagination.NewPaginatedResult(items,
		pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)), nil
}

// ListPendingApprovals returns the submitted collections awaiting a manager
func (s *ReportService) ListPendingApprovals(ctx context.Context, paginationParams *pagination.PaginationParams) (*pagination.PaginatedResult[CollectionListItem], error) {
	status := enum.CollectionStatusSubmitted
	return s.ListCollections(ctx, &ListCollectionsInput{
		Pagination: paginationParams,
		Status:     &status,
	})
}

// Summarize aggregates monetary totals and status counts over matching
// collections. Overages and shortages are reported separately and never
// net against each other.
func (s *ReportService) Summarize(ctx context.Context, params *repository.SummaryFilterParams) (*repository.CollectionSummary, error) {
	if _, ok := infraRepo.GetTenantID(ctx); !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	return s.reportRepo.Summarize(ctx, params)
}
