// Package memory provides an in-memory implementation of the ledger stores.
// It mirrors the transactional semantics of the postgres implementation
// (status-guarded increments, conditional transitions, tenant scoping) under
// a single mutex, and backs the service tests and DB-less development mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cashledger-api/internal/domain/entity"
	"github.com/sangkips/cashledger-api/internal/domain/enum"
	domainRepo "github.com/sangkips/cashledger-api/internal/domain/repository"
	infraRepo "github.com/sangkips/cashledger-api/internal/infrastructure/repository"
)

// Store holds all ledger state behind one mutex. It satisfies
// CollectionRepository, SaleRepository, ReportRepository and
// IdempotencyRepository.
type Store struct {
	mu            sync.RWMutex
	collections   map[uuid.UUID]*entity.CashCollection
	expenses      map[uuid.UUID][]entity.CashExpense
	denominations map[uuid.UUID][]entity.CashDenomination
	sales         map[uuid.UUID]*entity.Sale
	idempotency   map[string]entity.IdempotencyKey
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		collections:   make(map[uuid.UUID]*entity.CashCollection),
		expenses:      make(map[uuid.UUID][]entity.CashExpense),
		denominations: make(map[uuid.UUID][]entity.CashDenomination),
		sales:         make(map[uuid.UUID]*entity.Sale),
		idempotency:   make(map[string]entity.IdempotencyKey),
	}
}

func tenantOf(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok || tenantID == uuid.Nil {
		return uuid.Nil, false
	}
	return tenantID, true
}

// ---- CollectionRepository ----

func (s *Store) Create(ctx context.Context, collection *entity.CashCollection) error {
	tenantID, ok := tenantOf(ctx)
	if !ok {
		return domainRepo.ErrCollectionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.collections {
		if existing.TenantID == tenantID &&
			existing.AgentID == collection.AgentID &&
			existing.Status == enum.CollectionStatusOpen {
			return domainRepo.ErrOpenCollectionExists
		}
	}

	if collection.ID == uuid.Nil {
		collection.ID = uuid.New()
	}
	now := time.Now().UTC()
	collection.CreatedAt = now
	collection.UpdatedAt = now

	stored := *collection
	s.collections[collection.ID] = &stored
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*entity.CashCollection, error) {
	tenantID, ok := tenantOf(ctx)
	if !ok {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyCollection(tenantID, id), nil
}

func (s *Store) GetWithChildren(ctx context.Context, id uuid.UUID) (*entity.CashCollection, error) {
	tenantID, ok := tenantOf(ctx)
	if !ok {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	collection := s.copyCollection(tenantID, id)
	if collection == nil {
		return nil, nil
	}

	collection.ExpenseItems = append([]entity.CashExpense(nil), s.expenses[id]...)
	collection.Denominations = append([]entity.CashDenomination(nil), s.denominations[id]...)
	return collection, nil
}

func (s *Store) List(ctx context.Context, params *domainRepo.CollectionFilterParams) ([]entity.CashCollection, int64, error) {
	tenantID, ok := tenantOf(ctx)
	if !ok {
		return nil, 0, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []entity.CashCollection
	for _, c := range s.collections {
		if c.TenantID != tenantID {
			continue
		}
		if params.AgentID != nil && c.AgentID != *params.AgentID {
			continue
		}
		if params.Status != nil && c.Status != *params.Status {
			continue
		}
		if params.StartDate != nil && c.CollectionDate.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && c.CollectionDate.After(*params.EndDate) {
			continue
		}
		matched = append(matched, *c)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CollectionDate.Equal(matched[j].CollectionDate) {
			return matched[i].CollectionDate.After(matched[j].CollectionDate)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	params.Pagination.Validate()
	offset := params.Pagination.Offset()
	if offset >= len(matched) {
		return []entity.CashCollection{}, total, nil
	}
	end := offset + params.Pagination.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *Store) ApplyCashSale(ctx context.Context, collectionID, saleID uuid.UUID, cashReceived, changeGiven int64) error {
	tenantID, ok := tenantOf(ctx)
	if !ok {
		return domainRepo.ErrCollectionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sale, exists := s.sales[saleID]
	if !exists || sale.TenantID != tenantID {
		return domainRepo.ErrSaleNotFound
	}
	if sale.CashCollectionID != nil {
		return domainRepo.ErrSaleAlreadyLinked
	}

	collection, exists := s.collections[collectionID]
	if !exists || collection.TenantID != tenantID {
		return domainRepo.ErrCollectionNotFound
	}
	if collection.Status != enum.CollectionStatusOpen {
		return domainRepo.ErrCollectionNotOpen
	}

	linkID := collectionID
	sale.CashCollectionID = &linkID
	sale.PaymentReceived = cashReceived
	sale.ChangeGiven = changeGiven
	sale.UpdatedAt = time.Now().UTC()

	netCash := cashReceived - changeGiven
	collection.CashSales += netCash
	collection.ExpectedCash += netCash
	collection.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) ApplyExpense(ctx context.Context, expense *entity.CashExpense) error {
	tenantID, ok := tenantOf(ctx)
	if !ok {
		return domainRepo.ErrCollectionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	collection, exists := s.collections[expense.CollectionID]
	if !exists || collection.TenantID != tenantID {
		return domainRepo.ErrCollectionNotFound
	}
	if collection.Status != enum.CollectionStatusOpen {
		return domainRepo.ErrCollectionNotOpen
	}

	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	expense.CreatedAt = time.Now().UTC()
	s.expenses[expense.CollectionID] = append(s.expenses[expense.CollectionID], *expense)

	collection.Expenses += expense.Amount
	collection.ExpectedCash -= expense.Amount
	collection.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) Submit(ctx context.Context, collectionID uuid.UUID, closingCash int64, denominations []entity.CashDenomination, notes string, submittedAt time.Time) (*entity.CashCollection, error) {
	tenantID, ok := tenantOf(ctx)
	if !ok {
		return nil, domainRepo.ErrCollectionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	collection, exists := s.collections[collectionID]
	if !exists || collection.TenantID != tenantID {
		return nil, domainRepo.ErrCollectionNotFound
	}
	if collection.Status != enum.CollectionStatusOpen {
		return nil, domainRepo.ErrCollectionNotOpen
	}

	variance := closingCash - collection.ExpectedCash
	collection.ClosingCash = &closingCash
	collection.Variance = &variance
	collection.Status = enum.CollectionStatusSubmitted
	collection.SubmissionNotes = notes
	at := submittedAt
	collection.SubmittedAt = &at
	collection.UpdatedAt = time.Now().UTC()

	for i := range denominations {
		if denominations[i].ID == uuid.Nil {
			denominations[i].ID = uuid.New()
		}
		denominations[i].CollectionID = collectionID
		denominations[i].CreatedAt = time.Now().UTC()
	}
	s.denominations[collectionID] = append([]entity.CashDenomination(nil), denominations...)

	result := *collection
	return &result, nil
}

func (s *Store) Approve(ctx context.Context, collectionID, approverID uuid.UUID, approvedAt time.Time) error {
	tenantID, ok := tenantOf(ctx)
	if !ok {
		return domainRepo.ErrCollectionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	collection, exists := s.collections[collectionID]
	if !exists || collection.TenantID != tenantID {
		return domainRepo.ErrCollectionNotFound
	}
	if collection.Status != enum.CollectionStatusSubmitted {
		return domainRepo.ErrCollectionNotSubmitted
	}

	approver := approverID
	at := approvedAt
	collection.Status = enum.CollectionStatusApproved
	collection.ApprovedBy = &approver
	collection.ApprovedAt = &at
	collection.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) copyCollection(tenantID, id uuid.UUID) *entity.CashCollection {
	collection, exists := s.collections[id]
	if !exists || collection.TenantID != tenantID {
		return nil
	}
	result := *collection
	return &result
}

// ---- SaleRepository ----

func (s *Store) CreateSale(ctx context.Context, sale *entity.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	now := time.Now().UTC()
	sale.CreatedAt = now
	sale.UpdatedAt = now

	stored := *sale
	s.sales[sale.ID] = &stored
	return nil
}

func (s *Store) ListSalesByCollection(ctx context.Context, collectionID uuid.UUID) ([]entity.Sale, error) {
	tenantID, ok := tenantOf(ctx)
	if !ok {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var sales []entity.Sale
	for _, sale := range s.sales {
		if sale.TenantID == tenantID && sale.CashCollectionID != nil && *sale.CashCollectionID == collectionID {
			sales = append(sales, *sale)
		}
	}
	sort.Slice(sales, func(i, j int) bool {
		return sales[i].CreatedAt.Before(sales[j].CreatedAt)
	})
	return sales, nil
}

// ---- ReportRepository ----

func (s *Store) GetSaleCounts(ctx context.Context, collectionIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(collectionIDs))
	tenantID, ok := tenantOf(ctx)
	if !ok {
		return counts, nil
	}

	wanted := make(map[uuid.UUID]bool, len(collectionIDs))
	for _, id := range collectionIDs {
		wanted[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sale := range s.sales {
		if sale.TenantID != tenantID || sale.CashCollectionID == nil {
			continue
		}
		if wanted[*sale.CashCollectionID] {
			counts[*sale.CashCollectionID]++
		}
	}
	return counts, nil
}

func (s *Store) Summarize(ctx context.Context, params *domainRepo.SummaryFilterParams) (*domainRepo.CollectionSummary, error) {
	summary := &domainRepo.CollectionSummary{}
	tenantID, ok := tenantOf(ctx)
	if !ok {
		return summary, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var openingFloat, cashSales, expenses, expectedCash, closingCash, variance, overages, shortages int64
	for _, c := range s.collections {
		if c.TenantID != tenantID {
			continue
		}
		if params.AgentID != nil && c.AgentID != *params.AgentID {
			continue
		}
		if params.Status != nil && c.Status != *params.Status {
			continue
		}
		if params.StartDate != nil && c.CollectionDate.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && c.CollectionDate.After(*params.EndDate) {
			continue
		}

		summary.TotalCollections++
		switch c.Status {
		case enum.CollectionStatusOpen:
			summary.OpenCount++
		case enum.CollectionStatusSubmitted:
			summary.SubmittedCount++
		case enum.CollectionStatusApproved:
			summary.ApprovedCount++
		}

		openingFloat += c.OpeningFloat
		cashSales += c.CashSales
		expenses += c.Expenses
		expectedCash += c.ExpectedCash
		if c.ClosingCash != nil {
			closingCash += *c.ClosingCash
		}
		if c.Variance != nil {
			variance += *c.Variance
			if *c.Variance > 0 {
				overages += *c.Variance
			} else {
				shortages += -*c.Variance
			}
		}
	}

	summary.TotalOpeningFloat = float64(openingFloat) / 100
	summary.TotalCashSales = float64(cashSales) / 100
	summary.TotalExpenses = float64(expenses) / 100
	summary.TotalExpectedCash = float64(expectedCash) / 100
	summary.TotalClosingCash = float64(closingCash) / 100
	summary.TotalVariance = float64(variance) / 100
	summary.TotalOverages = float64(overages) / 100
	summary.TotalShortages = float64(shortages) / 100
	return summary, nil
}

// ---- IdempotencyRepository ----

func (s *Store) GetIdempotencyKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ikey, exists := s.idempotency[key]
	if !exists || ikey.UserID != userID {
		return nil, nil
	}
	result := ikey
	return &result, nil
}

func (s *Store) CreateIdempotencyKey(ctx context.Context, ikey *entity.IdempotencyKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	ikey.CreatedAt = time.Now().UTC()
	s.idempotency[ikey.Key] = *ikey
	return nil
}

func (s *Store) DeleteExpiredIdempotencyKeys(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, ikey := range s.idempotency {
		if now.After(ikey.ExpiresAt) {
			delete(s.idempotency, key)
		}
	}
	return nil
}

// ---- interface adapters ----

// Collections returns the store as a CollectionRepository
func (s *Store) Collections() domainRepo.CollectionRepository { return s }

// Reports returns the store as a ReportRepository
func (s *Store) Reports() domainRepo.ReportRepository { return s }

type saleStore struct{ *Store }

// Sales returns the store as a SaleRepository
func (s *Store) Sales() domainRepo.SaleRepository { return saleStore{s} }

func (s saleStore) Create(ctx context.Context, sale *entity.Sale) error {
	return s.CreateSale(ctx, sale)
}

func (s saleStore) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]entity.Sale, error) {
	return s.ListSalesByCollection(ctx, collectionID)
}

type idempotencyStore struct{ *Store }

// IdempotencyKeys returns the store as an IdempotencyRepository
func (s *Store) IdempotencyKeys() domainRepo.IdempotencyRepository { return idempotencyStore{s} }

func (s idempotencyStore) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	return s.GetIdempotencyKey(ctx, key, userID)
}

func (s idempotencyStore) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return s.CreateIdempotencyKey(ctx, ikey)
}

func (s idempotencyStore) DeleteExpired(ctx context.Context) error {
	return s.DeleteExpiredIdempotencyKeys(ctx)
}
