package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cashledger-api/internal/domain/entity"
	"github.com/sangkips/cashledger-api/internal/domain/enum"
	"github.com/sangkips/cashledger-api/internal/domain/repository"
	infraRepo "github.com/sangkips/cashledger-api/internal/infrastructure/repository"
	"github.com/sangkips/cashledger-api/pkg/apperror"
	"github.com/sangkips/cashledger-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// CollectionService implements the cash collection lifecycle:
// Open -> Submitted -> Approved, with postings accepted only while Open.
// All arithmetic on the running totals happens in the store as in-place
// increments; this service validates, delegates, and translates errors.
type CollectionService struct {
	collectionRepo repository.CollectionRepository
	saleRepo       repository.SaleRepository
}

// NewCollectionService creates a new collection service
func NewCollectionService(collectionRepo repository.CollectionRepository, saleRepo repository.SaleRepository) *CollectionService {
	return &CollectionService{
		collectionRepo: collectionRepo,
		saleRepo:       saleRepo,
	}
}

// toCents converts a decimal amount to integer minor units without
// accumulating float error (19.99 -> 1999, never 1998)
func toCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}

// StartCollectionInput represents the start collection input
type StartCollectionInput struct {
	AgentID      uuid.UUID
	OpeningFloat float64
}

// StartCollection opens a new cash collection for an agent's shift.
// The agent can have at most one open collection per tenant.
func (s *CollectionService) StartCollection(ctx context.Context, input *StartCollectionInput) (*entity.CashCollection, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	if input.AgentID == uuid.Nil {
		return nil, apperror.NewBadRequestError("Agent is required")
	}
	if input.OpeningFloat < 0 {
		return nil, apperror.NewBadRequestError("Opening float cannot be negative")
	}

	openingCents := toCents(input.OpeningFloat)
	now := time.Now().UTC()

	collection := &entity.CashCollection{
		TenantID:       tenantID,
		AgentID:        input.AgentID,
		ReferenceNo:    utils.GenerateReferenceNo("CC"),
		CollectionDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		OpeningFloat:   openingCents,
		CashSales:      0,
		Expenses:       0,
		ExpectedCash:   openingCents,
		Status:         enum.CollectionStatusOpen,
	}

	if err := s.collectionRepo.Create(ctx, collection); err != nil {
		if errors.Is(err, repository.ErrOpenCollectionExists) {
			return nil, apperror.NewConflictError("Agent already has an open cash collection")
		}
		return nil, err
	}

	return collection, nil
}

// PostCashSaleInput represents the post cash sale input
type PostCashSaleInput struct {
	CollectionID uuid.UUID
	SaleID       uuid.UUID
	CashReceived float64
	ChangeGiven  float64
}

// PostCashSale links a sale to the collection and posts its net cash
// (received minus change) onto the running totals as one atomic unit.
func (s *CollectionService) PostCashSale(ctx context.Context, input *PostCashSaleInput) error {
	if _, ok := infraRepo.GetTenantID(ctx); !ok {
		return apperror.NewBadRequestError("Tenant context required")
	}
	if input.SaleID == uuid.Nil {
		return apperror.NewBadRequestError("Sale is required")
	}
	if input.ChangeGiven < 0 {
		return apperror.NewBadRequestError("Change given cannot be negative")
	}
	if input.CashReceived < input.ChangeGiven {
		return apperror.NewBadRequestError("Cash received cannot be less than change given")
	}

	err := s.collectionRepo.ApplyCashSale(ctx, input.CollectionID, input.SaleID, toCents(input.CashReceived), toCents(input.ChangeGiven))
	return s.translatePostingError(err)
}

// PostExpenseInput represents the post expense input
type PostExpenseInput struct {
	CollectionID    uuid.UUID
	Type            string
	Amount          float64
	Description     string
	ReceiptPhotoRef string
}

// PostExpense records an expense against the collection and subtracts it
// from the expected cash, atomically with the expense row insert.
func (s *CollectionService) PostExpense(ctx context.Context, input *PostExpenseInput) (*entity.CashExpense, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	if input.Type == "" {
		return nil, apperror.NewBadRequestError("Expense type is required")
	}
	if input.Amount <= 0 {
		return nil, apperror.NewBadRequestError("Expense amount must be greater than zero")
	}

	expense := &entity.CashExpense{
		CollectionID:    input.CollectionID,
		TenantID:        tenantID,
		Type:            input.Type,
		Amount:          toCents(input.Amount),
		Description:     input.Description,
		ReceiptPhotoRef: input.ReceiptPhotoRef,
	}

	if err := s.collectionRepo.ApplyExpense(ctx, expense); err != nil {
		return nil, s.translatePostingError(err)
	}

	return expense, nil
}

// DenominationInput is one row of the physical count
type DenominationInput struct {
	Denomination float64
	Quantity     int
	Total        float64
}

// SubmitCollectionInput represents the submit collection input
type SubmitCollectionInput struct {
	CollectionID  uuid.UUID
	Denominations []DenominationInput
	Notes         string
}

// SubmitResult carries the reconciliation figures computed at submission,
// for the agent's closing receipt. VariancePercentage is nil when the
// expected cash is zero.
type SubmitResult struct {
	Collection         *entity.CashCollection `json:"collection"`
	ClosingCash        float64                `json:"closing_cash"`
	ExpectedCash       float64                `json:"expected_cash"`
	Variance           float64                `json:"variance"`
	VariancePercentage *float64               `json:"variance_percentage"`
}

// SubmitCollection reconciles the physically counted cash against the
// expected balance and flips the collection to Submitted. Closing cash and
// variance are written here and never recomputed afterwards.
func (s *CollectionService) SubmitCollection(ctx context.Context, input *SubmitCollectionInput) (*SubmitResult, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	if len(input.Denominations) == 0 {
		return nil, apperror.NewBadRequestError("At least one denomination row is required")
	}

	var closingCash int64
	denominations := make([]entity.CashDenomination, 0, len(input.Denominations))
	for _, row := range input.Denominations {
		faceValue := toCents(row.Denomination)
		total := toCents(row.Total)
		if faceValue <= 0 || row.Quantity <= 0 {
			return nil, apperror.NewBadRequestError("Denomination rows must have a positive face value and quantity")
		}
		if total != faceValue*int64(row.Quantity) {
			return nil, apperror.NewBadRequestError("Denomination total does not match face value times quantity")
		}
		closingCash += total
		denominations = append(denominations, entity.CashDenomination{
			TenantID:     tenantID,
			Denomination: faceValue,
			Quantity:     row.Quantity,
			Total:        total,
		})
	}

	collection, err := s.collectionRepo.Submit(ctx, input.CollectionID, closingCash, denominations, input.Notes, time.Now().UTC())
	if err != nil {
		return nil, s.translatePostingError(err)
	}

	variance := *collection.Variance
	expectedCash := collection.ExpectedCash

	result := &SubmitResult{
		Collection:   collection,
		ClosingCash:  float64(closingCash) / 100,
		ExpectedCash: float64(expectedCash) / 100,
		Variance:     float64(variance) / 100,
	}
	if expectedCash != 0 {
		pct, _ := decimal.NewFromInt(variance).
			Div(decimal.NewFromInt(expectedCash)).
			Mul(decimal.NewFromInt(100)).
			Round(2).Float64()
		result.VariancePercentage = &pct
	}

	return result, nil
}

// ApproveCollection flips a submitted collection to Approved, recording the
// approver. Of two concurrent approvals exactly one succeeds; the loser gets
// an invalid-state error and should re-fetch.
func (s *CollectionService) ApproveCollection(ctx context.Context, collectionID, approverID uuid.UUID) error {
	if _, ok := infraRepo.GetTenantID(ctx); !ok {
		return apperror.NewBadRequestError("Tenant context required")
	}
	if approverID == uuid.Nil {
		return apperror.NewBadRequestError("Approver is required")
	}

	err := s.collectionRepo.Approve(ctx, collectionID, approverID, time.Now().UTC())
	switch {
	case errors.Is(err, repository.ErrCollectionNotFound):
		return apperror.NewNotFoundError("Cash collection")
	case errors.Is(err, repository.ErrCollectionNotSubmitted):
		return apperror.NewInvalidStateError("Cash collection is not awaiting approval")
	}
	return err
}

// RegisterSaleInput represents the register sale input
type RegisterSaleInput struct {
	AgentID uuid.UUID
}

// RegisterSale records a sale reference the ledger can later post cash for.
// The full order lives in the order service; the ledger only needs the stub.
func (s *CollectionService) RegisterSale(ctx context.Context, input *RegisterSaleInput) (*entity.Sale, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	if input.AgentID == uuid.Nil {
		return nil, apperror.NewBadRequestError("Agent is required")
	}

	sale := &entity.Sale{
		TenantID: tenantID,
		AgentID:  input.AgentID,
	}
	if err := s.saleRepo.Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// translatePostingError maps store sentinels onto API errors
func (s *CollectionService) translatePostingError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrCollectionNotFound):
		return apperror.NewNotFoundError("Cash collection")
	case errors.Is(err, repository.ErrCollectionNotOpen):
		return apperror.NewInvalidStateError("Cash collection is no longer open")
	case errors.Is(err, repository.ErrSaleNotFound):
		return apperror.NewNotFoundError("Sale")
	case errors.Is(err, repository.ErrSaleAlreadyLinked):
		return apperror.NewConflictError("Sale is already linked to a cash collection")
	default:
		return err
	}
}
