package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cashledger-api/internal/domain/enum"
	domainRepo "github.com/sangkips/cashledger-api/internal/domain/repository"
	"github.com/sangkips/cashledger-api/internal/infrastructure/repository/memory"
	"github.com/sangkips/cashledger-api/pkg/pagination"
)

func newTestReportService() (*ReportService, *CollectionService, *memory.Store) {
	store := memory.NewStore()
	collectionSvc := NewCollectionService(store.Collections(), store.Sales())
	reportSvc := NewReportService(store.Collections(), store.Sales(), store.Reports())
	return reportSvc, collectionSvc, store
}

func TestGetCollectionWithChildren(t *testing.T) {
	reportSvc, collectionSvc, _ := newTestReportService()
	ctx := tenantCtx(uuid.New())
	agentID := uuid.New()

	collection := mustStart(t, collectionSvc, ctx, agentID, 50.00)
	sale := mustRegisterSale(t, collectionSvc, ctx, agentID)
	if err := collectionSvc.PostCashSale(ctx, &PostCashSaleInput{
		CollectionID: collection.ID, SaleID: sale.ID, CashReceived: 10.00,
	}); err != nil {
		t.Fatalf("PostCashSale: %v", err)
	}
	if _, err := collectionSvc.PostExpense(ctx, &PostExpenseInput{
		CollectionID: collection.ID, Type: "fuel", Amount: 2.00,
	}); err != nil {
		t.Fatalf("PostExpense: %v", err)
	}
	if _, err := collectionSvc.SubmitCollection(ctx, &SubmitCollectionInput{
		CollectionID: collection.ID,
		Denominations: []DenominationInput{
			{Denomination: 29.00, Quantity: 2, Total: 58.00},
		},
	}); err != nil {
		t.Fatalf("SubmitCollection: %v", err)
	}

	got, err := reportSvc.GetCollection(ctx, collection.ID)
	if err != nil {
		t.Fatalf("GetCollection: %v", err)
	}
	if len(got.ExpenseItems) != 1 {
		t.Errorf("expected 1 expense item, got %d", len(got.ExpenseItems))
	}
	if len(got.Denominations) != 1 {
		t.Errorf("expected 1 denomination row, got %d", len(got.Denominations))
	}
	if len(got.Sales) != 1 {
		t.Errorf("expected 1 linked sale, got %d", len(got.Sales))
	}

	// Reads never recompute; the stored figures are returned as written
	if got.Variance == nil || *got.Variance != 0 {
		t.Errorf("expected stored variance 0, got %v", got.Variance)
	}
}

func TestGetCollectionNotFound(t *testing.T) {
	reportSvc, _, _ := newTestReportService()
	ctx := tenantCtx(uuid.New())

	_, err := reportSvc.GetCollection(ctx, uuid.New())
	assertAppErrorCode(t, err, 404)
}

func TestGetCollectionOtherTenant(t *testing.T) {
	reportSvc, collectionSvc, _ := newTestReportService()
	ctxA := tenantCtx(uuid.New())
	ctxB := tenantCtx(uuid.New())

	collection := mustStart(t, collectionSvc, ctxA, uuid.New(), 10.00)

	_, err := reportSvc.GetCollection(ctxB, collection.ID)
	assertAppErrorCode(t, err, 404)
}

func TestListCollectionsFilters(t *testing.T) {
	reportSvc, collectionSvc, _ := newTestReportService()
	ctx := tenantCtx(uuid.New())
	agentA := uuid.New()
	agentB := uuid.New()

	collectionA := mustStart(t, collectionSvc, ctx, agentA, 10.00)
	mustStart(t, collectionSvc, ctx, agentB, 20.00)

	saleA := mustRegisterSale(t, collectionSvc, ctx, agentA)
	if err := collectionSvc.PostCashSale(ctx, &PostCashSaleInput{
		CollectionID: collectionA.ID, SaleID: saleA.ID, CashReceived: 5.00,
	}); err != nil {
		t.Fatalf("PostCashSale: %v", err)
	}

	all, err := reportSvc.ListCollections(ctx, &ListCollectionsInput{})
	if err != nil {
		t.Fatalf("ListCollections: %v", err)
	}
	if len(all.Items) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(all.Items))
	}

	byAgent, err := reportSvc.ListCollections(ctx, &ListCollectionsInput{AgentID: &agentA})
	if err != nil {
		t.Fatalf("ListCollections by agent: %v", err)
	}
	if len(byAgent.Items) != 1 {
		t.Fatalf("expected 1 collection for agent, got %d", len(byAgent.Items))
	}
	if byAgent.Items[0].SaleCount != 1 {
		t.Errorf("expected sale count 1, got %d", byAgent.Items[0].SaleCount)
	}

	open := enum.CollectionStatusOpen
	byStatus, err := reportSvc.ListCollections(ctx, &ListCollectionsInput{Status: &open})
	if err != nil {
		t.Fatalf("ListCollections by status: %v", err)
	}
	if len(byStatus.Items) != 2 {
		t.Errorf("expected 2 open collections, got %d", len(byStatus.Items))
	}

	future := time.Now().UTC().AddDate(0, 0, 1)
	byDate, err := reportSvc.ListCollections(ctx, &ListCollectionsInput{StartDate: &future})
	if err != nil {
		t.Fatalf("ListCollections by date: %v", err)
	}
	if len(byDate.Items) != 0 {
		t.Errorf("expected no collections starting tomorrow, got %d", len(byDate.Items))
	}
}

func TestListCollectionsTenantIsolation(t *testing.T) {
	reportSvc, collectionSvc, _ := newTestReportService()
	ctxA := tenantCtx(uuid.New())
	ctxB := tenantCtx(uuid.New())

	mustStart(t, collectionSvc, ctxA, uuid.New(), 10.00)

	result, err := reportSvc.ListCollections(ctxB, &ListCollectionsInput{})
	if err != nil {
		t.Fatalf("ListCollections: %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("expected no collections for other tenant, got %d", len(result.Items))
	}
}

func TestListPendingApprovals(t *testing.T) {
	reportSvc, collectionSvc, _ := newTestReportService()
	ctx := tenantCtx(uuid.New())

	submitted := mustStart(t, collectionSvc, ctx, uuid.New(), 10.00)
	mustStart(t, collectionSvc, ctx, uuid.New(), 20.00)

	if _, err := collectionSvc.SubmitCollection(ctx, &SubmitCollectionInput{
		CollectionID:  submitted.ID,
		Denominations: []DenominationInput{{Denomination: 10.00, Quantity: 1, Total: 10.00}},
	}); err != nil {
		t.Fatalf("SubmitCollection: %v", err)
	}

	result, err := reportSvc.ListPendingApprovals(ctx, pagination.DefaultPagination())
	if err != nil {
		t.Fatalf("ListPendingApprovals: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 pending approval, got %d", len(result.Items))
	}
	if result.Items[0].Collection.ID != submitted.ID {
		t.Errorf("expected the submitted collection in the queue")
	}
}

func TestSummarize(t *testing.T) {
	reportSvc, collectionSvc, _ := newTestReportService()
	ctx := tenantCtx(uuid.New())

	// One collection closed over, one short, one still open
	over := mustStart(t, collectionSvc, ctx, uuid.New(), 10.00)
	if _, err := collectionSvc.SubmitCollection(ctx, &SubmitCollectionInput{
		CollectionID:  over.ID,
		Denominations: []DenominationInput{{Denomination: 1.00, Quantity: 12, Total: 12.00}},
	}); err != nil {
		t.Fatalf("submit over: %v", err)
	}

	short := mustStart(t, collectionSvc, ctx, uuid.New(), 10.00)
	if _, err := collectionSvc.SubmitCollection(ctx, &SubmitCollectionInput{
		CollectionID:  short.ID,
		Denominations: []DenominationInput{{Denomination: 1.00, Quantity: 7, Total: 7.00}},
	}); err != nil {
		t.Fatalf("submit short: %v", err)
	}

	mustStart(t, collectionSvc, ctx, uuid.New(), 5.00)

	summary, err := reportSvc.Summarize(ctx, &domainRepo.SummaryFilterParams{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if summary.TotalCollections != 3 {
		t.Errorf("expected 3 collections, got %d", summary.TotalCollections)
	}
	if summary.OpenCount != 1 || summary.SubmittedCount != 2 || summary.ApprovedCount != 0 {
		t.Errorf("unexpected status counts: open=%d submitted=%d approved=%d",
			summary.OpenCount, summary.SubmittedCount, summary.ApprovedCount)
	}
	// Overages and shortages are reported separately, never netted
	if summary.TotalOverages != 2.00 {
		t.Errorf("expected total overages 2.00, got %.2f", summary.TotalOverages)
	}
	if summary.TotalShortages != 3.00 {
		t.Errorf("expected total shortages 3.00, got %.2f", summary.TotalShortages)
	}

	// A second read returns the same figures
	again, err := reportSvc.Summarize(ctx, &domainRepo.SummaryFilterParams{})
	if err != nil {
		t.Fatalf("Summarize again: %v", err)
	}
	if *again != *summary {
		t.Error("expected summarize to be read-only and repeatable")
	}
}

func TestSummarizeStatusFilter(t *testing.T) {
	reportSvc, collectionSvc, _ := newTestReportService()
	ctx := tenantCtx(uuid.New())

	submitted := mustStart(t, collectionSvc, ctx, uuid.New(), 10.00)
	if _, err := collectionSvc.SubmitCollection(ctx, &SubmitCollectionInput{
		CollectionID:  submitted.ID,
		Denominations: []DenominationInput{{Denomination: 10.00, Quantity: 1, Total: 10.00}},
	}); err != nil {
		t.Fatalf("SubmitCollection: %v", err)
	}
	mustStart(t, collectionSvc, ctx, uuid.New(), 5.00)

	status := enum.CollectionStatusSubmitted
	summary, err := reportSvc.Summarize(ctx, &domainRepo.SummaryFilterParams{Status: &status})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.TotalCollections != 1 {
		t.Errorf("expected 1 submitted collection, got %d", summary.TotalCollections)
	}
}
