package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/cashledger-api/internal/application/service"
	"github.com/sangkips/cashledger-api/internal/presentation/http/dto/request"
	"github.com/sangkips/cashledger-api/internal/presentation/http/dto/response"
)

// CollectionHandler handles cash collection lifecycle HTTP requests
type CollectionHandler struct {
	collectionService *service.CollectionService
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(collectionService *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

// Start handles opening a cash collection for an agent's shift.
// When agent_id is omitted the collection is opened for the caller.
func (h *CollectionHandler) Start(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.StartCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	agentID := *userID
	if req.AgentID != nil {
		agentID = *req.AgentID
	}

	collection, err := h.collectionService.StartCollection(c.Request.Context(), &service.StartCollectionInput{
		AgentID:      agentID,
		OpeningFloat: *req.OpeningFloat,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Cash collection opened successfully", collection)
}

// PostCashSale handles posting a sale's cash onto an open collection
func (h *CollectionHandler) PostCashSale(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid collection ID")
		return
	}

	var req request.PostCashSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	err = h.collectionService.PostCashSale(c.Request.Context(), &service.PostCashSaleInput{
		CollectionID: collectionID,
		SaleID:       req.SaleID,
		CashReceived: req.CashReceived,
		ChangeGiven:  req.ChangeGiven,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cash sale posted successfully", nil)
}

// PostExpense handles posting an expense against an open collection
func (h *CollectionHandler) PostExpense(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid collection ID")
		return
	}

	var req request.PostExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	expense, err := h.collectionService.PostExpense(c.Request.Context(), &service.PostExpenseInput{
		CollectionID:    collectionID,
		Type:            req.Type,
		Amount:          req.Amount,
		Description:     req.Description,
		ReceiptPhotoRef: req.ReceiptPhotoRef,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Expense posted successfully", expense)
}

// Submit handles closing out a collection with the physically counted cash
func (h *CollectionHandler) Submit(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid collection ID")
		return
	}

	var req request.SubmitCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	denominations := make([]service.DenominationInput, len(req.Denominations))
	for i, row := range req.Denominations {
		denominations[i] = service.DenominationInput{
			Denomination: row.Denomination,
			Quantity:     row.Quantity,
			Total:        row.Total,
		}
	}

	result, err := h.collectionService.SubmitCollection(c.Request.Context(), &service.SubmitCollectionInput{
		CollectionID:  collectionID,
		Denominations: denominations,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cash collection submitted successfully", result)
}

// Approve handles approving a submitted collection. The approver is the
// authenticated manager, never a body field.
func (h *CollectionHandler) Approve(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid collection ID")
		return
	}

	if err := h.collectionService.ApproveCollection(c.Request.Context(), collectionID, *userID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cash collection approved successfully", nil)
}

// RegisterSale handles recording a sale stub for later cash posting
func (h *CollectionHandler) RegisterSale(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.RegisterSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	agentID := *userID
	if req.AgentID != nil {
		agentID = *req.AgentID
	}

	sale, err := h.collectionService.RegisterSale(c.Request.Context(), &service.RegisterSaleInput{
		AgentID: agentID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale registered successfully", sale)
}
