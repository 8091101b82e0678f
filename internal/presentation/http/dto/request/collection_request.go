package request

import "github.com/google/uuid"

// StartCollectionRequest opens a cash collection for the agent's shift.
// OpeningFloat is a pointer so a missing value is distinguishable from zero.
type StartCollectionRequest struct {
	AgentID      *uuid.UUID `json:"agent_id"`
	OpeningFloat *float64   `json:"opening_float" binding:"required"`
}

// PostCashSaleRequest posts a sale's cash onto an open collection
type PostCashSaleRequest struct {
	SaleID       uuid.UUID `json:"sale_id" binding:"required"`
	CashReceived float64   `json:"cash_received" binding:"min=0"`
	ChangeGiven  float64   `json:"change_given" binding:"min=0"`
}

// PostExpenseRequest posts an expense against an open collection
type PostExpenseRequest struct {
	Type            string  `json:"type" binding:"required,max=100"`
	Amount          float64 `json:"amount" binding:"required"`
	Description     string  `json:"description"`
	ReceiptPhotoRef string  `json:"receipt_photo_ref" binding:"omitempty,max=255"`
}

// DenominationRequest is one row of the physical cash count
type DenominationRequest struct {
	Denomination float64 `json:"denomination" binding:"required"`
	Quantity     int     `json:"quantity" binding:"required"`
	Total        float64 `json:"total" binding:"required"`
}

// SubmitCollectionRequest closes out a collection with the counted cash
type SubmitCollectionRequest struct {
	Denominations []DenominationRequest `json:"denominations" binding:"required,min=1,dive"`
	Notes         string                `json:"notes"`
}

// RegisterSaleRequest records a sale stub the ledger can later post cash for
type RegisterSaleRequest struct {
	AgentID *uuid.UUID `json:"agent_id"`
}
