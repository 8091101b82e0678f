package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cashledger-api/internal/domain/enum"
	"gorm.io/gorm"
)

// CashCollection tracks one agent-shift's cash float: the opening float,
// running cash-sale and expense totals, and the reconciled close.
// ExpectedCash is maintained by the store as openingFloat + cashSales - expenses
// on every posting; ClosingCash and Variance are written exactly once at submission.
type CashCollection struct {
	ID             uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	TenantID       uuid.UUID             `gorm:"type:uuid;not null;index:idx_collections_tenant;index:idx_collections_open_agent,unique,where:status = 0" json:"tenant_id"`
	AgentID        uuid.UUID             `gorm:"type:uuid;not null;index;index:idx_collections_open_agent,unique,where:status = 0" json:"agent_id"`
	ReferenceNo    string                `gorm:"size:100;unique;not null" json:"reference_no"`
	CollectionDate time.Time             `gorm:"type:date;not null;index" json:"-"`
	OpeningFloat   int64                 `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CashSales      int64                 `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Expenses       int64                 `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	ExpectedCash   int64                 `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	ClosingCash    *int64                `json:"-"`                  // Set once at submission
	Variance       *int64                `json:"-"`                  // Set once at submission
	Status         enum.CollectionStatus `gorm:"default:0;index" json:"status"`
	SubmissionNotes string               `gorm:"type:text" json:"submission_notes,omitempty"`
	SubmittedAt    *time.Time            `json:"submitted_at,omitempty"`
	ApprovedBy     *uuid.UUID            `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time            `json:"approved_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	DeletedAt      gorm.DeletedAt        `gorm:"index" json:"-"`

	// Relationships
	ExpenseItems  []CashExpense      `gorm:"foreignKey:CollectionID" json:"expense_items,omitempty"`
	Denominations []CashDenomination `gorm:"foreignKey:CollectionID" json:"denominations,omitempty"`
	Sales         []Sale             `gorm:"foreignKey:CashCollectionID" json:"sales,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (c CashCollection) MarshalJSON() ([]byte, error) {
	type Alias CashCollection
	out := &struct {
		Alias
		CollectionDate string   `json:"collection_date"`
		OpeningFloat   float64  `json:"opening_float"`
		CashSales      float64  `json:"cash_sales"`
		Expenses       float64  `json:"expenses"`
		ExpectedCash   float64  `json:"expected_cash"`
		ClosingCash    *float64 `json:"closing_cash"`
		Variance       *float64 `json:"variance"`
	}{
		Alias:          Alias(c),
		CollectionDate: c.CollectionDate.Format("2006-01-02"),
		OpeningFloat:   float64(c.OpeningFloat) / 100,
		CashSales:      float64(c.CashSales) / 100,
		Expenses:       float64(c.Expenses) / 100,
		ExpectedCash:   float64(c.ExpectedCash) / 100,
	}
	if c.ClosingCash != nil {
		v := float64(*c.ClosingCash) / 100
		out.ClosingCash = &v
	}
	if c.Variance != nil {
		v := float64(*c.Variance) / 100
		out.Variance = &v
	}
	return json.Marshal(out)
}

// BeforeCreate generates a UUID before creating a new collection
func (c *CashCollection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashCollection model
func (CashCollection) TableName() string {
	return "cash_collections"
}

// IsOpen reports whether postings are still accepted
func (c *CashCollection) IsOpen() bool {
	return c.Status == enum.CollectionStatusOpen
}

// CashExpense is an append-only expense line posted against an open collection.
// Its amount is reflected exactly once into the parent's running totals at creation.
type CashExpense struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CollectionID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"collection_id"`
	TenantID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Type            string         `gorm:"size:100;not null" json:"type"`
	Amount          int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Description     string         `gorm:"type:text" json:"description"`
	ReceiptPhotoRef string         `gorm:"size:255" json:"receipt_photo_ref,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (e CashExpense) MarshalJSON() ([]byte, error) {
	type Alias CashExpense
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(e),
		Amount: float64(e.Amount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new expense
func (e *CashExpense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashExpense model
func (CashExpense) TableName() string {
	return "cash_expenses"
}

// CashDenomination is one row of the physical count recorded at submission.
// Total must equal Denomination * Quantity; the sum over a collection equals
// the ClosingCash recorded on it.
type CashDenomination struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CollectionID uuid.UUID `gorm:"type:uuid;not null;index" json:"collection_id"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Denomination int64     `gorm:"not null" json:"-"` // Face value in cents, excluded from JSON
	Quantity     int       `gorm:"not null" json:"quantity"`
	Total        int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt    time.Time `json:"created_at"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (d CashDenomination) MarshalJSON() ([]byte, error) {
	type Alias CashDenomination
	return json.Marshal(&struct {
		Alias
		Denomination float64 `json:"denomination"`
		Total        float64 `json:"total"`
	}{
		Alias:        Alias(d),
		Denomination: float64(d.Denomination) / 100,
		Total:        float64(d.Total) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new denomination row
func (d *CashDenomination) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashDenomination model
func (CashDenomination) TableName() string {
	return "cash_denominations"
}
