package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sale is the minimal slice of an order the ledger needs: the cash tendered,
// the change handed back, and an optional link to the collection the net cash
// was posted against. The order itself lives in another service.
type Sale struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	AgentID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"agent_id"`
	CashCollectionID *uuid.UUID     `gorm:"type:uuid;index" json:"cash_collection_id,omitempty"`
	PaymentReceived  int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	ChangeGiven      int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// NetCash returns the cash that actually entered the drawer for this sale
func (s *Sale) NetCash() int64 {
	return s.PaymentReceived - s.ChangeGiven
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		PaymentReceived float64 `json:"payment_received"`
		ChangeGiven     float64 `json:"change_given"`
		NetCash         float64 `json:"net_cash"`
	}{
		Alias:           Alias(s),
		PaymentReceived: float64(s.PaymentReceived) / 100,
		ChangeGiven:     float64(s.ChangeGiven) / 100,
		NetCash:         float64(s.PaymentReceived-s.ChangeGiven) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}
