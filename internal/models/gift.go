package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GiftType indicates the role a gift record row plays within its group.
type GiftType string

const (
	GiftCash GiftType = "CASH"
	GiftItem GiftType = "ITEM"
)

// GiftRecord is the row model for the gift_records table. Rows of one logical
// gift occasion share group_id; legacy single-row records have an empty
// group_id and are addressed by their own gift_id.
type GiftRecord struct {
	GiftID           string           `json:"giftID"`
	GroupID          *string          `json:"groupID,omitempty"`
	GiftbookID       string           `json:"giftbookID"`
	UserID           string           `json:"userID"`
	CounterpartyName string           `json:"counterpartyName"`
	GiftDate         time.Time        `json:"giftDate"`
	Notes            string           `json:"notes"`
	GiftType         GiftType         `json:"giftType"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	Currency         *string          `json:"currency,omitempty"`
	ItemName         *string          `json:"itemName,omitempty"`
	Quantity         *decimal.Decimal `json:"quantity,omitempty"`
	Unit             *string          `json:"unit,omitempty"`
	EstimatedValue   *decimal.Decimal `json:"estimatedValue,omitempty"`
	AttachmentKey    *string          `json:"attachmentKey,omitempty"`
	AttachmentName   *string          `json:"attachmentName,omitempty"`
	AttachmentType   *string          `json:"attachmentType,omitempty"`
	AuditFields
}
