package dto

import (
	"time"

	"github.com/gastrodia/homeledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GiftCashPayload is the cash line of a gift group payload.
type GiftCashPayload struct {
	Amount   *decimal.Decimal `json:"amount"`
	Currency string           `json:"currency"`
}

// GiftItemPayload is one item line of a gift group payload. ID is set when
// the client wants to keep/edit an existing item row; items without an id
// are inserted, and existing rows whose ids are not referenced are deleted.
type GiftItemPayload struct {
	ID             *string          `json:"id"`
	ItemName       string           `json:"itemName"`
	Quantity       *decimal.Decimal `json:"quantity"`
	Unit           string           `json:"unit"`
	EstimatedValue *decimal.Decimal `json:"estimatedValue"`
}

// CreateGiftGroupRequest defines the data to create a gift group in one call.
// At least one of cash (hasCash) or items (hasItems) is required.
type CreateGiftGroupRequest struct {
	GiftbookID       string            `json:"giftbookID" binding:"required"`
	CounterpartyName string            `json:"counterpartyName" binding:"required"`
	GiftDate         time.Time         `json:"giftDate" binding:"required"`
	Notes            string            `json:"notes"`
	HasCash          bool              `json:"hasCash"`
	Cash             *GiftCashPayload  `json:"cash"`
	HasItems         bool              `json:"hasItems"`
	Items            []GiftItemPayload `json:"items"`
	AttachmentKey    *string           `json:"attachmentKey"`
	AttachmentName   *string           `json:"attachmentName"`
	AttachmentType   *string           `json:"attachmentType"`
}

// UpdateGiftGroupRequest carries the desired post-edit state of a group.
// HasCash/HasItems drive row deletion independently of field presence, and
// the attachment triple is tri-state: omitted leaves it alone, explicit null
// clears it everywhere, a value re-pins it to the placement target.
type UpdateGiftGroupRequest struct {
	CounterpartyName string            `json:"counterpartyName"`
	GiftDate         *time.Time        `json:"giftDate"`
	Notes            *string           `json:"notes"`
	HasCash          bool              `json:"hasCash"`
	Cash             *GiftCashPayload  `json:"cash"`
	HasItems         bool              `json:"hasItems"`
	Items            []GiftItemPayload `json:"items"`
	AttachmentKey    Optional[string]  `json:"attachmentKey"`
	AttachmentName   Optional[string]  `json:"attachmentName"`
	AttachmentType   Optional[string]  `json:"attachmentType"`
}

// ListGiftGroupsParams holds query parameters for listing gift groups.
// GiftType is the legacy single-valued filter, honored only when neither
// HasCash nor HasItems is supplied.
type ListGiftGroupsParams struct {
	GiftbookID string  `form:"giftbookID" binding:"required"`
	HasCash    *bool   `form:"hasCash"`
	HasItems   *bool   `form:"hasItems"`
	GiftType   *string `form:"giftType" binding:"omitempty,oneof=CASH ITEM"`
}

// GiftItemResponse is one item row of a group as returned to callers.
type GiftItemResponse struct {
	ID             string           `json:"id"`
	ItemName       string           `json:"itemName"`
	Quantity       *decimal.Decimal `json:"quantity,omitempty"`
	Unit           *string          `json:"unit,omitempty"`
	EstimatedValue *decimal.Decimal `json:"estimatedValue,omitempty"`
}

// GiftGroupResponse is the full reconstructed group view.
type GiftGroupResponse struct {
	GroupID          string              `json:"groupID"`
	GiftbookID       string              `json:"giftbookID"`
	CounterpartyName string              `json:"counterpartyName"`
	GiftDate         time.Time           `json:"giftDate"`
	Notes            string              `json:"notes"`
	CashAmount       *decimal.Decimal    `json:"cashAmount,omitempty"`
	Currency         *string             `json:"currency,omitempty"`
	Items            []GiftItemResponse  `json:"items"`
	Attachment       *AttachmentResponse `json:"attachment,omitempty"`
}

// GiftGroupListItem is the list projection: counts and totals, no item detail.
type GiftGroupListItem struct {
	GroupID             string              `json:"groupID"`
	GiftbookID          string              `json:"giftbookID"`
	CounterpartyName    string              `json:"counterpartyName"`
	GiftDate            time.Time           `json:"giftDate"`
	Notes               string              `json:"notes"`
	CashAmount          *decimal.Decimal    `json:"cashAmount,omitempty"`
	Currency            *string             `json:"currency,omitempty"`
	ItemsCount          int                 `json:"itemsCount"`
	ItemsEstimatedTotal decimal.Decimal     `json:"itemsEstimatedTotal"`
	Attachment          *AttachmentResponse `json:"attachment,omitempty"`
}

// ListGiftGroupsResponse wraps the group summaries for one giftbook.
type ListGiftGroupsResponse struct {
	Groups []GiftGroupListItem `json:"groups"`
}

// ToGiftGroupResponse converts a reconstructed domain group to its DTO.
func ToGiftGroupResponse(g *domain.GiftRecordGroup) GiftGroupResponse {
	resp := GiftGroupResponse{
		GroupID:          g.GroupID,
		GiftbookID:       g.GiftbookID,
		CounterpartyName: g.CounterpartyName,
		GiftDate:         g.GiftDate,
		Notes:            g.Notes,
		Items:            make([]GiftItemResponse, len(g.Items)),
		Attachment:       toAttachmentResponse(g.Attachment),
	}
	if g.Cash != nil {
		resp.CashAmount = g.Cash.Amount
		resp.Currency = g.Cash.Currency
	}
	for i, item := range g.Items {
		name := ""
		if item.ItemName != nil {
			name = *item.ItemName
		}
		resp.Items[i] = GiftItemResponse{
			ID:             item.GiftID,
			ItemName:       name,
			Quantity:       item.Quantity,
			Unit:           item.Unit,
			EstimatedValue: item.EstimatedValue,
		}
	}
	return resp
}

// ToGiftGroupListItem converts a domain summary to its list DTO.
func ToGiftGroupListItem(s *domain.GiftGroupSummary) GiftGroupListItem {
	return GiftGroupListItem{
		GroupID:             s.GroupID,
		GiftbookID:          s.GiftbookID,
		CounterpartyName:    s.CounterpartyName,
		GiftDate:            s.GiftDate,
		Notes:               s.Notes,
		CashAmount:          s.CashAmount,
		Currency:            s.Currency,
		ItemsCount:          s.ItemsCount,
		ItemsEstimatedTotal: s.ItemsEstimatedTotal,
		Attachment:          toAttachmentResponse(s.Attachment),
	}
}
