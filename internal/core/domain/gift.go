package domain

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

// GiftRecord is one physical row of a gift-record group. A group shares a
// GroupID across at most one cash row and any number of item rows. Legacy
// single-row records predate the group column; for those GroupID equals the
// row's own GiftID.
type GiftRecord struct {
	GiftID           string           `json:"giftID"`
	GroupID          string           `json:"groupID"`
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
	Attachment       Attachment       `json:"attachment"`
	AuditFields
}

// GiftRecordGroup is the derived view over the rows sharing a group id.
// It is reconstructed on every read, never stored.
type GiftRecordGroup struct {
	GroupID          string       `json:"groupID"`
	GiftbookID       string       `json:"giftbookID"`
	CounterpartyName string       `json:"counterpartyName"`
	GiftDate         time.Time    `json:"giftDate"`
	Notes            string       `json:"notes"`
	Cash             *GiftRecord  `json:"cash,omitempty"`
	Items            []GiftRecord `json:"items"`
	Attachment       Attachment   `json:"attachment"`
}

// GiftGroupSummary is the list-view projection of a group: counts and totals
// instead of the item detail.
type GiftGroupSummary struct {
	GroupID             string           `json:"groupID"`
	GiftbookID          string           `json:"giftbookID"`
	CounterpartyName    string           `json:"counterpartyName"`
	GiftDate            time.Time        `json:"giftDate"`
	Notes               string           `json:"notes"`
	CashAmount          *decimal.Decimal `json:"cashAmount,omitempty"`
	Currency            *string          `json:"currency,omitempty"`
	ItemsCount          int              `json:"itemsCount"`
	ItemsEstimatedTotal decimal.Decimal  `json:"itemsEstimatedTotal"`
	Attachment          Attachment       `json:"attachment"`
	LatestActivityAt    time.Time        `json:"latestActivityAt"`
}

// ReconstructGiftGroup assembles the group view from its rows, which must be
// in insertion order. Header fields come from the first row, the attachment
// from whichever row carries one. Returns nil for an empty cluster: a group
// with zero rows does not exist.
func ReconstructGiftGroup(rows []GiftRecord) *GiftRecordGroup {
	if len(rows) == 0 {
		return nil
	}
	first := rows[0]
	group := &GiftRecordGroup{
		GroupID:          first.GroupID,
		GiftbookID:       first.GiftbookID,
		CounterpartyName: first.CounterpartyName,
		GiftDate:         first.GiftDate,
		Notes:            first.Notes,
		Items:            []GiftRecord{},
	}
	if group.GroupID == "" {
		// Legacy single-row record: the row id doubles as the group id.
		group.GroupID = first.GiftID
	}
	for i := range rows {
		row := rows[i]
		if row.GiftType == GiftCash && group.Cash == nil {
			group.Cash = &row
		} else if row.GiftType == GiftItem {
			group.Items = append(group.Items, row)
		}
		if group.Attachment.IsZero() && !row.Attachment.IsZero() {
			group.Attachment = row.Attachment
		}
		if group.Notes == "" && row.Notes != "" {
			group.Notes = row.Notes
		}
	}
	return group
}

// SummarizeGiftGroup derives the list projection for one group's rows.
// Cash amounts are summed defensively even though a well-formed group has at
// most one cash row.
func SummarizeGiftGroup(rows []GiftRecord) *GiftGroupSummary {
	group := ReconstructGiftGroup(rows)
	if group == nil {
		return nil
	}
	summary := &GiftGroupSummary{
		GroupID:          group.GroupID,
		GiftbookID:       group.GiftbookID,
		CounterpartyName: group.CounterpartyName,
		GiftDate:         group.GiftDate,
		Notes:            group.Notes,
		Attachment:       group.Attachment,
	}
	cashTotal := decimal.Zero
	hasCash := false
	for i := range rows {
		row := rows[i]
		if row.GiftType == GiftCash && row.Amount != nil {
			cashTotal = cashTotal.Add(*row.Amount)
			hasCash = true
			if summary.Currency == nil {
				summary.Currency = row.Currency
			}
		}
		if row.GiftType == GiftItem {
			summary.ItemsCount++
			if row.EstimatedValue != nil {
				summary.ItemsEstimatedTotal = summary.ItemsEstimatedTotal.Add(*row.EstimatedValue)
			}
		}
		if row.CreatedAt.After(summary.LatestActivityAt) {
			summary.LatestActivityAt = row.CreatedAt
		}
		if row.GiftDate.After(summary.GiftDate) {
			summary.GiftDate = row.GiftDate
		}
	}
	if hasCash {
		summary.CashAmount = &cashTotal
	}
	return summary
}
