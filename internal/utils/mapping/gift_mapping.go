package mapping

import (
	"github.com/gastrodia/homeledger/internal/core/domain"
	"github.com/gastrodia/homeledger/internal/models"
)

// ToModelGiftRecord converts a domain GiftRecord to a model GiftRecord
func ToModelGiftRecord(d domain.GiftRecord) models.GiftRecord {
	m := models.GiftRecord{
		GiftID:           d.GiftID,
		GiftbookID:       d.GiftbookID,
		UserID:           d.UserID,
		CounterpartyName: d.CounterpartyName,
		GiftDate:         d.GiftDate,
		Notes:            d.Notes,
		GiftType:         models.GiftType(d.GiftType),
		Amount:           d.Amount,
		Currency:         d.Currency,
		ItemName:         d.ItemName,
		Quantity:         d.Quantity,
		Unit:             d.Unit,
		EstimatedValue:   d.EstimatedValue,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
	if d.GroupID != "" {
		groupID := d.GroupID
		m.GroupID = &groupID
	}
	m.AttachmentKey, m.AttachmentName, m.AttachmentType = toModelAttachment(d.Attachment)
	return m
}

// ToDomainGiftRecord converts a model GiftRecord to a domain GiftRecord
func ToDomainGiftRecord(m models.GiftRecord) domain.GiftRecord {
	d := domain.GiftRecord{
		GiftID:           m.GiftID,
		GiftbookID:       m.GiftbookID,
		UserID:           m.UserID,
		CounterpartyName: m.CounterpartyName,
		GiftDate:         m.GiftDate,
		Notes:            m.Notes,
		GiftType:         domain.GiftType(m.GiftType),
		Amount:           m.Amount,
		Currency:         m.Currency,
		ItemName:         m.ItemName,
		Quantity:         m.Quantity,
		Unit:             m.Unit,
		EstimatedValue:   m.EstimatedValue,
		Attachment:       toDomainAttachment(m.AttachmentKey, m.AttachmentName, m.AttachmentType),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
	if m.GroupID != nil {
		d.GroupID = *m.GroupID
	} else {
		// Legacy single-row record: its own id is the group id.
		d.GroupID = m.GiftID
	}
	return d
}

// ToDomainGiftRecordSlice converts a slice of model gift records to domain records
func ToDomainGiftRecordSlice(ms []models.GiftRecord) []domain.GiftRecord {
	out := make([]domain.GiftRecord, len(ms))
	for i, m := range ms {
		out[i] = ToDomainGiftRecord(m)
	}
	return out
}
