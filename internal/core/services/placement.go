package services

import (
	"fmt"

	"github.com/gastrodia/homeledger/internal/apperrors"
	"github.com/gastrodia/homeledger/internal/core/domain"
)

// attachmentTargetRow picks the single row of a cluster that carries the
// shared attachment: the cash row if the cluster has one, otherwise the first
// item row in insertion order. An empty cluster cannot hold an attachment.
func attachmentTargetRow(rows []domain.GiftRecord) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: no row available to hold attachment", apperrors.ErrValidation)
	}
	for _, row := range rows {
		if row.GiftType == domain.GiftCash {
			return row.GiftID, nil
		}
	}
	return rows[0].GiftID, nil
}
