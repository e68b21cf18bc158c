package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastrodia/homeledger/internal/apperrors"
	"github.com/gastrodia/homeledger/internal/core/domain"
)

func TestAttachmentTargetRow(t *testing.T) {
	cash := domain.GiftRecord{GiftID: "cash-1", GiftType: domain.GiftCash}
	item1 := domain.GiftRecord{GiftID: "item-1", GiftType: domain.GiftItem}
	item2 := domain.GiftRecord{GiftID: "item-2", GiftType: domain.GiftItem}

	t.Run("cash row wins even when listed last", func(t *testing.T) {
		target, err := attachmentTargetRow([]domain.GiftRecord{item1, item2, cash})
		require.NoError(t, err)
		assert.Equal(t, "cash-1", target)
	})

	t.Run("first item row without cash", func(t *testing.T) {
		target, err := attachmentTargetRow([]domain.GiftRecord{item1, item2})
		require.NoError(t, err)
		assert.Equal(t, "item-1", target)
	})

	t.Run("empty cluster cannot hold an attachment", func(t *testing.T) {
		_, err := attachmentTargetRow(nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}
