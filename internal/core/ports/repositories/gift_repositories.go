package repositories

import (
	"context"

	"github.com/gastrodia/homeledger/internal/core/domain"
)

// GiftGroupMutation is the write plan for one group edit. The repository
// applies the whole plan inside a single database transaction so a cluster
// is never visible in a partially-updated state.
type GiftGroupMutation struct {
	GroupID string
	UserID  string
	// Full-row updates for existing rows (matched by gift_id).
	Updates []domain.GiftRecord
	// New rows to insert, in insertion order.
	Inserts []domain.GiftRecord
	// Row ids to delete.
	DeleteRowIDs []string
	// ClearAttachments wipes the attachment triple on every row of the group
	// before TargetRowID (if set) receives Attachment.
	ClearAttachments bool
	TargetRowID      *string
	Attachment       domain.Attachment
}

// GiftRepositoryFacade defines persistence operations for gift record
// clusters. Group reads match `group_id = X OR gift_id = X` so legacy
// single-row records stay addressable by their row id.
type GiftRepositoryFacade interface {
	// SaveGiftGroup inserts all rows of a new group in one transaction.
	SaveGiftGroup(ctx context.Context, rows []domain.GiftRecord) error
	// FindGroupRows returns the cluster rows in insertion order.
	FindGroupRows(ctx context.Context, groupID string, userID string) ([]domain.GiftRecord, error)
	ListRowsByGiftbook(ctx context.Context, giftbookID string, userID string) ([]domain.GiftRecord, error)
	// ApplyGroupMutation executes the full edit plan atomically.
	ApplyGroupMutation(ctx context.Context, mutation GiftGroupMutation) error
	// DeleteGroup removes every row of the cluster and reports how many rows
	// were deleted.
	DeleteGroup(ctx context.Context, groupID string, userID string) (int64, error)
}
