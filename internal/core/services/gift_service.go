package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gastrodia/homeledger/internal/apperrors"
	"github.com/gastrodia/homeledger/internal/core/domain"
	portsrepo "github.com/gastrodia/homeledger/internal/core/ports/repositories"
	portssvc "github.com/gastrodia/homeledger/internal/core/ports/services"
	"github.com/gastrodia/homeledger/internal/dto"
	"github.com/gastrodia/homeledger/internal/middleware"
)

const defaultCurrency = "CNY"

// giftService provides gift record group operations: a single gift occasion
// is stored as a cluster of rows sharing a group id, reconstructed on read.
type giftService struct {
	giftRepo portsrepo.GiftRepositoryFacade
	blob     portssvc.BlobStore
}

// NewGiftService creates a new GiftService.
func NewGiftService(giftRepo portsrepo.GiftRepositoryFacade, blob portssvc.BlobStore) portssvc.GiftSvcFacade {
	return &giftService{
		giftRepo: giftRepo,
		blob:     blob,
	}
}

// Ensure giftService implements the portssvc.GiftSvcFacade interface
var _ portssvc.GiftSvcFacade = (*giftService)(nil)

// CreateGroup writes a whole gift group in one call: at most one cash row
// followed by the item rows, all sharing a fresh group id. The attachment, if
// supplied, lands on the cash row when one exists, otherwise on the first
// item row.
func (s *giftService) CreateGroup(ctx context.Context, userID string, req dto.CreateGiftGroupRequest) (*domain.GiftRecordGroup, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	hasCash := req.HasCash
	hasItems := req.HasItems && len(req.Items) > 0
	if !hasCash && !hasItems {
		return nil, fmt.Errorf("%w: a gift group needs cash or at least one item", apperrors.ErrValidation)
	}

	var cashAmount decimal.Decimal
	if hasCash {
		if req.Cash == nil {
			return nil, fmt.Errorf("%w: hasCash is set but cash is missing", apperrors.ErrValidation)
		}
		var err error
		cashAmount, err = normalizeAmount(req.Cash.Amount, "cash.amount", rulePositive)
		if err != nil {
			return nil, err
		}
	}
	if req.HasItems {
		if len(req.Items) == 0 {
			return nil, fmt.Errorf("%w: hasItems is set but the item list is empty", apperrors.ErrValidation)
		}
		if err := validateGiftItems(req.Items); err != nil {
			return nil, err
		}
	}

	groupID := uuid.NewString()
	now := time.Now().UTC()
	header := domain.GiftRecord{
		GroupID:          groupID,
		GiftbookID:       req.GiftbookID,
		UserID:           userID,
		CounterpartyName: req.CounterpartyName,
		GiftDate:         req.GiftDate,
		Notes:            req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	var rows []domain.GiftRecord
	if hasCash {
		currency := req.Cash.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		cashRow := header
		cashRow.GiftID = uuid.NewString()
		cashRow.GiftType = domain.GiftCash
		cashRow.Amount = &cashAmount
		cashRow.Currency = &currency
		rows = append(rows, cashRow)
	}
	if hasItems {
		for i := range req.Items {
			rows = append(rows, itemRowFromPayload(header, req.Items[i]))
		}
	}

	if req.AttachmentKey != nil && *req.AttachmentKey != "" {
		// The cash row comes first when present, so the placement target is
		// always rows[0] here.
		target, err := attachmentTargetRow(rows)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			if rows[i].GiftID == target {
				rows[i].Attachment = attachmentFromPointers(req.AttachmentKey, req.AttachmentName, req.AttachmentType)
			}
		}
	}

	if err := s.giftRepo.SaveGiftGroup(ctx, rows); err != nil {
		logger.Error("Failed to save gift group", slog.String("error", err.Error()), slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to save gift group: %w", err)
	}

	logger.Info("Gift group created successfully", slog.String("group_id", groupID), slog.Int("row_count", len(rows)))
	return domain.ReconstructGiftGroup(rows), nil
}

// GetGroup reconstructs one group. The id may be a legacy bare row id.
func (s *giftService) GetGroup(ctx context.Context, userID string, groupID string) (*domain.GiftRecordGroup, error) {
	rows, err := s.giftRepo.FindGroupRows(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	group := domain.ReconstructGiftGroup(rows)
	if group == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("gift group %s not found", groupID))
	}
	return group, nil
}

// UpdateGroup applies the desired post-edit state of a whole cluster. The
// request is validated in full before the first repository call; the resulting
// write plan is then applied in one transaction. A request that turns off both
// cash and items empties the cluster, which removes the group: the returned
// group is nil in that case.
func (s *giftService) UpdateGroup(ctx context.Context, userID string, groupID string, req dto.UpdateGiftGroupRequest) (*domain.GiftRecordGroup, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.CounterpartyName == "" {
		return nil, fmt.Errorf("%w: counterpartyName is required", apperrors.ErrValidation)
	}
	if req.GiftDate == nil {
		return nil, fmt.Errorf("%w: giftDate is required", apperrors.ErrValidation)
	}
	var cashAmount decimal.Decimal
	if req.HasCash {
		if req.Cash == nil {
			return nil, fmt.Errorf("%w: hasCash is set but cash is missing", apperrors.ErrValidation)
		}
		var err error
		cashAmount, err = normalizeAmount(req.Cash.Amount, "cash.amount", rulePositive)
		if err != nil {
			return nil, err
		}
	}
	if req.HasItems {
		if len(req.Items) == 0 {
			return nil, fmt.Errorf("%w: hasItems is set but the item list is empty", apperrors.ErrValidation)
		}
		if err := validateGiftItems(req.Items); err != nil {
			return nil, err
		}
	}
	attachmentSet := req.AttachmentKey.Present && !req.AttachmentKey.Cleared()
	if attachmentSet && !req.HasCash && !req.HasItems {
		return nil, fmt.Errorf("%w: no row available to hold attachment", apperrors.ErrValidation)
	}

	existing, err := s.giftRepo.FindGroupRows(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("gift group %s not found", groupID))
	}
	// Legacy single-row records carry their own id as the group id.
	resolvedGroupID := existing[0].GroupID
	if resolvedGroupID == "" {
		resolvedGroupID = existing[0].GiftID
	}

	var existingCash *domain.GiftRecord
	var existingItems []domain.GiftRecord
	for i := range existing {
		if existing[i].GiftType == domain.GiftCash {
			if existingCash == nil {
				existingCash = &existing[i]
			}
		} else {
			existingItems = append(existingItems, existing[i])
		}
	}

	now := time.Now().UTC()
	header := domain.GiftRecord{
		GroupID:          resolvedGroupID,
		GiftbookID:       existing[0].GiftbookID,
		UserID:           userID,
		CounterpartyName: req.CounterpartyName,
		GiftDate:         *req.GiftDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	header.Notes = existing[0].Notes
	if req.Notes != nil {
		header.Notes = *req.Notes
	}

	mutation := portsrepo.GiftGroupMutation{
		GroupID: resolvedGroupID,
		UserID:  userID,
	}
	// postRows mirrors the cluster as it will exist after the edit, cash row
	// first, so the placement rule can run before anything is written.
	var postRows []domain.GiftRecord

	if req.HasCash {
		currency := req.Cash.Currency
		if currency == "" {
			if existingCash != nil && existingCash.Currency != nil {
				currency = *existingCash.Currency
			} else {
				currency = defaultCurrency
			}
		}
		cashRow := header
		cashRow.GiftType = domain.GiftCash
		cashRow.Amount = &cashAmount
		cashRow.Currency = &currency
		if existingCash != nil {
			cashRow.GiftID = existingCash.GiftID
			cashRow.CreatedAt = existingCash.CreatedAt
			cashRow.CreatedBy = existingCash.CreatedBy
			mutation.Updates = append(mutation.Updates, cashRow)
		} else {
			cashRow.GiftID = uuid.NewString()
			mutation.Inserts = append(mutation.Inserts, cashRow)
		}
		postRows = append(postRows, cashRow)
	} else if existingCash != nil {
		mutation.DeleteRowIDs = append(mutation.DeleteRowIDs, existingCash.GiftID)
	}

	if req.HasItems {
		diff := diffChildRows(req.Items, existingItems,
			func(item dto.GiftItemPayload) string {
				if item.ID == nil {
					return ""
				}
				return *item.ID
			},
			func(row domain.GiftRecord) string { return row.GiftID },
		)
		for _, pair := range diff.Updates {
			row := itemRowFromPayload(header, pair.Desired)
			row.GiftID = pair.Existing.GiftID
			row.CreatedAt = pair.Existing.CreatedAt
			row.CreatedBy = pair.Existing.CreatedBy
			mutation.Updates = append(mutation.Updates, row)
			postRows = append(postRows, row)
		}
		for _, item := range diff.Inserts {
			row := itemRowFromPayload(header, item)
			mutation.Inserts = append(mutation.Inserts, row)
			postRows = append(postRows, row)
		}
		for _, row := range diff.Deletes {
			mutation.DeleteRowIDs = append(mutation.DeleteRowIDs, row.GiftID)
		}
	} else {
		for _, row := range existingItems {
			mutation.DeleteRowIDs = append(mutation.DeleteRowIDs, row.GiftID)
		}
	}

	var oldAttachmentKey string
	if g := domain.ReconstructGiftGroup(existing); g != nil {
		oldAttachmentKey = g.Attachment.Key
	}
	if req.AttachmentKey.Present {
		mutation.ClearAttachments = true
		if !req.AttachmentKey.Cleared() {
			target, err := attachmentTargetRow(postRows)
			if err != nil {
				return nil, err
			}
			mutation.TargetRowID = &target
			mutation.Attachment = attachmentFromOptionals(req.AttachmentKey, req.AttachmentName, req.AttachmentType)
		}
	}

	if err := s.giftRepo.ApplyGroupMutation(ctx, mutation); err != nil {
		logger.Error("Failed to apply gift group mutation", slog.String("error", err.Error()), slog.String("group_id", resolvedGroupID))
		return nil, fmt.Errorf("failed to update gift group: %w", err)
	}

	// A superseded blob is best-effort cleanup: the edit already succeeded.
	if req.AttachmentKey.Present && oldAttachmentKey != "" && oldAttachmentKey != mutation.Attachment.Key {
		if err := s.blob.Delete(ctx, oldAttachmentKey); err != nil {
			logger.Warn("Failed to delete superseded attachment blob", slog.String("key", oldAttachmentKey), slog.String("error", err.Error()))
		}
	}

	logger.Info("Gift group updated successfully", slog.String("group_id", resolvedGroupID),
		slog.Int("updates", len(mutation.Updates)), slog.Int("inserts", len(mutation.Inserts)), slog.Int("deletes", len(mutation.DeleteRowIDs)))

	rows, err := s.giftRepo.FindGroupRows(ctx, resolvedGroupID, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return domain.ReconstructGiftGroup(rows), nil
}

// DeleteGroup removes every row of the cluster. Attachment blobs are left in
// place; see the repository design notes.
func (s *giftService) DeleteGroup(ctx context.Context, userID string, groupID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	count, err := s.giftRepo.DeleteGroup(ctx, groupID, userID)
	if err != nil {
		logger.Error("Failed to delete gift group", slog.String("error", err.Error()), slog.String("group_id", groupID))
		return fmt.Errorf("failed to delete gift group: %w", err)
	}
	if count == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("gift group %s not found", groupID))
	}

	logger.Info("Gift group deleted successfully", slog.String("group_id", groupID), slog.Int64("row_count", count))
	return nil
}

// ListGroups reads every row of a giftbook, groups them by group id (legacy
// rows fall back to their own id), derives per-group summaries, applies the
// group-level filters and sorts by the max (gift date, created at) seen
// within each group.
func (s *giftService) ListGroups(ctx context.Context, userID string, params dto.ListGiftGroupsParams) (*dto.ListGiftGroupsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	rows, err := s.giftRepo.ListRowsByGiftbook(ctx, params.GiftbookID, userID)
	if err != nil {
		logger.Error("Failed to list gift rows", slog.String("error", err.Error()), slog.String("giftbook_id", params.GiftbookID))
		return nil, fmt.Errorf("failed to list gift records: %w", err)
	}

	grouped := make(map[string][]domain.GiftRecord)
	var order []string
	for i := range rows {
		key := rows[i].GroupID
		if key == "" {
			key = rows[i].GiftID
		}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], rows[i])
	}

	summaries := make([]*domain.GiftGroupSummary, 0, len(order))
	for _, key := range order {
		summary := domain.SummarizeGiftGroup(grouped[key])
		if summary == nil || !matchesGiftFilters(summary, params) {
			continue
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].GiftDate.Equal(summaries[j].GiftDate) {
			return summaries[i].GiftDate.After(summaries[j].GiftDate)
		}
		return summaries[i].LatestActivityAt.After(summaries[j].LatestActivityAt)
	})

	resp := &dto.ListGiftGroupsResponse{Groups: make([]dto.GiftGroupListItem, len(summaries))}
	for i, summary := range summaries {
		resp.Groups[i] = dto.ToGiftGroupListItem(summary)
	}

	logger.Info("Gift groups listed successfully", slog.String("giftbook_id", params.GiftbookID), slog.Int("count", len(resp.Groups)))
	return resp, nil
}

// matchesGiftFilters applies the group-level list filters. The legacy
// giftType filter is honored only when neither of the newer flags is present.
func matchesGiftFilters(summary *domain.GiftGroupSummary, params dto.ListGiftGroupsParams) bool {
	hasCash := summary.CashAmount != nil
	hasItems := summary.ItemsCount > 0

	if params.HasCash != nil || params.HasItems != nil {
		if params.HasCash != nil && hasCash != *params.HasCash {
			return false
		}
		if params.HasItems != nil && hasItems != *params.HasItems {
			return false
		}
		return true
	}

	if params.GiftType != nil {
		switch domain.GiftType(*params.GiftType) {
		case domain.GiftCash:
			return hasCash
		case domain.GiftItem:
			return hasItems
		}
	}
	return true
}

// validateGiftItems runs the normalizer checks over a desired item list:
// name required, quantity positive, estimated value non-negative.
func validateGiftItems(items []dto.GiftItemPayload) error {
	for i, item := range items {
		if item.ItemName == "" {
			return fmt.Errorf("%w: items[%d].itemName is required", apperrors.ErrValidation, i)
		}
		if _, err := normalizeAmount(item.Quantity, fmt.Sprintf("items[%d].quantity", i), rulePositive); err != nil {
			return err
		}
		if _, err := normalizeOptionalAmount(item.EstimatedValue, fmt.Sprintf("items[%d].estimatedValue", i), ruleNonNegative); err != nil {
			return err
		}
	}
	return nil
}

// itemRowFromPayload builds an item row from its payload, inheriting the
// header fields. A fresh row id is assigned when the payload carries none.
func itemRowFromPayload(header domain.GiftRecord, item dto.GiftItemPayload) domain.GiftRecord {
	row := header
	row.GiftType = domain.GiftItem
	row.GiftID = uuid.NewString()
	name := item.ItemName
	row.ItemName = &name
	row.Quantity = item.Quantity
	if item.Unit != "" {
		unit := item.Unit
		row.Unit = &unit
	}
	row.EstimatedValue = item.EstimatedValue
	return row
}
