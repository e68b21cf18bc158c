package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gastrodia/homeledger/internal/apperrors"
	"github.com/gastrodia/homeledger/internal/core/domain"
	portsrepo "github.com/gastrodia/homeledger/internal/core/ports/repositories"
	"github.com/gastrodia/homeledger/internal/models"
	"github.com/gastrodia/homeledger/internal/utils/mapping"
)

type PgxGiftRepository struct {
	BaseRepository
}

// newPgxGiftRepository creates a new repository for gift record cluster data.
func newPgxGiftRepository(pool *pgxpool.Pool) portsrepo.GiftRepositoryFacade {
	return &PgxGiftRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxGiftRepository implements portsrepo.GiftRepositoryFacade
var _ portsrepo.GiftRepositoryFacade = (*PgxGiftRepository)(nil)

const giftColumns = `gift_id, group_id, giftbook_id, user_id, counterparty_name, gift_date, notes,
	       gift_type, amount, currency, item_name, quantity, unit, estimated_value,
	       attachment_key, attachment_name, attachment_type,
	       created_at, created_by, last_updated_at, last_updated_by`

const giftInsertQuery = `
	INSERT INTO gift_records (` + giftColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
`

// Rows of one group are matched by group_id OR gift_id: legacy single-row
// records predate the group column and are addressed by their own row id.
const groupMatchClause = `(group_id = $1 OR gift_id = $1) AND user_id = $2`

// SaveGiftGroup inserts all rows of a new group in one transaction, in the
// order given (cash row first when present).
func (r *PgxGiftRepository) SaveGiftGroup(ctx context.Context, rows []domain.GiftRecord) error {
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, row := range rows {
			queueGiftInsert(batch, mapping.ToModelGiftRecord(row))
		}
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to insert gift group rows", err)
		}
		return nil
	})
}

// FindGroupRows returns the cluster rows in insertion order.
func (r *PgxGiftRepository) FindGroupRows(ctx context.Context, groupID string, userID string) ([]domain.GiftRecord, error) {
	query := `
		SELECT ` + giftColumns + `
		FROM gift_records
		WHERE ` + groupMatchClause + `
		ORDER BY created_at, gift_id;
	`
	return r.queryGiftRows(ctx, query, groupID, userID)
}

// ListRowsByGiftbook returns every row of a giftbook; grouping happens in the
// service layer.
func (r *PgxGiftRepository) ListRowsByGiftbook(ctx context.Context, giftbookID string, userID string) ([]domain.GiftRecord, error) {
	query := `
		SELECT ` + giftColumns + `
		FROM gift_records
		WHERE giftbook_id = $1 AND user_id = $2
		ORDER BY created_at, gift_id;
	`
	return r.queryGiftRows(ctx, query, giftbookID, userID)
}

// ApplyGroupMutation executes the full edit plan in one transaction: row
// updates, inserts and deletes, then the attachment re-pin. Row updates do
// not touch the attachment columns; those change only through the
// ClearAttachments/TargetRowID part of the plan, so an edit that leaves the
// attachment alone cannot lose it.
func (r *PgxGiftRepository) ApplyGroupMutation(ctx context.Context, mutation portsrepo.GiftGroupMutation) error {
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		updateQuery := `
			UPDATE gift_records
			SET group_id = $2, counterparty_name = $3, gift_date = $4, notes = $5,
			    gift_type = $6, amount = $7, currency = $8,
			    item_name = $9, quantity = $10, unit = $11, estimated_value = $12,
			    last_updated_at = $13, last_updated_by = $14
			WHERE gift_id = $1 AND user_id = $15;
		`
		for _, row := range mutation.Updates {
			m := mapping.ToModelGiftRecord(row)
			cmdTag, err := tx.Exec(ctx, updateQuery,
				m.GiftID,
				m.GroupID,
				m.CounterpartyName,
				m.GiftDate,
				m.Notes,
				m.GiftType,
				m.Amount,
				m.Currency,
				m.ItemName,
				m.Quantity,
				m.Unit,
				m.EstimatedValue,
				m.LastUpdatedAt,
				m.LastUpdatedBy,
				mutation.UserID,
			)
			if err != nil {
				return apperrors.NewAppError(500, "failed to update gift record "+m.GiftID, err)
			}
			if cmdTag.RowsAffected() == 0 {
				return apperrors.ErrNotFound
			}
		}

		if len(mutation.Inserts) > 0 {
			batch := &pgx.Batch{}
			for _, row := range mutation.Inserts {
				queueGiftInsert(batch, mapping.ToModelGiftRecord(row))
			}
			br := tx.SendBatch(ctx, batch)
			if err := br.Close(); err != nil {
				return apperrors.NewAppError(500, "failed to insert gift records for group "+mutation.GroupID, err)
			}
		}

		if len(mutation.DeleteRowIDs) > 0 {
			_, err := tx.Exec(ctx,
				`DELETE FROM gift_records WHERE gift_id = ANY($1) AND user_id = $2;`,
				mutation.DeleteRowIDs, mutation.UserID)
			if err != nil {
				return apperrors.NewAppError(500, "failed to delete gift records for group "+mutation.GroupID, err)
			}
		}

		if mutation.ClearAttachments {
			_, err := tx.Exec(ctx,
				`UPDATE gift_records SET attachment_key = NULL, attachment_name = NULL, attachment_type = NULL
				 WHERE `+groupMatchClause+`;`,
				mutation.GroupID, mutation.UserID)
			if err != nil {
				return apperrors.NewAppError(500, "failed to clear attachments for group "+mutation.GroupID, err)
			}
		}
		if mutation.TargetRowID != nil {
			cmdTag, err := tx.Exec(ctx,
				`UPDATE gift_records SET attachment_key = $2, attachment_name = $3, attachment_type = $4
				 WHERE gift_id = $1 AND user_id = $5;`,
				*mutation.TargetRowID,
				mutation.Attachment.Key,
				mutation.Attachment.Name,
				mutation.Attachment.Type,
				mutation.UserID)
			if err != nil {
				return apperrors.NewAppError(500, "failed to pin attachment for group "+mutation.GroupID, err)
			}
			if cmdTag.RowsAffected() == 0 {
				return apperrors.ErrNotFound
			}
		}
		return nil
	})
}

// DeleteGroup removes every row of the cluster and reports how many rows
// were deleted.
func (r *PgxGiftRepository) DeleteGroup(ctx context.Context, groupID string, userID string) (int64, error) {
	cmdTag, err := r.Pool.Exec(ctx,
		`DELETE FROM gift_records WHERE `+groupMatchClause+`;`,
		groupID, userID)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to delete gift group "+groupID, err)
	}
	return cmdTag.RowsAffected(), nil
}

func (r *PgxGiftRepository) queryGiftRows(ctx context.Context, query string, args ...interface{}) ([]domain.GiftRecord, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query gift records", err)
	}
	defer rows.Close()

	records := []models.GiftRecord{}
	for rows.Next() {
		var m models.GiftRecord
		err := rows.Scan(
			&m.GiftID,
			&m.GroupID,
			&m.GiftbookID,
			&m.UserID,
			&m.CounterpartyName,
			&m.GiftDate,
			&m.Notes,
			&m.GiftType,
			&m.Amount,
			&m.Currency,
			&m.ItemName,
			&m.Quantity,
			&m.Unit,
			&m.EstimatedValue,
			&m.AttachmentKey,
			&m.AttachmentName,
			&m.AttachmentType,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan gift record row", err)
		}
		records = append(records, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating gift record rows", err)
	}

	return mapping.ToDomainGiftRecordSlice(records), nil
}

func queueGiftInsert(batch *pgx.Batch, m models.GiftRecord) {
	batch.Queue(giftInsertQuery,
		m.GiftID,
		m.GroupID,
		m.GiftbookID,
		m.UserID,
		m.CounterpartyName,
		m.GiftDate,
		m.Notes,
		m.GiftType,
		m.Amount,
		m.Currency,
		m.ItemName,
		m.Quantity,
		m.Unit,
		m.EstimatedValue,
		m.AttachmentKey,
		m.AttachmentName,
		m.AttachmentType,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
}
