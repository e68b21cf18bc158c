package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gastrodia/homeledger/internal/apperrors"
	"github.com/gastrodia/homeledger/internal/core/domain"
	portsrepo "github.com/gastrodia/homeledger/internal/core/ports/repositories"
	"github.com/gastrodia/homeledger/internal/models"
	"github.com/gastrodia/homeledger/internal/utils/mapping"
	"github.com/gastrodia/homeledger/internal/utils/pagination"
)

type PgxLoanRepository struct {
	BaseRepository
}

// newPgxLoanRepository creates a new repository for loan and repayment data.
func newPgxLoanRepository(pool *pgxpool.Pool) portsrepo.LoanRepositoryFacade {
	return &PgxLoanRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxLoanRepository implements portsrepo.LoanRepositoryFacade
var _ portsrepo.LoanRepositoryFacade = (*PgxLoanRepository)(nil)

const loanColumns = `loan_id, user_id, direction, subject_type, counterparty_name,
	       amount, item_name, item_quantity, item_unit, occurred_at, notes,
	       attachment_key, attachment_name, attachment_type,
	       created_at, created_by, last_updated_at, last_updated_by`

const repaymentColumns = `repayment_id, loan_id, repaid_amount, repaid_quantity, repaid_at, notes,
	       attachment_key, attachment_name, attachment_type,
	       created_at, created_by, last_updated_at, last_updated_by`

// SaveLoan inserts a single loan row.
func (r *PgxLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan) error {
	modelLoan := mapping.ToModelLoan(loan)
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelLoan.LoanID,
		modelLoan.UserID,
		modelLoan.Direction,
		modelLoan.SubjectType,
		modelLoan.CounterpartyName,
		modelLoan.Amount,
		modelLoan.ItemName,
		modelLoan.ItemQuantity,
		modelLoan.ItemUnit,
		modelLoan.OccurredAt,
		modelLoan.Notes,
		modelLoan.AttachmentKey,
		modelLoan.AttachmentName,
		modelLoan.AttachmentType,
		modelLoan.CreatedAt,
		modelLoan.CreatedBy,
		modelLoan.LastUpdatedAt,
		modelLoan.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert loan "+modelLoan.LoanID, err)
	}
	return nil
}

// FindLoanByID retrieves a loan by its ID, scoped to the owning user.
func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string, userID string) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE loan_id = $1 AND user_id = $2;
	`
	modelLoan, err := scanLoanRow(r.Pool.QueryRow(ctx, query, loanID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find loan by ID "+loanID, err)
	}

	domainLoan := mapping.ToDomainLoan(*modelLoan)
	return &domainLoan, nil
}

// ListLoanAggregates retrieves a paginated list of loans with their repayment
// totals folded in by a LEFT JOIN, so the settlement status can be derived
// without a second query per loan. Ordering is (occurred_at DESC,
// created_at DESC) with token-based pagination.
func (r *PgxLoanRepository) ListLoanAggregates(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.LoanAggregate, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT l.loan_id, l.user_id, l.direction, l.subject_type, l.counterparty_name,
		       l.amount, l.item_name, l.item_quantity, l.item_unit, l.occurred_at, l.notes,
		       l.attachment_key, l.attachment_name, l.attachment_type,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by,
		       COALESCE(SUM(r.repaid_amount), 0) AS repaid_amount_total,
		       COALESCE(SUM(r.repaid_quantity), 0) AS repaid_quantity_total,
		       COUNT(r.repayment_id) AS repayment_count
		FROM loans l
		LEFT JOIN loan_repayments r ON r.loan_id = l.loan_id
		WHERE l.user_id = $1
	`
	groupByClause := `GROUP BY l.loan_id`
	orderByClause := `ORDER BY l.occurred_at DESC, l.created_at DESC`

	args := []interface{}{userID}
	cursorClause := ""
	if nextToken != nil && *nextToken != "" {
		lastOccurredAt, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		cursorClause = `AND (l.occurred_at, l.created_at) < ($2, $3)`
		args = append(args, lastOccurredAt, lastCreatedAt)
	}

	query := baseQuery + " " + cursorClause + " " + groupByClause + " " + orderByClause +
		" LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query loans for user "+userID, err)
	}
	defer rows.Close()

	withTotals := make([]models.LoanWithTotals, 0, fetchLimit)
	for rows.Next() {
		var l models.LoanWithTotals
		err := rows.Scan(
			&l.LoanID,
			&l.UserID,
			&l.Direction,
			&l.SubjectType,
			&l.CounterpartyName,
			&l.Amount,
			&l.ItemName,
			&l.ItemQuantity,
			&l.ItemUnit,
			&l.OccurredAt,
			&l.Notes,
			&l.AttachmentKey,
			&l.AttachmentName,
			&l.AttachmentType,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
			&l.RepaidAmountTotal,
			&l.RepaidQuantityTotal,
			&l.RepaymentCount,
		)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan loan row for user "+userID, err)
		}
		withTotals = append(withTotals, l)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating loan rows for user "+userID, err)
	}

	var nextTokenVal *string
	if len(withTotals) > limit {
		last := withTotals[limit-1]
		token := pagination.EncodeToken(last.OccurredAt, last.CreatedAt)
		nextTokenVal = &token
		withTotals = withTotals[:limit]
	}

	aggregates := make([]domain.LoanAggregate, len(withTotals))
	for i, l := range withTotals {
		domainLoan := mapping.ToDomainLoan(l.Loan)
		repaidTotal := l.RepaidAmountTotal
		if domainLoan.SubjectType == domain.SubjectItem {
			repaidTotal = l.RepaidQuantityTotal
		}
		aggregates[i] = domain.NewLoanAggregate(domainLoan, repaidTotal, l.RepaymentCount)
	}
	return aggregates, nextTokenVal, nil
}

// UpdateLoan persists the full state of a loan row. The attachment columns
// are included: the service layer has already resolved the tri-state patch.
func (r *PgxLoanRepository) UpdateLoan(ctx context.Context, loan domain.Loan) error {
	modelLoan := mapping.ToModelLoan(loan)
	query := `
		UPDATE loans
		SET direction = $3, subject_type = $4, counterparty_name = $5,
		    amount = $6, item_name = $7, item_quantity = $8, item_unit = $9,
		    occurred_at = $10, notes = $11,
		    attachment_key = $12, attachment_name = $13, attachment_type = $14,
		    last_updated_at = $15, last_updated_by = $16
		WHERE loan_id = $1 AND user_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		modelLoan.LoanID,
		modelLoan.UserID,
		modelLoan.Direction,
		modelLoan.SubjectType,
		modelLoan.CounterpartyName,
		modelLoan.Amount,
		modelLoan.ItemName,
		modelLoan.ItemQuantity,
		modelLoan.ItemUnit,
		modelLoan.OccurredAt,
		modelLoan.Notes,
		modelLoan.AttachmentKey,
		modelLoan.AttachmentName,
		modelLoan.AttachmentType,
		modelLoan.LastUpdatedAt,
		modelLoan.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update loan "+modelLoan.LoanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteLoan removes the loan row; repayment rows cascade via foreign key.
func (r *PgxLoanRepository) DeleteLoan(ctx context.Context, loanID string, userID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM loans WHERE loan_id = $1 AND user_id = $2;`, loanID, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete loan "+loanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountRepayments returns the number of repayment rows of a loan.
func (r *PgxLoanRepository) CountRepayments(ctx context.Context, loanID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM loan_repayments WHERE loan_id = $1;`, loanID).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count repayments for loan "+loanID, err)
	}
	return count, nil
}

// ListRepaymentsByLoanID retrieves all repayment rows of a loan in event order.
func (r *PgxLoanRepository) ListRepaymentsByLoanID(ctx context.Context, loanID string, userID string) ([]domain.LoanRepayment, error) {
	query := `
		SELECT r.repayment_id, r.loan_id, r.repaid_amount, r.repaid_quantity, r.repaid_at, r.notes,
		       r.attachment_key, r.attachment_name, r.attachment_type,
		       r.created_at, r.created_by, r.last_updated_at, r.last_updated_by
		FROM loan_repayments r
		JOIN loans l ON l.loan_id = r.loan_id
		WHERE r.loan_id = $1 AND l.user_id = $2
		ORDER BY r.repaid_at, r.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, loanID, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query repayments for loan "+loanID, err)
	}
	defer rows.Close()

	repayments := []models.LoanRepayment{}
	for rows.Next() {
		m, err := scanRepayment(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan repayment row for loan "+loanID, err)
		}
		repayments = append(repayments, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating repayment rows for loan "+loanID, err)
	}

	return mapping.ToDomainLoanRepaymentSlice(repayments), nil
}

// SaveRepayment inserts a single repayment row.
func (r *PgxLoanRepository) SaveRepayment(ctx context.Context, repayment domain.LoanRepayment) error {
	m := mapping.ToModelLoanRepayment(repayment)
	query := `
		INSERT INTO loan_repayments (` + repaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RepaymentID,
		m.LoanID,
		m.RepaidAmount,
		m.RepaidQuantity,
		m.RepaidAt,
		m.Notes,
		m.AttachmentKey,
		m.AttachmentName,
		m.AttachmentType,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert repayment "+m.RepaymentID, err)
	}
	return nil
}

// FindRepaymentByID retrieves a repayment by its ID, scoped through the parent
// loan to the owning user.
func (r *PgxLoanRepository) FindRepaymentByID(ctx context.Context, repaymentID string, userID string) (*domain.LoanRepayment, error) {
	query := `
		SELECT r.repayment_id, r.loan_id, r.repaid_amount, r.repaid_quantity, r.repaid_at, r.notes,
		       r.attachment_key, r.attachment_name, r.attachment_type,
		       r.created_at, r.created_by, r.last_updated_at, r.last_updated_by
		FROM loan_repayments r
		JOIN loans l ON l.loan_id = r.loan_id
		WHERE r.repayment_id = $1 AND l.user_id = $2;
	`
	m, err := scanRepayment(r.Pool.QueryRow(ctx, query, repaymentID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find repayment by ID "+repaymentID, err)
	}

	domainRepayment := mapping.ToDomainLoanRepayment(*m)
	return &domainRepayment, nil
}

// UpdateRepayment persists the full state of a repayment row.
func (r *PgxLoanRepository) UpdateRepayment(ctx context.Context, repayment domain.LoanRepayment) error {
	m := mapping.ToModelLoanRepayment(repayment)
	query := `
		UPDATE loan_repayments
		SET repaid_amount = $2, repaid_quantity = $3, repaid_at = $4, notes = $5,
		    attachment_key = $6, attachment_name = $7, attachment_type = $8,
		    last_updated_at = $9, last_updated_by = $10
		WHERE repayment_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.RepaymentID,
		m.RepaidAmount,
		m.RepaidQuantity,
		m.RepaidAt,
		m.Notes,
		m.AttachmentKey,
		m.AttachmentName,
		m.AttachmentType,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update repayment "+m.RepaymentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteRepayment removes one repayment row, scoped through the parent loan.
func (r *PgxLoanRepository) DeleteRepayment(ctx context.Context, repaymentID string, userID string) error {
	query := `
		DELETE FROM loan_repayments r
		USING loans l
		WHERE l.loan_id = r.loan_id AND r.repayment_id = $1 AND l.user_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, repaymentID, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete repayment "+repaymentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanLoanRow(row pgx.Row) (*models.Loan, error) {
	var l models.Loan
	err := row.Scan(
		&l.LoanID,
		&l.UserID,
		&l.Direction,
		&l.SubjectType,
		&l.CounterpartyName,
		&l.Amount,
		&l.ItemName,
		&l.ItemQuantity,
		&l.ItemUnit,
		&l.OccurredAt,
		&l.Notes,
		&l.AttachmentKey,
		&l.AttachmentName,
		&l.AttachmentType,
		&l.CreatedAt,
		&l.CreatedBy,
		&l.LastUpdatedAt,
		&l.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func scanRepayment(row pgx.Row) (*models.LoanRepayment, error) {
	var m models.LoanRepayment
	err := row.Scan(
		&m.RepaymentID,
		&m.LoanID,
		&m.RepaidAmount,
		&m.RepaidQuantity,
		&m.RepaidAt,
		&m.Notes,
		&m.AttachmentKey,
		&m.AttachmentName,
		&m.AttachmentType,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
