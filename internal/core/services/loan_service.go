package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gastrodia/homeledger/internal/apperrors"
	"github.com/gastrodia/homeledger/internal/core/domain"
	portsrepo "github.com/gastrodia/homeledger/internal/core/ports/repositories"
	portssvc "github.com/gastrodia/homeledger/internal/core/ports/services"
	"github.com/gastrodia/homeledger/internal/dto"
	"github.com/gastrodia/homeledger/internal/middleware"
)

var (
	ErrSubjectTypeLocked  = errors.New("cannot change subject type after repayments exist")
	ErrIncompleteItemData = errors.New("item loans require item name, unit and a positive quantity")
)

// loanService provides loan and repayment operations with the derived
// settlement aggregate.
type loanService struct {
	loanRepo portsrepo.LoanRepositoryFacade
	blob     portssvc.BlobStore
}

// NewLoanService creates a new LoanService.
func NewLoanService(loanRepo portsrepo.LoanRepositoryFacade, blob portssvc.BlobStore) portssvc.LoanSvcFacade {
	return &loanService{
		loanRepo: loanRepo,
		blob:     blob,
	}
}

// Ensure loanService implements the portssvc.LoanSvcFacade interface
var _ portssvc.LoanSvcFacade = (*loanService)(nil)

// CreateLoan validates the subject value and writes exactly one loan row with
// the inactive subject's fields nil.
func (s *loanService) CreateLoan(ctx context.Context, userID string, req dto.CreateLoanRequest) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	loan := domain.Loan{
		LoanID:           uuid.NewString(),
		UserID:           userID,
		Direction:        req.Direction,
		SubjectType:      req.SubjectType,
		CounterpartyName: req.CounterpartyName,
		OccurredAt:       req.OccurredAt,
		Notes:            req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	switch req.SubjectType {
	case domain.SubjectMoney:
		amount, err := normalizeAmount(req.Amount, "amount", rulePositive)
		if err != nil {
			return nil, err
		}
		loan.Amount = &amount
	case domain.SubjectItem:
		if req.ItemName == nil || *req.ItemName == "" || req.ItemUnit == nil || *req.ItemUnit == "" {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrIncompleteItemData)
		}
		quantity, err := normalizeAmount(req.ItemQuantity, "itemQuantity", rulePositive)
		if err != nil {
			return nil, err
		}
		loan.ItemName = req.ItemName
		loan.ItemQuantity = &quantity
		loan.ItemUnit = req.ItemUnit
	default:
		return nil, fmt.Errorf("%w: unknown subject type %q", apperrors.ErrValidation, req.SubjectType)
	}

	if req.AttachmentKey != nil && *req.AttachmentKey != "" {
		loan.Attachment = attachmentFromPointers(req.AttachmentKey, req.AttachmentName, req.AttachmentType)
	}

	if err := s.loanRepo.SaveLoan(ctx, loan); err != nil {
		logger.Error("Failed to save loan", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	logger.Info("Loan created successfully", slog.String("loan_id", loan.LoanID))
	return &loan, nil
}

// ListLoans returns the derived aggregate view for every loan of the user,
// cursor-paginated, ordered by (occurred_at desc, created_at desc).
func (s *loanService) ListLoans(ctx context.Context, userID string, params dto.ListLoansParams) (*dto.ListLoansResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20 // Default limit
	}

	aggregates, nextToken, err := s.loanRepo.ListLoanAggregates(ctx, userID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list loans from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve loans: %w", err)
	}

	responses := make([]dto.LoanAggregateResponse, len(aggregates))
	for i := range aggregates {
		responses[i] = dto.ToLoanAggregateResponse(&aggregates[i])
	}

	logger.Info("Loans listed successfully", "count", len(aggregates))
	return &dto.ListLoansResponse{Loans: responses, NextToken: nextToken}, nil
}

// UpdateLoan applies a partial update. Changing the subject type is rejected
// once any repayment exists; the surviving subject's fields are required in
// full and the other subject's fields are cleared.
func (s *loanService) UpdateLoan(ctx context.Context, userID string, loanID string, req dto.UpdateLoanRequest) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find loan for update", slog.String("error", err.Error()), slog.String("loan_id", loanID))
		}
		return nil, err
	}

	if req.SubjectType != nil && *req.SubjectType != loan.SubjectType {
		count, err := s.loanRepo.CountRepayments(ctx, loanID)
		if err != nil {
			logger.Error("Failed to count repayments", slog.String("error", err.Error()), slog.String("loan_id", loanID))
			return nil, fmt.Errorf("failed to count repayments: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrSubjectTypeLocked)
		}
		loan.SubjectType = *req.SubjectType
	}

	if req.Direction != nil {
		loan.Direction = *req.Direction
	}
	if req.CounterpartyName != nil {
		if *req.CounterpartyName == "" {
			return nil, fmt.Errorf("%w: counterpartyName must not be empty", apperrors.ErrValidation)
		}
		loan.CounterpartyName = *req.CounterpartyName
	}
	if req.OccurredAt != nil {
		loan.OccurredAt = *req.OccurredAt
	}
	if req.Notes != nil {
		loan.Notes = *req.Notes
	}

	switch loan.SubjectType {
	case domain.SubjectMoney:
		amountSrc := req.Amount
		if amountSrc == nil {
			amountSrc = loan.Amount
		}
		amount, err := normalizeAmount(amountSrc, "amount", rulePositive)
		if err != nil {
			return nil, err
		}
		loan.Amount = &amount
		// The inactive subject's fields are always nil.
		loan.ItemName = nil
		loan.ItemQuantity = nil
		loan.ItemUnit = nil
	case domain.SubjectItem:
		itemName := loan.ItemName
		if req.ItemName != nil {
			itemName = req.ItemName
		}
		itemUnit := loan.ItemUnit
		if req.ItemUnit != nil {
			itemUnit = req.ItemUnit
		}
		quantitySrc := req.ItemQuantity
		if quantitySrc == nil {
			quantitySrc = loan.ItemQuantity
		}
		if itemName == nil || *itemName == "" || itemUnit == nil || *itemUnit == "" || quantitySrc == nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrIncompleteItemData)
		}
		quantity, err := normalizeAmount(quantitySrc, "itemQuantity", rulePositive)
		if err != nil {
			return nil, err
		}
		loan.ItemName = itemName
		loan.ItemQuantity = &quantity
		loan.ItemUnit = itemUnit
		loan.Amount = nil
	}

	if req.AttachmentKey.Present {
		oldKey := loan.Attachment.Key
		if req.AttachmentKey.Cleared() {
			loan.Attachment = domain.Attachment{}
		} else {
			loan.Attachment = attachmentFromOptionals(req.AttachmentKey, req.AttachmentName, req.AttachmentType)
		}
		// A superseded blob is best-effort cleanup: the edit wins even if the
		// blob store fails.
		if oldKey != "" && oldKey != loan.Attachment.Key {
			if err := s.blob.Delete(ctx, oldKey); err != nil {
				logger.Warn("Failed to delete superseded attachment blob", slog.String("key", oldKey), slog.String("error", err.Error()))
			}
		}
	}

	loan.LastUpdatedAt = time.Now().UTC()
	loan.LastUpdatedBy = userID

	if err := s.loanRepo.UpdateLoan(ctx, *loan); err != nil {
		logger.Error("Failed to save loan update", slog.String("error", err.Error()), slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to save loan update: %w", err)
	}

	logger.Info("Loan updated successfully", slog.String("loan_id", loanID))
	return loan, nil
}

// DeleteLoan removes a loan and its repayment history. Every attachment blob
// referenced by the cluster is deleted first; a blob store failure aborts the
// whole operation so rows are never orphaned from their files.
func (s *loanService) DeleteLoan(ctx context.Context, userID string, loanID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID, userID)
	if err != nil {
		return err
	}

	repayments, err := s.loanRepo.ListRepaymentsByLoanID(ctx, loanID, userID)
	if err != nil {
		logger.Error("Failed to list repayments for loan delete", slog.String("error", err.Error()), slog.String("loan_id", loanID))
		return fmt.Errorf("failed to list repayments: %w", err)
	}

	keys := make([]string, 0, len(repayments)+1)
	if !loan.Attachment.IsZero() {
		keys = append(keys, loan.Attachment.Key)
	}
	for _, r := range repayments {
		if !r.Attachment.IsZero() {
			keys = append(keys, r.Attachment.Key)
		}
	}

	for _, key := range keys {
		if err := s.blob.Delete(ctx, key); err != nil {
			logger.Error("Failed to delete attachment blob, aborting loan delete", slog.String("key", key), slog.String("error", err.Error()))
			return fmt.Errorf("%w: failed to delete attachment %s: %v", apperrors.ErrDependency, key, err)
		}
	}

	if err := s.loanRepo.DeleteLoan(ctx, loanID, userID); err != nil {
		logger.Error("Failed to delete loan rows", slog.String("error", err.Error()), slog.String("loan_id", loanID))
		return fmt.Errorf("failed to delete loan: %w", err)
	}

	logger.Info("Loan deleted successfully", slog.String("loan_id", loanID), slog.Int("repayment_count", len(repayments)))
	return nil
}

// AddRepayment records one repayment event. The value field is selected by
// the loan's subject type, never by caller choice, so a money loan cannot
// accrue quantity repayments or vice versa.
func (s *loanService) AddRepayment(ctx context.Context, userID string, loanID string, req dto.CreateRepaymentRequest) (*domain.LoanRepayment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	repayment := domain.LoanRepayment{
		RepaymentID: uuid.NewString(),
		LoanID:      loan.LoanID,
		RepaidAt:    req.RepaidAt,
		Notes:       req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if loan.SubjectType == domain.SubjectMoney {
		amount, err := normalizeAmount(req.RepaidAmount, "repaidAmount", rulePositive)
		if err != nil {
			return nil, err
		}
		repayment.RepaidAmount = &amount
	} else {
		quantity, err := normalizeAmount(req.RepaidQuantity, "repaidQuantity", rulePositive)
		if err != nil {
			return nil, err
		}
		repayment.RepaidQuantity = &quantity
	}

	if req.AttachmentKey != nil && *req.AttachmentKey != "" {
		repayment.Attachment = attachmentFromPointers(req.AttachmentKey, req.AttachmentName, req.AttachmentType)
	}

	if err := s.loanRepo.SaveRepayment(ctx, repayment); err != nil {
		logger.Error("Failed to save repayment", slog.String("error", err.Error()), slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to save repayment: %w", err)
	}

	logger.Info("Repayment recorded", slog.String("repayment_id", repayment.RepaymentID), slog.String("loan_id", loanID))
	return &repayment, nil
}

// UpdateRepayment applies a partial update to one repayment row. The parent
// loan row is never touched; the aggregate is derived on the next read.
func (s *loanService) UpdateRepayment(ctx context.Context, userID string, repaymentID string, req dto.UpdateRepaymentRequest) (*domain.LoanRepayment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	repayment, err := s.loanRepo.FindRepaymentByID(ctx, repaymentID, userID)
	if err != nil {
		return nil, err
	}

	loan, err := s.loanRepo.FindLoanByID(ctx, repayment.LoanID, userID)
	if err != nil {
		return nil, err
	}

	if req.RepaidAt != nil {
		repayment.RepaidAt = *req.RepaidAt
	}
	if req.Notes != nil {
		repayment.Notes = *req.Notes
	}

	if loan.SubjectType == domain.SubjectMoney {
		if req.RepaidAmount != nil {
			amount, err := normalizeAmount(req.RepaidAmount, "repaidAmount", rulePositive)
			if err != nil {
				return nil, err
			}
			repayment.RepaidAmount = &amount
		}
	} else {
		if req.RepaidQuantity != nil {
			quantity, err := normalizeAmount(req.RepaidQuantity, "repaidQuantity", rulePositive)
			if err != nil {
				return nil, err
			}
			repayment.RepaidQuantity = &quantity
		}
	}

	if req.AttachmentKey.Present {
		oldKey := repayment.Attachment.Key
		if req.AttachmentKey.Cleared() {
			repayment.Attachment = domain.Attachment{}
		} else {
			repayment.Attachment = attachmentFromOptionals(req.AttachmentKey, req.AttachmentName, req.AttachmentType)
		}
		if oldKey != "" && oldKey != repayment.Attachment.Key {
			if err := s.blob.Delete(ctx, oldKey); err != nil {
				logger.Warn("Failed to delete superseded attachment blob", slog.String("key", oldKey), slog.String("error", err.Error()))
			}
		}
	}

	repayment.LastUpdatedAt = time.Now().UTC()
	repayment.LastUpdatedBy = userID

	if err := s.loanRepo.UpdateRepayment(ctx, *repayment); err != nil {
		logger.Error("Failed to save repayment update", slog.String("error", err.Error()), slog.String("repayment_id", repaymentID))
		return nil, fmt.Errorf("failed to save repayment update: %w", err)
	}

	logger.Info("Repayment updated successfully", slog.String("repayment_id", repaymentID))
	return repayment, nil
}

// DeleteRepayment removes a single repayment event. Its attachment blob is
// deleted first, aborting on failure, the same as loan deletion. The derived
// status legitimately moves backward on the next read.
func (s *loanService) DeleteRepayment(ctx context.Context, userID string, repaymentID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	repayment, err := s.loanRepo.FindRepaymentByID(ctx, repaymentID, userID)
	if err != nil {
		return err
	}

	if !repayment.Attachment.IsZero() {
		if err := s.blob.Delete(ctx, repayment.Attachment.Key); err != nil {
			logger.Error("Failed to delete attachment blob, aborting repayment delete", slog.String("key", repayment.Attachment.Key), slog.String("error", err.Error()))
			return fmt.Errorf("%w: failed to delete attachment %s: %v", apperrors.ErrDependency, repayment.Attachment.Key, err)
		}
	}

	if err := s.loanRepo.DeleteRepayment(ctx, repaymentID, userID); err != nil {
		logger.Error("Failed to delete repayment", slog.String("error", err.Error()), slog.String("repayment_id", repaymentID))
		return fmt.Errorf("failed to delete repayment: %w", err)
	}

	logger.Info("Repayment deleted successfully", slog.String("repayment_id", repaymentID))
	return nil
}

func attachmentFromPointers(key, name, typ *string) domain.Attachment {
	a := domain.Attachment{Key: *key}
	if name != nil {
		a.Name = *name
	}
	if typ != nil {
		a.Type = *typ
	}
	return a
}

func attachmentFromOptionals(key, name, typ dto.Optional[string]) domain.Attachment {
	a := domain.Attachment{}
	if key.Value != nil {
		a.Key = *key.Value
	}
	if name.Value != nil {
		a.Name = *name.Value
	}
	if typ.Value != nil {
		a.Type = *typ.Value
	}
	return a
}
