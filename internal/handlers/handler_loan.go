package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gastrodia/homeledger/internal/apperrors"
	portssvc "github.com/gastrodia/homeledger/internal/core/ports/services"
	"github.com/gastrodia/homeledger/internal/dto"
	"github.com/gastrodia/homeledger/internal/middleware"
)

// loanHandler handles HTTP requests related to loans and repayments.
type loanHandler struct {
	loanService portssvc.LoanSvcFacade
}

// newLoanHandler creates a new loanHandler.
func newLoanHandler(loanService portssvc.LoanSvcFacade) *loanHandler {
	return &loanHandler{
		loanService: loanService,
	}
}

// registerLoanRoutes registers the loan and repayment routes.
func registerLoanRoutes(group *gin.RouterGroup, loanService portssvc.LoanSvcFacade) {
	h := newLoanHandler(loanService)

	loans := group.Group("/loans")
	{
		loans.POST("", h.createLoan)
		loans.GET("", h.listLoans)
		loans.PATCH("/:loanID", h.updateLoan)
		loans.DELETE("/:loanID", h.deleteLoan)
		loans.POST("/:loanID/repayments", h.addRepayment)
	}

	repayments := group.Group("/repayments")
	{
		repayments.PATCH("/:repaymentID", h.updateRepayment)
		repayments.DELETE("/:repaymentID", h.deleteRepayment)
	}
}

// createLoan godoc
// @Summary Record a new loan
// @Description Creates a loan with either a money amount or an item quantity subject
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   loan body dto.CreateLoanRequest true "Loan details"
// @Success 201 {object} dto.LoanResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /loans [post]
func (h *loanHandler) createLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createLoan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	loan, err := h.loanService.CreateLoan(c.Request.Context(), userID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create loan")
		return
	}

	c.JSON(http.StatusCreated, dto.ToLoanResponse(loan))
}

// listLoans godoc
// @Summary List loans with their settlement status
// @Description Returns the derived aggregate view (repaid totals, remaining, status) for each loan, cursor-paginated
// @Tags loans
// @Produce  json
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Cursor token from a previous page"
// @Success 200 {object} dto.ListLoansResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /loans [get]
func (h *loanHandler) listLoans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListLoansParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listLoans", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.loanService.ListLoans(c.Request.Context(), userID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list loans")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateLoan godoc
// @Summary Update a loan
// @Description Partially updates a loan; the subject type is locked once repayments exist
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Param   loan body dto.UpdateLoanRequest true "Fields to change"
// @Success 200 {object} dto.LoanResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Loan not found"
// @Router /loans/{loanID} [patch]
func (h *loanHandler) updateLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("loanID")

	var req dto.UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for updateLoan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	loan, err := h.loanService.UpdateLoan(c.Request.Context(), userID, loanID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update loan")
		return
	}

	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// deleteLoan godoc
// @Summary Delete a loan and its repayment history
// @Description Removes the whole cluster; attachment blobs are deleted first and a blob failure aborts the operation
// @Tags loans
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Success 204
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 502 {object} map[string]string "Attachment storage failure"
// @Router /loans/{loanID} [delete]
func (h *loanHandler) deleteLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("loanID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.loanService.DeleteLoan(c.Request.Context(), userID, loanID); err != nil {
		respondWithError(c, logger, err, "Failed to delete loan")
		return
	}

	c.Status(http.StatusNoContent)
}

// addRepayment godoc
// @Summary Record a repayment against a loan
// @Description The honored value field (amount or quantity) follows the loan's subject type
// @Tags repayments
// @Accept  json
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Param   repayment body dto.CreateRepaymentRequest true "Repayment details"
// @Success 201 {object} dto.RepaymentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Loan not found"
// @Router /loans/{loanID}/repayments [post]
func (h *loanHandler) addRepayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("loanID")

	var req dto.CreateRepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for addRepayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	repayment, err := h.loanService.AddRepayment(c.Request.Context(), userID, loanID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to add repayment")
		return
	}

	c.JSON(http.StatusCreated, dto.ToRepaymentResponse(repayment))
}

// updateRepayment godoc
// @Summary Update a repayment
// @Tags repayments
// @Accept  json
// @Produce  json
// @Param   repaymentID path string true "Repayment ID"
// @Param   repayment body dto.UpdateRepaymentRequest true "Fields to change"
// @Success 200 {object} dto.RepaymentResponse
// @Failure 404 {object} map[string]string "Repayment not found"
// @Router /repayments/{repaymentID} [patch]
func (h *loanHandler) updateRepayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	repaymentID := c.Param("repaymentID")

	var req dto.UpdateRepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for updateRepayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	repayment, err := h.loanService.UpdateRepayment(c.Request.Context(), userID, repaymentID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update repayment")
		return
	}

	c.JSON(http.StatusOK, dto.ToRepaymentResponse(repayment))
}

// deleteRepayment godoc
// @Summary Delete a repayment
// @Description The loan's status is re-derived on the next read and may move backward
// @Tags repayments
// @Produce  json
// @Param   repaymentID path string true "Repayment ID"
// @Success 204
// @Failure 404 {object} map[string]string "Repayment not found"
// @Router /repayments/{repaymentID} [delete]
func (h *loanHandler) deleteRepayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	repaymentID := c.Param("repaymentID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.loanService.DeleteRepayment(c.Request.Context(), userID, repaymentID); err != nil {
		respondWithError(c, logger, err, "Failed to delete repayment")
		return
	}

	c.Status(http.StatusNoContent)
}

// respondWithError maps service errors onto HTTP responses.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Duplicate resource", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDependency):
		logger.Error("Dependency failure", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Attachment storage unavailable"})
	default:
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMsg})
	}
}
