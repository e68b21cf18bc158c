package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gastrodia/homeledger/internal/apperrors"
	"github.com/gastrodia/homeledger/internal/core/domain"
	portssvc "github.com/gastrodia/homeledger/internal/core/ports/services"
	"github.com/gastrodia/homeledger/internal/dto"
	"github.com/gastrodia/homeledger/internal/handlers"
	"github.com/gastrodia/homeledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testJWTSecret = "test-secret-key-that-is-long-enough"

// --- Mock LoanService ---
type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, userID string, req dto.CreateLoanRequest) (*domain.Loan, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) ListLoans(ctx context.Context, userID string, params dto.ListLoansParams) (*dto.ListLoansResponse, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListLoansResponse), args.Error(1)
}
func (m *MockLoanService) UpdateLoan(ctx context.Context, userID string, loanID string, req dto.UpdateLoanRequest) (*domain.Loan, error) {
	args := m.Called(ctx, userID, loanID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) DeleteLoan(ctx context.Context, userID string, loanID string) error {
	args := m.Called(ctx, userID, loanID)
	return args.Error(0)
}
func (m *MockLoanService) AddRepayment(ctx context.Context, userID string, loanID string, req dto.CreateRepaymentRequest) (*domain.LoanRepayment, error) {
	args := m.Called(ctx, userID, loanID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanRepayment), args.Error(1)
}
func (m *MockLoanService) UpdateRepayment(ctx context.Context, userID string, repaymentID string, req dto.UpdateRepaymentRequest) (*domain.LoanRepayment, error) {
	args := m.Called(ctx, userID, repaymentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanRepayment), args.Error(1)
}
func (m *MockLoanService) DeleteRepayment(ctx context.Context, userID string, repaymentID string) error {
	args := m.Called(ctx, userID, repaymentID)
	return args.Error(0)
}

var _ portssvc.LoanSvcFacade = (*MockLoanService)(nil)

// --- Mock GiftService ---
type MockGiftService struct {
	mock.Mock
}

func (m *MockGiftService) CreateGroup(ctx context.Context, userID string, req dto.CreateGiftGroupRequest) (*domain.GiftRecordGroup, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GiftRecordGroup), args.Error(1)
}
func (m *MockGiftService) GetGroup(ctx context.Context, userID string, groupID string) (*domain.GiftRecordGroup, error) {
	args := m.Called(ctx, userID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GiftRecordGroup), args.Error(1)
}
func (m *MockGiftService) UpdateGroup(ctx context.Context, userID string, groupID string, req dto.UpdateGiftGroupRequest) (*domain.GiftRecordGroup, error) {
	args := m.Called(ctx, userID, groupID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GiftRecordGroup), args.Error(1)
}
func (m *MockGiftService) DeleteGroup(ctx context.Context, userID string, groupID string) error {
	args := m.Called(ctx, userID, groupID)
	return args.Error(0)
}
func (m *MockGiftService) ListGroups(ctx context.Context, userID string, params dto.ListGiftGroupsParams) (*dto.ListGiftGroupsResponse, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListGiftGroupsResponse), args.Error(1)
}

var _ portssvc.GiftSvcFacade = (*MockGiftService)(nil)

// --- Mock BlobStore ---
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) PresignUploadURL(ctx context.Context, contentType string) (string, string, error) {
	args := m.Called(ctx, contentType)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var _ portssvc.BlobStore = (*MockBlobStore)(nil)

// generateTestToken creates a dummy JWT for testing.
func generateTestToken(t interface{ FailNow() }, userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "homeledger-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.FailNow()
	}
	return signed
}

// newTestRouter wires a gin engine with the real route registration and auth
// middleware around mocked services.
func newTestRouter(loan *MockLoanService, gift *MockGiftService, blob *MockBlobStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := &config.Config{JWTSecret: testJWTSecret}
	services := &portssvc.ServiceContainer{Loan: loan, Gift: gift, Blob: blob}
	handlers.RegisterRoutes(r, cfg, services)
	return r
}

// --- Test Suite ---
type LoanHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockLoanService *MockLoanService
	userID          string
	token           string
}

func (suite *LoanHandlerTestSuite) SetupTest() {
	suite.mockLoanService = new(MockLoanService)
	suite.router = newTestRouter(suite.mockLoanService, new(MockGiftService), new(MockBlobStore))
	suite.userID = uuid.NewString()
	suite.token = generateTestToken(suite.T(), suite.userID)
}

func (suite *LoanHandlerTestSuite) doJSON(method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *LoanHandlerTestSuite) TestCreateLoan_Success() {
	amount := decimal.NewFromInt(500)
	createdLoan := &domain.Loan{
		LoanID:           uuid.NewString(),
		UserID:           suite.userID,
		Direction:        domain.Lent,
		SubjectType:      domain.SubjectMoney,
		CounterpartyName: "老王",
		Amount:           &amount,
		OccurredAt:       time.Now().UTC(),
	}

	suite.mockLoanService.On("CreateLoan",
		mock.Anything,
		suite.userID,
		mock.MatchedBy(func(req dto.CreateLoanRequest) bool {
			return req.CounterpartyName == "老王" && req.Direction == domain.Lent
		}),
	).Return(createdLoan, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/loans", gin.H{
		"direction":        "LENT",
		"subjectType":      "MONEY",
		"counterpartyName": "老王",
		"occurredAt":       time.Now().UTC().Format(time.RFC3339),
		"amount":           "500",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.LoanResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(createdLoan.LoanID, resp.LoanID)
	suite.mockLoanService.AssertExpectations(suite.T())
}

func (suite *LoanHandlerTestSuite) TestCreateLoan_ValidationErrorReturns400() {
	suite.mockLoanService.On("CreateLoan", mock.Anything, suite.userID, mock.Anything).
		Return(nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/loans", gin.H{
		"direction":        "OWED",
		"subjectType":      "MONEY",
		"counterpartyName": "老王",
		"occurredAt":       time.Now().UTC().Format(time.RFC3339),
		"amount":           "-1",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "amount must be positive")
}

func (suite *LoanHandlerTestSuite) TestCreateLoan_MissingTokenReturns401() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/loans", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLoanService.AssertNotCalled(suite.T(), "CreateLoan")
}

func (suite *LoanHandlerTestSuite) TestListLoans_PassesQueryParams() {
	expected := &dto.ListLoansResponse{Loans: []dto.LoanAggregateResponse{}}
	suite.mockLoanService.On("ListLoans",
		mock.Anything,
		suite.userID,
		mock.MatchedBy(func(p dto.ListLoansParams) bool {
			return p.Limit == 5
		}),
	).Return(expected, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/loans?limit=5", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockLoanService.AssertExpectations(suite.T())
}

func (suite *LoanHandlerTestSuite) TestUpdateLoan_NotFoundReturns404() {
	loanID := uuid.NewString()
	suite.mockLoanService.On("UpdateLoan", mock.Anything, suite.userID, loanID, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doJSON(http.MethodPatch, "/api/v1/loans/"+loanID, gin.H{"notes": "追记"})

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *LoanHandlerTestSuite) TestDeleteLoan_BlobFailureReturns502() {
	loanID := uuid.NewString()
	suite.mockLoanService.On("DeleteLoan", mock.Anything, suite.userID, loanID).
		Return(fmt.Errorf("%w: failed to delete attachment k: boom", apperrors.ErrDependency)).Once()

	w := suite.doJSON(http.MethodDelete, "/api/v1/loans/"+loanID, nil)

	suite.Equal(http.StatusBadGateway, w.Code)
}

func (suite *LoanHandlerTestSuite) TestDeleteLoan_Success() {
	loanID := uuid.NewString()
	suite.mockLoanService.On("DeleteLoan", mock.Anything, suite.userID, loanID).
		Return(nil).Once()

	w := suite.doJSON(http.MethodDelete, "/api/v1/loans/"+loanID, nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *LoanHandlerTestSuite) TestAddRepayment_Success() {
	loanID := uuid.NewString()
	amount := decimal.NewFromInt(200)
	repayment := &domain.LoanRepayment{
		RepaymentID:  uuid.NewString(),
		LoanID:       loanID,
		RepaidAmount: &amount,
		RepaidAt:     time.Now().UTC(),
	}
	suite.mockLoanService.On("AddRepayment", mock.Anything, suite.userID, loanID, mock.Anything).
		Return(repayment, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/loans/"+loanID+"/repayments", gin.H{
		"repaidAt":     time.Now().UTC().Format(time.RFC3339),
		"repaidAmount": "200",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.RepaymentResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(repayment.RepaymentID, resp.RepaymentID)
}

func (suite *LoanHandlerTestSuite) TestDeleteRepayment_Success() {
	repaymentID := uuid.NewString()
	suite.mockLoanService.On("DeleteRepayment", mock.Anything, suite.userID, repaymentID).
		Return(nil).Once()

	w := suite.doJSON(http.MethodDelete, "/api/v1/repayments/"+repaymentID, nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func TestLoanHandler(t *testing.T) {
	suite.Run(t, new(LoanHandlerTestSuite))
}
