package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gastrodia/homeledger/internal/apperrors"
	"github.com/gastrodia/homeledger/internal/core/domain"
	"github.com/gastrodia/homeledger/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type GiftHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockGiftService *MockGiftService
	mockBlobStore   *MockBlobStore
	userID          string
	token           string
}

func (suite *GiftHandlerTestSuite) SetupTest() {
	suite.mockGiftService = new(MockGiftService)
	suite.mockBlobStore = new(MockBlobStore)
	suite.router = newTestRouter(new(MockLoanService), suite.mockGiftService, suite.mockBlobStore)
	suite.userID = uuid.NewString()
	suite.token = generateTestToken(suite.T(), suite.userID)
}

func (suite *GiftHandlerTestSuite) doJSON(method, url string, body any) *httptest.ResponseRecorder {
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

func (suite *GiftHandlerTestSuite) sampleGroup() *domain.GiftRecordGroup {
	amount := decimal.NewFromInt(800)
	currency := "CNY"
	cash := domain.GiftRecord{
		GiftID:   uuid.NewString(),
		GiftType: domain.GiftCash,
		Amount:   &amount,
		Currency: &currency,
	}
	return &domain.GiftRecordGroup{
		GroupID:          uuid.NewString(),
		GiftbookID:       uuid.NewString(),
		CounterpartyName: "李家",
		GiftDate:         time.Now().UTC(),
		Cash:             &cash,
		Items:            []domain.GiftRecord{},
	}
}

func (suite *GiftHandlerTestSuite) TestCreateGroup_Success() {
	group := suite.sampleGroup()
	suite.mockGiftService.On("CreateGroup",
		mock.Anything,
		suite.userID,
		mock.MatchedBy(func(req dto.CreateGiftGroupRequest) bool {
			return req.HasCash && req.CounterpartyName == "李家"
		}),
	).Return(group, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/gift-groups", gin.H{
		"giftbookID":       group.GiftbookID,
		"counterpartyName": "李家",
		"giftDate":         time.Now().UTC().Format(time.RFC3339),
		"hasCash":          true,
		"cash":             gin.H{"amount": "800", "currency": "CNY"},
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.GiftGroupResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(group.GroupID, resp.GroupID)
	suite.Require().NotNil(resp.CashAmount)
	suite.True(resp.CashAmount.Equal(decimal.NewFromInt(800)))
	suite.mockGiftService.AssertExpectations(suite.T())
}

func (suite *GiftHandlerTestSuite) TestCreateGroup_EmptyReturns400() {
	suite.mockGiftService.On("CreateGroup", mock.Anything, suite.userID, mock.Anything).
		Return(nil, fmt.Errorf("%w: a gift group needs cash or at least one item", apperrors.ErrValidation)).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/gift-groups", gin.H{
		"giftbookID":       uuid.NewString(),
		"counterpartyName": "李家",
		"giftDate":         time.Now().UTC().Format(time.RFC3339),
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "cash or at least one item")
}

func (suite *GiftHandlerTestSuite) TestGetGroup_NotFoundReturns404() {
	groupID := uuid.NewString()
	suite.mockGiftService.On("GetGroup", mock.Anything, suite.userID, groupID).
		Return(nil, apperrors.NewNotFoundError("gift group not found")).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/gift-groups/"+groupID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *GiftHandlerTestSuite) TestUpdateGroup_Success() {
	group := suite.sampleGroup()
	suite.mockGiftService.On("UpdateGroup", mock.Anything, suite.userID, group.GroupID, mock.Anything).
		Return(group, nil).Once()

	w := suite.doJSON(http.MethodPatch, "/api/v1/gift-groups/"+group.GroupID, gin.H{
		"counterpartyName": "李家",
		"giftDate":         time.Now().UTC().Format(time.RFC3339),
		"hasCash":          true,
		"cash":             gin.H{"amount": "800", "currency": "CNY"},
	})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.GiftGroupResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(group.GroupID, resp.GroupID)
}

func (suite *GiftHandlerTestSuite) TestUpdateGroup_EmptiedGroupReturns204() {
	groupID := uuid.NewString()
	// Turning off both cash and items removes the group; the service
	// reports that with a nil group and no error.
	suite.mockGiftService.On("UpdateGroup", mock.Anything, suite.userID, groupID, mock.Anything).
		Return(nil, nil).Once()

	w := suite.doJSON(http.MethodPatch, "/api/v1/gift-groups/"+groupID, gin.H{
		"counterpartyName": "李家",
		"giftDate":         time.Now().UTC().Format(time.RFC3339),
		"hasCash":          false,
		"hasItems":         false,
	})

	suite.Equal(http.StatusNoContent, w.Code)
	suite.Empty(w.Body.String())
}

func (suite *GiftHandlerTestSuite) TestListGroups_RequiresGiftbookID() {
	w := suite.doJSON(http.MethodGet, "/api/v1/gift-groups", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockGiftService.AssertNotCalled(suite.T(), "ListGroups")
}

func (suite *GiftHandlerTestSuite) TestListGroups_PassesFilters() {
	giftbookID := uuid.NewString()
	expected := &dto.ListGiftGroupsResponse{Groups: []dto.GiftGroupListItem{}}
	suite.mockGiftService.On("ListGroups",
		mock.Anything,
		suite.userID,
		mock.MatchedBy(func(p dto.ListGiftGroupsParams) bool {
			return p.GiftbookID == giftbookID && p.HasCash != nil && *p.HasCash
		}),
	).Return(expected, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/gift-groups?giftbookID="+giftbookID+"&hasCash=true", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockGiftService.AssertExpectations(suite.T())
}

func (suite *GiftHandlerTestSuite) TestDeleteGroup_Success() {
	groupID := uuid.NewString()
	suite.mockGiftService.On("DeleteGroup", mock.Anything, suite.userID, groupID).
		Return(nil).Once()

	w := suite.doJSON(http.MethodDelete, "/api/v1/gift-groups/"+groupID, nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *GiftHandlerTestSuite) TestPresignAttachment_Success() {
	suite.mockBlobStore.On("PresignUploadURL", mock.Anything, "image/jpeg").
		Return("users/2026/8/31/abc", "https://blob.example/put", nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/attachments/presign", gin.H{
		"contentType": "image/jpeg",
	})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.PresignAttachmentResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("users/2026/8/31/abc", resp.Key)
	suite.Equal("https://blob.example/put", resp.UploadURL)
}

func (suite *GiftHandlerTestSuite) TestPresignAttachment_StoreFailureReturns502() {
	suite.mockBlobStore.On("PresignUploadURL", mock.Anything, "application/pdf").
		Return("", "", fmt.Errorf("connection refused")).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/attachments/presign", gin.H{
		"contentType": "application/pdf",
	})

	suite.Equal(http.StatusBadGateway, w.Code)
}

func TestGiftHandler(t *testing.T) {
	suite.Run(t, new(GiftHandlerTestSuite))
}
