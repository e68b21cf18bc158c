package services

import (
	"context"

	"github.com/gastrodia/homeledger/internal/core/domain"
	"github.com/gastrodia/homeledger/internal/dto"
)

// GiftSvcFacade defines the gift record grouping engine's operations.
type GiftSvcFacade interface {
	CreateGroup(ctx context.Context, userID string, req dto.CreateGiftGroupRequest) (*domain.GiftRecordGroup, error)
	GetGroup(ctx context.Context, userID string, groupID string) (*domain.GiftRecordGroup, error)
	UpdateGroup(ctx context.Context, userID string, groupID string, req dto.UpdateGiftGroupRequest) (*domain.GiftRecordGroup, error)
	DeleteGroup(ctx context.Context, userID string, groupID string) error
	ListGroups(ctx context.Context, userID string, params dto.ListGiftGroupsParams) (*dto.ListGiftGroupsResponse, error)
}
