package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/gastrodia/homeledger/internal/core/ports/services"
	"github.com/gastrodia/homeledger/internal/dto"
	"github.com/gastrodia/homeledger/internal/middleware"
)

// giftHandler handles HTTP requests related to gift record groups.
type giftHandler struct {
	giftService portssvc.GiftSvcFacade
}

// newGiftHandler creates a new giftHandler.
func newGiftHandler(giftService portssvc.GiftSvcFacade) *giftHandler {
	return &giftHandler{
		giftService: giftService,
	}
}

// registerGiftGroupRoutes registers the gift group routes.
func registerGiftGroupRoutes(group *gin.RouterGroup, giftService portssvc.GiftSvcFacade) {
	h := newGiftHandler(giftService)

	groups := group.Group("/gift-groups")
	{
		groups.POST("", h.createGroup)
		groups.GET("", h.listGroups)
		groups.GET("/:groupID", h.getGroup)
		groups.PATCH("/:groupID", h.updateGroup)
		groups.DELETE("/:groupID", h.deleteGroup)
	}
}

// createGroup godoc
// @Summary Record a gift occasion
// @Description Creates a whole gift group (one optional cash line plus item lines) in one call
// @Tags gift-groups
// @Accept  json
// @Produce  json
// @Param   group body dto.CreateGiftGroupRequest true "Gift group details"
// @Success 201 {object} dto.GiftGroupResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /gift-groups [post]
func (h *giftHandler) createGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateGiftGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	group, err := h.giftService.CreateGroup(c.Request.Context(), userID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create gift group")
		return
	}

	c.JSON(http.StatusCreated, dto.ToGiftGroupResponse(group))
}

// listGroups godoc
// @Summary List gift groups of a giftbook
// @Description Returns per-group summaries (cash amount, item count and estimated total), filterable by content
// @Tags gift-groups
// @Produce  json
// @Param   giftbookID query string true "Giftbook ID"
// @Param   hasCash query bool false "Only groups with/without a cash line"
// @Param   hasItems query bool false "Only groups with/without item lines"
// @Param   giftType query string false "Legacy single-valued filter (CASH or ITEM), honored only when the flags are absent"
// @Success 200 {object} dto.ListGiftGroupsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Router /gift-groups [get]
func (h *giftHandler) listGroups(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListGiftGroupsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listGroups", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.giftService.ListGroups(c.Request.Context(), userID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list gift groups")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getGroup godoc
// @Summary Get one gift group
// @Description Reconstructs the group view; a legacy bare row id is accepted as group id
// @Tags gift-groups
// @Produce  json
// @Param   groupID path string true "Group ID (or legacy row ID)"
// @Success 200 {object} dto.GiftGroupResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Router /gift-groups/{groupID} [get]
func (h *giftHandler) getGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	group, err := h.giftService.GetGroup(c.Request.Context(), userID, groupID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to get gift group")
		return
	}

	c.JSON(http.StatusOK, dto.ToGiftGroupResponse(group))
}

// updateGroup godoc
// @Summary Update a gift group
// @Description Applies the desired post-edit state of the whole cluster; turning off both cash and items removes the group
// @Tags gift-groups
// @Accept  json
// @Produce  json
// @Param   groupID path string true "Group ID (or legacy row ID)"
// @Param   group body dto.UpdateGiftGroupRequest true "Desired state"
// @Success 200 {object} dto.GiftGroupResponse
// @Success 204 "Group emptied and removed"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Group not found"
// @Router /gift-groups/{groupID} [patch]
func (h *giftHandler) updateGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")

	var req dto.UpdateGiftGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for updateGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	group, err := h.giftService.UpdateGroup(c.Request.Context(), userID, groupID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update gift group")
		return
	}
	if group == nil {
		// The desired state had neither cash nor items: the cluster is gone.
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, dto.ToGiftGroupResponse(group))
}

// deleteGroup godoc
// @Summary Delete a gift group
// @Description Removes every row of the cluster
// @Tags gift-groups
// @Produce  json
// @Param   groupID path string true "Group ID (or legacy row ID)"
// @Success 204
// @Failure 404 {object} map[string]string "Group not found"
// @Router /gift-groups/{groupID} [delete]
func (h *giftHandler) deleteGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.giftService.DeleteGroup(c.Request.Context(), userID, groupID); err != nil {
		respondWithError(c, logger, err, "Failed to delete gift group")
		return
	}

	c.Status(http.StatusNoContent)
}
