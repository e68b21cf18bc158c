package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/gastrodia/homeledger/internal/core/ports/services"
	"github.com/gastrodia/homeledger/internal/dto"
	"github.com/gastrodia/homeledger/internal/middleware"
)

// attachmentHandler issues presigned upload slots in the blob store.
type attachmentHandler struct {
	blob portssvc.BlobStore
}

func registerAttachmentRoutes(group *gin.RouterGroup, blob portssvc.BlobStore) {
	h := &attachmentHandler{blob: blob}
	group.POST("/attachments/presign", h.presignUpload)
}

// presignUpload godoc
// @Summary Get a presigned upload URL for an attachment
// @Description Returns a storage key and a short-lived PUT URL; the key is later referenced from loan, repayment or gift requests
// @Tags attachments
// @Accept  json
// @Produce  json
// @Param   request body dto.PresignAttachmentRequest true "Upload details"
// @Success 200 {object} dto.PresignAttachmentResponse
// @Failure 502 {object} map[string]string "Storage unavailable"
// @Router /attachments/presign [post]
func (h *attachmentHandler) presignUpload(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PresignAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for presignUpload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	key, url, err := h.blob.PresignUploadURL(c.Request.Context(), req.ContentType)
	if err != nil {
		logger.Error("Failed to presign attachment upload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Attachment storage unavailable"})
		return
	}

	c.JSON(http.StatusOK, dto.PresignAttachmentResponse{Key: key, UploadURL: url})
}
