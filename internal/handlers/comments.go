package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"meme-gallery-backend/internal/models"
	"meme-gallery-backend/internal/services"
)

type CommentsHandler struct {
	comments *services.CommentService
}

func NewCommentsHandler(comments *services.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

// ListComments godoc
// @Summary     List comments of a photo
// @Tags        comments
// @Produce     json
// @Param       photoId query string true "Photo ID"
// @Success     200 {object} models.CommentListResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/comments [get]
func (h *CommentsHandler) ListComments(c *gin.Context) {
	photoID := c.Query("photoId")
	if photoID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "photoId is required"})
		return
	}

	c.JSON(http.StatusOK, models.CommentListResponse{
		Success:  true,
		Comments: h.comments.List(photoID),
	})
}

// AddComment godoc
// @Summary     Comment on a photo
// @Tags        comments
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.AddCommentRequest true "Comment"
// @Success     200 {object} models.CommentResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/add-comment [post]
func (h *CommentsHandler) AddComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	comment, err := h.comments.Add(c.Request.Context(), req.PhotoID, userID, req.UserName, req.CommentText)
	if err != nil {
		respondError(c, err, "add comment")
		return
	}

	c.JSON(http.StatusOK, models.CommentResponse{Success: true, Comment: comment})
}

// DeleteComment godoc
// @Summary     Delete one of the caller's comments
// @Tags        comments
// @Produce     json
// @Security    Bearer
// @Param       id query string true "Comment ID"
// @Success     200 {object} models.SuccessResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/delete-comment [delete]
func (h *CommentsHandler) DeleteComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	commentID := c.Query("id")
	if commentID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "comment id is required"})
		return
	}

	if err := h.comments.Delete(c.Request.Context(), commentID, userID); err != nil {
		respondError(c, err, "delete comment")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "comment deleted"})
}

// CommentCounts godoc
// @Summary     Comment counts for many photos
// @Description Returns an object mapping every requested photo id to its comment count.
// @Tags        comments
// @Accept      json
// @Produce     json
// @Param       request body models.CommentCountsRequest true "Photo IDs"
// @Success     200 {object} map[string]int
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/comment-counts [post]
func (h *CommentsHandler) CommentCounts(c *gin.Context) {
	var req models.CommentCountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "photoIds must be a non-empty array"})
		return
	}

	counts, err := h.comments.BatchCounts(c.Request.Context(), req.PhotoIDs)
	if err != nil {
		respondError(c, err, "count comments")
		return
	}

	c.JSON(http.StatusOK, counts)
}
