package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"meme-gallery-backend/internal/middleware"
	"meme-gallery-backend/internal/models"
	"meme-gallery-backend/internal/services"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error, action string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: verr.Message})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "forbidden", Message: "you can only delete your own content"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
	default:
		log.Printf("[%s] Failed to %s: %v", middleware.GetRequestID(c), action, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to " + action,
			Message: err.Error(),
		})
	}
}

// requireUser returns the authenticated user id or writes a 401.
func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user not authenticated"})
		return "", false
	}
	return userID, true
}
