package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"meme-gallery-backend/internal/services"
)

type StatusHandler struct {
	photos *services.PhotoService
}

func NewStatusHandler(photos *services.PhotoService) *StatusHandler {
	return &StatusHandler{photos: photos}
}

// GetStatus godoc
// @Summary     Database setup status
// @Description Reports whether the database is reachable and the photos table exists.
// @Tags        health
// @Produce     json
// @Success     200 {object} models.DatabaseStatusResponse
// @Router      /api/status [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.photos.Status())
}
