package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"meme-gallery-backend/internal/models"
	"meme-gallery-backend/internal/services"
)

type PhotosHandler struct {
	photos *services.PhotoService
}

func NewPhotosHandler(photos *services.PhotoService) *PhotosHandler {
	return &PhotosHandler{photos: photos}
}

// ListPhotos godoc
// @Summary     List gallery photos
// @Description Returns every photo, newest first. Object store images are routed through the media proxy.
// @Tags        photos
// @Produce     json
// @Success     200 {object} models.PhotoListResponse
// @Router      /api/photos [get]
func (h *PhotosHandler) ListPhotos(c *gin.Context) {
	photos := h.photos.List()

	response := models.PhotoListResponse{
		Success: true,
		Photos:  make([]models.PhotoResponse, 0, len(photos)),
	}
	for _, p := range photos {
		response.Photos = append(response.Photos, models.PhotoResponse{
			Photo:      p,
			DisplayURL: h.photos.DisplayURL(p.ImageData),
		})
	}
	c.JSON(http.StatusOK, response)
}

// DeletePhoto godoc
// @Summary     Delete a photo
// @Description Deletes a photo owned by the caller and, best effort, its stored object.
// @Tags        photos
// @Produce     json
// @Security    Bearer
// @Param       id query string true "Photo ID"
// @Success     200 {object} models.SuccessResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/delete-photo [delete]
func (h *PhotosHandler) DeletePhoto(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	photoID := c.Query("id")
	if photoID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "photo id is required"})
		return
	}

	if err := h.photos.Delete(c.Request.Context(), photoID, userID); err != nil {
		respondError(c, err, "delete photo")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "photo deleted"})
}
