package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"meme-gallery-backend/internal/models"
	"meme-gallery-backend/internal/services"
)

// Room for the multipart envelope and text fields on top of the file.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	uploads  *services.UploadService
	maxBytes int64
}

func NewUploadHandler(uploads *services.UploadService, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = services.DefaultMaxUploadBytes
	}
	return &UploadHandler{
		uploads:  uploads,
		maxBytes: maxBytes,
	}
}

// Upload godoc
// @Summary     Upload an image
// @Description Stores the image in the object store and records a photo row for the authenticated user.
// @Tags        upload
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       file formData file true "Image file"
// @Param       title formData string true "Photo title"
// @Param       userId formData string false "Must match the authenticated user when sent"
// @Param       userName formData string false "Display name"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/upload-to-r2 [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "file is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	if claimed := strings.TrimSpace(c.PostForm("userId")); claimed != "" && claimed != userID {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "userId does not match the authenticated user"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to open file", Message: err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file", Message: err.Error()})
		return
	}

	photo, err := h.uploads.Upload(c.Request.Context(), services.UploadInput{
		UserID:      userID,
		UserName:    c.PostForm("userName"),
		Title:       c.PostForm("title"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		respondError(c, err, "upload image")
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		Success:  true,
		ImageURL: photo.ImageData,
		ID:       photo.ID,
		Photo:    photo,
	})
}
