package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"meme-gallery-backend/internal/services"
)

type UserHandler struct {
	profiles *services.ProfileService
}

func NewUserHandler(profiles *services.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// GetUser godoc
// @Summary     Current user
// @Description Returns the authenticated user's profile and resolved display name.
// @Tags        user
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.UserResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/user [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.profiles.CurrentUser(userID))
}
