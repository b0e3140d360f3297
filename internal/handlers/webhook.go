package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"meme-gallery-backend/internal/models"
	"meme-gallery-backend/internal/services"
)

const maxWebhookBytes = 1 << 20

type WebhookHandler struct {
	profiles *services.ProfileService
}

func NewWebhookHandler(profiles *services.ProfileService) *WebhookHandler {
	return &WebhookHandler{profiles: profiles}
}

// HandleWebhook godoc
// @Summary     Identity provider webhook
// @Description Syncs user profiles on user.created and user.updated. Requests are verified with the svix signature headers when a signing secret is configured.
// @Tags        webhooks
// @Accept      json
// @Produce     plain
// @Param       svix-id header string false "Message id"
// @Param       svix-timestamp header string false "Unix timestamp"
// @Param       svix-signature header string false "Signatures"
// @Success     200 {string} string "OK"
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/webhooks/clerk [post]
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read request body",
			Message: err.Error(),
		})
		return
	}

	headers := services.WebhookHeaders{
		ID:        c.GetHeader("svix-id"),
		Timestamp: c.GetHeader("svix-timestamp"),
		Signature: c.GetHeader("svix-signature"),
	}
	if err := h.profiles.VerifyWebhook(headers, body); err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid signature"})
			return
		}
		respondError(c, err, "verify webhook")
		return
	}

	eventType, err := h.profiles.HandleWebhook(body)
	if err != nil {
		respondError(c, err, "process webhook")
		return
	}

	log.Printf("Webhook %s processed", eventType)
	c.String(http.StatusOK, "OK")
}

// Ping answers GET on the webhook path so the endpoint can be checked from a browser.
func (h *WebhookHandler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "Webhook endpoint is working")
}
