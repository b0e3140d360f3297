package services_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"meme-gallery-backend/internal/models"
	"meme-gallery-backend/internal/services"
	"meme-gallery-backend/internal/services/servicestest"
)

var webhookKey = []byte("super-secret-signing-key")

func webhookSecret() string {
	return "whsec_" + base64.StdEncoding.EncodeToString(webhookKey)
}

func signedHeaders(body []byte, at time.Time) services.WebhookHeaders {
	id := "msg_123"
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, webhookKey)
	mac.Write([]byte(id + "." + ts + "."))
	mac.Write(body)
	return services.WebhookHeaders{
		ID:        id,
		Timestamp: ts,
		Signature: "v1,bogus v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil)),
	}
}

const userCreated = `{
	"type": "user.created",
	"data": {
		"id": "user_2abc12345678",
		"username": "memelord",
		"first_name": "Meme",
		"last_name": "Lord",
		"image_url": "https://img.example.com/a.png",
		"primary_email_address_id": "idn_2",
		"email_addresses": [
			{"id": "idn_1", "email_address": "old@example.com"},
			{"id": "idn_2", "email_address": "meme@example.com"}
		]
	}
}`

func TestProfileService_VerifyWebhook(t *testing.T) {
	svc := services.NewProfileService(servicestest.NewDatabase(), webhookSecret())
	body := []byte(userCreated)

	assert.NoError(t, svc.VerifyWebhook(signedHeaders(body, time.Now()), body))

	tampered := signedHeaders(body, time.Now())
	assert.ErrorIs(t, svc.VerifyWebhook(tampered, []byte(`{"type":"user.deleted"}`)), services.ErrInvalidSignature)

	stale := signedHeaders(body, time.Now().Add(-10*time.Minute))
	assert.ErrorIs(t, svc.VerifyWebhook(stale, body), services.ErrInvalidSignature)

	assert.ErrorIs(t, svc.VerifyWebhook(services.WebhookHeaders{}, body), services.ErrInvalidSignature)
}

func TestProfileService_VerifyWebhookWithoutSecret(t *testing.T) {
	svc := services.NewProfileService(servicestest.NewDatabase(), "")
	assert.NoError(t, svc.VerifyWebhook(services.WebhookHeaders{}, []byte(`{}`)))
}

func TestProfileService_HandleWebhook(t *testing.T) {
	db := servicestest.NewDatabase()
	svc := services.NewProfileService(db, "")

	eventType, err := svc.HandleWebhook([]byte(userCreated))
	require.NoError(t, err)
	assert.Equal(t, "user.created", eventType)

	profile, err := db.GetProfile("user_2abc12345678")
	require.NoError(t, err)
	assert.Equal(t, "memelord", profile.Username)
	assert.Equal(t, "meme@example.com", profile.Email)
	assert.Equal(t, "Meme", profile.FirstName)
	assert.Equal(t, "Lord", profile.LastName)
	assert.Equal(t, "https://img.example.com/a.png", profile.ImageURL)
	assert.False(t, profile.UpdatedAt.IsZero())
}

func TestProfileService_HandleWebhookIgnoresOtherEvents(t *testing.T) {
	db := servicestest.NewDatabase()
	svc := services.NewProfileService(db, "")

	eventType, err := svc.HandleWebhook([]byte(`{"type":"session.created","data":{"id":"sess_1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "session.created", eventType)

	_, err = db.GetProfile("sess_1")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestProfileService_HandleWebhookInvalidJSON(t *testing.T) {
	svc := services.NewProfileService(servicestest.NewDatabase(), "")

	_, err := svc.HandleWebhook([]byte(`{not json`))
	var verr *services.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestProfileService_CurrentUser(t *testing.T) {
	db := servicestest.NewDatabase()
	svc := services.NewProfileService(db, "")

	user := svc.CurrentUser("user_2abc12345678")
	assert.Equal(t, "user-12345678", user.DisplayName)
	assert.Empty(t, user.Email)

	require.NoError(t, db.UpsertProfile(&models.Profile{
		ID:        "user_2abc12345678",
		FirstName: "Meme",
		LastName:  "Lord",
		Email:     "meme@example.com",
	}))
	user = svc.CurrentUser("user_2abc12345678")
	assert.Equal(t, "Meme Lord", user.DisplayName)
	assert.Equal(t, "meme@example.com", user.Email)
}
