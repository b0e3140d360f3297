package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"meme-gallery-backend/internal/models"
)

const (
	webhookSecretPrefix = "whsec_"
	// WebhookTolerance is how far a webhook timestamp may drift from now.
	WebhookTolerance = 5 * time.Minute
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// WebhookHeaders are the svix-* headers sent with every identity-provider webhook.
type WebhookHeaders struct {
	ID        string
	Timestamp string
	Signature string
}

type ProfileService struct {
	profiles      ProfileRepository
	webhookSecret string
	now           func() time.Time
}

func NewProfileService(profiles ProfileRepository, webhookSecret string) *ProfileService {
	return &ProfileService{
		profiles:      profiles,
		webhookSecret: webhookSecret,
		now:           time.Now,
	}
}

// VerifyWebhook checks the HMAC-SHA256 signature over "id.timestamp.body".
// Without a configured secret every payload is accepted.
func (s *ProfileService) VerifyWebhook(h WebhookHeaders, body []byte) error {
	if s.webhookSecret == "" {
		return nil
	}
	if h.ID == "" || h.Timestamp == "" || h.Signature == "" {
		return fmt.Errorf("missing signature headers: %w", ErrInvalidSignature)
	}

	ts, err := strconv.ParseInt(h.Timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed timestamp: %w", ErrInvalidSignature)
	}
	drift := s.now().Sub(time.Unix(ts, 0))
	if drift > WebhookTolerance || drift < -WebhookTolerance {
		return fmt.Errorf("timestamp outside tolerance: %w", ErrInvalidSignature)
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s.webhookSecret, webhookSecretPrefix))
	if err != nil {
		return fmt.Errorf("failed to decode webhook secret: %w", err)
	}
	expected := signWebhook(key, h.ID, h.Timestamp, body)

	// The header may carry several space separated "v1,<sig>" entries.
	for _, entry := range strings.Fields(h.Signature) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func signWebhook(key []byte, id, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + timestamp + "."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// HandleWebhook applies a user event and returns its type. Events other
// than user.created and user.updated are ignored.
func (s *ProfileService) HandleWebhook(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", validationErrorf("webhook payload is not valid JSON")
	}
	eventType := gjson.GetBytes(body, "type").String()

	switch eventType {
	case "user.created", "user.updated":
	default:
		return eventType, nil
	}

	data := gjson.GetBytes(body, "data")
	id := data.Get("id").String()
	if id == "" {
		return eventType, validationErrorf("webhook user has no id")
	}

	profile := &models.Profile{
		ID:        id,
		Username:  data.Get("username").String(),
		Email:     primaryEmail(data),
		FirstName: data.Get("first_name").String(),
		LastName:  data.Get("last_name").String(),
		ImageURL:  data.Get("image_url").String(),
		UpdatedAt: s.now().UTC(),
	}
	if err := s.profiles.UpsertProfile(profile); err != nil {
		return eventType, fmt.Errorf("failed to sync profile %s: %w", id, err)
	}
	log.Printf("Synced profile %s (%s)", id, eventType)
	return eventType, nil
}

func primaryEmail(data gjson.Result) string {
	primaryID := data.Get("primary_email_address_id").String()
	if primaryID != "" {
		for _, addr := range data.Get("email_addresses").Array() {
			if addr.Get("id").String() == primaryID {
				return addr.Get("email_address").String()
			}
		}
	}
	return data.Get("email_addresses.0.email_address").String()
}

// CurrentUser describes the authenticated user. A missing profile is not an error.
func (s *ProfileService) CurrentUser(userID string) models.UserResponse {
	profile, err := s.profiles.GetProfile(userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("Warning: profile lookup for %s failed: %v", userID, err)
		}
		profile = nil
	}

	user := models.UserResponse{
		ID:          userID,
		DisplayName: ResolveDisplayName("", profile, userID),
	}
	if profile != nil {
		user.Username = profile.Username
		user.Email = profile.Email
		user.FirstName = profile.FirstName
		user.LastName = profile.LastName
		user.ImageURL = profile.ImageURL
	}
	return user
}
