package services

import (
	"errors"
	"log"
	"strings"

	"meme-gallery-backend/internal/models"
)

const (
	fallbackPrefix = "user-"
	// Identity provider subject ids look like "user_2abc...".
	providerPrefix = "user_"
	fallbackIDLen  = 8
)

// NormalizeDisplayName trims the name, keeps only the local part of an
// e-mail address and rewrites provider-prefixed ids to the fallback format.
// Normalizing an already normalized name returns it unchanged.
func NormalizeDisplayName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.Index(name, "@"); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	if strings.HasPrefix(name, providerPrefix) {
		rest := strings.TrimPrefix(name, providerPrefix)
		if rest == "" {
			return ""
		}
		return FallbackDisplayName(rest)
	}
	return name
}

// FallbackDisplayName builds "user-" followed by the last 8 characters of the id.
func FallbackDisplayName(userID string) string {
	runes := []rune(userID)
	if len(runes) > fallbackIDLen {
		runes = runes[len(runes)-fallbackIDLen:]
	}
	return fallbackPrefix + string(runes)
}

// ResolveDisplayName applies the precedence explicit name, profile username,
// profile first and last name, profile e-mail local part, then the fallback.
func ResolveDisplayName(explicit string, profile *models.Profile, userID string) string {
	if name := NormalizeDisplayName(explicit); name != "" {
		return name
	}
	if profile != nil {
		candidates := []string{
			profile.Username,
			strings.TrimSpace(profile.FirstName + " " + profile.LastName),
			profile.Email,
		}
		for _, candidate := range candidates {
			if name := NormalizeDisplayName(candidate); name != "" {
				return name
			}
		}
	}
	return FallbackDisplayName(userID)
}

// lookupDisplayName resolves the name for userID, consulting the profile
// only when no explicit name was given. Lookup failures never block.
func lookupDisplayName(profiles ProfileRepository, explicit, userID string) string {
	if name := NormalizeDisplayName(explicit); name != "" {
		return name
	}
	if profiles == nil {
		return FallbackDisplayName(userID)
	}
	profile, err := profiles.GetProfile(userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("Warning: profile lookup for %s failed: %v", userID, err)
		}
		profile = nil
	}
	return ResolveDisplayName("", profile, userID)
}
