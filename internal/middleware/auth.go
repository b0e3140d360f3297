package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"meme-gallery-backend/internal/config"
)

const (
	UserIDKey = "user_id"
	// Session cookie set by the identity provider's frontend SDK.
	sessionCookie = "__session"
)

var errMissingToken = errors.New("missing authorization token")

// TokenVerifier validates identity-provider session tokens and yields the
// subject id.
type TokenVerifier struct {
	keyfunc jwt.Keyfunc
	methods []string
}

// NewTokenVerifier uses the JWKS endpoint when configured, otherwise the
// shared HS256 secret.
func NewTokenVerifier(cfg *config.Config) (*TokenVerifier, error) {
	if cfg.ClerkJWKSURL == "" {
		if cfg.AuthJWTSecret == "" {
			return nil, fmt.Errorf("no token verification key configured")
		}
		return NewHMACVerifier(cfg.AuthJWTSecret), nil
	}

	jwks, err := keyfunc.Get(cfg.ClerkJWKSURL, keyfunc.Options{
		RefreshInterval:  time.Hour,
		RefreshTimeout:   10 * time.Second,
		RefreshRateLimit: 5 * time.Minute,
		RefreshErrorHandler: func(err error) {
			log.Printf("Error refreshing JWKS: %v", err)
		},
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}

	return &TokenVerifier{
		keyfunc: jwks.Keyfunc,
		methods: []string{"RS256", "RS384", "RS512", "ES256"},
	}, nil
}

func NewHMACVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{
		keyfunc: func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		methods: []string{"HS256"},
	}
}

// Subject verifies the token and returns its "sub" claim.
func (v *TokenVerifier) Subject(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, v.keyfunc,
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("missing user id in token")
	}
	return sub, nil
}

// AuthMiddleware rejects requests without a valid token.
func AuthMiddleware(v *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := authenticate(c, v)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": authMessage(err)})
			c.Abort()
			return
		}

		c.Set(UserIDKey, sub)
		c.Next()
	}
}

// OptionalAuth sets the user id when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(v *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sub, err := authenticate(c, v); err == nil {
			c.Set(UserIDKey, sub)
		}
		c.Next()
	}
}

// UserID returns the authenticated subject stored by the auth middleware.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func authenticate(c *gin.Context, v *TokenVerifier) (string, error) {
	tokenString, err := extractToken(c)
	if err != nil {
		return "", err
	}
	return v.Subject(tokenString)
}

// extractToken reads "Authorization: Bearer <token>", falling back to the
// session cookie.
func extractToken(c *gin.Context) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", fmt.Errorf("invalid authorization header format")
		}
		tokenString := strings.TrimSpace(parts[1])
		// Some clients URL-encode the token
		if decoded, err := url.QueryUnescape(tokenString); err == nil {
			tokenString = decoded
		}
		if tokenString == "" {
			return "", errMissingToken
		}
		return tokenString, nil
	}

	if cookie, err := c.Cookie(sessionCookie); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", errMissingToken
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "token signature is invalid"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed"
	default:
		return err.Error()
	}
}
