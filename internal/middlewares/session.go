package middlewares

import (
	"career-ebook-generator/internal/api"
	"career-ebook-generator/internal/constants"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"net/http"
	"time"
)

type SessionClaims struct {
	SessionId string `json:"session_id"`
	jwt.StandardClaims
}

// GenerateToken signs a token that binds the bearer to one session.
func GenerateToken(key []byte, sessionId string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := SessionClaims{
		sessionId,
		jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    "career-ebook-generator",
			Subject:   sessionId,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(key)
	return tokenString, expiresAt, err
}

func ValidateToken(tokenString string, key []byte) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if len(claims.SessionId) == 0 {
		return nil, fmt.Errorf("token carries no session")
	}
	return claims, nil
}

// SessionFromCookie returns the session ID of a valid session cookie, or "".
func SessionFromCookie(c *gin.Context, key []byte) string {
	cookie, err := c.Cookie(constants.SessionCookie)
	if err != nil || len(cookie) == 0 {
		return ""
	}
	claims, err := ValidateToken(cookie, key)
	if err != nil {
		return ""
	}
	return claims.SessionId
}

// SessionHandler rejects requests without a valid session cookie and exposes the
// session ID to handlers under constants.SessionIDKey. Every accepted request renews the
// cookie for another ttl, so only an idle session runs out.
func SessionHandler(key []byte, ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionId := SessionFromCookie(c, key)
		if len(sessionId) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("no active session; reload the page to start one"))
			return
		}

		if err := RenewSessionCookie(c, key, sessionId, ttl, secure); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("Error renewing session token"))
			return
		}

		c.Set(constants.SessionIDKey, sessionId)
		c.Next()
	}
}

// RenewSessionCookie issues a fresh token for sessionId, valid for ttl from now.
func RenewSessionCookie(c *gin.Context, key []byte, sessionId string, ttl time.Duration, secure bool) error {
	token, expiresAt, err := GenerateToken(key, sessionId, ttl)
	if err != nil {
		return err
	}
	SetSessionCookie(c, token, expiresAt, secure)
	return nil
}

// SessionId returns the ID stored by SessionHandler.
func SessionId(c *gin.Context) string {
	return c.GetString(constants.SessionIDKey)
}

// SetSessionCookie stores the signed token as an HTTP-only cookie.
func SetSessionCookie(c *gin.Context, token string, expiresAt time.Time, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	maxAge := int(time.Until(expiresAt).Round(time.Second).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetCookie(constants.SessionCookie, token, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(constants.SessionCookie, "", -1, "/", "", secure, true)
}

// ConfigurationGuard blocks every request while the service is misconfigured, so the
// generation action cannot be reached without a provider credential.
func ConfigurationGuard(configErr error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if configErr != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, api.NewErrorResponsef("configuration error: %s", configErr))
			return
		}
		c.Next()
	}
}
