package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"casino-minigames/internal/apperror"
	"casino-minigames/internal/services"
)

const (
	KeySaveID    = "save_id"
	KeySessionID = "session_id"
)

var (
	errMissingToken = fmt.Errorf("%w: save token required", apperror.ErrUnauthorized)
	errTokenFormat  = fmt.Errorf("%w: expected a Bearer token", apperror.ErrUnauthorized)
)

// AuthMiddleware binds the request to the save its token was issued for. The
// token comes from a Bearer header or, for the WebSocket upgrade, a token
// query parameter.
func AuthMiddleware(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := saveToken(c)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid save session", err)
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid save session", err)
			return
		}

		c.Set(KeySaveID, claims.SaveID)
		c.Set(KeySessionID, claims.SessionID)
		c.Next()
	}
}

func saveToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", errMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", errTokenFormat
	}
	return token, nil
}

// RateLimitMiddleware caps in-round actions per save and route. Bets are
// limited separately when a round starts.
func RateLimitMiddleware(redisService *services.RedisService, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		saveID := c.GetString(KeySaveID)
		if saveID == "" {
			c.Next()
			return
		}

		allowed, err := redisService.CheckRateLimit(c.Request.Context(), saveID, c.FullPath(), limit, window)
		if err != nil {
			err = errors.Join(apperror.ErrRateLimited, err)
		} else if !allowed {
			err = fmt.Errorf("%w: %d actions per %s", apperror.ErrRateLimited, limit, window)
		}
		if err != nil {
			c.Header("Retry-After", fmt.Sprintf("%.0f", window.Seconds()))
			abort(c, http.StatusTooManyRequests, "Rate limit exceeded", err)
			return
		}

		c.Next()
	}
}

func abort(c *gin.Context, status int, message string, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
