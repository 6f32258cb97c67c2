// Package http exposes the claim lifecycle and eligibility checks over REST.
package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/claims"
)

const (
	contextKeyRequestID = "request_id"
	contextKeyActor     = "actor"
)

// AuthClaims is the JWT payload carried by authenticated requests.
type AuthClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for a user, used by the login flow and tests.
func GenerateToken(userID string, role claims.ActorRole, secret string, ttl time.Duration) (string, error) {
	authClaims := AuthClaims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, authClaims)
	return token.SignedString([]byte(secret))
}

// RequestID assigns each request a traceable id, honoring one supplied by
// the client.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set(contextKeyRequestID, requestID)
		c.Next()
	}
}

// GetRequestID gets the request ID from gin context.
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(contextKeyRequestID); exists {
		return requestID.(string)
	}
	return ""
}

// RequestLogger logs each completed request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int64("latencyMs", time.Since(start).Milliseconds()),
			zap.String("clientIp", c.ClientIP()),
			zap.String("requestId", GetRequestID(c)),
		}

		switch {
		case status >= 500:
			logger.Error("request completed", fields...)
		case status >= 400:
			logger.Warn("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}

// Recovery turns panics into 500 responses with the request id attached.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(c)
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("requestId", requestID),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":     "Internal server error",
					"requestId": requestID,
				})
			}
		}()
		c.Next()
	}
}

// Auth validates the bearer token and stores the acting user in the context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		authClaims := &AuthClaims{}
		token, err := jwt.ParseWithClaims(parts[1], authClaims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		role := claims.ActorRole(authClaims.Role)
		if !claims.IsValidRole(role) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown role"})
			return
		}

		c.Set(contextKeyActor, claims.Actor{ID: authClaims.UserID, Role: role})
		c.Next()
	}
}

// CurrentActor returns the authenticated actor stored by Auth.
func CurrentActor(c *gin.Context) claims.Actor {
	if actor, exists := c.Get(contextKeyActor); exists {
		return actor.(claims.Actor)
	}
	return claims.Actor{}
}
