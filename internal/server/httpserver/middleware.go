package httpserver

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/dkrasnov/finledger/internal/errs"
)

// RequestLogger returns a middleware for structured request logging.
// Bodies are never logged, only metadata.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := ""
		if id, err := uuid.NewV4(); err == nil {
			reqID = id.String()
			c.Header("X-Request-Id", reqID)
		}

		c.Next()

		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("remote", c.ClientIP()),
			zap.String("request_id", reqID),
		)
	}
}

// Recovery returns a middleware that recovers from handler panics,
// logs the stack server-side and answers with a generic 500.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
		}()
		c.Next()
	}
}

// corsMiddleware allows cross-origin browser clients to reach the API.
// Any origin is accepted; credentials stay in the Authorization header.
func corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AddAllowHeaders("Authorization")
	return cors.New(cfg)
}

// RequireAuth is the access-control gate: it extracts the bearer token,
// verifies it and attaches the resolved identity to the request context.
// Requests without a token get 401; requests with a bad or expired token
// get 403. Both are terminal for the request.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access Denied: No token provided"})
			return
		}

		claims, err := s.tokens.Verify(raw)
		if err != nil {
			// expired vs invalid is kept only for server-side diagnostics
			if errors.Is(err, errs.ErrTokenExpired) {
				s.log.Debug("auth rejected", zap.String("reason", "expired"))
			} else {
				s.log.Debug("auth rejected", zap.String("reason", "invalid"))
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid or expired token"})
			return
		}

		setIdentity(c, Identity{UserID: claims.UserID, Email: claims.Email})
		c.Next()
	}
}

// bearerToken parses an "Authorization: Bearer <token>" header value.
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(header[7:])
	return tok, tok != ""
}
