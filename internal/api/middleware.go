// Package api implements the read-mostly Ops HTTP surface operators use to
// inspect and administer a running server: channel/room/session listing and
// a kick action. It is entirely separate from the game-client-facing TCP/UDP
// protocol in internal/network and internal/handler.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kongor-lobby/masterserver/internal/db"
)

// Permission levels gating the Ops API, matching the moderation store's
// admin_roles schema.
const (
	PermMonitor = db.PermMonitor
	PermControl = db.PermControl
)

// authMiddleware checks a shared bearer token and, when a moderation store
// is configured, an operator's granted role. An empty apiKey disables the
// bearer check entirely — a local/dev convenience, not a production default.
type authMiddleware struct {
	apiKey     string
	moderation *db.ModerationStore
}

func (am *authMiddleware) requirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.apiKey == "" {
			c.Next()
			return
		}

		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" || token != am.apiKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			c.Abort()
			return
		}

		operatorID := c.GetHeader("X-Operator-Id")
		if operatorID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-Operator-Id header"})
			c.Abort()
			return
		}

		if am.moderation != nil {
			ok, err := am.moderation.HasPermission(operatorID, permission)
			if err != nil {
				log.Error().Err(err).Str("operator", operatorID).Msg("permission check failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "permission check failed"})
				c.Abort()
				return
			}
			if !ok {
				c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions", "required": permission})
				c.Abort()
				return
			}
		}

		c.Set("operatorId", operatorID)
		c.Next()
	}
}

func extractBearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("clientIp", c.ClientIP()).
			Msg("ops api request")
	}
}
