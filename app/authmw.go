package app

import (
	"net/http"

	"Gin_postgres_redis_record_loans/session"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const AppSessionCookie = "app_session"

// context keys set by AuthRequired
const (
	CtxUserID      = "userID"
	CtxIsAdmin     = "isAdmin"
	CtxIsRequester = "isRequester"
)

func AuthRequired(appSess *session.AppSessionStore, gate Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, H{"error": "session store unavailable"})
			return
		}

		// 角色只问一次 gate，后续 handler 直接读 context
		c.Set(CtxUserID, as.ActorID)
		c.Set(CtxIsAdmin, gate.IsAdministrator(as.ActorID))
		c.Set(CtxIsRequester, gate.IsRequester(as.ActorID))
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func RequesterOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxIsRequester) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
