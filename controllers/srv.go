// controllers/srv.go
package controllers

import (
	"net/http"
	"strings"

	"Gin_postgres_redis_record_loans/app"
	"Gin_postgres_redis_record_loans/db"
	"Gin_postgres_redis_record_loans/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Srv struct {
	Repo      *db.Repo
	AppSess   *session.AppSessionStore
	WebOrigin string
	Log       logrus.FieldLogger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:      a.Repo,
		AppSess:   a.AppSessions(),
		WebOrigin: a.Config.WebOrigin,
		Log:       a.Log,
	}
}

// --- helpers ---

func actorID(c *gin.Context) string { return c.GetString(app.CtxUserID) }
func isAdmin(c *gin.Context) bool   { return c.GetBool(app.CtxIsAdmin) }

// 清掉业务会话 Cookie
func (s *Srv) clearAppCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(s.WebOrigin, "https://"),
	})
}

// GET /api/whoami
func (s *Srv) WhoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, app.H{
		"userID":      actorID(c),
		"isAdmin":     isAdmin(c),
		"isRequester": c.GetBool(app.CtxIsRequester),
	})
}

// POST /api/logout
func (s *Srv) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		if err := s.AppSess.Delete(c.Request.Context(), ck.Value); err != nil {
			s.Log.WithError(err).Warn("delete session")
		}
	}
	s.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
