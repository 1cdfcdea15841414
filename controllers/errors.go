package controllers

import (
	"net/http"

	"Gin_postgres_redis_record_loans/app"
	"Gin_postgres_redis_record_loans/db"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// ErrAuthorization is raised here, never by the core: the gate answered no.
var ErrAuthorization = errors.New("forbidden")

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrDuplicateCode),
		errors.Is(err, db.ErrRecordUnavailable),
		errors.Is(err, db.ErrRecordInUse),
		errors.Is(err, db.ErrRequestInUse):
		return http.StatusConflict
	case errors.Is(err, db.ErrInvalidInput),
		errors.Is(err, db.ErrEmptyRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Srv) respondError(c *gin.Context, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		s.Log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(code, app.H{"error": "internal error"})
		return
	}
	c.JSON(code, app.H{"error": err.Error()})
}
