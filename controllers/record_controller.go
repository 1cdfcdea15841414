package controllers

import (
	"net/http"

	"Gin_postgres_redis_record_loans/app"
	"Gin_postgres_redis_record_loans/db"

	"github.com/gin-gonic/gin"
)

type RecordController struct{ *Srv }

func NewRecordController(s *Srv) *RecordController { return &RecordController{Srv: s} }

// 管理员登记一份档案
func (rc *RecordController) CreateRecord(c *gin.Context) {
	var in struct {
		Code        string `json:"code" binding:"required"`
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	rec, err := rc.Repo.CreateRecord(c.Request.Context(), actorID(c), db.CreateRecordInput{
		Code:        in.Code,
		Title:       in.Title,
		Description: in.Description,
	})
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (rc *RecordController) ToggleLock(c *gin.Context) {
	rec, err := rc.Repo.ToggleLock(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (rc *RecordController) DeleteRecord(c *gin.Context) {
	if err := rc.Repo.DeleteRecord(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// 列表（含是否可借）
func (rc *RecordController) ListRecords(c *gin.Context) {
	recs, err := rc.Repo.ListRecords(c.Request.Context())
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"records": recs})
}

func (rc *RecordController) GetRecord(c *gin.Context) {
	rec, err := rc.Repo.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
