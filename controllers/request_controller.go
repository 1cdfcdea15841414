package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_record_loans/app"
	"Gin_postgres_redis_record_loans/db"
	"Gin_postgres_redis_record_loans/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type RequestController struct{ *Srv }

func NewRequestController(s *Srv) *RequestController { return &RequestController{Srv: s} }

// POST /api/requests {"recordIds": [...]}
func (rc *RequestController) CreateRequest(c *gin.Context) {
	var in struct {
		RecordIDs []string `json:"recordIds"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	req, err := rc.Repo.CreateRequest(c.Request.Context(), actorID(c), in.RecordIDs)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// 普通用户：只看自己的申请
func (rc *RequestController) ListMyRequests(c *gin.Context) {
	reqs, err := rc.Repo.ListRequestsForUser(c.Request.Context(), actorID(c))
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"requests": reqs})
}

// ownRequest loads a request visible to the caller: its requester or an admin.
func (rc *RequestController) ownRequest(c *gin.Context) (*models.Request, error) {
	req, err := rc.Repo.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if req.RequesterID != actorID(c) && !isAdmin(c) {
		return nil, errors.Wrap(ErrAuthorization, "not the requester")
	}
	return req, nil
}

func (rc *RequestController) GetRequest(c *gin.Context) {
	req, err := rc.ownRequest(c)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// POST /api/requests/:id/prepare {"readyLoanIds": [...]}
// 未选中的 pending loan 一律记为 lost
func (rc *RequestController) Prepare(c *gin.Context) {
	var in struct {
		ReadyLoanIDs []string `json:"readyLoanIds"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	req, err := rc.Repo.Prepare(c.Request.Context(), actorID(c), c.Param("id"), in.ReadyLoanIDs)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (rc *RequestController) ConfirmDelivery(c *gin.Context) {
	if _, err := rc.ownRequest(c); err != nil {
		rc.respondError(c, err)
		return
	}
	req, err := rc.Repo.ConfirmDelivery(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (rc *RequestController) DeleteRequest(c *gin.Context) {
	if err := rc.Repo.DeleteRequest(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/admin/requests?state=&page=1&size=20
func (rc *RequestController) ListRequestsAdmin(c *gin.Context) {
	q := db.AdminRequestsQuery{
		State: c.Query("state"), // "", pending, prepared, cancelled, delivered, closed
	}
	switch models.RequestState(q.State) {
	case "", models.RequestPending, models.RequestPrepared, models.RequestCancelled,
		models.RequestDelivered, models.RequestClosed:
	default:
		rc.respondError(c, errors.Wrapf(db.ErrInvalidInput, "unknown state %q", q.State))
		return
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := rc.Repo.ListRequestsForAdministration(c.Request.Context(), q)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"total": res.Total, "requests": res.Requests})
}
