package controllers

import (
	"net/http"

	"Gin_postgres_redis_record_loans/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

// ownLoan loads a loan visible to the caller: its borrower or an admin.
func (lc *LoanController) ownLoan(c *gin.Context) (*models.Loan, error) {
	l, err := lc.Repo.GetLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if l.BorrowerID != actorID(c) && !isAdmin(c) {
		return nil, errors.Wrap(ErrAuthorization, "not the borrower")
	}
	return l, nil
}

func (lc *LoanController) GetLoan(c *gin.Context) {
	l, err := lc.ownLoan(c)
	if err != nil {
		lc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// 归还
func (lc *LoanController) Return(c *gin.Context) {
	if _, err := lc.ownLoan(c); err != nil {
		lc.respondError(c, err)
		return
	}
	l, err := lc.Repo.ReturnLoan(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		lc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}
