package controllers

import (
	"net/http"
	"testing"

	"Gin_postgres_redis_record_loans/db"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errors.Wrap(db.ErrNotFound, "record"), http.StatusNotFound},
		{db.ErrDuplicateCode, http.StatusConflict},
		{db.ErrRecordUnavailable, http.StatusConflict},
		{errors.Wrap(db.ErrRecordInUse, "x"), http.StatusConflict},
		{db.ErrRequestInUse, http.StatusConflict},
		{db.ErrEmptyRequest, http.StatusBadRequest},
		{errors.Wrapf(db.ErrInvalidInput, "code"), http.StatusBadRequest},
		{errors.Wrap(ErrAuthorization, "not the requester"), http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusOf(tc.err), tc.err.Error())
	}
}
