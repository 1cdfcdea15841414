package db

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateCode     = errors.New("record code already exists")
	ErrRecordUnavailable = errors.New("record already has an active loan")
	ErrRecordInUse       = errors.New("record is referenced by requests or loans")
	ErrRequestInUse      = errors.New("request still has items or loans")
	ErrEmptyRequest      = errors.New("request must include at least one record")
	ErrInvalidInput      = errors.New("invalid input")
)

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// notFound turns gorm.ErrRecordNotFound into ErrNotFound and wraps anything else.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(ErrNotFound, what)
	}
	return errors.Wrapf(err, "load %s", what)
}
