package db_test

import (
	"context"
	"testing"

	"Gin_postgres_redis_record_loans/db"
	"Gin_postgres_redis_record_loans/models"
	"Gin_postgres_redis_record_loans/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRecord(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestRepo(t)

	rec, err := repo.CreateRecord(ctx, "admin", db.CreateRecordInput{Code: " L-001 ", Title: "Legajo 1", Description: "caja 3"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "L-001", rec.Code)
	assert.False(t, rec.Locked)

	t.Run("duplicate code", func(t *testing.T) {
		_, err := repo.CreateRecord(ctx, "admin", db.CreateRecordInput{Code: "L-001", Title: "other"})
		assert.ErrorIs(t, err, db.ErrDuplicateCode)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := repo.CreateRecord(ctx, "admin", db.CreateRecordInput{Code: "L-002"})
		assert.ErrorIs(t, err, db.ErrInvalidInput)
	})
}

func TestToggleLockAndAvailability(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestRepo(t)
	rec := testutil.CreateRecord(t, repo, "L-1")

	ok, err := repo.IsAvailable(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	locked, err := repo.ToggleLock(ctx, "admin", rec.ID)
	require.NoError(t, err)
	assert.True(t, locked.Locked)

	ok, err = repo.IsAvailable(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	unlocked, err := repo.ToggleLock(ctx, "admin", rec.ID)
	require.NoError(t, err)
	assert.False(t, unlocked.Locked)

	// an active loan makes an unlocked record unavailable
	_, err = repo.CreateRequest(ctx, "user-1", []string{rec.ID})
	require.NoError(t, err)
	ok, err = repo.IsAvailable(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// toggling while a loan is active only touches the flag
	_, err = repo.ToggleLock(ctx, "admin", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), testutil.CountActiveLoans(t, repo.DB, rec.ID))
}

func TestAvailabilityMatchesLockAndLoans(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestRepo(t)

	free := testutil.CreateRecord(t, repo, "A")
	lockedRec := testutil.CreateRecord(t, repo, "B")
	lent := testutil.CreateRecord(t, repo, "C")
	_, err := repo.ToggleLock(ctx, "admin", lockedRec.ID)
	require.NoError(t, err)
	_, err = repo.CreateRequest(ctx, "user-1", []string{lent.ID})
	require.NoError(t, err)

	views, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)

	for _, v := range views {
		active := testutil.CountActiveLoans(t, repo.DB, v.ID)
		assert.Equal(t, !v.Locked && active == 0, v.Available, v.Code)
	}
	byCode := map[string]models.RecordView{}
	for _, v := range views {
		byCode[v.Code] = v
	}
	assert.True(t, byCode["A"].Available)
	assert.False(t, byCode["B"].Available)
	assert.False(t, byCode["C"].Available)
	assert.Equal(t, free.ID, byCode["A"].ID)
}

func TestGetRecordNotFound(t *testing.T) {
	repo := testutil.NewTestRepo(t)

	_, err := repo.GetRecord(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = repo.GetRecord(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = repo.ToggleLock(context.Background(), "admin", uuid.NewString())
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestDeleteRecord(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestRepo(t)

	unused := testutil.CreateRecord(t, repo, "U")
	require.NoError(t, repo.DeleteRecord(ctx, "admin", unused.ID))
	_, err := repo.GetRecord(ctx, unused.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)

	used := testutil.CreateRecord(t, repo, "R")
	_, err = repo.CreateRequest(ctx, "user-1", []string{used.ID})
	require.NoError(t, err)

	err = repo.DeleteRecord(ctx, "admin", used.ID)
	assert.ErrorIs(t, err, db.ErrRecordInUse)
	_, err = repo.GetRecord(ctx, used.ID)
	assert.NoError(t, err)
}
