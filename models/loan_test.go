package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestLoanMarkReady(t *testing.T) {
	l := &Loan{State: LoanPending, Active: true}

	out := l.MarkReady()
	require.Equal(t, Applied, out.Result)
	assert.Equal(t, EffectUnlock, out.Effect)
	assert.Equal(t, LoanReady, l.State)
	assert.True(t, l.Active)

	// second call is a no-op
	before := *l
	out = l.MarkReady()
	assert.Equal(t, Skipped, out.Result)
	assert.Equal(t, EffectNone, out.Effect)
	assert.Equal(t, before, *l)
}

func TestLoanMarkLost(t *testing.T) {
	for _, from := range []LoanState{LoanPending, LoanReady} {
		t.Run(string(from), func(t *testing.T) {
			l := &Loan{State: from, Active: true}
			out := l.MarkLost()
			require.Equal(t, Applied, out.Result)
			assert.Equal(t, EffectLock, out.Effect)
			assert.Equal(t, LoanLost, l.State)
			assert.False(t, l.Active)
		})
	}

	for _, from := range []LoanState{LoanDelivered, LoanReturned, LoanLost} {
		t.Run("skip "+string(from), func(t *testing.T) {
			l := &Loan{State: from}
			assert.Equal(t, Skipped, l.MarkLost().Result)
			assert.Equal(t, from, l.State)
		})
	}
}

func TestLoanDeliverAndReturn(t *testing.T) {
	l := &Loan{State: LoanReady, Active: true}

	require.Equal(t, Applied, l.MarkDelivered(now).Result)
	assert.Equal(t, LoanDelivered, l.State)
	require.NotNil(t, l.DeliveredAt)
	assert.Equal(t, now, *l.DeliveredAt)
	assert.True(t, l.Active)

	later := now.Add(48 * time.Hour)
	out := l.MarkReturned(later)
	require.Equal(t, Applied, out.Result)
	assert.Equal(t, EffectUnlock, out.Effect)
	assert.Equal(t, LoanReturned, l.State)
	assert.False(t, l.Active)
	require.NotNil(t, l.ReturnedAt)
	assert.Equal(t, later, *l.ReturnedAt)

	assert.Equal(t, Skipped, l.MarkReturned(later.Add(time.Hour)).Result)
	assert.Equal(t, later, *l.ReturnedAt)
}

func TestLostIsTerminal(t *testing.T) {
	l := &Loan{State: LoanPending, Active: true}
	require.Equal(t, Applied, l.MarkLost().Result)

	assert.Equal(t, Skipped, l.MarkReady().Result)
	assert.Equal(t, Skipped, l.MarkDelivered(now).Result)
	assert.Equal(t, Skipped, l.MarkReturned(now).Result)
	assert.Equal(t, LoanLost, l.State)
	assert.Nil(t, l.DeliveredAt)
}

func TestDeliverRequiresReady(t *testing.T) {
	l := &Loan{State: LoanPending, Active: true}
	assert.Equal(t, Skipped, l.MarkDelivered(now).Result)
	assert.Nil(t, l.DeliveredAt)
	assert.Equal(t, Skipped, l.MarkReturned(now).Result)
}

func TestLoanStateIsActive(t *testing.T) {
	for _, s := range ActiveLoanStates {
		assert.True(t, s.IsActive(), s)
	}
	assert.False(t, LoanLost.IsActive())
	assert.False(t, LoanReturned.IsActive())
}
