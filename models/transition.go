package models

// Transition is the result of a guarded state change.
// Out-of-state calls are Skipped rather than errors so callers can apply
// the same event across loans in mixed states.
type Transition uint8

const (
	Skipped Transition = iota
	Applied
)

func (t Transition) String() string {
	if t == Applied {
		return "applied"
	}
	return "skipped"
}

// RecordEffect is the lock side effect a loan transition asks for.
type RecordEffect uint8

const (
	EffectNone RecordEffect = iota
	EffectLock
	EffectUnlock
)

// LoanOutcome pairs a loan transition with the record side effect it implies.
type LoanOutcome struct {
	Result Transition
	Effect RecordEffect
}

var skippedLoan = LoanOutcome{Result: Skipped, Effect: EffectNone}
