// Package lockout tracks failed login attempts per student id number and
// blocks further attempts once a threshold is reached. Counters expire after
// a cooldown window so a forgotten password does not lock an account forever.
package lockout

import (
	"context"
)

// Store counts consecutive login failures.
type Store interface {
	// Fail records one failed attempt and returns the running count.
	Fail(ctx context.Context, studentIDNumber string) (int, error)
	// Count returns the current failure count without modifying it.
	Count(ctx context.Context, studentIDNumber string) (int, error)
	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, studentIDNumber string) error
}

// Policy decides when an account is locked. The cooldown window is owned by
// the store, which expires counters on its own schedule.
type Policy struct {
	store     Store
	threshold int
}

func NewPolicy(store Store, threshold int) *Policy {
	return &Policy{store: store, threshold: threshold}
}

// Locked reports whether further login attempts should be rejected.
func (p *Policy) Locked(ctx context.Context, studentIDNumber string) (bool, error) {
	n, err := p.store.Count(ctx, studentIDNumber)
	if err != nil {
		return false, err
	}
	return n >= p.threshold, nil
}

// RecordFailure registers a failed attempt and reports whether the account is
// now locked.
func (p *Policy) RecordFailure(ctx context.Context, studentIDNumber string) (bool, error) {
	n, err := p.store.Fail(ctx, studentIDNumber)
	if err != nil {
		return false, err
	}
	return n >= p.threshold, nil
}

// RecordSuccess clears any accumulated failures.
func (p *Policy) RecordSuccess(ctx context.Context, studentIDNumber string) error {
	return p.store.Reset(ctx, studentIDNumber)
}
