// Package timeout provides the work-and-wall-clock budget shared by every
// stage of a solve.
//
// A Handle counts abstract units of work and optionally enforces a work quota
// and a wall-clock deadline. The quota is tested on every check; the clock is
// only consulted every 100th check, keeping the check cheap enough to place in
// the inner loops of the tabulator, the frontier search and the tree builder.
//
// QuickCheck never blocks. It returns true once either budget is exhausted,
// and keeps returning true afterwards; the caller is responsible for
// translating that into the appropriate typed error for its stage.
package timeout

import "time"

// clockCheckInterval is how many work units pass between wall-clock reads.
const clockCheckInterval = 100

// Handle tracks work done against an optional deadline and work quota.
// The zero value is not usable; construct with New or Unlimited.
//
// A Handle belongs to a single solve and is not safe for concurrent use.
type Handle struct {
	deadline    time.Time
	hasDeadline bool
	workQuota   uint64
	hasQuota    bool
	workDone    uint64
	expired     bool
	start       time.Time
}

// New creates a handle with the given budgets. A zero limit disables the
// deadline; a zero quota disables the work quota.
func New(limit time.Duration, workQuota uint64) *Handle {
	h := &Handle{
		workQuota: workQuota,
		hasQuota:  workQuota > 0,
		start:     time.Now(),
	}
	if limit > 0 {
		h.deadline = h.start.Add(limit)
		h.hasDeadline = true
	}
	return h
}

// Unlimited creates a handle with no deadline and no work quota.
// Work units are still counted for reporting.
func Unlimited() *Handle {
	return New(0, 0)
}

// QuickCheck records one unit of work and reports whether a budget has been
// exhausted. The work quota is tested on every call; the wall clock on every
// 100th. Once it returns true it latches and returns true forever.
func (h *Handle) QuickCheck() bool {
	h.workDone++
	if h.expired {
		return true
	}
	if h.hasQuota && h.workDone > h.workQuota {
		h.expired = true
		return true
	}
	if h.hasDeadline && h.workDone%clockCheckInterval == 0 && time.Now().After(h.deadline) {
		h.expired = true
		return true
	}
	return false
}

// WorkDone returns the number of work units recorded so far.
func (h *Handle) WorkDone() uint64 {
	return h.workDone
}

// Elapsed returns the wall-clock time since the handle was created.
func (h *Handle) Elapsed() time.Duration {
	return time.Since(h.start)
}
