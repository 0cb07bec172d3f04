// internal/sched/sched.go
package sched

import (
	"errors"
	"fmt"
	"sync"
)

// Policy selects how the control thread is scheduled.
type Policy string

const (
	// PolicyNone leaves scheduling untouched.
	PolicyNone Policy = "none"
	// PolicyHigh raises priority to nice -19.
	PolicyHigh Policy = "high"
	// PolicyRealtime switches to SCHED_FIFO priority 49 (kernel threads
	// and interrupts run at 50) and locks memory.
	PolicyRealtime Policy = "realtime"
)

// Realtime parameters. Fixed, not configurable.
const (
	niceHighPriority = -19
	fifoPriority     = 49
)

var (
	once     sync.Once
	onceErr  error
	onceUsed Policy
)

// Parse maps a config string to a Policy.
func Parse(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyNone:
		return PolicyNone, nil
	case PolicyHigh:
		return PolicyHigh, nil
	case PolicyRealtime:
		return PolicyRealtime, nil
	}
	return PolicyNone, fmt.Errorf("sched: unknown policy %q", s)
}

// Apply elevates the process scheduling once, globally, before the run
// loop starts. It is not reversible within the same run; a second call
// with a different policy is an error, a second call with the same policy
// returns the first result.
func Apply(p Policy) error {
	applied := false
	once.Do(func() {
		onceUsed = p
		onceErr = apply(p)
		applied = true
	})
	if !applied && p != onceUsed {
		return errors.New("sched: policy already applied")
	}
	return onceErr
}

func apply(p Policy) error {
	switch p {
	case PolicyNone:
		return nil
	case PolicyHigh:
		return setHighPriority()
	case PolicyRealtime:
		return setRealtime()
	}
	return fmt.Errorf("sched: unknown policy %q", p)
}
