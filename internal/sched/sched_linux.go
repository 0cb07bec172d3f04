// internal/sched/sched_linux.go
package sched

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func setHighPriority() error {
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, niceHighPriority); err != nil {
		return fmt.Errorf("sched: setpriority: %w", err)
	}
	return nil
}

func setRealtime() error {
	attr := unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   unix.SCHED_FIFO,
		Priority: fifoPriority,
	}
	if err := unix.SchedSetAttr(0, &attr, 0); err != nil {
		return fmt.Errorf("sched: sched_setattr fifo: %w", err)
	}
	// Page faults in the run loop would break the cycle budget.
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("sched: mlockall: %w", err)
	}
	return nil
}
