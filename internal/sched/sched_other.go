// internal/sched/sched_other.go
//go:build !linux

package sched

import "errors"

var errUnsupported = errors.New("sched: elevation requires linux")

func setHighPriority() error { return errUnsupported }

func setRealtime() error { return errUnsupported }
