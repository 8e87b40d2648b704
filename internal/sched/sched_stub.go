//go:build !linux
// +build !linux

// File: internal/sched/sched_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for platforms without thread naming / FIFO scheduling.

package sched

import "github.com/momentics/statemux/api"

func setNamePlatform(string) error { return api.ErrNotSupported }

func setRealtimePlatform(int) error { return api.ErrNotSupported }
