package mirrorcache

import (
	"errors"
	"fmt"
)

// ErrQueueFull is the cause carried by a PersistError when the write-behind
// queue had no room and the durable operation was dropped.
var ErrQueueFull = errors.New("mirrorcache: durable queue full")

// Op identifies which durable operation a PersistError came from.
type Op string

const (
	OpPut    Op = "put"
	OpDelete Op = "delete"
	OpClear  Op = "clear"
)

// PersistError wraps a failure of an asynchronous durable operation. It is
// delivered to Options.OnError and Hooks.PersistFailed; it is never returned
// to the caller of the mirror mutation that triggered it.
type PersistError struct {
	Op  Op
	Key string // empty for clear
	Err error
}

func (e *PersistError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("mirrorcache: durable %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("mirrorcache: durable %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
