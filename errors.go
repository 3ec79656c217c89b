// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ws281x

import "fmt"

// Kind identifies the broad category of a failure returned by this package.
//
// Kind forms a flat enumeration on purpose: callers of init/render/wait
// branch on these, not on the wrapped cause.
type Kind int

const (
	// ErrUnknown is only used as a zero value; no function returns it.
	ErrUnknown Kind = iota
	// ErrHardwareUnsupported means the host's revision could not be mapped to
	// a known peripheral/videocore base pair.
	ErrHardwareUnsupported
	// ErrOutOfMemory means a memory allocation request failed or could not be
	// satisfied contiguously.
	ErrOutOfMemory
	// ErrMailboxOpen means the VideoCore mailbox device could not be opened.
	ErrMailboxOpen
	// ErrMailboxAlloc means the VideoCore refused or failed a memory
	// allocation request.
	ErrMailboxAlloc
	// ErrMailboxLock means the VideoCore refused or failed to lock a memory
	// allocation to retrieve its bus address.
	ErrMailboxLock
	// ErrMapMem means mapping a physical memory range into the process failed.
	ErrMapMem
	// ErrMapRegisters means mapping a peripheral's register window failed.
	ErrMapRegisters
	// ErrUnsupportedPin means a configured GPIO pin has no PWM alternate
	// function for the requested channel.
	ErrUnsupportedPin
	// ErrPwmSetup means configuring the clock manager or PWM peripheral
	// failed.
	ErrPwmSetup
	// ErrDmaError means the DMA engine reported an error after a transfer.
	ErrDmaError
)

// Error makes Kind usable as the target of errors.Is(err, SomeKind).
func (k Kind) Error() string {
	return k.String()
}

func (k Kind) String() string {
	switch k {
	case ErrHardwareUnsupported:
		return "hardware unsupported"
	case ErrOutOfMemory:
		return "out of memory"
	case ErrMailboxOpen:
		return "mailbox open"
	case ErrMailboxAlloc:
		return "mailbox alloc"
	case ErrMailboxLock:
		return "mailbox lock"
	case ErrMapMem:
		return "map memory"
	case ErrMapRegisters:
		return "map registers"
	case ErrUnsupportedPin:
		return "unsupported pin"
	case ErrPwmSetup:
		return "pwm setup"
	case ErrDmaError:
		return "dma error"
	default:
		return "unknown"
	}
}

// Error wraps a Kind with the operation that produced it and the underlying
// cause, plus an optional hardware status value (e.g. the DMA DEBUG
// register) useful for post-mortem diagnostics.
type Error struct {
	Kind   Kind
	Op     string
	Err    error
	Status uint32
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ws281x: %s: %s: %v (status=0x%08x)", e.Op, e.Kind, e.Err, e.Status)
	}
	return fmt.Sprintf("ws281x: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, SomeKind) by matching on Kind, not identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(Kind)
	return ok && t == e.Kind
}

func wrapErr(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
