// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ws281x

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapErrIsMatchesKind(t *testing.T) {
	cause := errors.New("boom")
	err := wrapErr(ErrDmaError, "Render", cause)
	if !errors.Is(err, ErrDmaError) {
		t.Fatal("errors.Is(err, ErrDmaError) = false, want true")
	}
	if errors.Is(err, ErrOutOfMemory) {
		t.Fatal("errors.Is(err, ErrOutOfMemory) = true, want false")
	}
}

func TestWrapErrUnwrapsToCause(t *testing.T) {
	cause := errors.New("boom")
	err := wrapErr(ErrDmaError, "Render", cause)
	if !errors.Is(err, cause) {
		t.Fatal("the wrapped cause must be reachable via errors.Is/errors.Unwrap")
	}
}

func TestWrapErrNilPassesThrough(t *testing.T) {
	if err := wrapErr(ErrDmaError, "Render", nil); err != nil {
		t.Fatalf("wrapErr(..., nil) = %v, want nil", err)
	}
}

func TestErrorMessageIncludesStatus(t *testing.T) {
	e := &Error{Kind: ErrDmaError, Op: "Wait", Err: errors.New("timeout"), Status: 0x42}
	msg := e.Error()
	if msg == "" {
		t.Fatal("Error() must not be empty")
	}
	if !strings.Contains(msg, "status=0x00000042") {
		t.Fatalf("Error() = %q, want it to include status=0x00000042", msg)
	}
}
