// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ws281x

import (
	"context"
	"errors"
	"testing"
)

// fakeTransport is a Transport double for exercising Controller's state
// machine without any real hardware backend.
type fakeTransport struct {
	configureErr error
	submitErr    error
	waitErr      error

	configured bool
	submitted  [][]uint32
	waited     int
	closed     bool
}

func (f *fakeTransport) String() string { return "fake" }

func (f *fakeTransport) Configure(cfg *Config) error {
	f.configured = true
	return f.configureErr
}

func (f *fakeTransport) Submit(words []uint32) error {
	f.submitted = append(f.submitted, words)
	return f.submitErr
}

func (f *fakeTransport) Wait(ctx context.Context) error {
	f.waited++
	return f.waitErr
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

// withFakeTransport registers ft as the only transport factory for the
// duration of the calling test, restoring the prior registrations after.
func withFakeTransport(t *testing.T, ft *fakeTransport) {
	t.Helper()
	saved := transportFactories
	transportFactories = []transportFactory{func() Transport { return ft }}
	t.Cleanup(func() { transportFactories = saved })
}

func TestControllerInitThenRenderThenWait(t *testing.T) {
	ft := &fakeTransport{}
	withFakeTransport(t, ft)

	c := NewController()
	if err := c.Init(validConfig()); err != nil {
		t.Fatalf("Init() = %v, want nil", err)
	}
	if !ft.configured {
		t.Fatal("Init did not call configure")
	}
	if got := len(c.Leds(0)); got != 10 {
		t.Fatalf("len(Leds(0)) = %d, want 10", got)
	}

	if err := c.Render(); err != nil {
		t.Fatalf("Render() = %v, want nil", err)
	}
	if len(ft.submitted) != 1 {
		t.Fatalf("submit called %d times, want 1", len(ft.submitted))
	}

	if err := c.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() = %v, want nil", err)
	}
	if ft.waited != 1 {
		t.Fatalf("wait called %d times, want 1", ft.waited)
	}
}

func TestControllerRenderWaitsForPriorTransfer(t *testing.T) {
	ft := &fakeTransport{}
	withFakeTransport(t, ft)
	c := NewController()
	if err := c.Init(validConfig()); err != nil {
		t.Fatal(err)
	}
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	// A second Render before Wait must first wait for the first transfer.
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	if ft.waited != 1 {
		t.Fatalf("wait called %d times before the second submit, want 1", ft.waited)
	}
	if len(ft.submitted) != 2 {
		t.Fatalf("submit called %d times, want 2", len(ft.submitted))
	}
}

func TestControllerInitTwiceFails(t *testing.T) {
	ft := &fakeTransport{}
	withFakeTransport(t, ft)
	c := NewController()
	if err := c.Init(validConfig()); err != nil {
		t.Fatal(err)
	}
	if err := c.Init(validConfig()); err == nil {
		t.Fatal("expected an error calling Init twice")
	}
}

func TestControllerRenderBeforeInitFails(t *testing.T) {
	c := NewController()
	if err := c.Render(); err == nil {
		t.Fatal("expected an error calling Render before Init")
	}
}

func TestControllerInitFailurePropagatesHardwareUnsupported(t *testing.T) {
	ft := &fakeTransport{configureErr: errors.New("no hardware")}
	withFakeTransport(t, ft)
	c := NewController()
	err := c.Init(validConfig())
	if err == nil {
		t.Fatal("expected an error when every transport fails to configure")
	}
	if !errors.Is(err, ErrHardwareUnsupported) {
		t.Fatalf("errors.Is(err, ErrHardwareUnsupported) = false, err = %v", err)
	}
}

func TestControllerInitRejectsInvalidConfig(t *testing.T) {
	ft := &fakeTransport{}
	withFakeTransport(t, ft)
	c := NewController()
	cfg := validConfig()
	cfg.DmaNum = 99
	if err := c.Init(cfg); err == nil {
		t.Fatal("expected Validate's error to propagate from Init")
	}
	if ft.configured {
		t.Fatal("configure must not be called when Validate fails")
	}
}

func TestControllerFiniIsIdempotent(t *testing.T) {
	ft := &fakeTransport{}
	withFakeTransport(t, ft)
	c := NewController()
	if err := c.Init(validConfig()); err != nil {
		t.Fatal(err)
	}
	if err := c.Fini(); err != nil {
		t.Fatalf("Fini() = %v, want nil", err)
	}
	if !ft.closed {
		t.Fatal("Fini did not close the transport")
	}
	if err := c.Fini(); err != nil {
		t.Fatalf("second Fini() = %v, want nil (idempotent)", err)
	}
}

func TestControllerFiniOnUninitIsNoOp(t *testing.T) {
	c := NewController()
	if err := c.Fini(); err != nil {
		t.Fatalf("Fini() on an Uninit controller = %v, want nil", err)
	}
}

func TestControllerWaitWithoutRenderIsNoOp(t *testing.T) {
	ft := &fakeTransport{}
	withFakeTransport(t, ft)
	c := NewController()
	if err := c.Init(validConfig()); err != nil {
		t.Fatal(err)
	}
	if err := c.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() = %v, want nil", err)
	}
	if ft.waited != 0 {
		t.Fatal("wait must not be called on the transport when nothing is rendering")
	}
}

func TestControllerRenderSubmitsErrorAsDmaError(t *testing.T) {
	ft := &fakeTransport{submitErr: errors.New("fifo underrun")}
	withFakeTransport(t, ft)
	c := NewController()
	if err := c.Init(validConfig()); err != nil {
		t.Fatal(err)
	}
	err := c.Render()
	if !errors.Is(err, ErrDmaError) {
		t.Fatalf("errors.Is(err, ErrDmaError) = false, err = %v", err)
	}
}
