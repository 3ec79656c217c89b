// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestClockManagerKillNoOp(t *testing.T) {
	// BUSY starts low, same as a clock that was never enabled; kill must
	// return without blocking.
	mem := newFakeMem(4096)
	c, err := newClockManager(mem)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	go func() {
		c.kill()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("kill blocked with BUSY already low")
	}
	if c.regs.ctl&uint32(cmKill) == 0 {
		t.Fatal("kill bit was not written")
	}
}

func TestClockManagerConfigureDivisor(t *testing.T) {
	mem := newFakeMem(4096)
	c, err := newClockManager(mem)
	if err != nil {
		t.Fatal(err)
	}

	var busy int32
	done := make(chan error, 1)
	go func() {
		for atomic.LoadInt32(&busy) == 0 {
			time.Sleep(time.Microsecond)
		}
		c.regs.ctl |= uint32(cmBusy)
	}()
	go func() {
		atomic.StoreInt32(&busy, 1)
		done <- c.Configure(800000)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("Configure did not observe BUSY going high")
	}

	wantDivi := uint32(oscFreq / (3 * 800000))
	if gotDivi := c.regs.div >> cmDivIShift; gotDivi != wantDivi {
		t.Fatalf("divi = %d, want %d", gotDivi, wantDivi)
	}
	if c.regs.ctl&uint32(cmEnab) == 0 {
		t.Fatal("clock was not enabled")
	}
}
