// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import "testing"

func TestPwmEngineConfigureSingleChannel(t *testing.T) {
	mem := newFakeMem(4096)
	p, err := newPwmEngine(mem)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Configure(true, false, false, false); err != nil {
		t.Fatal(err)
	}
	ctl := pwmCtl(p.regs.ctl)
	if ctl&pwmPWEN1 == 0 {
		t.Fatal("channel 1 was not enabled")
	}
	if ctl&pwmUSEF1 == 0 || ctl&pwmMODE1 == 0 {
		t.Fatal("channel 1 was not set to serializer/FIFO mode")
	}
	if ctl&pwmPOLA1 != 0 {
		t.Fatal("channel 1 polarity should not be inverted")
	}
	if ctl&(pwmPWEN2|pwmUSEF2|pwmMODE2) != 0 {
		t.Fatal("channel 2 should be untouched")
	}
	if p.regs.rng1 != 32 || p.regs.rng2 != 32 {
		t.Fatalf("range registers = %d, %d, want 32, 32", p.regs.rng1, p.regs.rng2)
	}
}

func TestPwmEngineConfigureInvertedDualChannel(t *testing.T) {
	mem := newFakeMem(4096)
	p, err := newPwmEngine(mem)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Configure(true, true, true, false); err != nil {
		t.Fatal(err)
	}
	ctl := pwmCtl(p.regs.ctl)
	if ctl&pwmPOLA1 == 0 {
		t.Fatal("channel 1 should be inverted")
	}
	if ctl&pwmPOLA2 != 0 {
		t.Fatal("channel 2 should not be inverted")
	}
	if ctl&pwmPWEN2 == 0 {
		t.Fatal("channel 2 was not enabled")
	}
}

func TestPwmEngineConfigureDmacWord(t *testing.T) {
	mem := newFakeMem(4096)
	p, err := newPwmEngine(mem)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Configure(true, false, false, false); err != nil {
		t.Fatal(err)
	}
	if p.regs.dmac&pwmDmacEnab == 0 {
		t.Fatal("DMA pacing was not enabled")
	}
	if (p.regs.dmac>>pwmDmacPanicShift)&0xFF != 7 {
		t.Fatalf("panic threshold = %d, want 7", (p.regs.dmac>>pwmDmacPanicShift)&0xFF)
	}
	if (p.regs.dmac>>pwmDmacDreqShift)&0xFF != 3 {
		t.Fatalf("dreq threshold = %d, want 3", (p.regs.dmac>>pwmDmacDreqShift)&0xFF)
	}
}

func TestPwmEngineStop(t *testing.T) {
	mem := newFakeMem(4096)
	p, err := newPwmEngine(mem)
	if err != nil {
		t.Fatal(err)
	}
	p.regs.ctl = 0xFFFFFFFF
	p.Stop()
	if p.regs.ctl != 0 {
		t.Fatalf("ctl = %#x after Stop, want 0", p.regs.ctl)
	}
}
