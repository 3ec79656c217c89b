// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import (
	"time"

	"periph.io/x/ws281x/host/pmem"
)

type pwmCtl uint32

const (
	pwmPWEN1 pwmCtl = 1 << 0
	pwmMODE1 pwmCtl = 1 << 1
	pwmPOLA1 pwmCtl = 1 << 4
	pwmUSEF1 pwmCtl = 1 << 5
	pwmCLRF1 pwmCtl = 1 << 6
	pwmPWEN2 pwmCtl = 1 << 8
	pwmMODE2 pwmCtl = 1 << 9
	pwmPOLA2 pwmCtl = 1 << 12
	pwmUSEF2 pwmCtl = 1 << 13
)

const (
	pwmDmacEnab       uint32 = 1 << 31
	pwmDmacPanicShift        = 8
	pwmDmacDreqShift         = 0
)

// pwmRegisters is the PWM peripheral's control block. FIF1 is the shared
// FIFO both channels read from in USEF (FIFO-sourced) mode; the DMA engine
// writes this address as its transfer destination.
//
// Page 141, BCM2835 ARM Peripherals.
type pwmRegisters struct {
	ctl      uint32 // 0x00 CTL
	sta      uint32 // 0x04 STA
	dmac     uint32 // 0x08 DMAC
	reserved uint32
	rng1     uint32 // 0x10 RNG1
	dat1     uint32 // 0x14 DAT1
	fif1     uint32 // 0x18 FIF1
	reserved2 uint32
	rng2     uint32 // 0x20 RNG2
	dat2     uint32 // 0x24 DAT2
}

// PwmEngine serializes FIFO words onto the channel 1 and channel 2 PWM
// outputs at 32 bits per FIFO word.
type PwmEngine struct {
	regs *pwmRegisters
}

func newPwmEngine(mem pmem.Mem) (*PwmEngine, error) {
	var regs *pwmRegisters
	if err := mem.AsPOD(&regs); err != nil {
		return nil, err
	}
	return &PwmEngine{regs: regs}, nil
}

// FIFOOffset is FIF1's byte offset within the PWM register block, needed by
// the caller to compute the DMA destination bus address.
const FIFOOffset = 0x18

// Configure sets both channels to serialize 32 bits per FIFO word, clears
// the FIFO, enables the DMA request pacing, and enables transmit on
// whichever of ch0Active/ch1Active is set, with the requested polarity
// inversion.
func (p *PwmEngine) Configure(ch0Active, ch0Invert, ch1Active, ch1Invert bool) error {
	p.regs.ctl = 0
	time.Sleep(settleDelay)
	p.regs.rng1 = 32
	p.regs.rng2 = 32
	time.Sleep(settleDelay)
	p.regs.ctl = uint32(pwmCLRF1)
	time.Sleep(settleDelay)
	p.regs.dmac = pwmDmacEnab | 7<<pwmDmacPanicShift | 3<<pwmDmacDreqShift
	time.Sleep(settleDelay)

	var ctl pwmCtl
	if ch0Active {
		ctl |= pwmUSEF1 | pwmMODE1
		if ch0Invert {
			ctl |= pwmPOLA1
		}
	}
	if ch1Active {
		ctl |= pwmUSEF2 | pwmMODE2
		if ch1Invert {
			ctl |= pwmPOLA2
		}
	}
	p.regs.ctl = uint32(ctl)
	if ch0Active {
		ctl |= pwmPWEN1
	}
	if ch1Active {
		ctl |= pwmPWEN2
	}
	p.regs.ctl = uint32(ctl)
	time.Sleep(settleDelay)
	return nil
}

// Stop disables both channels' transmit enable.
func (p *PwmEngine) Stop() {
	p.regs.ctl = 0
	time.Sleep(settleDelay)
}
