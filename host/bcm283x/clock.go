// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import (
	"time"

	"periph.io/x/ws281x/host/pmem"
)

// oscFreq is the crystal oscillator frequency clocking CM_PWM's source 1
// (the oscillator), shared by every bcm283x generation this package
// targets.
const oscFreq = 19200000

// settleDelay is the datasheet-recommended pause between clock manager
// register writes; the block is rumored to lock up without it.
const settleDelay = 10 * time.Microsecond

type cmCtl uint32

const (
	cmPasswd cmCtl = 0x5A << 24
	cmBusy   cmCtl = 1 << 7
	cmKill   cmCtl = 1 << 5
	cmEnab   cmCtl = 1 << 4
	cmSrcOsc cmCtl = 1 // SRC field, 3:0; 1 selects the oscillator
)

const cmDivPasswd uint32 = 0x5A << 24
const cmDivIShift = 12

// clockRegisters is CM_PWMCTL/CM_PWMDIV, the control/divider pair for the
// PWM clock generator.
//
// Page 107, BCM2835 ARM Peripherals.
type clockRegisters struct {
	ctl uint32 // 0x00
	div uint32 // 0x04
}

// ClockManager drives the PWM peripheral's clock generator: oscillator
// source, divider, kill/enable, gated by the datasheet's password
// requirement on every write.
type ClockManager struct {
	regs *clockRegisters
}

func newClockManager(mem pmem.Mem) (*ClockManager, error) {
	var regs *clockRegisters
	if err := mem.AsPOD(&regs); err != nil {
		return nil, err
	}
	return &ClockManager{regs: regs}, nil
}

// Configure programs DIVI = oscFreq / (3 * freqHz) and switches the clock
// onto the oscillator, following the kill/divider/source/enable/busy
// sequence the clock manager requires.
func (c *ClockManager) Configure(freqHz uint32) error {
	c.kill()
	divi := oscFreq / (3 * freqHz)
	c.regs.div = cmDivPasswd | (divi << cmDivIShift)
	c.regs.ctl = uint32(cmPasswd | cmSrcOsc)
	c.regs.ctl = uint32(cmPasswd | cmSrcOsc | cmEnab)
	time.Sleep(settleDelay)
	for cmCtl(c.regs.ctl)&cmBusy == 0 {
	}
	return nil
}

// kill stops the clock and spins until BUSY clears, the prerequisite to any
// divider or source change.
func (c *ClockManager) kill() {
	c.regs.ctl = uint32(cmPasswd | cmKill)
	time.Sleep(settleDelay)
	for cmCtl(c.regs.ctl)&cmBusy != 0 {
	}
}

// Stop kills the clock, leaving it in the state Configure expects to find
// on the next call.
func (c *ClockManager) Stop() {
	c.kill()
}
