// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import (
	"fmt"

	"periph.io/x/ws281x/host/pmem"
)

// altFunc is one of a GPIO pin's six alternate function selections.
type altFunc uint32

const (
	altFunc0 altFunc = iota
	altFunc1
	altFunc2
	altFunc3
	altFunc4
	altFunc5
)

// pwmAlt maps channel -> pin -> the alt function that routes the pin to
// that PWM channel's serializer output. Pins absent from a channel's map
// have no PWM route on that channel.
var pwmAlt = map[int]map[int]altFunc{
	0: {12: altFunc0, 18: altFunc5, 40: altFunc0, 52: altFunc1},
	1: {13: altFunc0, 19: altFunc5, 41: altFunc0, 45: altFunc0, 53: altFunc1},
}

// gpioRegisters is the memory layout of the GPIO function-select, set and
// clear register banks.
//
// Page 90 onward, BCM2835 ARM Peripherals.
type gpioRegisters struct {
	fsel     [6]uint32 // 0x00 GPFSELn, 3 bits per pin, 10 pins per word
	reserved0 uint32
	set      [2]uint32 // 0x1c GPSETn
	reserved1 uint32
	clr      [2]uint32 // 0x28 GPCLRn
}

// GpioConfig programs GPIO pins into their PWM alternate function.
type GpioConfig struct {
	regs *gpioRegisters
}

func newGpioConfig(mem pmem.Mem) (*GpioConfig, error) {
	var regs *gpioRegisters
	if err := mem.AsPOD(&regs); err != nil {
		return nil, err
	}
	return &GpioConfig{regs: regs}, nil
}

// ConfigurePWM sets pin's function-select field to the alt function that
// routes it to channel's PWM serializer. The field lives at bit (pin%10)*3
// of word pin/10.
func (g *GpioConfig) ConfigurePWM(channel, pin int) error {
	alt, ok := pwmAlt[channel][pin]
	if !ok {
		return fmt.Errorf("bcm283x: pin %d has no PWM alternate function on channel %d", pin, channel)
	}
	word := pin / 10
	shift := uint(pin%10) * 3
	g.regs.fsel[word] = (g.regs.fsel[word] &^ (7 << shift)) | (uint32(alt) << shift)
	return nil
}
