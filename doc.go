// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ws281x drives WS281x and SK6812 addressable LED strips from a
// Raspberry Pi family single board computer.
//
// It reimplements the PWM+DMA transfer scheme used by the reference
// rpi_ws281x C library: pixel data is encoded into a bitstream of
// fixed-width PWM symbols and shipped out a GPIO pin by a DMA engine paced
// by the PWM peripheral's FIFO DREQ, so the CPU is not on the hot path once
// a frame has been started.
//
// Host support
//
// The bcm283x PWM+DMA backend (host/bcm283x) is the complete implementation
// and targets Raspberry Pi 1 through 4. host/rp1 and host/fpga provide
// narrower transports for the Pi 5 kernel driver and FPGA-over-SPI
// add-on boards respectively.
package ws281x
