// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rp1 drives WS281x/SK6812 strips through the RP1 I/O controller's
// kernel-mode WS281x PWM driver, exposed to userspace as /dev/ws281x_pwm on
// Raspberry Pi 5 and later. All register access and bit timing happen in
// the kernel; this transport only issues the device's ioctls and a single
// bulk write of the encoded bit buffer per render.
package rp1

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"unsafe"

	"golang.org/x/sys/unix"
	"periph.io/x/ws281x"
)

const devicePath = "/dev/ws281x_pwm"

// ioctl number layout, Linux's asm-generic/ioctl.h convention.
const (
	iocNrShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocRead  = 2
	iocWrite = 1
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNrShift | size<<iocSizeShift
}

// ioctlMagic is RP1_WS281X_PWM_IOCTL_MAGIC, 0x6a67. It doesn't fit the
// 8-bit "type" field the _IOC layout reserves for it, so it bleeds into
// the size and direction bits exactly as the kernel driver's own _IOR/
// _IOWR/_IOW macro expansions do; reproducing that overflow verbatim is
// required for the numbers to match what the driver actually registered.
const ioctlMagic = 0x6a67

// The header computes these from pointer types (uint32_t * and
// rp1_ws281x_pwm_ioctl_reg_t *) rather than the pointed-to types, so the
// size field the macros embed is 8 (a pointer's width), not 4 or
// sizeof(reg). The driver's copy_from_user/copy_to_user calls use the
// real struct size regardless; only the ioctl number itself carries the
// pointer-sized quirk.
const ptrSize = 8

var (
	ioctlVersion  = ioc(iocRead, ioctlMagic, 0, ptrSize)
	ioctlRegRead  = ioc(iocRead|iocWrite, ioctlMagic, 1, ptrSize)
	ioctlRegWrite = ioc(iocWrite, ioctlMagic, 2, ptrSize)
)

// reg mirrors rp1_ws281x_pwm_ioctl_reg_t.
type reg struct {
	flags     uint32
	regOffset uint32
	regValue  uint32
}

// Transport implements ws281x.Transport over the RP1 WS281x PWM character
// device. Configuration beyond opening the device is a no-op: the kernel
// driver owns clock and GPIO setup, selected by its own devicetree binding
// rather than anything this package chooses.
type Transport struct {
	f *os.File
}

// New constructs an unopened Transport; Configure does the open.
func New() ws281x.Transport {
	return &Transport{}
}

func (t *Transport) String() string { return "rp1-chardevice" }

func (t *Transport) Configure(cfg *ws281x.Config) error {
	f, err := os.OpenFile(devicePath, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("rp1: %w", err)
	}
	t.f = f
	var version uint32
	if err := t.ioctl(ioctlVersion, unsafe.Pointer(&version)); err != nil {
		f.Close()
		t.f = nil
		return fmt.Errorf("rp1: version: %w", err)
	}
	return nil
}

// regRead issues RP1_WS281X_PWM_IOCTL_REG_READ, kept for diagnostics;
// nothing in the render path needs it since the kernel driver does
// its own register programming from the devicetree clock configuration.
func (t *Transport) regRead(offset uint32) (uint32, error) {
	r := reg{regOffset: offset}
	if err := t.ioctl(ioctlRegRead, unsafe.Pointer(&r)); err != nil {
		return 0, err
	}
	return r.regValue, nil
}

func (t *Transport) regWrite(offset, value uint32) error {
	r := reg{regOffset: offset, regValue: value}
	return t.ioctl(ioctlRegWrite, unsafe.Pointer(&r))
}

func (t *Transport) ioctl(op uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, t.f.Fd(), op, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Submit writes the encoded bit buffer to the device in one call; the
// driver queues it for the next DMA-paced PWM cycle and returns
// immediately.
func (t *Transport) Submit(words []uint32) error {
	header := *(*reflect.SliceHeader)(unsafe.Pointer(&words))
	header.Len *= 4
	header.Cap *= 4
	buf := *(*[]byte)(unsafe.Pointer(&header))
	n, err := t.f.Write(buf)
	if err != nil {
		return fmt.Errorf("rp1: write: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("rp1: short write: %d of %d bytes", n, len(buf))
	}
	return nil
}

// Wait is a no-op: the device's write(2) call above is already a
// synchronous handoff to the kernel driver's queue; there is no separate
// completion to poll for from userspace.
func (t *Transport) Wait(ctx context.Context) error { return nil }

func (t *Transport) Close() error {
	if t.f == nil {
		return nil
	}
	err := t.f.Close()
	t.f = nil
	return err
}

func init() {
	ws281x.RegisterTransport(New)
}
