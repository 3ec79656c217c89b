// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bcm283x drives WS281x/SK6812 strips over the BCM283x/BCM27xx PWM
// peripheral paced by DMA, the complete transport for Raspberry Pi 1
// through 4.
package bcm283x

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"unsafe"

	"periph.io/x/ws281x"
	"periph.io/x/ws281x/host/hardware"
	"periph.io/x/ws281x/host/pmem"
	"periph.io/x/ws281x/host/videocore"
)

const (
	gpioOffset  = 0x200000
	pwmOffset   = 0x20C000
	clockOffset = 0x101000
	clockPwmReg = 0xA0 // CM_PWMCTL/CM_PWMDIV pair within the clock manager block
	dmaOffset   = 0x007000
	dma15Offset = 0xE05000
	dmaStride   = 0x100

	cbRegionSize = 256 // control block, padded to its required alignment
)

// bytesPerPixel mirrors the ws281x package's StripType white-channel test;
// StripType's bit layout is public so this needs no cooperation from that
// package.
func bytesPerPixel(s ws281x.StripType) int {
	if uint32(s)&0xFF000000 != 0 {
		return 4
	}
	return 3
}

// bufferByteCount reproduces the reference library's PWM_BYTE_COUNT sizing:
// 3 PWM bits per data bit, 8 bits per byte, plus a reset gap sized from
// freqHz. The whole-byte count is rounded down, not up, to a multiple of 8
// bytes, and then 8 bytes (two 32-bit words) are added; the result always
// has room for every bit. It is the same formula as the ws281x package's
// byteCount.
//
// This is deliberately independent from the ws281x package's own copy: the
// transport must size its DMA-visible buffer before any Render call
// exists to ask the encoder for bytes.
func bufferByteCount(count, bpp int, freqHz uint32) int {
	const symbolsPerBit = 3
	const bitsPerByte = 8
	const resetMicros = 55
	bits := count*bpp*bitsPerByte*symbolsPerBit + int(uint64(resetMicros)*uint64(freqHz)*symbolsPerBit/1000000)
	return (((bits >> 3) &^ 7) + 4) + 4
}

// transport implements ws281x.Transport over the PWM+DMA peripherals.
type transport struct {
	desc hardware.Descriptor
	cfg  ws281x.Config

	gpioView  *pmem.View
	pwmView   *pmem.View
	clockView *pmem.View
	dmaView   *pmem.View
	buf       pmem.Mem

	gpio  *GpioConfig
	clock *ClockManager
	pwm   *PwmEngine
	dma   *DmaEngine

	fifoBus  uint32
	bufBytes int // usable byte length of the bit-buffer region
}

func newTransport() ws281x.Transport {
	return &transport{}
}

func (t *transport) String() string {
	return "bcm283x-pwm-dma"
}

// Configure detects the board, maps every register window Init needs,
// configures GPIO alt functions and the clock/PWM peripherals (stopping
// them first), and acquires the DMA-visible bit buffer.
func (t *transport) Configure(cfg *ws281x.Config) error {
	desc, err := hardware.Detect()
	if err != nil {
		return fmt.Errorf("bcm283x: %w", err)
	}
	t.desc = desc
	t.cfg = *cfg

	gpioView, err := pmem.MapGPIO()
	if err != nil {
		gpioView, err = pmem.Map(desc.PeripheralBase+gpioOffset, 4096)
		if err != nil {
			return fmt.Errorf("bcm283x: map gpio: %w", err)
		}
	}
	t.gpioView = gpioView
	if t.gpio, err = newGpioConfig(gpioView); err != nil {
		return fmt.Errorf("bcm283x: gpio: %w", err)
	}

	pwmView, err := pmem.Map(desc.PeripheralBase+pwmOffset, 4096)
	if err != nil {
		return fmt.Errorf("bcm283x: map pwm: %w", err)
	}
	t.pwmView = pwmView
	if t.pwm, err = newPwmEngine(pwmView); err != nil {
		return fmt.Errorf("bcm283x: pwm: %w", err)
	}
	t.fifoBus = physToBus(pwmView.PhysAddr() + FIFOOffset)

	clockView, err := pmem.Map(desc.PeripheralBase+clockOffset+clockPwmReg, 4096)
	if err != nil {
		return fmt.Errorf("bcm283x: map clock: %w", err)
	}
	t.clockView = clockView
	if t.clock, err = newClockManager(clockView); err != nil {
		return fmt.Errorf("bcm283x: clock: %w", err)
	}

	dmaNum := cfg.DmaNum
	dmaBase := desc.PeripheralBase + dmaOffset + dmaStride*uint64(dmaNum)
	if dmaNum == 15 {
		dmaBase = desc.PeripheralBase + dma15Offset
	}
	dmaView, err := pmem.Map(dmaBase, 4096)
	if err != nil {
		return fmt.Errorf("bcm283x: map dma channel %d: %w", dmaNum, err)
	}
	t.dmaView = dmaView
	if t.dma, err = newDmaEngine(dmaView); err != nil {
		return fmt.Errorf("bcm283x: dma: %w", err)
	}

	for i := range cfg.Channels {
		ch := &cfg.Channels[i]
		if ch.Count == 0 {
			continue
		}
		if err := t.gpio.ConfigurePWM(i, ch.GpioPin); err != nil {
			return fmt.Errorf("bcm283x: %w", err)
		}
	}

	freqHz := uint32(cfgFreqHz(cfg))
	t.clock.Stop()
	if err := t.clock.Configure(freqHz); err != nil {
		return fmt.Errorf("bcm283x: clock configure: %w", err)
	}
	ch0 := &cfg.Channels[0]
	ch1 := &cfg.Channels[1]
	if err := t.pwm.Configure(ch0.Count > 0, ch0.Invert, ch1.Count > 0, ch1.Invert); err != nil {
		return fmt.Errorf("bcm283x: pwm configure: %w", err)
	}

	maxBytes := 0
	for i := range cfg.Channels {
		ch := &cfg.Channels[i]
		if ch.Count == 0 {
			continue
		}
		if n := bufferByteCount(ch.Count, bytesPerPixel(ch.StripType), freqHz); n > maxBytes {
			maxBytes = n
		}
	}
	words := maxBytes / 4
	if ch0.Count > 0 && ch1.Count > 0 {
		words *= 2
	}
	t.bufBytes = words * 4

	allocSize := (cbRegionSize + t.bufBytes + 0xFFF) &^ 0xFFF
	buf, err := t.allocDmaBuffer(allocSize)
	if err != nil {
		return fmt.Errorf("bcm283x: allocate dma buffer: %w", err)
	}
	t.buf = buf
	return nil
}

// allocDmaBuffer picks the uncached physical allocator per 4.3: the
// VideoCore mailbox on Pi1 through Pi3, and a best-effort anonymous
// mmap-plus-page-lock allocation on Pi4, where the mailbox allocator's
// bus-address assumptions don't hold. The Pi4 path inherits host/pmem's
// single-page allocation cap, so it only supports small LED counts.
func (t *transport) allocDmaBuffer(size int) (pmem.Mem, error) {
	if t.desc.Family == hardware.Pi4 {
		return pmem.Alloc(size)
	}
	flags := uint32(0x4) // flagDirect: uncached alias
	if t.desc.VideoCoreBase == 0x40000000 {
		flags = 0xC // flagL1Nonallocating: L1/L2-coherent alias
	}
	return videocore.AllocFlags(size, flags)
}

// cfgFreqHz mirrors Config.freqHz without depending on its unexported
// method; physic.Frequency's underlying unit is microHertz.
func cfgFreqHz(cfg *ws281x.Config) uint32 {
	f := cfg.Freq
	if f == 0 {
		f = ws281x.DefaultFreq
	}
	return uint32(f / 1000000)
}

// busAddr translates a DMA-buffer physical address, as reported by the
// chosen allocator, into the bus address the DMA engine must use.
func (t *transport) busAddr(phys uint64) uint32 {
	return uint32(phys&^0xC0000000) | uint32(t.desc.VideoCoreBase)
}

// bytesAsUint32 reinterprets b as a []uint32 over the same backing array,
// the way pmem.Slice.Uint32 does for the pmem.Mem concrete types; the
// pmem.Mem interface only promises Bytes(), so callers holding an
// interface value reproduce the same reinterpretation by hand.
func bytesAsUint32(b []byte) []uint32 {
	header := *(*reflect.SliceHeader)(unsafe.Pointer(&b))
	header.Len /= 4
	header.Cap /= 4
	return *(*[]uint32)(unsafe.Pointer(&header))
}

func (t *transport) Submit(words []uint32) error {
	buf := bytesAsUint32(t.buf.Bytes())
	cbWords := cbRegionSize / 4
	n := copy(buf[cbWords:], words)
	for i := cbWords + n; i < len(buf); i++ {
		buf[i] = 0
	}

	var cb *controlBlock
	if err := t.buf.AsPOD(&cb); err != nil {
		return fmt.Errorf("bcm283x: %w", err)
	}
	srcBus := t.busAddr(t.buf.PhysAddr()) + cbRegionSize
	buildControlBlock(cb, srcBus, t.fifoBus, uint32(n*4))
	t.dma.Start(t.busAddr(t.buf.PhysAddr()))
	return nil
}

func (t *transport) Wait(ctx context.Context) error {
	return t.dma.Wait(ctx)
}

func (t *transport) Close() error {
	if t.dma != nil {
		t.dma.Reset()
	}
	if t.pwm != nil {
		t.pwm.Stop()
	}
	if t.clock != nil {
		t.clock.Stop()
	}
	var err error
	if t.buf != nil {
		err = t.buf.Close()
	}
	for _, v := range []*pmem.View{t.dmaView, t.clockView, t.pwmView} {
		if v != nil {
			if e := v.Close(); e != nil && err == nil {
				err = e
			}
		}
	}
	return err
}

func init() {
	ws281x.RegisterTransport(newTransport)
	if runtime.GOARCH == "arm" || runtime.GOARCH == "arm64" {
		// A thin periph.Driver registration for parity with this package's
		// ancestry: cmd/ws281x-demo calls periph.Init() for its diagnostic
		// driver report before constructing a Controller. The actual
		// hardware setup happens lazily in Configure, triggered by
		// Controller.Init, not here.
		registerPeriphDriver()
	}
}
