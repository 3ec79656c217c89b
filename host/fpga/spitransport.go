// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package fpga drives WS281x/SK6812 strips through an FPGA companion board
// reached over SPI. Like the other backends it consumes the already
// PWM-symbol-encoded bit buffer the shared BitEncoder produces; what
// differs is only the transport, an SPI register-write framing instead of
// PWM+DMA, bulk-uploading the buffer into one of the FPGA's two pixel
// memory banks and flipping between them each render.
package fpga

import (
	"context"
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"periph.io/x/ws281x"
)

const (
	logicFreqHz    = 60000000
	fpgaTargetFreq = 800000 * 3 // 3 transitions per PWM clock, fixed in the FPGA image

	bufWords = 1024 // mem0/mem1 each hold this many 32-bit words of the encoded bit buffer

	regConf      = 0x04
	regDivide    = 0x08
	regStopCount = 0x0C
	regMem0Len   = 0x18
	regMem1Len   = 0x1C
	regMem0      = 0x1000
	regMem1      = 0x2000

	confReset        = 1 << 31
	confOutputEnable = 1 << 9
	confBPW32        = 32 << 0 // the buffer is always streamed as 32-bit words

	refreshClocksPerUs = 50 // stop-idle time to complete a refresh, in µs

	cmdWrite     = 1 << 31
	cmdIncrement = 1 << 29
	addrMask     = 0xFFFFFF

	spiSpeedHz = 40 * physic.MegaHertz
)

// Transport implements ws281x.Transport over a single FPGA channel reached
// through a periph.io SPI port. Configure reads no field of the Config: the
// clock divider is fixed for an 800kHz stream. The FPGA image this was
// grounded on exposes one WS281x channel per SPI register block, and this
// module only drives the first.
type Transport struct {
	port     spi.PortCloser
	conn     spi.Conn
	base     uint32
	nextBank bool
}

// New constructs an unconnected Transport; Configure does the actual
// device open, matching the lazy-until-Init pattern of the other backends.
func New() ws281x.Transport {
	return &Transport{}
}

func (t *Transport) String() string { return "fpga-spi" }

func (t *Transport) Configure(cfg *ws281x.Config) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("fpga: %w", err)
	}
	p, err := spireg.Open("")
	if err != nil {
		return fmt.Errorf("fpga: %w", err)
	}
	c, err := p.Connect(spiSpeedHz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return fmt.Errorf("fpga: %w", err)
	}
	t.port = p
	t.conn = c
	t.base = 0 // channel 0's register block

	if err := t.writeReg(regConf, confReset); err != nil {
		return fmt.Errorf("fpga: reset: %w", err)
	}
	if err := t.writeReg(regConf, confBPW32|confOutputEnable); err != nil {
		return fmt.Errorf("fpga: configure: %w", err)
	}
	if err := t.writeReg(regStopCount, refreshClocksPerUs*(logicFreqHz/1000000)); err != nil {
		return fmt.Errorf("fpga: stop count: %w", err)
	}
	if err := t.writeReg(regDivide, logicFreqHz/fpgaTargetFreq); err != nil {
		return fmt.Errorf("fpga: clock divide: %w", err)
	}
	return nil
}

// Submit bulk-uploads the encoded bit buffer into whichever memory bank
// isn't currently being scanned out, then flips the bank so the next
// Submit targets the other one while this one drains.
func (t *Transport) Submit(words []uint32) error {
	n := len(words)
	if n > bufWords {
		n = bufWords
	}
	memAddr := uint32(regMem0)
	lenAddr := uint32(regMem0Len)
	if t.nextBank {
		memAddr = regMem1
		lenAddr = regMem1Len
	}
	if err := t.writeData(t.base+memAddr, words[:n]); err != nil {
		return fmt.Errorf("fpga: %w", err)
	}
	if err := t.writeReg(t.base+lenAddr, uint32(n)); err != nil {
		return fmt.Errorf("fpga: %w", err)
	}
	t.nextBank = !t.nextBank
	return nil
}

// Wait is a no-op: the FPGA scans its buffer independently, and the next
// Submit's writeData/writeReg pair already targets the idle bank.
func (t *Transport) Wait(ctx context.Context) error { return nil }

func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	t.conn = nil
	return err
}

func (t *Transport) writeReg(addr, data uint32) error {
	w := make([]byte, 8)
	binary.BigEndian.PutUint32(w[0:4], cmdWrite|(addr&addrMask))
	binary.BigEndian.PutUint32(w[4:8], data)
	r := make([]byte, len(w))
	return t.conn.Tx(w, r)
}

func (t *Transport) writeData(addr uint32, data []uint32) error {
	w := make([]byte, 4*(len(data)+1))
	binary.BigEndian.PutUint32(w[0:4], cmdWrite|cmdIncrement|(addr&addrMask))
	for i, v := range data {
		binary.BigEndian.PutUint32(w[4+4*i:8+4*i], v)
	}
	r := make([]byte, len(w))
	return t.conn.Tx(w, r)
}

func init() {
	ws281x.RegisterTransport(New)
}
