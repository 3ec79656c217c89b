// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Adapted from the general-purpose bcm283x DMA driver: this package only
// ever runs one control block per channel (the whole bit buffer in one
// shot), so the chaining, lite-channel bookkeeping and GPIO-bitbang stream
// encoders of the original are gone; what is left is control block layout,
// the status/transfer-info bitfields, and the reset/start/wait sequence.
package bcm283x

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/ws281x/host/pmem"
)

const (
	periphMask = 0x00FFFFFF
	periphBus  = 0x7E000000
)

// dmaStatus is the DMA channel CS register.
//
// Page 47, BCM2835 ARM Peripherals.
type dmaStatus uint32

const (
	dmaReset                    dmaStatus = 1 << 31 // RESET
	dmaWaitForOutstandingWrites dmaStatus = 1 << 28 // WAIT_FOR_OUTSTANDING_WRITES
	dmaPanicPriorityShift                 = 20
	dmaPriorityShift                      = 16
	dmaErrorStatus              dmaStatus = 1 << 8 // ERROR
	dmaInterrupt                dmaStatus = 1 << 2 // INT
	dmaEnd                      dmaStatus = 1 << 1 // END
	dmaActive                   dmaStatus = 1 << 0 // ACTIVE
)

// dmaTransferInfo is the control block's TI field.
//
// Page 50, BCM2835 ARM Peripherals.
type dmaTransferInfo uint32

const (
	dmaNoWideBursts dmaTransferInfo = 1 << 26 // NO_WIDE_BURSTS
	dmaPerMapShift                  = 16
	dmaPWM          dmaTransferInfo = 5 << dmaPerMapShift // PERMAP=5 routes pacing through the PWM DREQ
	dmaSrcInc       dmaTransferInfo = 1 << 8              // SRC_INC
	dmaDstDReq      dmaTransferInfo = 1 << 6              // DEST_DREQ
	dmaWaitResp     dmaTransferInfo = 1 << 3              // WAIT_RESP
)

// dmaDebug is the channel's DEBUG register; writing 1 to the three error
// bits clears them.
type dmaDebug uint32

const (
	dmaReadError           dmaDebug = 1 << 2
	dmaFIFOError           dmaDebug = 1 << 1
	dmaReadLastNotSetError dmaDebug = 1 << 0
)

// controlBlock is the 256-bit (32 byte) DMA program: one source, one
// destination, one length, chained to nothing.
//
// Page 40, BCM2835 ARM Peripherals.
type controlBlock struct {
	transferInfo uint32
	srcAddr      uint32
	dstAddr      uint32
	txLen        uint32
	stride       uint32
	nextCB       uint32
	reserved     [2]uint32
}

// dmaChannel is the memory mapped register bank for one DMA channel.
//
// Page 39, BCM2835 ARM Peripherals.
type dmaChannel struct {
	cs           uint32 // 0x00 CS
	cbAddr       uint32 // 0x04 CONBLK_AD
	transferInfo uint32 // 0x08 TI (RO, copied from the CB on start)
	srcAddr      uint32 // 0x0C SOURCE_AD (RO)
	dstAddr      uint32 // 0x10 DEST_AD (RO)
	txLen        uint32 // 0x14 TXFR_LEN (RO)
	stride       uint32 // 0x18 STRIDE (RO)
	nextCB       uint32 // 0x1C NEXTCONBK
	debug        uint32 // 0x20 DEBUG
}

// DmaEngine drives one DMA channel's single-control-block transfer of the
// bit buffer into the PWM FIFO.
type DmaEngine struct {
	ch *dmaChannel
}

func newDmaEngine(mem pmem.Mem) (*DmaEngine, error) {
	var ch *dmaChannel
	if err := mem.AsPOD(&ch); err != nil {
		return nil, err
	}
	return &DmaEngine{ch: ch}, nil
}

// physToBus converts a peripheral's physical register address to the bus
// address the DMA engine must use to reach it, bypassing the L1/L2 cache.
func physToBus(phys uint64) uint32 {
	return uint32(phys&periphMask) | periphBus
}

// buildControlBlock initializes cb to copy l bytes from the bus address
// srcBus (the bit buffer) to the bus address dstBus (the PWM FIFO),
// pacing each write on the PWM peripheral's DREQ.
func buildControlBlock(cb *controlBlock, srcBus, dstBus uint32, l uint32) {
	cb.transferInfo = uint32(dmaNoWideBursts | dmaWaitResp | dmaDstDReq | dmaPWM | dmaSrcInc)
	cb.srcAddr = srcBus
	cb.dstAddr = dstBus
	cb.txLen = l
	cb.stride = 0
	cb.nextCB = 0
}

// Start resets the channel, clears its error flags, and begins executing
// the control block at cbBus, per the datasheet reset/debug-clear/start
// sequence.
func (d *DmaEngine) Start(cbBus uint32) {
	d.ch.cs = uint32(dmaReset)
	time.Sleep(settleDelay)
	d.ch.cs = uint32(dmaInterrupt | dmaEnd)
	d.ch.cbAddr = cbBus
	d.ch.debug = uint32(dmaReadError | dmaFIFOError | dmaReadLastNotSetError)
	d.ch.cs = uint32(dmaWaitForOutstandingWrites) | 15<<dmaPanicPriorityShift | 15<<dmaPriorityShift | uint32(dmaActive)
}

// Wait polls CS in 10µs increments until the transfer is no longer active
// or an error bit is latched, or ctx is done first.
func (d *DmaEngine) Wait(ctx context.Context) error {
	for {
		cs := dmaStatus(d.ch.cs)
		if cs&dmaErrorStatus != 0 {
			return fmt.Errorf("bcm283x: dma error, debug=0x%08x", d.ch.debug)
		}
		if cs&dmaActive == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		time.Sleep(10 * time.Microsecond)
	}
}

// Reset aborts any in-flight transfer and returns the channel to a state
// where Start can be called again.
func (d *DmaEngine) Reset() {
	d.ch.cs = uint32(dmaReset)
}
