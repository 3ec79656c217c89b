// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package fpga

import (
	"encoding/binary"
	"testing"

	"periph.io/x/conn/v3/spi"
)

// fakeConn records every Tx call's write buffer, the way a real SPI port
// would frame it, without touching any hardware.
type fakeConn struct {
	txs [][]byte
}

func (f *fakeConn) Tx(w, r []byte) error {
	cp := make([]byte, len(w))
	copy(cp, w)
	f.txs = append(f.txs, cp)
	return nil
}

func (f *fakeConn) TxPackets(p []spi.Packet) error { return nil }

func TestWriteRegFraming(t *testing.T) {
	c := &fakeConn{}
	tr := &Transport{conn: c}
	if err := tr.writeReg(regConf, 0x12345678); err != nil {
		t.Fatal(err)
	}
	if len(c.txs) != 1 {
		t.Fatalf("got %d Tx calls, want 1", len(c.txs))
	}
	w := c.txs[0]
	if len(w) != 8 {
		t.Fatalf("len(w) = %d, want 8", len(w))
	}
	cmd := binary.BigEndian.Uint32(w[0:4])
	if cmd&cmdWrite == 0 {
		t.Fatal("WRITE bit must be set")
	}
	if cmd&addrMask != regConf {
		t.Fatalf("address = %#x, want %#x", cmd&addrMask, regConf)
	}
	if got := binary.BigEndian.Uint32(w[4:8]); got != 0x12345678 {
		t.Fatalf("data word = %#x, want 0x12345678", got)
	}
}

func TestWriteDataFramingIncrementsAddress(t *testing.T) {
	c := &fakeConn{}
	tr := &Transport{conn: c}
	data := []uint32{1, 2, 3}
	if err := tr.writeData(regMem0, data); err != nil {
		t.Fatal(err)
	}
	w := c.txs[0]
	if len(w) != 4*(len(data)+1) {
		t.Fatalf("len(w) = %d, want %d", len(w), 4*(len(data)+1))
	}
	cmd := binary.BigEndian.Uint32(w[0:4])
	if cmd&cmdWrite == 0 || cmd&cmdIncrement == 0 {
		t.Fatal("WRITE and INCREMENT bits must both be set for a bulk upload")
	}
	for i, want := range data {
		if got := binary.BigEndian.Uint32(w[4+4*i : 8+4*i]); got != want {
			t.Fatalf("word %d = %#x, want %#x", i, got, want)
		}
	}
}

func TestSubmitAlternatesBanks(t *testing.T) {
	c := &fakeConn{}
	tr := &Transport{conn: c}
	words := []uint32{0xAAAAAAAA, 0xBBBBBBBB}

	if err := tr.Submit(words); err != nil {
		t.Fatal(err)
	}
	first := binary.BigEndian.Uint32(c.txs[0][0:4]) & addrMask
	if first != regMem0 {
		t.Fatalf("first submit targeted %#x, want mem0 (%#x)", first, regMem0)
	}

	if err := tr.Submit(words); err != nil {
		t.Fatal(err)
	}
	second := binary.BigEndian.Uint32(c.txs[2][0:4]) & addrMask
	if second != regMem1 {
		t.Fatalf("second submit targeted %#x, want mem1 (%#x)", second, regMem1)
	}
}

func TestWaitIsNoOp(t *testing.T) {
	tr := &Transport{}
	if err := tr.Wait(nil); err != nil {
		t.Fatalf("wait returned %v, want nil", err)
	}
}
