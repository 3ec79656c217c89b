// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ws281x

import "testing"

func TestBitSymbols3MatchesAlgo(t *testing.T) {
	for v := 0; v < 256; v++ {
		want := bitSymbols3Algo(byte(v))
		got := uint32(bitSymbols3[v][0])<<16 | uint32(bitSymbols3[v][1])<<8 | uint32(bitSymbols3[v][2])
		if got != want {
			t.Fatalf("bitSymbols3[%#x] = %#x, want %#x", v, got, want)
		}
	}
}

func TestBitSymbols3AllOnesAndZeros(t *testing.T) {
	if got := bitSymbols3Algo(0x00); got != 0x924924 {
		t.Fatalf("bitSymbols3Algo(0x00) = %#x, want 0x924924", got)
	}
	if got := bitSymbols3Algo(0xFF); got != 0xdb6db6 {
		t.Fatalf("bitSymbols3Algo(0xFF) = %#x, want 0xdb6db6", got)
	}
}

func TestByteCountIsWholeWords(t *testing.T) {
	n := byteCount(150, 3, 800000)
	if n%4 != 0 {
		t.Fatalf("byteCount = %d, not a whole number of 32-bit words", n)
	}
	if n <= bitCount(150, 3, 800000)/8 {
		t.Fatal("byteCount must include the trailing idle-low padding")
	}
}

func TestEncodeChannelLength(t *testing.T) {
	cfg := &ChannelConfig{StripType: StripGRB, Brightness: 255}
	pixels := make([]LedColor, 10)
	buf := EncodeChannel(pixels, cfg, 800000)
	want := byteCount(10, 3, 800000)
	if len(buf) != want {
		t.Fatalf("len(buf) = %d, want %d", len(buf), want)
	}
}

func TestEncodeChannelFirstPixelSymbols(t *testing.T) {
	cfg := &ChannelConfig{StripType: StripRGB, Brightness: 255}
	pixels := []LedColor{0x00010203}
	buf := EncodeChannel(pixels, cfg, 800000)
	wantFirst := bitSymbols3[0x01]
	if buf[0] != wantFirst[0] || buf[1] != wantFirst[1] || buf[2] != wantFirst[2] {
		t.Fatalf("first wire byte's symbols = %v, want %v", buf[0:3], wantFirst)
	}
}

func TestBytesToWordsPacksMSBFirst(t *testing.T) {
	words := bytesToWords([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	if len(words) != 2 {
		t.Fatalf("len(words) = %d, want 2", len(words))
	}
	if words[0] != 0x01020304 {
		t.Fatalf("words[0] = %#x, want 0x01020304", words[0])
	}
	if words[1] != 0x05000000 {
		t.Fatalf("words[1] = %#x, want 0x05000000 (zero padded)", words[1])
	}
}

func TestInterleaveChannelsSingle(t *testing.T) {
	w := InterleaveChannels([]byte{0x01, 0x02, 0x03, 0x04}, nil)
	if len(w) != 1 || w[0] != 0x01020304 {
		t.Fatalf("InterleaveChannels(single) = %#x, want [0x01020304]", w)
	}
}

func TestInterleaveChannelsDualAlternates(t *testing.T) {
	ch0 := []byte{0xAA, 0xAA, 0xAA, 0xAA}
	ch1 := []byte{0xBB, 0xBB, 0xBB, 0xBB}
	w := InterleaveChannels(ch0, ch1)
	if len(w) != 2 {
		t.Fatalf("len(w) = %d, want 2", len(w))
	}
	if w[0] != 0xAAAAAAAA || w[1] != 0xBBBBBBBB {
		t.Fatalf("w = %#x, want [0xAAAAAAAA 0xBBBBBBBB]", w)
	}
}

func TestInterleaveChannelsUnequalLengthPadsShorterWithZero(t *testing.T) {
	ch0 := []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xCC, 0xCC, 0xCC, 0xCC}
	ch1 := []byte{0xBB, 0xBB, 0xBB, 0xBB}
	w := InterleaveChannels(ch0, ch1)
	if len(w) != 4 {
		t.Fatalf("len(w) = %d, want 4", len(w))
	}
	if w[2] != 0xCCCCCCCC || w[3] != 0 {
		t.Fatalf("w[2:4] = %#x, want [0xCCCCCCCC 0]", w[2:4])
	}
}
