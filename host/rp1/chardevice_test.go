// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rp1

import "testing"

// These expected values are rebuilt at run time straight from the ioctl field
// layout of the kernel header's _IOR/_IOWR/_IOW macro expansions, magic-value
// overflow and pointer-sized size field included, without calling ioc().
func TestIoctlNumbers(t *testing.T) {
	const (
		dirNone  = 0
		dirRead  = 2
		dirWrite = 1
		dirBoth  = dirRead | dirWrite
	)
	want := func(dir uintptr, nr uintptr) uintptr {
		return dir<<iocDirShift | uintptr(ioctlMagic)<<iocTypeShift | nr<<iocNrShift | ptrSize<<iocSizeShift
	}
	if ioctlVersion != want(dirRead, 0) {
		t.Fatalf("ioctlVersion = %#x, want %#x", ioctlVersion, want(dirRead, 0))
	}
	if ioctlRegRead != want(dirBoth, 1) {
		t.Fatalf("ioctlRegRead = %#x, want %#x", ioctlRegRead, want(dirBoth, 1))
	}
	if ioctlRegWrite != want(dirWrite, 2) {
		t.Fatalf("ioctlRegWrite = %#x, want %#x", ioctlRegWrite, want(dirWrite, 2))
	}
}

func TestIoctlMagicOverflowsTypeField(t *testing.T) {
	// 0x6a67 doesn't fit in the 8-bit type field; the bits above it bleed
	// into size/dir exactly as an unmasked C macro expansion would.
	if ioctlMagic>>8 == 0 {
		t.Fatal("ioctlMagic must overflow an 8-bit type field for this test to be meaningful")
	}
	if ioc(0, ioctlMagic, 0, 0)>>iocSizeShift == 0 {
		t.Fatal("an overflowing magic must contribute nonzero bits above the type field")
	}
}
