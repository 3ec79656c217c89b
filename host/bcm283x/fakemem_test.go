// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bcm283x

import (
	"unsafe"

	"periph.io/x/ws281x/host/pmem"
)

// fakeMem is a pmem.Mem backed by plain process memory, for exercising
// register and buffer layouts without mapping real hardware.
type fakeMem struct {
	b []byte
}

func newFakeMem(size int) *fakeMem {
	return &fakeMem{b: make([]byte, size)}
}

func (f *fakeMem) Close() error     { return nil }
func (f *fakeMem) Bytes() []byte    { return f.b }
func (f *fakeMem) PhysAddr() uint64 { return uint64(uintptr(unsafe.Pointer(&f.b[0]))) }

func (f *fakeMem) AsPOD(pp interface{}) error {
	return pmem.Slice(f.b).AsPOD(pp)
}

var _ pmem.Mem = &fakeMem{}
