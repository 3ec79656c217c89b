// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pmem

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Slice can be transparently viewed as []byte or []uint32; every register
// block and DMA buffer this package hands out is one of these.
type Slice []byte

// Uint32 reinterprets the slice as a []uint32 over the same backing memory,
// for the register blocks and DMA buffers that are word addressed.
func (s Slice) Uint32() []uint32 {
	header := *(*reflect.SliceHeader)(unsafe.Pointer(&s))
	header.Len /= 4
	header.Cap /= 4
	return *(*[]uint32)(unsafe.Pointer(&header))
}

// AsPOD points pp, a pointer to a pointer to a POD type (struct, array, or
// base numeric type), at the start of this memory. pp's pointee must be
// nil; the POD's size must not exceed the slice's length.
func (s Slice) AsPOD(pp interface{}) error {
	v := reflect.ValueOf(pp)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return errors.New("pmem: AsPOD requires a non-nil pointer")
	}
	p := v.Elem()
	if p.Kind() != reflect.Ptr {
		return fmt.Errorf("pmem: AsPOD requires a pointer to a pointer, got pointer to %s", p.Kind())
	}
	if !p.IsNil() {
		return errors.New("pmem: AsPOD requires the target pointer to be nil")
	}
	t := p.Type().Elem()
	if size := int(t.Size()); size > len(s) {
		return fmt.Errorf("pmem: can't map %s (size %d) onto [%d]byte", t, size, len(s))
	}
	dest := unsafe.Pointer(((*reflect.SliceHeader)(unsafe.Pointer(&s))).Data)
	p.Set(reflect.NewAt(t, dest))
	return nil
}

// View is a view of a physical memory region mapped into this process, used
// for both peripheral register windows and DMA-visible buffers.
//
// It is not required to call Close; the kernel unmaps on process exit.
type View struct {
	Slice
	phys uint64 // physical/bus base address of Slice, when known.
	orig []byte // full page-aligned mapping backing Slice.
}

// Bytes returns the mapped region as a byte slice.
func (v *View) Bytes() []byte {
	return v.Slice
}

// PhysAddr returns the physical (bus, on these SoCs) address corresponding
// to the start of Slice.
func (v *View) PhysAddr() uint64 {
	return v.phys
}

// Close unmaps the memory from the process's address space.
func (v *View) Close() error {
	return unix.Munmap(v.orig)
}

var _ Mem = &View{}

// MapGPIO maps the CPU's GPIO register window via /dev/gpiomem, which works
// without root but only exposes the GPIO block.
func MapGPIO() (*View, error) {
	if !isLinux {
		return nil, errors.New("pmem: /dev/gpiomem is not supported on this platform")
	}
	return mapGPIOLinux()
}

// Map returns a view of an arbitrary physical memory range via /dev/mem,
// rounded up to a whole number of 4Kb pages. This normally requires root.
func Map(base uint64, size int) (*View, error) {
	if !isLinux {
		return nil, errors.New("pmem: /dev/mem is not supported on this platform")
	}
	return mapLinux(base, size)
}

// Keep a cache of open file handles instead of opening and closing repeatedly.
var (
	mu          sync.Mutex
	gpioMemErr  error
	gpioMemView *View
	devMem      *os.File
	devMemErr   error
)

// mapGPIOLinux is purely Raspbian specific.
func mapGPIOLinux() (*View, error) {
	mu.Lock()
	defer mu.Unlock()
	if gpioMemView == nil && gpioMemErr == nil {
		f, err := os.OpenFile("/dev/gpiomem", os.O_RDWR|os.O_SYNC, 0)
		if err != nil {
			gpioMemErr = err
			return nil, gpioMemErr
		}
		defer f.Close()
		b, err := unix.Mmap(int(f.Fd()), 0, pageSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			gpioMemErr = err
			return nil, gpioMemErr
		}
		gpioMemView = &View{Slice: b, orig: b}
	}
	return gpioMemView, gpioMemErr
}

// mapLinux leverages /dev/mem to map a view of physical memory.
func mapLinux(base uint64, size int) (*View, error) {
	f, err := openDevMemLinux()
	if err != nil {
		return nil, err
	}
	// Align base and size at 4Kb.
	offset := int(base & 0xFFF)
	mapSize := (size + offset + 0xFFF) &^ 0xFFF
	b, err := unix.Mmap(int(f.Fd()), int64(base&^0xFFF), mapSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("pmem: mapping at 0x%x failed: %w", base, err)
	}
	return &View{Slice: b[offset : offset+size], phys: base, orig: b}, nil
}

func openDevMemLinux() (*os.File, error) {
	mu.Lock()
	defer mu.Unlock()
	if devMem == nil && devMemErr == nil {
		devMem, devMemErr = os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	}
	return devMem, devMemErr
}
