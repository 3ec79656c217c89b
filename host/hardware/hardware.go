// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hardware detects which BCM283x/BCM27xx SoC family this process is
// running on and the physical addresses of its peripheral and VideoCore
// memory windows, the way host/distro parses /proc and /etc for other
// distribution facts.
package hardware

import (
	"encoding/binary"
	"errors"
	"strconv"
	"strings"

	"periph.io/x/ws281x/host/distro"
)

// Family identifies the BCM SoC generation.
type Family int

const (
	Unknown Family = iota
	Pi1
	Pi2
	Pi4
)

func (f Family) String() string {
	switch f {
	case Pi1:
		return "Pi1"
	case Pi2:
		return "Pi2"
	case Pi4:
		return "Pi4"
	default:
		return "unknown"
	}
}

// Descriptor describes the memory-mapped hardware this process is running
// on.
type Descriptor struct {
	Family          Family
	PeripheralBase  uint64
	VideoCoreBase   uint64
	Description     string
}

// revisionEntry is one row of the static board revision table.
type revisionEntry struct {
	mask        uint32 // revision bits to compare, after masking
	value       uint32
	d           Descriptor
}

// revisionMask clears only the top byte of the revision word (the
// warranty-void and new-style OTP/overvolt bits the bootloader sets there);
// the manufacturer and memory-size fields below it stay part of the value
// compared against the table.
const revisionMask = 0x00FFFFFF

var revisionTable = []revisionEntry{
	// Pi1 family (BCM2835): classic (pre-"new style") codes and a
	// representative new-style code share the 0x20000000 base.
	{mask: 0x00FFFFFF, value: 0x000002, d: Descriptor{Pi1, 0x20000000, 0x40000000, "Model B Rev 1"}},
	{mask: 0x00FFFFFF, value: 0x000003, d: Descriptor{Pi1, 0x20000000, 0x40000000, "Model B Rev 1 + fuse"}},
	{mask: 0x00FFFFFF, value: 0x000004, d: Descriptor{Pi1, 0x20000000, 0x40000000, "Model B Rev 2"}},
	{mask: 0x00FFFFFF, value: 0x00000F, d: Descriptor{Pi1, 0x20000000, 0x40000000, "Model B Rev 2"}},
	{mask: 0x00FFFFFF, value: 0x000010, d: Descriptor{Pi1, 0x20000000, 0x40000000, "Model B+"}},
	{mask: 0x00FFFFFF, value: 0x000012, d: Descriptor{Pi1, 0x20000000, 0x40000000, "Model A+"}},
	{mask: 0x00FFFFFF, value: 0x000015, d: Descriptor{Pi1, 0x20000000, 0x40000000, "Model A+"}},
	{mask: 0x00FFFFFF, value: 0x900021, d: Descriptor{Pi1, 0x20000000, 0x40000000, "Model A+"}},
	{mask: 0x00FFFFFF, value: 0x900032, d: Descriptor{Pi1, 0x20000000, 0x40000000, "Model B+"}},
	// Pi2/Pi3 family (BCM2836/2837): 0x3F000000 base.
	{mask: 0x00FFFFFF, value: 0xA01041, d: Descriptor{Pi2, 0x3F000000, 0xC0000000, "2 Model B v1.1"}},
	{mask: 0x00FFFFFF, value: 0xA02042, d: Descriptor{Pi2, 0x3F000000, 0xC0000000, "2 Model B v1.2"}},
	{mask: 0x00FFFFFF, value: 0xA02082, d: Descriptor{Pi2, 0x3F000000, 0xC0000000, "3 Model B"}},
	{mask: 0x00FFFFFF, value: 0xA22082, d: Descriptor{Pi2, 0x3F000000, 0xC0000000, "3 Model B"}},
	{mask: 0x00FFFFFF, value: 0xA32082, d: Descriptor{Pi2, 0x3F000000, 0xC0000000, "3 Model B"}},
	{mask: 0x00FFFFFF, value: 0x9020E0, d: Descriptor{Pi2, 0x3F000000, 0xC0000000, "3 Model A+"}},
	{mask: 0x00FFFFFF, value: 0x9000C1, d: Descriptor{Pi2, 0x3F000000, 0xC0000000, "Zero W"}},
	{mask: 0x00FFFFFF, value: 0x902120, d: Descriptor{Pi2, 0x3F000000, 0xC0000000, "Zero 2 W"}},
	// Pi4 family (BCM2711): 0xFE000000 base, same 0xC0000000 VideoCore
	// window as Pi2/Pi3.
	{mask: 0x00FFFFFF, value: 0xA03111, d: Descriptor{Pi4, 0xFE000000, 0xC0000000, "4 Model B 1GB"}},
	{mask: 0x00FFFFFF, value: 0xB03111, d: Descriptor{Pi4, 0xFE000000, 0xC0000000, "4 Model B 2GB"}},
	{mask: 0x00FFFFFF, value: 0xB03112, d: Descriptor{Pi4, 0xFE000000, 0xC0000000, "4 Model B 2GB"}},
	{mask: 0x00FFFFFF, value: 0xC03111, d: Descriptor{Pi4, 0xFE000000, 0xC0000000, "4 Model B 4GB"}},
	{mask: 0x00FFFFFF, value: 0xC03112, d: Descriptor{Pi4, 0xFE000000, 0xC0000000, "4 Model B 4GB"}},
	{mask: 0x00FFFFFF, value: 0xD03114, d: Descriptor{Pi4, 0xFE000000, 0xC0000000, "4 Model B 8GB"}},
	{mask: 0x00FFFFFF, value: 0xC03130, d: Descriptor{Pi4, 0xFE000000, 0xC0000000, "400"}},
	{mask: 0x00FFFFFF, value: 0xA03140, d: Descriptor{Pi4, 0xFE000000, 0xC0000000, "CM4 1GB"}},
}

// ErrUnsupported is returned by Detect when the running hardware could not
// be identified by either /proc/cpuinfo or the device tree.
var ErrUnsupported = errors.New("hardware: unsupported or unrecognized board")

// Detect identifies the current board's Descriptor.
//
// It first reads the revision word from /proc/cpuinfo's "Revision" line
// (32-bit kernels), falling back to
// /proc/device-tree/system/linux,revision (64-bit kernels). The revision is
// masked and looked up in the static table; if unknown, the CPU
// architecture reported in cpuinfo's "model name"/"CPU architecture" field
// picks a generic Pi1 (ARMv6) or Pi2 (ARMv7+) fallback. The peripheral base
// may be re-derived from /proc/device-tree/soc/ranges when that file
// reports a usable value; a result of all-ones there means "trust the
// revision table" and is ignored.
func Detect() (Descriptor, error) {
	rev, ok := revisionFromCPUInfo()
	if !ok {
		rev, ok = distro.DTRevision()
	}
	if ok {
		if d, found := lookupRevision(rev); found {
			if base, ok := socRangesBase(); ok {
				d.PeripheralBase = base
			}
			return d, nil
		}
	}
	if d, ok := archFallback(); ok {
		return d, nil
	}
	return Descriptor{}, ErrUnsupported
}

func lookupRevision(rev uint32) (Descriptor, bool) {
	masked := rev & revisionMask
	for _, e := range revisionTable {
		if masked&e.mask == e.value&e.mask {
			return e.d, true
		}
	}
	return Descriptor{}, false
}

func revisionFromCPUInfo() (uint32, bool) {
	s := distro.CPUInfo()["Revision"]
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// archFallback uses cpuinfo's reported CPU architecture to pick a generic
// descriptor when the revision word itself is unrecognized.
func archFallback() (Descriptor, bool) {
	info := distro.CPUInfo()
	arch := info["CPU architecture"] + " " + info["model name"] + " " + info["Processor"]
	switch {
	case strings.Contains(arch, "ARMv7"), strings.Contains(arch, "8"):
		return Descriptor{Pi2, 0x3F000000, 0xC0000000, "unknown ARMv7+ board"}, true
	case strings.Contains(arch, "ARMv6"), strings.Contains(arch, "6"):
		return Descriptor{Pi1, 0x20000000, 0x40000000, "unknown ARMv6 board"}, true
	}
	return Descriptor{}, false
}

// socRangesBase reads the second big-endian 32-bit cell of
// /proc/device-tree/soc/ranges (offset 4), the convention used to encode
// the peripheral physical base address on device-tree kernels. It returns
// false when the file is missing or its value is ~0, which signals the
// caller should keep trusting the revision table.
func socRangesBase() (uint64, bool) {
	b, ok := distro.DTSocRanges()
	if !ok || len(b) < 8 {
		return 0, false
	}
	v := binary.BigEndian.Uint32(b[4:8])
	if v == 0xFFFFFFFF {
		return 0, false
	}
	return uint64(v), true
}
