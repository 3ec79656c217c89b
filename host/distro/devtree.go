// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package distro

import "encoding/binary"

// DTModel returns platform model info from the Linux device tree
// (/proc/device-tree/model), and returns "unknown" on non-linux systems or
// if the file is missing.
func DTModel() string {
	mu.Lock()
	defer mu.Unlock()
	if dtModel == "" {
		dtModel = makeDTModelLinux()
	}
	return dtModel
}

// DTCompatible returns platform compatibility info from the Linux device
// tree (/proc/device-tree/compatible). It returns nil on non-linux systems
// and an empty slice if the file is missing.
func DTCompatible() []string {
	mu.Lock()
	defer mu.Unlock()
	if dtCompatible == nil {
		dtCompatible = makeDTCompatible()
	}
	return dtCompatible
}

// DTRevision returns the board revision word from
// /proc/device-tree/system/linux,revision, which 64-bit kernels populate in
// place of /proc/cpuinfo's Revision line. The value is big-endian per the
// device tree's cell encoding.
func DTRevision() (uint32, bool) {
	b, err := readFile("/proc/device-tree/system/linux,revision")
	if err != nil || len(b) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(b[:4]), true
}

// DTSocRanges returns the raw contents of /proc/device-tree/soc/ranges,
// whose second 32-bit big-endian cell (offset 4) gives the peripheral
// physical base address on some device trees.
func DTSocRanges() ([]byte, bool) {
	b, err := readFile("/proc/device-tree/soc/ranges")
	if err != nil {
		return nil, false
	}
	return b, true
}

func makeDTModelLinux() string {
	if !isLinux {
		return "unknown"
	}
	b, err := readFile("/proc/device-tree/model")
	if err != nil {
		return "unknown"
	}
	if model := splitNull(b); len(model) > 0 {
		return model[0]
	}
	return "unknown"
}

func makeDTCompatible() []string {
	if !isLinux {
		return nil
	}
	b, err := readFile("/proc/device-tree/compatible")
	if err != nil {
		return []string{}
	}
	return splitNull(b)
}

var (
	dtModel      string   // cached /proc/device-tree/model
	dtCompatible []string // cached /proc/device-tree/compatible
)
