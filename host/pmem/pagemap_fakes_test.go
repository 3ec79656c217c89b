// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pmem

import (
	"errors"
	"io"
)

// simpleFile is a fileIO backed by an in-memory byte slice, for
// exercising readPageMapLinux without touching /proc/self/pagemap.
type simpleFile struct {
	data   []byte
	offset int64
}

func (f *simpleFile) Seek(offset int64, whence int) (int64, error) {
	f.offset = offset
	return f.offset, nil
}

func (f *simpleFile) Read(b []byte) (int, error) {
	if f.offset >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(b, f.data[f.offset:])
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (f *simpleFile) ReadAt(b []byte, off int64) (int, error) {
	n := copy(b, f.data[off:])
	return n, nil
}

// failFile fails every Seek call.
type failFile struct{}

func (f *failFile) Seek(offset int64, whence int) (int64, error) {
	return 0, errors.New("pmem: simulated seek failure")
}

func (f *failFile) Read(b []byte) (int, error) {
	return 0, errors.New("pmem: simulated read failure")
}

func (f *failFile) ReadAt(b []byte, off int64) (int, error) {
	return 0, errors.New("pmem: simulated read failure")
}
