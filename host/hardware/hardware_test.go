// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hardware

import "testing"

func TestLookupRevision(t *testing.T) {
	cases := []struct {
		rev    uint32
		family Family
	}{
		{0x000004, Pi1},
		{0xA02082, Pi2},
		{0xC03111, Pi4},
		{0x02C03111, Pi4}, // high byte set, must be masked away
	}
	for _, c := range cases {
		d, ok := lookupRevision(c.rev)
		if !ok {
			t.Fatalf("0x%x: not found", c.rev)
		}
		if d.Family != c.family {
			t.Fatalf("0x%x: got %s, want %s", c.rev, d.Family, c.family)
		}
	}
}

func TestLookupRevisionUnknown(t *testing.T) {
	if _, ok := lookupRevision(0xDEADBEEF); ok {
		t.Fatal("0xDEADBEEF should not resolve to a known board")
	}
}

func TestFamilyString(t *testing.T) {
	if s := Pi4.String(); s != "Pi4" {
		t.Fatal(s)
	}
	if s := Family(99).String(); s != "unknown" {
		t.Fatal(s)
	}
}
