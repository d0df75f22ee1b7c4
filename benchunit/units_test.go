// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import "testing"

func TestTidy(t *testing.T) {
	test := func(unit, tidied string, factor float64) {
		t.Helper()
		gotFactor, got := Tidy(1, unit)
		if got != tidied || gotFactor != factor {
			t.Errorf("for %s, want *%g %s, got *%g %s", unit, factor, tidied, gotFactor, got)
		}
	}

	test("msec", "sec", 1e-3)
	test("usec", "sec", 1e-6)
	test("ns", "sec", 1e-9)
	test("MB/sec", "B/sec", 1e6)
	test("sec", "sec", 1)
	test("events", "events", 1)
	test("", "", 1)
	test("sec/msec", "sec/msec", 1)
}

func TestIsDuration(t *testing.T) {
	for unit, want := range map[string]bool{
		"msec": true, "sec": true, "nsec": true,
		"events": false, "%": false, "MB/sec": false,
	} {
		if got := IsDuration(unit); got != want {
			t.Errorf("IsDuration(%q) = %v, want %v", unit, got, want)
		}
	}
}
