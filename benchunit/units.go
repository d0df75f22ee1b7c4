// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit normalizes the units perf stat reports values in
// and formats numbers in those units.
package benchunit

import "strings"

type tidyEntry struct {
	tidied string
	factor float64
}

// tidyUnits maps pre-scaled units to their base unit and the factor
// that converts a value into it.
var tidyUnits = map[string]tidyEntry{
	"msec": {"sec", 1e-3},
	"ms":   {"sec", 1e-3},
	"usec": {"sec", 1e-6},
	"us":   {"sec", 1e-6},
	"nsec": {"sec", 1e-9},
	"ns":   {"sec", 1e-9},
	"KB":   {"B", 1e3},
	"MB":   {"B", 1e6},
	"GB":   {"B", 1e9},
}

// Tidy normalizes a value with a (possibly pre-scaled) unit into base
// units. For example, 1234 "msec" becomes 1.234 "sec". Only the
// numerator of a compound unit such as "MB/sec" is rewritten. If the
// unit is already a base unit, Tidy returns its arguments unchanged.
func Tidy(value float64, unit string) (tidiedValue float64, tidiedUnit string) {
	num, den, hasDen := strings.Cut(unit, "/")
	e, ok := tidyUnits[num]
	if !ok {
		return value, unit
	}
	tidiedUnit = e.tidied
	if hasDen {
		tidiedUnit += "/" + den
	}
	return value * e.factor, tidiedUnit
}

// IsDuration reports whether unit, once tidied, measures time.
func IsDuration(unit string) bool {
	_, u := Tidy(1, unit)
	return u == "sec"
}
