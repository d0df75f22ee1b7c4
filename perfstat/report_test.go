// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfstat

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// singleReport is the stderr of one "perf stat" run under a
// decimal-comma locale, including the trailing blank lines perf emits.
const singleReport = "\n" +
	" Performance counter stats for './build/dist -p data/small -s data/small -v sorted-vector -n 4 -b 0':\n" +
	"\n" +
	"          1\u202f234,56 msec task-clock:u                       #    0,998 CPUs utilized\n" +
	"       123\u202f456      branch-misses:u                  #    2,50% of all branches\n" +
	"     4\u202f938\u202f240      branches:u                       #    4,000 G/sec\n" +
	"     3\u202f456\u202f789\u202f012      cycles:u                         #    2,801 GHz\n" +
	"     9\u202f876\u202f543\u202f210      instructions:u                   #    2,86  insn per cycle\n" +
	"        12\u202f345\u202f678      cache-references:u               #   10,000 M/sec\n" +
	"         1\u202f234\u202f567      cache-misses:u                   #   10,00% of all cache refs\n" +
	"\n" +
	"       1,237095210 seconds time elapsed\n" +
	"\n" +
	"       1,203341000 seconds user\n" +
	"       0,030083000 seconds sys\n" +
	"\n" +
	"\n"

// repeatedReport is the stderr of "perf stat -r 5".
const repeatedReport = "\n" +
	" Performance counter stats for './build/dist -p data/small' (5 runs):\n" +
	"\n" +
	"          1\u202f234,56 msec task-clock:u    #    0,998 CPUs utilized            ( +-  0,12% )\n" +
	"       123\u202f456      branch-misses:u      #    2,50% of all branches          ( +-  1,23% )\n" +
	"     3\u202f456\u202f789\u202f012      cycles:u     #    2,801 GHz                      ( +-  0,40% )\n" +
	"\n" +
	"           1,2345 +- 0,0012 seconds time elapsed  ( +-  0,10% )\n" +
	"\n"

var singleNames = []string{
	"task_clock", "branch_misses", "branches", "cycles",
	"instructions", "cache_references", "cache_misses",
}

func names(rep *Report) []string {
	var out []string
	for _, s := range rep.Samples {
		out = append(out, s.Name)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseSingle(t *testing.T) {
	for _, layout := range []Layout{Structural, Positional} {
		t.Run(layout.String(), func(t *testing.T) {
			rep, err := ParseString(singleReport, Options{Mode: Single, Layout: layout})
			if err != nil {
				t.Fatal(err)
			}
			if got := names(rep); !equalStrings(got, singleNames) {
				t.Errorf("samples = %v, want %v", got, singleNames)
			}
			for _, s := range rep.Samples {
				if s.HasDivergence {
					t.Errorf("sample %s has divergence in single mode", s.Name)
				}
			}
			if rep.Summary.HasDivergence {
				t.Errorf("summary has divergence in single mode")
			}
			if math.Abs(rep.Summary.Elapsed-1.23709521) > 1e-12 {
				t.Errorf("elapsed = %v", rep.Summary.Elapsed)
			}
			if math.Abs(rep.Summary.User-1.203341) > 1e-12 || math.Abs(rep.Summary.Sys-0.030083) > 1e-12 {
				t.Errorf("user/sys = %v/%v", rep.Summary.User, rep.Summary.Sys)
			}
			bm := rep.Samples[1]
			if bm.Count != 123456 || bm.Value != 2.5 {
				t.Errorf("branch_misses = %+v", bm)
			}
		})
	}
}

func TestParseRepeated(t *testing.T) {
	for _, layout := range []Layout{Structural, Positional} {
		t.Run(layout.String(), func(t *testing.T) {
			rep, err := ParseString(repeatedReport, Options{Mode: Repeated, Layout: layout})
			if err != nil {
				t.Fatal(err)
			}
			if len(rep.Samples) != 3 {
				t.Fatalf("got %d samples, want 3", len(rep.Samples))
			}
			for _, s := range rep.Samples {
				if !s.HasDivergence {
					t.Errorf("sample %s lacks divergence", s.Name)
				}
			}
			if rep.Samples[1].Divergence != 1.23 {
				t.Errorf("branch_misses divergence = %v", rep.Samples[1].Divergence)
			}
			sum := rep.Summary
			if !sum.HasDivergence || sum.Elapsed != 1.2345 || sum.ElapsedDivergence != 0.0012 {
				t.Errorf("summary = %+v", sum)
			}
		})
	}
}

func TestParseEndToEnd(t *testing.T) {
	const report = "123,456      branch-misses:u            #    2,50% of all branches\n" +
		"1,234 seconds time elapsed\n"
	rep, err := ParseString(report, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Samples) != 1 {
		t.Fatalf("got %d samples", len(rep.Samples))
	}
	s := rep.Samples[0]
	if s.Name != "branch_misses" || s.Value != 2.5 || s.Count != 123456 {
		t.Errorf("sample = %+v", s)
	}
	if rep.Summary.Elapsed != 1.234 {
		t.Errorf("elapsed = %v", rep.Summary.Elapsed)
	}
}

func TestParseSkipsProgramOutput(t *testing.T) {
	noisy := "loading 12 VLMCs from data/small\nwarning: background order 0\n" + singleReport

	rep, err := ParseString(noisy, Options{Layout: Structural})
	if err != nil {
		t.Fatal(err)
	}
	if got := names(rep); !equalStrings(got, singleNames) {
		t.Errorf("samples = %v, want %v", got, singleNames)
	}

	// The fixed offsets read the program's output as a counter.
	if _, err := ParseString(noisy, Options{Layout: Positional}); err == nil {
		t.Errorf("positional parse of shifted report succeeded")
	}
}

func TestParseMalformed(t *testing.T) {
	bad := strings.Replace(singleReport,
		"#    2,50% of all branches", "", 1)
	for _, layout := range []Layout{Structural, Positional} {
		rep, err := ParseString(bad, Options{Layout: layout, FileName: "run.txt"})
		if rep != nil {
			t.Errorf("%v: got partial report", layout)
		}
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("%v: want *SyntaxError, got %v", layout, err)
		}
		if fn, line := se.Pos(); fn != "run.txt" || line != 5 {
			t.Errorf("%v: error at %s:%d, want run.txt:5", layout, fn, line)
		}
		if !errors.Is(err, errNoHash) {
			t.Errorf("%v: error %v does not wrap errNoHash", layout, err)
		}
	}
}

func TestParseElapsed(t *testing.T) {
	noElapsed := strings.Replace(singleReport, "       1,237095210 seconds time elapsed\n", "", 1)
	_, err := ParseString(noElapsed, Options{})
	if !errors.Is(err, ErrNoElapsed) {
		t.Errorf("missing elapsed: got %v", err)
	}

	twice := strings.Replace(singleReport, "       1,237095210 seconds time elapsed\n",
		"       1,237095210 seconds time elapsed\n       1,5 seconds time elapsed\n", 1)
	if _, err := ParseString(twice, Options{}); err == nil {
		t.Errorf("two elapsed lines: no error")
	}
}

func TestParseModeMismatch(t *testing.T) {
	if _, err := ParseString(singleReport, Options{Mode: Repeated}); err == nil {
		t.Errorf("single report parsed as repeated")
	}
	if _, err := ParseString(repeatedReport, Options{Mode: Single}); err == nil {
		t.Errorf("repeated report parsed as single")
	}
}

func TestParseElapsedLine(t *testing.T) {
	sum, err := ParseElapsedLine("       1,237095210 seconds time elapsed", Single)
	if err != nil || sum.Elapsed != 1.23709521 || sum.HasDivergence {
		t.Errorf("single: %+v, %v", sum, err)
	}
	sum, err = ParseElapsedLine("  1,2345 +- 0,0012 seconds time elapsed  ( +-  0,10% )", Repeated)
	if err != nil || sum.Elapsed != 1.2345 || sum.ElapsedDivergence != 0.0012 {
		t.Errorf("repeated: %+v, %v", sum, err)
	}
	if _, err := ParseElapsedLine("1,2 seconds user", Single); err == nil {
		t.Errorf("user line accepted as elapsed")
	}
}

func TestWindow(t *testing.T) {
	for _, test := range []struct {
		n, start, end int
		ws, we        int
	}{
		{18, 3, -8, 3, 10},
		{18, -8, -3, 10, 15},
		{5, 3, -8, 3, 3},
		{2, -8, -3, 0, 0},
	} {
		ws, we := window(test.n, test.start, test.end)
		if ws != test.ws || we != test.we {
			t.Errorf("window(%d, %d, %d) = %d, %d, want %d, %d", test.n, test.start, test.end, ws, we, test.ws, test.we)
		}
	}
}
