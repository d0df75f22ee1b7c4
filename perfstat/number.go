// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfstat

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// narrowNBSP is the thousands separator perf uses in locales that
// group digits with a narrow no-break space.
const narrowNBSP = '\u202f'

// A NumError records a failure to normalize a numeric token.
type NumError struct {
	Token string
	Err   error
}

func (e *NumError) Error() string {
	return fmt.Sprintf("parsing %q: %v", e.Token, e.Err)
}

func (e *NumError) Unwrap() error {
	return e.Err
}

var (
	errEmptyNumber = errors.New("empty number")
	errBadChar     = errors.New("unexpected character")
)

// normalize rewrites a locale-formatted token into a form accepted by
// strconv.ParseFloat. It drops one trailing percent sign and all
// whitespace (including narrow no-break spaces used as thousands
// separators) and turns decimal commas into points. One leading '+' or
// '-' is kept. Beyond that, any character outside [0-9.,%] and
// whitespace is an error.
func normalize(tok string) (string, error) {
	tok = strings.TrimSpace(tok)
	tok = strings.TrimSuffix(tok, "%")
	buf := make([]byte, 0, len(tok))
	switch {
	case strings.HasPrefix(tok, "-"):
		buf = append(buf, '-')
		tok = tok[1:]
	case strings.HasPrefix(tok, "+"):
		tok = tok[1:]
	}
	sign := len(buf)
	for _, r := range tok {
		switch {
		case '0' <= r && r <= '9', r == '.':
			buf = append(buf, byte(r))
		case r == ',':
			buf = append(buf, '.')
		case r == narrowNBSP, unicode.IsSpace(r):
			// Thousands separator.
		default:
			return "", errBadChar
		}
	}
	if len(buf) == sign {
		return "", errEmptyNumber
	}
	return string(buf), nil
}

// ParseFloat converts a number as printed by perf into a float64.
// The token may carry a percent suffix, a decimal comma and narrow
// no-break-space thousands separators.
func ParseFloat(tok string) (float64, error) {
	s, err := normalize(tok)
	if err != nil {
		return 0, &NumError{tok, err}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			err = ne.Err
		}
		return 0, &NumError{tok, err}
	}
	return v, nil
}

// ParseCount converts a count field into an integer by truncating the
// value ParseFloat produces.
func ParseCount(tok string) (int64, error) {
	v, err := ParseFloat(tok)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt64 || v < math.MinInt64 {
		return 0, &NumError{tok, strconv.ErrRange}
	}
	return int64(v), nil
}

// ParseEventCount parses the raw count of a hardware or software event.
// Event counts are always integral, so a token made of digit groups of
// three joined by ',', '.' or a narrow no-break space (for example
// "123,456" or "1.234.567") is read as a grouped integer. Anything else
// is handled by ParseCount.
func ParseEventCount(tok string) (int64, error) {
	if n, ok := parseGrouped(strings.TrimSpace(tok)); ok {
		return n, nil
	}
	return ParseCount(tok)
}

// parseGrouped parses s if it has the shape d{1,3}(sep d{3})+.
func parseGrouped(s string) (int64, bool) {
	var digits []byte
	group, groups := 0, 0
	for _, r := range s {
		switch {
		case '0' <= r && r <= '9':
			digits = append(digits, byte(r))
			group++
		case r == ',' || r == '.' || r == narrowNBSP || r == '\u00a0' || r == ' ':
			if (groups == 0 && (group == 0 || group > 3)) || (groups > 0 && group != 3) {
				return 0, false
			}
			group = 0
			groups++
		default:
			return 0, false
		}
	}
	if groups == 0 || group != 3 {
		return 0, false
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatFloat formats v the way perf does in a decimal-comma locale:
// prec digits after a ',' and integer digits grouped by narrow
// no-break spaces. ParseFloat(FormatFloat(v, prec)) returns v rounded
// to prec digits.
func FormatFloat(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	out := group(whole)
	if frac != "" {
		out += "," + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatCount formats n with narrow no-break-space digit grouping.
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		return "-" + group(s[1:])
	}
	return group(s)
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteRune(narrowNBSP)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
