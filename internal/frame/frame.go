// Package frame decodes the line-oriented wire format emitted by the scanning
// rig. Each frame is one ASCII line of the form "<angle>,<rawCode>" with both
// fields in base 10 and optionally signed.
package frame

import (
	"strconv"
	"strings"
)

// Separator splits the angle field from the raw sensor code.
const Separator = ","

// FullCircle is the number of discrete angle positions in a scan.
const FullCircle = 360

// Reading is a decoded frame. Angle is always within [0, FullCircle).
type Reading struct {
	Angle   int
	RawCode int
}

// Reason enumerates why a line was or was not accepted.
type Reason int

const (
	ReasonOK Reason = iota
	ReasonEmpty
	ReasonNoSeparator
	ReasonFieldCount
	ReasonBadAngle
	ReasonBadCode
)

var reasonNames = [...]string{
	ReasonOK:          "ok",
	ReasonEmpty:       "empty",
	ReasonNoSeparator: "no_separator",
	ReasonFieldCount:  "field_count",
	ReasonBadAngle:    "bad_angle",
	ReasonBadCode:     "bad_code",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// Result is the outcome of decoding a single line. Reading is only meaningful
// when Reason is ReasonOK.
type Result struct {
	Reading Reading
	Reason  Reason
}

// OK reports whether the line decoded into a Reading.
func (r Result) OK() bool {
	return r.Reason == ReasonOK
}

// Decode parses one raw line. Undecodable bytes are dropped and surrounding
// whitespace and control characters are trimmed before the fields are read.
func Decode(line string) Result {
	line = trimNoise(line)
	if line == "" {
		return Result{Reason: ReasonEmpty}
	}

	n := strings.Count(line, Separator)
	switch {
	case n == 0:
		return Result{Reason: ReasonNoSeparator}
	case n > 1:
		return Result{Reason: ReasonFieldCount}
	}

	angleField, codeField, _ := strings.Cut(line, Separator)

	angle, err := strconv.Atoi(strings.TrimSpace(angleField))
	if err != nil {
		return Result{Reason: ReasonBadAngle}
	}
	code, err := strconv.Atoi(strings.TrimSpace(codeField))
	if err != nil {
		return Result{Reason: ReasonBadCode}
	}

	return Result{Reading: Reading{Angle: NormalizeAngle(angle), RawCode: code}}
}

// NormalizeAngle wraps any integer angle into [0, FullCircle).
func NormalizeAngle(a int) int {
	return ((a % FullCircle) + FullCircle) % FullCircle
}

// trimNoise drops non-ASCII bytes anywhere in the line, then strips leading
// and trailing whitespace and control characters.
func trimNoise(line string) string {
	clean := strings.Map(func(r rune) rune {
		if r > 0x7f {
			return -1
		}
		return r
	}, line)
	return strings.TrimFunc(clean, func(r rune) bool {
		return r <= ' ' || r == 0x7f
	})
}
