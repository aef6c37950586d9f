package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   Reading
		reason Reason
	}{
		{name: "plain frame", line: "90,1500", want: Reading{Angle: 90, RawCode: 1500}},
		{name: "crlf terminated", line: "15,2048\r\n", want: Reading{Angle: 15, RawCode: 2048}},
		{name: "surrounding whitespace", line: "  \t45,100  ", want: Reading{Angle: 45, RawCode: 100}},
		{name: "spaces inside fields", line: " 30 , 200 ", want: Reading{Angle: 30, RawCode: 200}},
		{name: "signed fields", line: "+10,-5", want: Reading{Angle: 10, RawCode: -5}},
		{name: "angle wraps above", line: "450,1", want: Reading{Angle: 90, RawCode: 1}},
		{name: "negative angle wraps", line: "-30,1", want: Reading{Angle: 330, RawCode: 1}},
		{name: "full turn is zero", line: "360,7", want: Reading{Angle: 0, RawCode: 7}},
		{name: "non-ascii noise dropped", line: "\xff\xfe12\xc3,34\x80", want: Reading{Angle: 12, RawCode: 34}},
		{name: "leading control bytes", line: "\x00\x02180,99\x03", want: Reading{Angle: 180, RawCode: 99}},
		{name: "code is not range checked", line: "0,99999", want: Reading{Angle: 0, RawCode: 99999}},

		{name: "empty", line: "", reason: ReasonEmpty},
		{name: "only noise", line: "\r\n\x00 ", reason: ReasonEmpty},
		{name: "no separator", line: "1500", reason: ReasonNoSeparator},
		{name: "too many fields", line: "1,2,3", reason: ReasonFieldCount},
		{name: "non-integer angle", line: "abc,123", reason: ReasonBadAngle},
		{name: "float angle", line: "1.5,123", reason: ReasonBadAngle},
		{name: "empty angle", line: ",123", reason: ReasonBadAngle},
		{name: "non-integer code", line: "10,xyz", reason: ReasonBadCode},
		{name: "empty code", line: "10,", reason: ReasonBadCode},
		{name: "overflowing angle", line: "99999999999999999999,1", reason: ReasonBadAngle},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Decode(tc.line)
			assert.Equal(t, tc.reason, got.Reason, "reason for %q", tc.line)
			assert.Equal(t, tc.reason == ReasonOK, got.OK())
			if tc.reason == ReasonOK {
				assert.Equal(t, tc.want, got.Reading)
			} else {
				assert.Equal(t, Reading{}, got.Reading, "rejected lines carry no reading")
			}
		})
	}
}

func TestNormalizeAngle(t *testing.T) {
	for _, tc := range []struct{ in, want int }{
		{0, 0}, {359, 359}, {360, 0}, {450, 90}, {720, 0},
		{-1, 359}, {-30, 330}, {-360, 0}, {-725, 355},
	} {
		if got := NormalizeAngle(tc.in); got != tc.want {
			t.Errorf("NormalizeAngle(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeAngle_AlwaysInRange(t *testing.T) {
	for a := -1000; a <= 1000; a++ {
		got := NormalizeAngle(a)
		if got < 0 || got >= FullCircle {
			t.Fatalf("NormalizeAngle(%d) = %d out of range", a, got)
		}
	}
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "ok", ReasonOK.String())
	assert.Equal(t, "bad_code", ReasonBadCode.String())
	assert.Equal(t, "unknown", Reason(42).String())
}
