package util

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"order screenshot.jpg", "order_screenshot.jpg"},
		{"a/b\\c:d", "a_b_c_d"},
		{"  trimmed.png ", "trimmed.png"},
		{"", "file"},
		{"   ", "file"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	long := SanitizeFilename(strings.Repeat("x", 500))
	if len(long) != 120 {
		t.Errorf("long name kept %d chars", len(long))
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("+91 98765-43210"); got != "919876543210" {
		t.Errorf("Digits = %q", got)
	}
	if got := Digits("no numbers"); got != "" {
		t.Errorf("Digits = %q", got)
	}
}

func TestIsDigits(t *testing.T) {
	if !IsDigits("560001") {
		t.Error("560001 rejected")
	}
	for _, bad := range []string{"", "56 001", "56000a", "5600.1"} {
		if IsDigits(bad) {
			t.Errorf("%q accepted", bad)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "x", "y"); got != "x" {
		t.Errorf("FirstNonEmpty = %q", got)
	}
	if got := FirstNonEmpty(); got != "" {
		t.Errorf("FirstNonEmpty() = %q", got)
	}
}
