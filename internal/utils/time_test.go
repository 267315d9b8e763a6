package utils

import (
	"testing"
	"time"
)

func TestParseDateTime(t *testing.T) {
	got, err := ParseDateTime("2025-06-01 08:30:00")
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	want := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseDateTimeRFC3339Fallback(t *testing.T) {
	got, err := ParseDateTime("2025-06-01T08:30:00+07:00")
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	want := time.Date(2025, 6, 1, 1, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseDateTimeRejectsGarbage(t *testing.T) {
	if _, err := ParseDateTime("first of june"); err == nil {
		t.Fatalf("expected error for unparseable input")
	}
}

func TestFormatDateTimeRoundTrip(t *testing.T) {
	in := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	s := FormatDateTime(in)
	if s != "2025-12-31 23:59:59" {
		t.Fatalf("unexpected format: %s", s)
	}
	back, err := ParseDateTime(s)
	if err != nil || !back.Equal(in) {
		t.Fatalf("round trip failed: %v %v", back, err)
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"02:30:00", 2*time.Hour + 30*time.Minute, true},
		{"00:00:01", time.Second, true},
		{"27:15:45", 27*time.Hour + 15*time.Minute + 45*time.Second, true},
		{"2:30", 0, false},
		{"02:60:00", 0, false},
		{"02:00:61", 0, false},
		{"-1:00:00", 0, false},
		{"ab:cd:ef", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseDuration(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseDuration(%q) should fail", tc.in)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if s := FormatDuration(2*time.Hour + 5*time.Minute + 9*time.Second); s != "02:05:09" {
		t.Fatalf("unexpected format: %s", s)
	}
	if s := FormatDuration(30 * time.Hour); s != "30:00:00" {
		t.Fatalf("unexpected format: %s", s)
	}
}
