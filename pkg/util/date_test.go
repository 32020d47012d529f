package util

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	got, ok := ParseTimestamp("2020-02-01T00:55:33Z")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2020, 2, 1, 0, 55, 33, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimestampRejects(t *testing.T) {
	for _, s := range []string{
		"",
		"2020-02-01 00:55:33",
		"2020-02-01T00:55:33",
		"2020-02-01T00:55:33.5Z",
		"2020-02-01T00:55:33+00:00",
		"2020-13-01T00:55:33Z",
		"20-02-01T00:55:33Z",
		"invalid",
	} {
		if _, ok := ParseTimestamp(s); ok {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2020, 2, 1, 2, 55, 33, 0, loc)
	if got := FormatTimestamp(ts); got != "2020-02-01T00:55:33Z" {
		t.Fatalf("unexpected format %s", got)
	}
}

func TestSecondsBetween(t *testing.T) {
	from := time.Date(2020, 2, 1, 0, 55, 33, 0, time.UTC)
	to := from.Add(1500 * time.Millisecond)
	if got := SecondsBetween(from, to); got != 1.5 {
		t.Fatalf("unexpected seconds %v", got)
	}
}
