package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeNaiveISO(t *testing.T) {
	got, ok := ParseTime("2024-10-10T10:10:10.123456")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Year() != 2024 || got.Nanosecond() != 123456000 {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
	if got := ParseTimeDefault("yesterday", def); !got.Equal(def) {
		t.Fatalf("expected default for garbage, got %v", got)
	}
}

func TestISO(t *testing.T) {
	if ISO(time.Time{}) != "" {
		t.Fatalf("zero time should format empty")
	}
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := ISO(ts); got != "2025-01-02T03:04:05Z" {
		t.Fatalf("unexpected %s", got)
	}
}

func TestNextDay(t *testing.T) {
	got := NextDay(time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC))
	if got.Format("2006-01-02") != "2025-01-01" {
		t.Fatalf("unexpected %v", got)
	}
}
