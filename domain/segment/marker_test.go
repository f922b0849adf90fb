package segment

import (
	"testing"
	"time"
)

func TestMarker_Offset(t *testing.T) {
	tests := []struct {
		name   string
		input  Marker
		want   time.Duration
		wantOK bool
	}{
		{name: "clock time", input: "01:30:45", want: 5445 * time.Second, wantOK: true},
		{name: "all zeros", input: "00:00:00", want: 0, wantOK: true},
		{name: "minutes and seconds", input: "01:45", want: 105 * time.Second, wantOK: true},
		{name: "plain seconds", input: "90", want: 90 * time.Second, wantOK: true},
		{name: "fractional seconds", input: "00:00:10.5", want: 10500 * time.Millisecond, wantOK: true},
		{name: "large hours value", input: "99:00:00", want: 99 * time.Hour, wantOK: true},
		{name: "single digit fields", input: "1:2:3", want: 3723 * time.Second, wantOK: true},
		{name: "surrounding whitespace", input: " 00:01:00 ", want: time.Minute, wantOK: true},
		{name: "empty string", input: "", wantOK: false},
		{name: "too many parts", input: "01:02:03:04", wantOK: false},
		{name: "minutes too high", input: "01:60:00", wantOK: false},
		{name: "seconds too high", input: "01:30:60", wantOK: false},
		{name: "wrong separator", input: "01-30-45", wantOK: false},
		{name: "empty field", input: "01::45", wantOK: false},
		{name: "negative seconds", input: "-5", wantOK: false},
		{name: "words", input: "soon", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.input.Offset()
			if ok != tt.wantOK {
				t.Fatalf("Marker(%q).Offset() ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Marker(%q).Offset() = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMarker_StringIsVerbatim(t *testing.T) {
	for _, in := range []string{"00:01:00", "1:2", "not-a-time", " 5 "} {
		if got := Marker(in).String(); got != in {
			t.Errorf("Marker(%q).String() = %q", in, got)
		}
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		name   string
		start  Marker
		end    Marker
		want   time.Duration
		wantOK bool
	}{
		{name: "one minute", start: "00:01:00", end: "00:02:00", want: time.Minute, wantOK: true},
		{name: "mixed forms", start: "10", end: "00:00:20", want: 10 * time.Second, wantOK: true},
		{name: "end before start is reported, not rejected", start: "00:02:00", end: "00:01:00", want: -time.Minute, wantOK: true},
		{name: "unparseable start", start: "abc", end: "00:01:00", wantOK: false},
		{name: "unparseable end", start: "00:01:00", end: "later", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Span(tt.start, tt.end)
			if ok != tt.wantOK {
				t.Fatalf("Span() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Span() = %v, want %v", got, tt.want)
			}
		})
	}
}
