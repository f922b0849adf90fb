package segment

import (
	"strconv"
	"strings"
	"time"
)

// Marker is a start or end position as the caller typed it (e.g. "00:01:30", "01:45", "90.5").
// It is passed to ffmpeg verbatim; the system never rejects a marker on format grounds.
type Marker string

// String returns the marker exactly as given
func (m Marker) String() string {
	return string(m)
}

// Offset interprets the marker as an offset from the start of the asset.
// Accepted forms are [HH:]MM:SS[.fff] and plain seconds. ok is false for anything else,
// including forms ffmpeg itself may still accept.
func (m Marker) Offset() (d time.Duration, ok bool) {
	s := strings.TrimSpace(string(m))
	if s == "" {
		return 0, false
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}

	var total float64
	for i, p := range parts {
		last := i == len(parts)-1
		if p == "" {
			return 0, false
		}
		if last {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil || v < 0 {
				return 0, false
			}
			if len(parts) > 1 && v >= 60 {
				return 0, false
			}
			total = total*60 + v
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, false
		}
		// minutes field in HH:MM:SS
		if len(parts) == 3 && i == 1 && v > 59 {
			return 0, false
		}
		total = total*60 + float64(v)
	}

	return time.Duration(total * float64(time.Second)), true
}

// Span returns end minus start when both markers can be interpreted.
// A negative span is returned as is; ordering is ffmpeg's concern.
func Span(start, end Marker) (time.Duration, bool) {
	s, ok := start.Offset()
	if !ok {
		return 0, false
	}
	e, ok := end.Offset()
	if !ok {
		return 0, false
	}
	return e - s, true
}
