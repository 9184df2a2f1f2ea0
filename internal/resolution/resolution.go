// internal/resolution/resolution.go

// Package resolution maps chart resolution tokens ("1", "60", "1D") to MT5
// timeframe names (M1, H1, D1) and back. The chart library speaks tokens,
// the platform API speaks timeframes; everything in between goes through
// this table.
package resolution

import "time"

// Resolution is a chart-side resolution token.
type Resolution string

const (
	Min1  Resolution = "1"
	Min5  Resolution = "5"
	Min15 Resolution = "15"
	Min30 Resolution = "30"
	Hour1 Resolution = "60"
	Hour4 Resolution = "240"
	Day1  Resolution = "1D"
	Week1 Resolution = "1W"
	Month Resolution = "1M"
)

// DefaultTimeframe is the fallback for tokens outside the table.
const DefaultTimeframe = "M15"

type entry struct {
	timeframe string
	seconds   int64
}

var table = map[Resolution]entry{
	Min1:  {"M1", 60},
	Min5:  {"M5", 5 * 60},
	Min15: {"M15", 15 * 60},
	Min30: {"M30", 30 * 60},
	Hour1: {"H1", 60 * 60},
	Hour4: {"H4", 4 * 60 * 60},
	Day1:  {"D1", 24 * 60 * 60},
	Week1: {"W1", 7 * 24 * 60 * 60},
	Month: {"MN1", 30 * 24 * 60 * 60},
}

// Supported lists every token the chart may request, in ascending duration
// order.
func Supported() []string {
	return []string{
		string(Min1), string(Min5), string(Min15), string(Min30),
		string(Hour1), string(Hour4), string(Day1), string(Week1), string(Month),
	}
}

// Timeframe converts a resolution token to the MT5 timeframe name. Unknown
// tokens fall back to DefaultTimeframe rather than failing the request.
func Timeframe(r Resolution) string {
	if e, ok := table[r]; ok {
		return e.timeframe
	}
	return DefaultTimeframe
}

// Token converts an MT5 timeframe name back to the chart token. Unknown
// timeframes map to the fallback's token.
func Token(timeframe string) Resolution {
	for r, e := range table {
		if e.timeframe == timeframe {
			return r
		}
	}
	return Min15
}

// Seconds returns the bar duration of a token in seconds. Unknown tokens
// use the fallback timeframe's duration.
func Seconds(r Resolution) int64 {
	if e, ok := table[r]; ok {
		return e.seconds
	}
	return table[Min15].seconds
}

// Duration returns the bar duration of a token.
func Duration(r Resolution) time.Duration {
	return time.Duration(Seconds(r)) * time.Second
}

// Known reports whether the token is in the table.
func Known(r Resolution) bool {
	_, ok := table[r]
	return ok
}
