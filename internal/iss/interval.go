package iss

import "fmt"

// Interval is a symbolic candle interval token.
type Interval string

const (
	Interval1m   Interval = "1m"
	Interval5m   Interval = "5m"
	Interval10m  Interval = "10m"
	Interval60m  Interval = "60m"
	Interval1d   Interval = "1d"
	Interval1w   Interval = "1w"
	Interval1mth Interval = "1mth"
	Interval1y   Interval = "1y"
)

// DefaultInterval is used when CandleOpts.Interval is empty.
const DefaultInterval = Interval1m

// intervalCodes maps tokens to upstream interval codes.
// 1m and 5m share code 1 upstream; keep them that way.
var intervalCodes = map[Interval]string{
	Interval1m:   "1",
	Interval5m:   "1",
	Interval10m:  "10",
	Interval60m:  "60",
	Interval1d:   "24",
	Interval1w:   "7",
	Interval1mth: "31",
	Interval1y:   "4",
}

// Code returns the upstream numeric code for the interval.
func (i Interval) Code() (string, error) {
	code, ok := intervalCodes[i]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownInterval, string(i))
	}
	return code, nil
}

// Canonical returns the token naming the bucket width ISS actually serves for
// i. A 5m request is answered with 1-minute candles, so 5m maps to 1m.
// Typed candles and storage keys use this token.
func (i Interval) Canonical() Interval {
	if i == Interval5m {
		return Interval1m
	}
	return i
}

// ParseInterval validates a token read from user input.
func ParseInterval(s string) (Interval, error) {
	i := Interval(s)
	if _, err := i.Code(); err != nil {
		return "", err
	}
	return i, nil
}
