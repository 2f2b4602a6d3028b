/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crptapi

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrIntervalOverflow is returned when the rate limiting window does not fit into time.Duration.
var ErrIntervalOverflow = errors.New("interval overflows time.Duration")

// TimeUnit is a unit in which the rate limiting interval is expressed.
type TimeUnit string

// Time units.
const (
	TimeUnitNanosecond  TimeUnit = "nanosecond"
	TimeUnitMicrosecond TimeUnit = "microsecond"
	TimeUnitMillisecond TimeUnit = "millisecond"
	TimeUnitSecond      TimeUnit = "second"
	TimeUnitMinute      TimeUnit = "minute"
	TimeUnitHour        TimeUnit = "hour"
	TimeUnitDay         TimeUnit = "day"
)

var timeUnitDurations = map[TimeUnit]time.Duration{
	TimeUnitNanosecond:  time.Nanosecond,
	TimeUnitMicrosecond: time.Microsecond,
	TimeUnitMillisecond: time.Millisecond,
	TimeUnitSecond:      time.Second,
	TimeUnitMinute:      time.Minute,
	TimeUnitHour:        time.Hour,
	TimeUnitDay:         24 * time.Hour,
}

// AllTimeUnits returns names of all supported time units from the smallest to the largest.
func AllTimeUnits() []string {
	return []string{
		string(TimeUnitNanosecond), string(TimeUnitMicrosecond), string(TimeUnitMillisecond),
		string(TimeUnitSecond), string(TimeUnitMinute), string(TimeUnitHour), string(TimeUnitDay),
	}
}

// ParseTimeUnit parses a time unit name (case-insensitive).
func ParseTimeUnit(s string) (TimeUnit, error) {
	tu := TimeUnit(strings.ToLower(s))
	if _, ok := timeUnitDurations[tu]; !ok {
		return "", fmt.Errorf("unknown time unit %q, should be one of %v", s, AllTimeUnits())
	}
	return tu, nil
}

// Duration returns the duration of count units.
// Non-positive counts are converted as is, so they may be rejected by the permit pool.
func (tu TimeUnit) Duration(count int64) (time.Duration, error) {
	unit, ok := timeUnitDurations[tu]
	if !ok {
		return 0, fmt.Errorf("unknown time unit %q", string(tu))
	}
	if count > math.MaxInt64/int64(unit) || count < math.MinInt64/int64(unit) {
		return 0, ErrIntervalOverflow
	}
	return time.Duration(count) * unit, nil
}
