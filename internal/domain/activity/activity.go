// Package activity summarises when podium screenshots were taken.
package activity

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

const (
	hoursPerDay = 24
	daysPerWeek = 7
	week        = daysPerWeek * 24 * time.Hour
)

// Week is the number of screenshots taken in the week starting at Start (a Monday, 00:00).
type Week struct {
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// Summary describes play times across a set of screenshots.
// Times are bucketed in their own location.
type Summary struct {
	Count int       `json:"count"`
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
	// Hours[h] counts screenshots taken between h:00 and h:59.
	Hours    [hoursPerDay]int `json:"hours"`
	Weekdays [daysPerWeek]int `json:"weekdays"` // indexed by time.Weekday
	Weeks    []Week           `json:"weeks"`
	// MeanHour and StdDevHour are over the fractional hour of day.
	MeanHour   float64 `json:"mean_hour"`
	StdDevHour float64 `json:"stddev_hour"`
}

// FractionalHour returns the time of day of t in hours, e.g. 18:30 is 18.5.
func FractionalHour(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

// WeekStart returns midnight of the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + daysPerWeek - 1) % daysPerWeek
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// Summarize builds the activity summary of the given capture times.
func Summarize(times []time.Time) Summary {
	var s Summary
	if len(times) == 0 {
		return s
	}

	sorted := append([]time.Time(nil), times...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	s.Count = len(sorted)
	s.First = sorted[0]
	s.Last = sorted[len(sorted)-1]

	hours := make([]float64, len(sorted))
	days := make([]float64, len(sorted))
	for i, t := range sorted {
		hours[i] = FractionalHour(t)
		days[i] = float64(t.Weekday())
	}
	sort.Float64s(hours)
	sort.Float64s(days)

	copyCounts(s.Hours[:], stat.Histogram(nil, unitDividers(hoursPerDay), hours, nil))
	copyCounts(s.Weekdays[:], stat.Histogram(nil, unitDividers(daysPerWeek), days, nil))
	s.MeanHour, s.StdDevHour = stat.MeanStdDev(hours, nil)
	if len(hours) == 1 {
		s.StdDevHour = 0
	}
	s.Weeks = weeks(sorted)
	return s
}

// weeks counts screenshots per calendar week from the first week to the last, empty weeks included.
func weeks(sorted []time.Time) []Week {
	first := WeekStart(sorted[0])
	var starts []time.Time
	for start := first; !start.After(sorted[len(sorted)-1]); start = start.AddDate(0, 0, daysPerWeek) {
		starts = append(starts, start)
	}

	dividers := make([]float64, len(starts)+1)
	for i, start := range starts {
		dividers[i] = float64(start.Unix())
	}
	dividers[len(starts)] = float64(starts[len(starts)-1].AddDate(0, 0, daysPerWeek).Unix())

	x := make([]float64, len(sorted))
	for i, t := range sorted {
		x[i] = float64(t.Unix())
	}
	counts := stat.Histogram(nil, dividers, x, nil)

	out := make([]Week, len(starts))
	for i, start := range starts {
		out[i] = Week{Start: start, Count: int(counts[i])}
	}
	return out
}

// unitDividers returns 0, 1, ..., n.
func unitDividers(n int) []float64 {
	d := make([]float64, n+1)
	for i := range d {
		d[i] = float64(i)
	}
	return d
}

func copyCounts(dst []int, counts []float64) {
	for i := range dst {
		dst[i] = int(counts[i])
	}
}
