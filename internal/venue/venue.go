// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package venue collects the ordered paper list of a conference edition from
// its proceedings site and validates conference, year and month arguments
// before any network activity.
package venue

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	ErrUnknownConference = errors.New("unknown conference")
	ErrYearOutOfRange    = errors.New("year out of range")
	ErrMonthOutOfRange   = errors.New("month out of range")
)

// Conference is one supported venue.
type Conference string

const (
	CVPR    Conference = "CVPR"
	ICCV    Conference = "ICCV"
	ICLR    Conference = "ICLR"
	ICML    Conference = "ICML"
	ECCV    Conference = "ECCV"
	NeurIPS Conference = "NeurIPS"
)

var aliases = map[string]Conference{
	"cvpr":    CVPR,
	"iccv":    ICCV,
	"iclr":    ICLR,
	"icml":    ICML,
	"eccv":    ECCV,
	"nips":    NeurIPS,
	"neurips": NeurIPS,
}

// Aliases returns the accepted conference names in sorted order.
func Aliases() []string {
	return slices.Sorted(maps.Keys(aliases))
}

// ParseConference maps a case-insensitive alias to its Conference.
func ParseConference(name string) (Conference, error) {
	c, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w %q: conference must be one of %s", ErrUnknownConference, name, strings.Join(Aliases(), ", "))
	}
	return c, nil
}

// yearRange is an arithmetic sequence of edition years.
type yearRange struct {
	first, last, step int
}

func (r yearRange) contains(year int) bool {
	return year >= r.first && year <= r.last && (year-r.first)%r.step == 0
}

func (r yearRange) String() string {
	if r.step > 1 && (r.last-r.first)/r.step < 4 {
		var years []string
		for y := r.first; y <= r.last; y += r.step {
			years = append(years, strconv.Itoa(y))
		}
		return "[" + strings.Join(years, ", ") + "]"
	}
	if r.step > 1 {
		return fmt.Sprintf("[%d, %d, ..., %d]", r.first, r.first+r.step, r.last)
	}
	return fmt.Sprintf("[%d, ..., %d]", r.first, r.last)
}

// Editions covered by the proceedings sites.
var years = map[Conference]yearRange{
	CVPR:    {2013, 2020, 1},
	ICCV:    {2013, 2019, 2},
	ICLR:    {2013, 2020, 1},
	ICML:    {2013, 2020, 1},
	ECCV:    {1990, 2020, 2},
	NeurIPS: {1987, 2020, 1},
}

// pmlrVolumes maps ICML years to their PMLR volume.
var pmlrVolumes = map[int]string{
	2020: "v119",
	2019: "v97",
	2018: "v80",
	2017: "v70",
	2016: "v48",
	2015: "v37",
	2014: "v32",
	2013: "v28",
}

// ValidateYear checks that the proceedings site lists year for c.
func (c Conference) ValidateYear(year int) error {
	r, ok := years[c]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownConference, string(c))
	}
	if !r.contains(year) {
		return fmt.Errorf("%w: year must be in %s for %s", ErrYearOutOfRange, r, c)
	}
	return nil
}

// ValidateMonth checks month in 1..12 and, for the current year, not after
// the current month.
func ValidateMonth(year, month int, now time.Time) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month must be in range [1, ..., 12]", ErrMonthOutOfRange)
	}
	if year == now.Year() && month > int(now.Month()) {
		return fmt.Errorf("%w: month must be <= %d", ErrMonthOutOfRange, int(now.Month()))
	}
	return nil
}

// Validate checks the full argument set of a ranking job. A zero month is
// accepted and means no per-month rate.
func Validate(c Conference, year, month int, now time.Time) error {
	if year > now.Year() {
		return fmt.Errorf("%w: year %d is in the future", ErrYearOutOfRange, year)
	}
	if err := c.ValidateYear(year); err != nil {
		return err
	}
	if month != 0 {
		return ValidateMonth(year, month, now)
	}
	return nil
}
