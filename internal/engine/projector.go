package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/tartampluch/go-kairos/internal/config"
)

// ZoneResolver maps an IANA identifier to a location.
type ZoneResolver interface {
	Resolve(tz string) (*time.Location, error)
}

// CachedZoneResolver memoizes time.LoadLocation, which reads the zoneinfo
// database on every call.
type CachedZoneResolver struct {
	cache *otter.Cache[string, *time.Location]
}

// NewCachedZoneResolver creates a resolver bounded to config.LocationCacheSz zones.
func NewCachedZoneResolver() *CachedZoneResolver {
	return &CachedZoneResolver{
		cache: otter.Must(&otter.Options[string, *time.Location]{
			MaximumSize: config.LocationCacheSz,
		}),
	}
}

// Resolve returns the location for tz or an error wrapping ErrInvalidTimezone.
// "Local" is refused: only IANA identifiers are meaningful across machines.
func (r *CachedZoneResolver) Resolve(tz string) (*time.Location, error) {
	if tz == "" || tz == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, tz)
	}
	if loc, ok := r.cache.GetIfPresent(tz); ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, tz, err)
	}
	r.cache.Set(tz, loc)
	return loc, nil
}

// LocalTime is a projected instant expressed in a city's zone.
type LocalTime struct {
	Wall          time.Time
	Abbreviation  string
	OffsetMinutes int // UTC offset, positive east of UTC
}

// Clock renders the wall-clock time as HH:MM.
func (l LocalTime) Clock() string {
	return l.Wall.Format(config.TimeFormatDisplay)
}

// OffsetDiff is the signed difference between a target zone and the reference zone.
type OffsetDiff struct {
	// Hours is the difference rounded to the nearest whole hour, half away
	// from zero. Zones with a fractional offset (India, Nepal, parts of
	// Australia) collapse to the nearest hour.
	Hours int
	// Minutes is the exact difference.
	Minutes int
	// Abbreviation is the target zone abbreviation at the compared instant.
	Abbreviation string
}

// TimeLookup is the payload of the time lookup endpoint.
type TimeLookup struct {
	Timezone      string `json:"timezone"`
	CurrentTime   string `json:"currentTime"`
	Timestamp     int64  `json:"timestamp"`
	OffsetHours   int    `json:"offsetHours"`
	OffsetMinutes int    `json:"offsetMinutes"`
}

// Projector derives wall-clock times. It holds no state besides the zone cache,
// so equal inputs always give equal outputs.
type Projector struct {
	zones ZoneResolver
}

// NewProjector builds a projector. A nil resolver selects the cached default.
func NewProjector(zones ZoneResolver) *Projector {
	if zones == nil {
		zones = NewCachedZoneResolver()
	}
	return &Projector{zones: zones}
}

// Resolve exposes the underlying zone lookup.
func (p *Projector) Resolve(tz string) (*time.Location, error) {
	return p.zones.Resolve(tz)
}

// Project shifts base by a flat offsetMinutes and converts the result to tz.
func (p *Projector) Project(base time.Time, offsetMinutes int, tz string) (LocalTime, error) {
	loc, err := p.zones.Resolve(tz)
	if err != nil {
		return LocalTime{}, err
	}
	wall := base.Add(time.Duration(offsetMinutes) * time.Minute).In(loc)
	abbr, secs := wall.Zone()
	return LocalTime{
		Wall:          wall,
		Abbreviation:  abbr,
		OffsetMinutes: secs / 60,
	}, nil
}

// OffsetLabel computes target minus reference UTC offset at the instant at.
// Positive means the target is ahead.
func (p *Projector) OffsetLabel(refTZ, targetTZ string, at time.Time) (OffsetDiff, error) {
	ref, err := p.zones.Resolve(refTZ)
	if err != nil {
		return OffsetDiff{}, err
	}
	target, err := p.zones.Resolve(targetTZ)
	if err != nil {
		return OffsetDiff{}, err
	}

	_, refSecs := at.In(ref).Zone()
	abbr, targetSecs := at.In(target).Zone()
	diff := (targetSecs - refSecs) / 60

	return OffsetDiff{
		Hours:        int(math.Round(float64(diff) / config.MinutesPerHour)),
		Minutes:      diff,
		Abbreviation: abbr,
	}, nil
}

// Lookup reports the current time of tz the way the HTTP endpoint serves it.
func (p *Projector) Lookup(tz string, now time.Time) (TimeLookup, error) {
	lt, err := p.Project(now, 0, tz)
	if err != nil {
		return TimeLookup{}, err
	}
	return TimeLookup{
		Timezone:      tz,
		CurrentTime:   lt.Wall.Format(config.TimeFormatSeconds),
		Timestamp:     now.UnixMilli(),
		OffsetHours:   floorDiv(lt.OffsetMinutes, config.MinutesPerHour),
		OffsetMinutes: lt.OffsetMinutes,
	}, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
