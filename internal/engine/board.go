package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/tartampluch/go-kairos/internal/config"
)

// SelectionStore persists the user cities (never the reference entry) and
// the recently added city ids. Load returns a nil slice when nothing was
// ever saved and an error wrapping ErrStorageCorrupt for unparsable data.
type SelectionStore interface {
	Load() ([]City, error)
	Save(cities []City) error
	LoadRecent() ([]string, error)
	SaveRecent(ids []string) error
}

// CityView is one rendered row of the board.
type CityView struct {
	City        City
	Local       LocalTime
	Diff        OffsetDiff
	IsReference bool
	Err         error // set when the city zone cannot be resolved
}

// CityBoard owns the selected city list. Index 0 is always the reference city.
type CityBoard struct {
	projector *Projector
	store     SelectionStore
	log       *slog.Logger

	mu        sync.RWMutex
	reference City
	cities    []City
	recent    []string
	loaded    bool
}

// NewCityBoard creates an empty board around reference. store may be nil for
// surfaces that never persist (terminal output). Nothing is persisted until
// Load has run, so an early mutation cannot overwrite the saved selection.
func NewCityBoard(projector *Projector, store SelectionStore, reference City) *CityBoard {
	return &CityBoard{
		projector: projector,
		store:     store,
		log:       slog.With(config.LogKeyComponent, config.CompBoard),
		reference: reference,
	}
}

// Load restores the persisted selection, falling back to defaults when
// nothing was saved or the stored data is corrupt. Cities added before Load
// are kept after the restored ones and persisted. The returned error is
// informational: the board is usable in every case.
func (b *CityBoard) Load(defaults []City) error {
	var (
		stored []City
		recent []string
		err    error
	)
	if b.store != nil {
		stored, err = b.store.Load()
		var rerr error
		if recent, rerr = b.store.LoadRecent(); rerr != nil {
			b.log.Warn(config.ErrSelectionLoad, config.LogKeyError, rerr)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	pending := b.cities
	b.loaded = true
	b.recent = lo.Uniq(slices.Concat(b.recent, recent))
	if len(b.recent) > config.RecentCitiesLimit {
		b.recent = b.recent[:config.RecentCitiesLimit]
	}

	base := stored
	if err != nil || stored == nil {
		if err != nil {
			b.log.Warn(config.MsgSelectionReset, config.LogKeyError, err)
		}
		base = defaults
	}
	b.cities = b.sanitize(slices.Concat(base, pending))

	switch {
	case len(pending) > 0:
		b.persistLocked()
		b.persistRecentLocked()
	case errors.Is(err, ErrStorageCorrupt):
		b.persistLocked()
	}
	return err
}

// sanitize drops the reference id and duplicates while keeping order.
func (b *CityBoard) sanitize(in []City) []City {
	out := lo.Filter(in, func(c City, _ int) bool { return !c.IsReference() && c.ID != "" })
	return lo.UniqBy(out, func(c City) string { return c.ID })
}

// Cities returns the full list, reference first.
func (b *CityBoard) Cities() []City {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]City{b.reference}, b.cities...)
}

// UserCities returns the persisted part of the list.
func (b *CityBoard) UserCities() []City {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.cities)
}

// Recent returns the recently added ids, most recent first.
func (b *CityBoard) Recent() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.recent)
}

// Contains reports whether id is displayed, reference included.
func (b *CityBoard) Contains(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return id == b.reference.ID || b.indexLocked(id) >= 0
}

// AddCity appends city unless an entry with the same id is present.
// It reports whether the list changed.
func (b *CityBoard) AddCity(city City) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if city.IsReference() {
		b.log.Debug(config.MsgRefusedRef, config.LogKeyCityID, city.ID)
		return false
	}
	if city.ID == "" || b.indexLocked(city.ID) >= 0 {
		return false
	}

	b.cities = append(b.cities, city)
	b.recent = append([]string{city.ID}, lo.Without(b.recent, city.ID)...)
	if len(b.recent) > config.RecentCitiesLimit {
		b.recent = b.recent[:config.RecentCitiesLimit]
	}

	b.log.Info(config.MsgCityAdded, config.LogKeyCityID, city.ID)
	b.persistLocked()
	b.persistRecentLocked()
	return true
}

// RemoveCity removes id. The reference entry is refused with ErrReferenceCity.
func (b *CityBoard) RemoveCity(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id == b.reference.ID {
		b.log.Debug(config.MsgRefusedRef, config.LogKeyCityID, id)
		return ErrReferenceCity
	}
	i := b.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrCityNotFound, id)
	}

	b.cities = slices.Delete(b.cities, i, i+1)
	b.log.Info(config.MsgCityRemoved, config.LogKeyCityID, id)
	b.persistLocked()
	return nil
}

// MoveCity moves id to toIndex in the full list. The reference entry cannot
// be moved (ErrReferenceCity) and toIndex is clamped into 1..N so nothing
// ever lands before it.
func (b *CityBoard) MoveCity(id string, toIndex int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id == b.reference.ID {
		b.log.Debug(config.MsgRefusedRef, config.LogKeyCityID, id)
		return ErrReferenceCity
	}
	from := b.indexLocked(id)
	if from < 0 {
		return fmt.Errorf("%w: %q", ErrCityNotFound, id)
	}

	to := min(max(toIndex, 1), len(b.cities)) - 1
	if to == from {
		return nil
	}
	city := b.cities[from]
	b.cities = slices.Delete(b.cities, from, from+1)
	b.cities = slices.Insert(b.cities, to, city)

	b.log.Info(config.MsgCityMoved, config.LogKeyCityID, id, config.LogKeyIndex, to+1)
	b.persistLocked()
	return nil
}

// Tick projects every city at base shifted by offsetMinutes. A city with an
// unresolvable zone gets Err set and does not affect the other rows.
func (b *CityBoard) Tick(base time.Time, offsetMinutes int) []CityView {
	cities := b.Cities()
	at := base.Add(time.Duration(offsetMinutes) * time.Minute)
	refTZ := cities[0].Timezone

	views := make([]CityView, 0, len(cities))
	for i, c := range cities {
		v := CityView{City: c, IsReference: i == 0}

		local, err := b.projector.Project(base, offsetMinutes, c.Timezone)
		if err != nil {
			v.Err = err
			views = append(views, v)
			continue
		}
		v.Local = local

		if !v.IsReference {
			if diff, err := b.projector.OffsetLabel(refTZ, c.Timezone, at); err == nil {
				v.Diff = diff
			} else {
				v.Err = err
			}
		}
		views = append(views, v)
	}
	return views
}

func (b *CityBoard) indexLocked(id string) int {
	return slices.IndexFunc(b.cities, func(c City) bool { return c.ID == id })
}

func (b *CityBoard) persistLocked() {
	if b.store == nil || !b.loaded {
		return
	}
	if err := b.store.Save(slices.Clone(b.cities)); err != nil {
		b.log.Error(config.ErrSelectionSave, config.LogKeyError, err)
	}
}

func (b *CityBoard) persistRecentLocked() {
	if b.store == nil || !b.loaded {
		return
	}
	if err := b.store.SaveRecent(slices.Clone(b.recent)); err != nil {
		b.log.Error(config.ErrSelectionSave, config.LogKeyError, err)
	}
}
