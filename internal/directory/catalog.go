package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
)

// Catalog caches a Directory listing for the pickers. A failed load leaves
// an empty catalog with Err set: the board keeps working on the cities it
// already has.
type Catalog struct {
	source Directory

	mu     sync.RWMutex
	cities []engine.City
	byID   map[string]engine.City
	err    error
}

func NewCatalog(source Directory) *Catalog {
	return &Catalog{source: source, byID: map[string]engine.City{}}
}

// Load fetches the listing. It returns an error wrapping
// engine.ErrDirectoryLoad on failure.
func (c *Catalog) Load(ctx context.Context) error {
	cities, err := c.source.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.cities = nil
		c.byID = map[string]engine.City{}
		c.err = fmt.Errorf("%w: %w", engine.ErrDirectoryLoad, err)
		slog.Error(config.ErrDirectoryLoad,
			config.LogKeyComponent, config.CompDirectory,
			config.LogKeyError, err)
		return c.err
	}

	c.cities = cities
	c.byID = lo.KeyBy(cities, func(city engine.City) string { return city.ID })
	c.err = nil
	slog.Info(config.MsgCatalogLoaded,
		config.LogKeyComponent, config.CompDirectory,
		config.LogKeyCount, len(cities))
	return nil
}

// Err returns the error of the last Load, nil after a successful one.
func (c *Catalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// All returns the full listing in catalog order.
func (c *Catalog) All() []engine.City {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]engine.City, len(c.cities))
	copy(out, c.cities)
	return out
}

func (c *Catalog) Lookup(id string) (engine.City, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	city, ok := c.byID[id]
	return city, ok
}

// Resolve maps ids to cities in order, dropping unknown ids.
func (c *Catalog) Resolve(ids []string) []engine.City {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.FilterMap(ids, func(id string, _ int) (engine.City, bool) {
		city, ok := c.byID[id]
		return city, ok
	})
}

// Search matches query case-insensitively against name and country, skips
// ids for which exclude returns true and keeps at most SearchResultsLimit hits.
func (c *Catalog) Search(query string, exclude func(id string) bool) []engine.City {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []engine.City
	for _, city := range c.cities {
		if exclude != nil && exclude(city.ID) {
			continue
		}
		if strings.Contains(strings.ToLower(city.Name), q) || strings.Contains(strings.ToLower(city.Country), q) {
			out = append(out, city)
			if len(out) == config.SearchResultsLimit {
				break
			}
		}
	}
	return out
}

// Popular returns the suggested cities not excluded.
func (c *Catalog) Popular(exclude func(id string) bool) []engine.City {
	return c.pick(config.PopularCityIDs, exclude, len(config.PopularCityIDs))
}

// Recent returns at most RecentCitiesShown cities among ids, skipping excluded ones.
func (c *Catalog) Recent(ids []string, exclude func(id string) bool) []engine.City {
	return c.pick(ids, exclude, config.RecentCitiesShown)
}

// Defaults returns the first-launch selection.
func (c *Catalog) Defaults() []engine.City {
	return c.Resolve(config.DefaultCityIDs)
}

func (c *Catalog) pick(ids []string, exclude func(id string) bool, limit int) []engine.City {
	cities := c.Resolve(ids)
	if exclude != nil {
		cities = lo.Reject(cities, func(city engine.City, _ int) bool { return exclude(city.ID) })
	}
	if len(cities) > limit {
		cities = cities[:limit]
	}
	return cities
}
