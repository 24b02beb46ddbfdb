// Package store persists the city selection across restarts.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"github.com/spf13/afero"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
)

func decodeCities(raw []byte) ([]engine.City, error) {
	var cities []engine.City
	if err := json.Unmarshal(raw, &cities); err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrStorageCorrupt, err)
	}
	if cities == nil {
		cities = []engine.City{}
	}
	return cities, nil
}

// -----------------------------------------------------------------------------
// Fyne Preferences
// -----------------------------------------------------------------------------

// Preferences keeps the selection in the application preferences, as a JSON
// array under PrefSelectedCities.
type Preferences struct {
	prefs fyne.Preferences
}

func NewPreferences(prefs fyne.Preferences) *Preferences {
	return &Preferences{prefs: prefs}
}

func (p *Preferences) Load() ([]engine.City, error) {
	raw := p.prefs.String(config.PrefSelectedCities)
	if raw == "" {
		return nil, nil
	}
	return decodeCities([]byte(raw))
}

func (p *Preferences) Save(cities []engine.City) error {
	raw, err := json.Marshal(cities)
	if err != nil {
		return err
	}
	p.prefs.SetString(config.PrefSelectedCities, string(raw))
	return nil
}

func (p *Preferences) LoadRecent() ([]string, error) {
	return p.prefs.StringList(config.PrefRecentCities), nil
}

func (p *Preferences) SaveRecent(ids []string) error {
	p.prefs.SetStringList(config.PrefRecentCities, ids)
	return nil
}

// -----------------------------------------------------------------------------
// JSON File
// -----------------------------------------------------------------------------

// fileDocument is the on-disk layout of File.
type fileDocument struct {
	Cities json.RawMessage `json:"selectedCities,omitempty"`
	Recent []string        `json:"recentCities,omitempty"`
}

// File keeps the selection in a JSON document, for the headless commands.
// Writes go through a temporary file renamed over the target.
type File struct {
	fs   afero.Fs
	path string
}

func NewFile(path string) *File { return &File{fs: afero.NewOsFs(), path: path} }

func NewFileWithFS(fsys afero.Fs, path string) *File { return &File{fs: fsys, path: path} }

func (f *File) read() (fileDocument, bool, error) {
	var doc fileDocument
	af := &afero.Afero{Fs: f.fs}
	raw, err := af.ReadFile(f.path)
	if err != nil {
		if exists, _ := af.Exists(f.path); !exists {
			return doc, false, nil
		}
		return doc, false, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, true, fmt.Errorf("%w: %w", engine.ErrStorageCorrupt, err)
	}
	return doc, true, nil
}

func (f *File) write(mutate func(*fileDocument)) error {
	doc, _, err := f.read()
	if err != nil {
		slog.Warn(config.MsgSelectionReset,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyFile, f.path,
			config.LogKeyError, err)
		doc = fileDocument{}
	}
	mutate(&doc)

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	af := &afero.Afero{Fs: f.fs}
	if err := af.MkdirAll(filepath.Dir(f.path), config.DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	tmp := f.path + ".tmp"
	if err := af.WriteFile(tmp, raw, config.FilePermUserRW); err != nil {
		return err
	}
	return f.fs.Rename(tmp, f.path)
}

func (f *File) Load() ([]engine.City, error) {
	doc, found, err := f.read()
	if err != nil {
		return nil, err
	}
	if !found || len(doc.Cities) == 0 {
		return nil, nil
	}
	return decodeCities(doc.Cities)
}

func (f *File) Save(cities []engine.City) error {
	raw, err := json.Marshal(cities)
	if err != nil {
		return err
	}
	return f.write(func(doc *fileDocument) { doc.Cities = raw })
}

func (f *File) LoadRecent() ([]string, error) {
	doc, _, err := f.read()
	if err != nil {
		return nil, err
	}
	return doc.Recent, nil
}

func (f *File) SaveRecent(ids []string) error {
	return f.write(func(doc *fileDocument) { doc.Recent = ids })
}

var (
	_ engine.SelectionStore = (*Preferences)(nil)
	_ engine.SelectionStore = (*File)(nil)
)
