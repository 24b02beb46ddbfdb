// Package directory provides the read-only catalogs cities are picked from.
package directory

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
)

//go:embed cities.json
var embeddedCatalog []byte

// Directory lists the cities available for selection.
type Directory interface {
	List(ctx context.Context) ([]engine.City, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// catalogDocument is the object form of a catalog file. Bare arrays are
// accepted too.
type catalogDocument struct {
	Cities []engine.City `json:"cities"`
}

// Decode parses a JSON catalog, either `{"cities": [...]}` or a bare array.
// Entries failing validation are skipped and duplicate ids keep the first one.
func Decode(r io.Reader) ([]engine.City, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCatalogDecode, err)
	}

	var cities []engine.City
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &cities)
	} else {
		var doc catalogDocument
		err = json.Unmarshal(trimmed, &doc)
		cities = doc.Cities
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCatalogDecode, err)
	}

	valid := lo.Filter(cities, func(c engine.City, _ int) bool {
		if err := validate.Struct(c); err != nil {
			slog.Debug(config.MsgCatalogSkip,
				config.LogKeyComponent, config.CompDirectory,
				config.LogKeyCityID, c.ID,
				config.LogKeyError, err)
			return false
		}
		return !c.IsReference()
	})
	return lo.UniqBy(valid, func(c engine.City) string { return c.ID }), nil
}

// Embedded serves the catalog compiled into the binary.
type Embedded struct{}

func (Embedded) List(ctx context.Context) ([]engine.City, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(embeddedCatalog))
}

// File reads a JSON catalog from disk.
type File struct {
	fs   afero.Fs
	path string
}

func NewFile(path string) *File { return &File{fs: afero.NewOsFs(), path: path} }

func NewFileWithFS(fsys afero.Fs, path string) *File { return &File{fs: fsys, path: path} }

func (f *File) List(ctx context.Context) ([]engine.City, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := f.fs.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	return Decode(io.LimitReader(file, config.MaxHTTPResponseSize))
}

// Merge combines several directories. The first directory wins on duplicate
// ids. Failing sources are skipped as long as one of them succeeds.
type Merge []Directory

func (m Merge) List(ctx context.Context) ([]engine.City, error) {
	var (
		all  []engine.City
		errs []error
		ok   bool
	)
	for _, d := range m {
		cities, err := d.List(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn(config.ErrDirectoryLoad,
				config.LogKeyComponent, config.CompDirectory,
				config.LogKeyError, err)
			errs = append(errs, err)
			continue
		}
		ok = true
		all = append(all, cities...)
	}
	if !ok {
		return nil, errors.Join(errs...)
	}
	return lo.UniqBy(all, func(c engine.City) string { return c.ID }), nil
}

// Sources builds the directory chain of the runtime settings: the cities
// file first, then the remote catalog, then the embedded list. A file with
// a vCard extension, or a folder, is read as contacts.
func Sources(fsys afero.Fs, citiesFile, citiesURL string) Merge {
	var m Merge
	if citiesFile != "" {
		ext := strings.ToLower(filepath.Ext(citiesFile))
		isDir, _ := afero.IsDir(fsys, citiesFile)
		if isDir || ext == config.ExtVCF || ext == config.ExtVCard {
			m = append(m, NewVCardWithFS(fsys, citiesFile))
		} else {
			m = append(m, NewFileWithFS(fsys, citiesFile))
		}
	}
	if citiesURL != "" {
		m = append(m, NewHTTP(citiesURL))
	}
	return append(m, Embedded{})
}
