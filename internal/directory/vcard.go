package directory

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/spf13/afero"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
)

// contactIDPrefix keeps contact ids apart from catalog ids.
const contactIDPrefix = "contact-"

// VCard turns address-book contacts into selectable entries: every card with
// an IANA zone in its TZ property becomes a "city" named after the person.
// path is either a single .vcf file or a directory of them.
type VCard struct {
	fs   afero.Fs
	path string
}

func NewVCard(path string) *VCard { return &VCard{fs: afero.NewOsFs(), path: path} }

func NewVCardWithFS(fsys afero.Fs, path string) *VCard { return &VCard{fs: fsys, path: path} }

func (v *VCard) List(ctx context.Context) ([]engine.City, error) {
	info, err := v.fs.Stat(v.path)
	if err != nil {
		return nil, err
	}

	files := []string{v.path}
	if info.IsDir() {
		entries, err := afero.ReadDir(v.fs, v.path)
		if err != nil {
			return nil, err
		}
		files = files[:0]
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if !e.IsDir() && (ext == config.ExtVCF || ext == config.ExtVCard) {
				files = append(files, filepath.Join(v.path, e.Name()))
			}
		}
	}

	var cities []engine.City
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parsed, err := v.readFile(ctx, name)
		if err != nil {
			return nil, err
		}
		cities = append(cities, parsed...)
	}
	return cities, nil
}

func (v *VCard) readFile(ctx context.Context, name string) ([]engine.City, error) {
	f, err := v.fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	cities, err := DecodeVCards(ctx, io.LimitReader(f, config.MaxHTTPResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", config.ErrVCardParse, name, err)
	}
	return cities, nil
}

// DecodeVCards reads every card of r. Cards without a resolvable TZ are skipped.
func DecodeVCards(ctx context.Context, r io.Reader) ([]engine.City, error) {
	dec := vcard.NewDecoder(r)
	var cities []engine.City
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return cities, err
		}

		city, ok := cityFromCard(card)
		if !ok {
			continue
		}
		cities = append(cities, city)
	}
	return cities, nil
}

func cityFromCard(card vcard.Card) (engine.City, bool) {
	fn := card.Get(config.VCardFN)
	tz := card.Get(config.VCardTZ)
	if fn == nil || tz == nil {
		return engine.City{}, false
	}

	city := engine.City{
		Name:     strings.TrimSpace(fn.Value),
		Timezone: strings.TrimSpace(tz.Value),
	}
	if uid := card.Get(config.VCardUID); uid != nil && uid.Value != "" {
		city.ID = contactIDPrefix + uid.Value
	} else {
		sum := sha256.Sum256([]byte(city.Name + "|" + city.Timezone))
		city.ID = fmt.Sprintf("%s%x", contactIDPrefix, sum[:6])
	}
	if adr := card.Address(); adr != nil && adr.Country != "" {
		city.Country = adr.Country
	} else {
		city.Country = engine.CountryFromTimezone(city.Timezone)
	}

	if err := validate.Struct(city); err != nil {
		slog.Debug(config.MsgCardSkipped,
			config.LogKeyComponent, config.CompDirectory,
			config.LogKeyTimezone, city.Timezone,
			config.LogKeyError, err)
		return engine.City{}, false
	}
	return city, true
}
