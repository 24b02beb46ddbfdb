// Package locale translates the user-facing strings shared by the graphical
// and terminal front ends.
package locale

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// Translator resolves translation keys for the selected language.
type Translator struct {
	bundle *i18n.Bundle
	langs  []string

	mu        sync.RWMutex
	lang      string
	localizer *i18n.Localizer
}

// New loads the embedded locales and selects lang, falling back to English
// for unknown languages and missing keys.
func New(lang string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		t.langs = append(t.langs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	t.SetLanguage(lang)
	return t
}

// Languages lists the loaded language codes.
func (t *Translator) Languages() []string {
	out := make([]string, len(t.langs))
	copy(out, t.langs)
	return out
}

func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// SetLanguage switches the active language. An empty code selects the default.
func (t *Translator) SetLanguage(lang string) {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lang = lang
	t.localizer = i18n.NewLocalizer(t.bundle, lang, config.DefaultLanguage)
}

// T translates key, returning the key itself when it is unknown.
func (t *Translator) T(key string) string {
	return t.localize(&i18n.LocalizeConfig{MessageID: key})
}

// TData translates a templated message.
func (t *Translator) TData(key string, data map[string]any) string {
	return t.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
}

// TCount translates a pluralized message; the count is available as .Count.
func (t *Translator) TCount(key string, count int) string {
	return t.localize(&i18n.LocalizeConfig{
		MessageID:    key,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func (t *Translator) localize(lc *i18n.LocalizeConfig) string {
	t.mu.RLock()
	loc := t.localizer
	t.mu.RUnlock()

	msg, err := loc.Localize(lc)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, lc.MessageID,
			config.LogKeyError, err,
		)
		return lc.MessageID
	}
	return msg
}

// Difference renders "Same time", "3h ahead" or "6h behind".
func (t *Translator) Difference(d engine.OffsetDiff) string {
	span := map[string]any{"Span": "%s"}
	return engine.Difference(d,
		t.T(config.TKeySameTime),
		t.TData(config.TKeyAhead, span),
		t.TData(config.TKeyBehind, span))
}

// Caption renders the slider caption for offsetMinutes.
func (t *Translator) Caption(offsetMinutes int) string {
	return engine.OffsetCaption(offsetMinutes, t.T(config.TKeyCurrentTime))
}

// SlotSummary is the title of an exported meeting slot.
func (t *Translator) SlotSummary(cities int) string {
	return t.TCount(config.TKeySlotSummary, cities)
}
