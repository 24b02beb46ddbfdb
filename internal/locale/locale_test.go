package locale

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
)

// translationKeys lists every key declared in the config package.
var translationKeys = []string{
	config.TKeyWinTitle,
	config.TKeyWinAddCity,
	config.TKeyWinSettings,
	config.TKeyYourTime,
	config.TKeyCurrentTime,
	config.TKeySameTime,
	config.TKeyAhead,
	config.TKeyBehind,
	config.TKeyBtnAddCity,
	config.TKeyBtnRemove,
	config.TKeyBtnMoveUp,
	config.TKeyBtnMoveDown,
	config.TKeyBtnExportSlot,
	config.TKeyBtnNow,
	config.TKeyBtnSettings,
	config.TKeyBtnSave,
	config.TKeyBtnCancel,
	config.TKeyLblSearch,
	config.TKeyLblPopular,
	config.TKeyLblRecent,
	config.TKeyLblNoResults,
	config.TKeyLblLanguage,
	config.TKeyLblPort,
	config.TKeyLblServer,
	config.TKeyHelpPort,
	config.TKeyLblFooter,
	config.TKeyNotifDirectory,
	config.TKeyNotifExported,
	config.TKeyNotifServerOff,
	config.TKeyInvalidZone,
	config.TKeySlotSummary,
	config.TKeyErrPortReq,
	config.TKeyErrPortNum,
	config.TKeyErrPortRange,
}

// TestI18nIntegrity ensures every declared key exists in every locale file
// and that no locale carries keys the code never asks for.
func TestI18nIntegrity(t *testing.T) {
	declared := map[string]bool{}
	for _, k := range translationKeys {
		declared[k] = true
	}

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			content, err := localeFS.ReadFile(localeDir + "/" + localePrefix + lang + localeSuffix)
			require.NoError(t, err)

			var jsonMap map[string]any
			require.NoError(t, json.Unmarshal(content, &jsonMap), "JSON must be valid")

			for key := range declared {
				assert.Containsf(t, jsonMap, key, "key %q missing in %s", key, lang)
			}
			for key := range jsonMap {
				if strings.HasPrefix(key, "_") {
					continue
				}
				assert.Truef(t, declared[key], "orphan key %q in %s", key, lang)
			}
		})
	}
}

func TestTranslator_Languages(t *testing.T) {
	tr := New("")
	assert.ElementsMatch(t, config.SupportedLanguages, tr.Languages())
	assert.Equal(t, config.DefaultLanguage, tr.Language())
}

func TestTranslator_SwitchLanguage(t *testing.T) {
	tr := New("en")
	assert.Equal(t, "YOUR TIME", tr.T(config.TKeyYourTime))

	tr.SetLanguage("fr")
	assert.Equal(t, "VOTRE HEURE", tr.T(config.TKeyYourTime))
	assert.Equal(t, "HEURE ACTUELLE", tr.Caption(0))

	tr.SetLanguage("de")
	assert.Equal(t, "YOUR TIME", tr.T(config.TKeyYourTime), "unknown languages fall back to English")
}

func TestTranslator_MissingKey(t *testing.T) {
	assert.Equal(t, "no_such_key", New("en").T("no_such_key"))
}

func TestTranslator_Difference(t *testing.T) {
	en := New("en")
	assert.Equal(t, "Same time", en.Difference(engine.OffsetDiff{}))
	assert.Equal(t, "9h ahead", en.Difference(engine.OffsetDiff{Hours: 9, Minutes: 540}))
	assert.Equal(t, "6h behind", en.Difference(engine.OffsetDiff{Hours: -6, Minutes: -330}))

	fr := New("fr")
	assert.Equal(t, "9h d'avance", fr.Difference(engine.OffsetDiff{Hours: 9, Minutes: 540}))
}

func TestTranslator_CaptionAndPlurals(t *testing.T) {
	tr := New("en")
	assert.Equal(t, "CURRENT TIME", tr.Caption(0))
	assert.Equal(t, "+1H 15M", tr.Caption(75))
	assert.Equal(t, "Meeting slot (1 city)", tr.SlotSummary(1))
	assert.Equal(t, "Meeting slot (4 cities)", tr.SlotSummary(4))
	assert.Equal(t, "Kairos 1.2.3", tr.TData(config.TKeyLblFooter, map[string]any{"Version": "1.2.3"}))
}
