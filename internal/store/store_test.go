package store

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
)

var selection = []engine.City{
	{ID: "tokyo", Name: "Tokyo", Country: "Japan", Timezone: "Asia/Tokyo"},
	{ID: "london", Name: "London", Country: "United Kingdom", Timezone: "Europe/London"},
}

func TestPreferences_RoundTrip(t *testing.T) {
	a := test.NewTempApp(t)
	s := NewPreferences(a.Preferences())

	cities, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, cities, "nothing saved yet")

	require.NoError(t, s.Save(selection))
	cities, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, selection, cities)

	require.NoError(t, s.Save(nil))
	cities, err = s.Load()
	require.NoError(t, err)
	assert.NotNil(t, cities, "an emptied selection is not the same as no selection")
	assert.Empty(t, cities)

	require.NoError(t, s.SaveRecent([]string{"tokyo", "paris"}))
	recent, err := s.LoadRecent()
	require.NoError(t, err)
	assert.Equal(t, []string{"tokyo", "paris"}, recent)
}

func TestPreferences_Corrupt(t *testing.T) {
	a := test.NewTempApp(t)
	a.Preferences().SetString(config.PrefSelectedCities, "{not json")

	_, err := NewPreferences(a.Preferences()).Load()
	assert.ErrorIs(t, err, engine.ErrStorageCorrupt)
}

func TestFile_RoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := NewFileWithFS(fsys, "/state/kairos/selection.json")

	cities, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, cities)
	recent, err := s.LoadRecent()
	require.NoError(t, err)
	assert.Empty(t, recent)

	require.NoError(t, s.SaveRecent([]string{"paris"}))
	cities, err = s.Load()
	require.NoError(t, err)
	assert.Nil(t, cities, "recents alone do not count as a saved selection")

	require.NoError(t, s.Save(selection))
	cities, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, selection, cities)

	recent, err = s.LoadRecent()
	require.NoError(t, err)
	assert.Equal(t, []string{"paris"}, recent, "saving cities keeps recents")

	exists, err := afero.Exists(fsys, "/state/kairos/selection.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFile_Corrupt(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/selection.json", []byte("garbage"), config.FilePermUserRW))
	s := NewFileWithFS(fsys, "/selection.json")

	_, err := s.Load()
	assert.ErrorIs(t, err, engine.ErrStorageCorrupt)

	require.NoError(t, afero.WriteFile(fsys, "/selection.json", []byte(`{"selectedCities": 42}`), config.FilePermUserRW))
	_, err = s.Load()
	assert.ErrorIs(t, err, engine.ErrStorageCorrupt)

	// Saving over a corrupt document replaces it.
	require.NoError(t, s.Save(selection))
	cities, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, selection, cities)
}

func TestFile_BoardIntegration(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := NewFileWithFS(fsys, "/selection.json")

	board := engine.NewCityBoard(engine.NewProjector(nil), s, engine.ReferenceCity("Europe/Paris"))
	require.NoError(t, board.Load(selection[:1]))
	board.AddCity(selection[1])

	restored := engine.NewCityBoard(engine.NewProjector(nil), s, engine.ReferenceCity("Europe/Paris"))
	require.NoError(t, restored.Load(nil))
	assert.Equal(t, selection, restored.UserCities())
	assert.Equal(t, []string{"london"}, restored.Recent())
}
