package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSettingsSource_Reload verifies the hot-reload path driven by the file watcher:
// valid edits are published, invalid ones keep the previous snapshot.
func TestSettingsSource_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kairos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9000\"\n"), 0o600))

	src, err := LoadSettings(path)
	require.NoError(t, err)

	var got []Settings
	src.onChange = func(s Settings) { got = append(got, s) }

	require.NoError(t, os.WriteFile(path, []byte("port: \"9001\"\n"), 0o600))
	require.NoError(t, src.reload())
	assert.Equal(t, "9001", src.Current().Port)
	require.Len(t, got, 1)
	assert.Equal(t, "9001", got[0].Port)

	require.NoError(t, os.WriteFile(path, []byte("port: \"0\"\n"), 0o600))
	assert.Error(t, src.reload())
	assert.Equal(t, "9001", src.Current().Port, "invalid edits must not replace the last valid snapshot")
	assert.Len(t, got, 1)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " c "}))
	assert.Nil(t, splitList([]string{" , "}))
}
