package process

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
submit:
  - name: notify
    command: ./notify.sh
    timeout: 5s
    env:
      CHANNEL: listings
locator:
  command: termux-location
  args: ["-p", "gps"]
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Submit, 1)
	assert.Equal(t, "notify", cfg.Submit[0].Name)
	assert.Equal(t, 5*time.Second, cfg.Submit[0].Timeout)
	assert.Equal(t, "listings", cfg.Submit[0].Environment["CHANNEL"])
	require.NotNil(t, cfg.Locator)
	assert.Equal(t, []string{"-p", "gps"}, cfg.Locator.Args)
}

func TestLoadConfig_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"submit":[{"name":"n","command":"true"}]}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Submit, 1)
	assert.Nil(t, cfg.Locator)
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Submit)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Nil(t, cfg.Locator)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("submit: [{name: x}]"), 0o644))
	_, err := LoadConfig(bad)
	assert.ErrorContains(t, err, "name and command are required")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("submit: {"), 0o644))
	_, err = LoadConfig(broken)
	assert.Error(t, err)
}
