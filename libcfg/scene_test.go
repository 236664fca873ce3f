package libcfg_test

import (
	"os"
	"path/filepath"
	"testing"

	"point-shadows/libcfg"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	name := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(name, []byte(content), 0644))
	return name
}

func TestDefaultIsValid(t *testing.T) {
	scene := libcfg.Default()
	require.NoError(t, scene.Validate())
	assert.Equal(t, 1800, scene.Window.Width)
	assert.Equal(t, 1600, scene.Window.Height)
	assert.Equal(t, 1024, scene.Shadow.Resolution)
	assert.Equal(t, float32(1), scene.Shadow.Near)
	assert.Equal(t, float32(25), scene.Shadow.Far)
	assert.Equal(t, float32(0.5), scene.Light.Rate)
	assert.Equal(t, float32(3), scene.Light.Amplitude)
}

func TestLoadOverridesDefaults(t *testing.T) {
	name := writeConfig(t, `
[window]
width = 800

[shadow]
far = 40.0

[light]
start = [0.0, 1.0, 0.0]
paused = true

[[model]]
path = "~/models/duck.glb"
translate = [0.0, -4.0, 0.0]
`)

	scene, err := libcfg.Load(name)
	require.NoError(t, err)

	assert.Equal(t, 800, scene.Window.Width)
	assert.Equal(t, 1600, scene.Window.Height)
	assert.Equal(t, float32(40), scene.Shadow.Far)
	assert.Equal(t, float32(1), scene.Shadow.Near)
	assert.Equal(t, [3]float32{0, 1, 0}, scene.Light.Start)
	assert.True(t, scene.Light.Paused)

	require.Len(t, scene.Models, 1)
	home, err := homedir.Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "models/duck.glb"), scene.Models[0].Path)
	assert.Equal(t, float32(1), scene.Models[0].Scale)
	assert.Equal(t, [3]float32{0, -4, 0}, scene.Models[0].Translate)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	name := writeConfig(t, `
[shadow]
resolutoin = 512
`)

	_, err := libcfg.Load(name)
	assert.ErrorContains(t, err, "resolutoin")
}

func TestLoadRejectsInvalidPlanes(t *testing.T) {
	name := writeConfig(t, `
[shadow]
near = 30.0
`)

	_, err := libcfg.Load(name)
	assert.ErrorContains(t, err, "near")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := libcfg.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRepositorySceneConfigLoads(t *testing.T) {
	scene, err := libcfg.Load("../assets/scene.toml")
	require.NoError(t, err)
	assert.Equal(t, "PointShadow", scene.Window.Title)
}
