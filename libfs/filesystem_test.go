package libfs_test

import (
	"testing"

	"point-shadows/libfs"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRoot(t *testing.T, root string) {
	prev := libfs.Root
	libfs.Root = root
	libfs.Reset()
	t.Cleanup(func() {
		libfs.Root = prev
		libfs.Reset()
	})
}

func TestGetPathFallsBackToRelative(t *testing.T) {
	t.Setenv(libfs.RootEnv, "")
	withRoot(t, "")

	assert.Equal(t, "../../../resources/textures/grass.jpeg", libfs.GetPath("resources/textures/grass.jpeg"))
}

func TestGetPathUsesBuildRoot(t *testing.T) {
	t.Setenv(libfs.RootEnv, "")
	withRoot(t, "/opt/logl")

	assert.Equal(t, "/opt/logl/resources/textures/grass.jpeg", libfs.GetPath("resources/textures/grass.jpeg"))
}

func TestGetPathPrefersEnvironment(t *testing.T) {
	t.Setenv(libfs.RootEnv, "/srv/assets")
	withRoot(t, "/opt/logl")

	assert.Equal(t, "/srv/assets/a.png", libfs.GetPath("a.png"))
}

func TestGetPathIsMemoized(t *testing.T) {
	t.Setenv(libfs.RootEnv, "/first")
	withRoot(t, "")

	assert.Equal(t, "/first/a", libfs.GetPath("a"))
	t.Setenv(libfs.RootEnv, "/second")
	assert.Equal(t, "/first/a", libfs.GetPath("a"))

	libfs.Reset()
	assert.Equal(t, "/second/a", libfs.GetPath("a"))
}

func TestSetRootOverridesEnvironment(t *testing.T) {
	t.Setenv(libfs.RootEnv, "/srv/assets")
	withRoot(t, "")

	libfs.SetRoot("/flag")
	assert.Equal(t, "/flag/a", libfs.GetPath("a"))
}

func TestGetPathExpandsHome(t *testing.T) {
	home, err := homedir.Dir()
	require.NoError(t, err)
	t.Setenv(libfs.RootEnv, "~/logl")
	withRoot(t, "")

	assert.Equal(t, home+"/logl/a", libfs.GetPath("a"))
}

func TestDefaultRootYieldsToEnvironment(t *testing.T) {
	t.Setenv(libfs.RootEnv, "/srv/assets")
	withRoot(t, "/opt/logl")

	libfs.SetDefaultRoot("/config")
	assert.Equal(t, "/srv/assets/a", libfs.GetPath("a"))

	t.Setenv(libfs.RootEnv, "")
	libfs.SetDefaultRoot("/config")
	assert.Equal(t, "/config/a", libfs.GetPath("a"))

	libfs.SetRoot("/flag")
	assert.Equal(t, "/flag/a", libfs.GetPath("a"))
}
