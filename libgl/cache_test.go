package libgl_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"point-shadows/libgl"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyDependsOnSourcesAndDriver(t *testing.T) {
	base := libgl.CacheKey([]string{"a", "b"}, "nvidia", "rtx", "4.5")

	assert.Len(t, base, 32)
	assert.Equal(t, base, libgl.CacheKey([]string{"a", "b"}, "nvidia", "rtx", "4.5"))
	assert.NotEqual(t, base, libgl.CacheKey([]string{"ab"}, "nvidia", "rtx", "4.5"))
	assert.NotEqual(t, base, libgl.CacheKey([]string{"a", "b"}, "intel", "rtx", "4.5"))
	assert.NotEqual(t, base, libgl.CacheKey([]string{"a", "b"}, "nvidia", "rtx", "4.6"))
}

func TestProgramCacheRoundTrip(t *testing.T) {
	cache := &libgl.ProgramCache{Dir: filepath.Join(t.TempDir(), "cache"), MaxAge: time.Hour}

	require.NoError(t, cache.Write("abc", 0x8741, []byte{1, 2, 3, 4}))

	buf, format, ok := cache.Get("abc")
	require.True(t, ok)
	assert.Equal(t, uint32(0x8741), format)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)

	_, _, ok = cache.Get("missing")
	assert.False(t, ok)
}

func TestProgramCacheExpires(t *testing.T) {
	dir := t.TempDir()
	cache := &libgl.ProgramCache{Dir: dir, MaxAge: time.Hour}
	require.NoError(t, cache.Write("old", 1, []byte{9}))

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.bin"), old, old))

	_, _, ok := cache.Get("old")
	assert.False(t, ok)
	assert.NoFileExists(t, filepath.Join(dir, "old.bin"))
}

func TestProgramCacheDisabled(t *testing.T) {
	dir := t.TempDir()
	cache := &libgl.ProgramCache{Dir: dir, Disabled: true}
	require.NoError(t, cache.Write("k", 1, []byte{1}))

	_, _, ok := cache.Get("k")
	assert.False(t, ok)
}

func TestParseVendor(t *testing.T) {
	assert.Equal(t, libgl.VendorIntel, libgl.ParseVendor("Intel Inc.\x00"))
	assert.Equal(t, libgl.VendorNvidia, libgl.ParseVendor("NVIDIA Corporation"))
	assert.Equal(t, libgl.VendorAmd, libgl.ParseVendor("ATI Technologies Inc."))
	assert.Equal(t, libgl.VendorAmd, libgl.ParseVendor("AMD"))
	assert.Equal(t, libgl.VendorUnknown, libgl.ParseVendor("Mesa"))
}

func TestMipLevels(t *testing.T) {
	assert.Equal(t, 11, libgl.MipLevels(1024, 1024, 1))
	assert.Equal(t, 11, libgl.MipLevels(1024, 512, 1))
	assert.Equal(t, 1, libgl.MipLevels(1, 1, 1))
	assert.Equal(t, 1, libgl.MipLevels(0, 0, 0))
	assert.Equal(t, 10, libgl.MipLevels(600, 400, 1))
}

func TestReadsCubeFacesBound(t *testing.T) {
	intel := &libgl.Environment{Vendor: libgl.VendorIntel, UseIntelCubemapDsaFix: true}
	assert.True(t, intel.ReadsCubeFacesBound(gl.TEXTURE_CUBE_MAP))
	assert.False(t, intel.ReadsCubeFacesBound(gl.TEXTURE_2D))

	nvidia := &libgl.Environment{Vendor: libgl.VendorNvidia}
	assert.False(t, nvidia.ReadsCubeFacesBound(gl.TEXTURE_CUBE_MAP))

	var missing *libgl.Environment
	assert.False(t, missing.ReadsCubeFacesBound(gl.TEXTURE_CUBE_MAP))
}
