package libgl

import (
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/gl/v4.5-core/gl"
)

// ProgramCache stores linked program binaries on disk keyed by source and driver.
type ProgramCache struct {
	Dir      string
	Disabled bool
	// Entries older than MaxAge are discarded, the driver may have been updated since.
	MaxAge time.Duration
}

var ShaderCache = &ProgramCache{
	Dir:    ".shadercache",
	MaxAge: 30 * 24 * time.Hour,
}

// CacheKey hashes the expanded stage sources together with the driver identification.
func CacheKey(sources []string, vendor, renderer, version string) string {
	hasher := md5.New()
	for _, s := range sources {
		hasher.Write([]byte(s))
		hasher.Write([]byte{0})
	}
	hasher.Write([]byte(vendor))
	hasher.Write([]byte(renderer))
	hasher.Write([]byte(version))
	return fmt.Sprintf("%x", hasher.Sum(nil))
}

func (cache *ProgramCache) path(key string) string {
	return filepath.Join(cache.Dir, key+".bin")
}

func (cache *ProgramCache) Put(key string, program uint32) {
	if cache.Disabled {
		return
	}
	var length int32
	gl.GetProgramiv(program, gl.PROGRAM_BINARY_LENGTH, &length)
	if length == 0 {
		return
	}
	buf := make([]byte, length)
	var format uint32
	gl.GetProgramBinary(program, length, &length, &format, Pointer(buf))

	if err := cache.Write(key, format, buf[:length]); err != nil {
		log.Printf("Could not write shader cache: %v\n", err)
	}
}

func (cache *ProgramCache) Write(key string, format uint32, data []byte) error {
	err := os.MkdirAll(cache.Dir, 0755)
	if err != nil {
		return fmt.Errorf("could not create shader cache directory %q: %w", cache.Dir, err)
	}
	file, err := os.OpenFile(cache.path(key), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	if err = binary.Write(file, binary.LittleEndian, format); err != nil {
		return err
	}
	_, err = file.Write(data)
	return err
}

// Get returns a cached binary and its format. Errors other than a cache miss are logged.
func (cache *ProgramCache) Get(key string) (buf []byte, format uint32, ok bool) {
	if cache.Disabled {
		return nil, 0, false
	}
	buf, format, err := cache.Read(key)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, false
	}
	if err != nil {
		log.Printf("Could not read shader cache: %v\n", err)
		return nil, 0, false
	}
	return buf, format, true
}

func (cache *ProgramCache) Read(key string) (buf []byte, format uint32, err error) {
	p := cache.path(key)
	info, err := os.Stat(p)
	if err != nil {
		return nil, 0, err
	}
	if cache.MaxAge > 0 && time.Since(info.ModTime()) > cache.MaxAge {
		os.Remove(p)
		return nil, 0, os.ErrNotExist
	}
	file, err := os.Open(p)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()
	if err = binary.Read(file, binary.LittleEndian, &format); err != nil {
		return nil, 0, fmt.Errorf("shader cache entry %q is corrupt: %w", key, err)
	}
	buf, err = io.ReadAll(file)
	return buf, format, err
}
