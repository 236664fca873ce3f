// Package libfs resolves asset paths against a project root.
package libfs

import (
	"log"
	"os"
	"sync"

	"github.com/mitchellh/go-homedir"
)

// RootEnv overrides the build time root when set.
const RootEnv = "LOGL_ROOT_PATH"

// Root is the build time root, set with -ldflags "-X point-shadows/libfs.Root=<dir>".
var Root string

var (
	rootOnce     sync.Once
	resolvedRoot string
	override     *string
	fallback     *string
)

func root() string {
	rootOnce.Do(func() {
		switch {
		case override != nil:
			resolvedRoot = *override
		case os.Getenv(RootEnv) != "":
			resolvedRoot = os.Getenv(RootEnv)
		case fallback != nil:
			resolvedRoot = *fallback
		default:
			resolvedRoot = Root
		}

		expanded, err := homedir.Expand(resolvedRoot)
		if err != nil {
			log.Printf("could not expand root %q: %v", resolvedRoot, err)
			return
		}
		resolvedRoot = expanded
	})
	return resolvedRoot
}

// GetPath resolves a path relative to the root. Without a root the path is
// taken relative to a binary three directories below the project.
func GetPath(path string) string {
	if r := root(); r != "" {
		return r + "/" + path
	}
	return "../../../" + path
}

// SetRoot replaces the root for all later calls, taking priority over the environment.
func SetRoot(root string) {
	override = &root
	rootOnce = sync.Once{}
}

// SetDefaultRoot replaces the build time root. The environment and SetRoot still take priority.
func SetDefaultRoot(root string) {
	fallback = &root
	rootOnce = sync.Once{}
}

// Reset forgets the resolved root, any override and any default root.
func Reset() {
	override = nil
	fallback = nil
	rootOnce = sync.Once{}
}
