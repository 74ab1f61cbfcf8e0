package archive

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/doeshing/calltrail/internal/infrastructure/cache"
)

const locatorCacheKey = "compressor-path"

// ExecutableLocator resolves the compressor binary. Pluggable so tests and
// alternative deployments can swap the probing strategy.
type ExecutableLocator interface {
	Resolve() (string, error)
}

// PathLocator probes an ordered list of candidate directories for the
// binary before falling back to a PATH lookup. Resolution results flow
// through an injected TTL cache.
type PathLocator struct {
	Candidates []string
	Fallback   string
	Cache      *cache.Cache
}

// NewPathLocator builds the default probe order: the configured override
// directory, a tools/ directory next to the executable, the executable's
// directory and its parent, then the working directory.
func NewPathLocator(overrideDir string, c *cache.Cache) *PathLocator {
	var candidates []string
	if overrideDir != "" {
		candidates = append(candidates, overrideDir)
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates, filepath.Join(dir, "tools"), dir, filepath.Dir(dir))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, wd)
	}
	return &PathLocator{
		Candidates: candidates,
		Fallback:   compressorBinaryName(),
		Cache:      c,
	}
}

// Resolve implements ExecutableLocator.
func (l *PathLocator) Resolve() (string, error) {
	if l.Cache != nil {
		if v, ok := l.Cache.Get(locatorCacheKey); ok {
			return v.(string), nil
		}
	}

	name := l.Fallback
	if name == "" {
		name = compressorBinaryName()
	}

	for _, dir := range l.Candidates {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			l.remember(candidate)
			return candidate, nil
		}
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("compressor %s not found in %d candidate dirs or PATH: %w", name, len(l.Candidates), err)
	}
	l.remember(path)
	return path, nil
}

func (l *PathLocator) remember(path string) {
	if l.Cache != nil {
		l.Cache.Set(locatorCacheKey, path)
	}
}

func compressorBinaryName() string {
	if runtime.GOOS == "windows" {
		return "7za.exe"
	}
	return "7za"
}
