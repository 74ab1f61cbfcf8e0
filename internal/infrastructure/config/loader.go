// Package config loads the calltrail YAML configuration.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/calltrail/internal/domain"
	"github.com/doeshing/calltrail/internal/pkg/filesystem"
	"github.com/doeshing/calltrail/internal/ports"
)

// FileLoader loads YAML configuration from ~/.calltrail/config.yaml
// (overridable via CALLTRAIL_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is replaced with
// written defaults so the first run is self-configuring.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := defaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return ExpandPath(l.overridePath)
	}
	if custom := os.Getenv("CALLTRAIL_CONFIG"); custom != "" {
		return ExpandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".calltrail", "config.yaml")
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

func defaultConfig() domain.Config {
	home := filesystem.UserHomeDir()
	archiveDir := filepath.Join(home, ".calltrail", "calls")
	enabled := true
	return domain.Config{
		ConfigFormatVersion: "1",
		Archive: domain.ArchiveSettings{
			Dir:       archiveDir,
			Namespace: domain.DefaultRecordNamespace,
		},
		Journal: domain.JournalSettings{
			Enabled: &enabled,
			Path:    filepath.Join(archiveDir, domain.JournalFileName),
		},
		Cache: domain.CacheSettings{
			TTLMinutes: int(domain.DefaultCacheTTL.Minutes()),
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	def := defaultConfig()
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = def.ConfigFormatVersion
	}
	if cfg.Archive.Dir == "" {
		cfg.Archive.Dir = def.Archive.Dir
	} else {
		cfg.Archive.Dir = ExpandPath(cfg.Archive.Dir)
	}
	if cfg.Archive.Namespace == "" {
		cfg.Archive.Namespace = def.Archive.Namespace
	}
	if cfg.Archive.CompressorDir != "" {
		cfg.Archive.CompressorDir = ExpandPath(cfg.Archive.CompressorDir)
	}
	// A nil Enabled means the key was absent; an explicit false must survive.
	if cfg.Journal.Enabled == nil {
		cfg.Journal.Enabled = def.Journal.Enabled
	}
	if cfg.Journal.Path == "" {
		if cfg.Journal.On() {
			// The journal lives inside the archive dir as a dotfile so the
			// sweep never buckets it.
			cfg.Journal.Path = filepath.Join(cfg.Archive.Dir, domain.JournalFileName)
		}
	} else {
		cfg.Journal.Path = ExpandPath(cfg.Journal.Path)
	}
	if cfg.Cache.TTLMinutes <= 0 {
		cfg.Cache.TTLMinutes = def.Cache.TTLMinutes
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)

// ExpandPath resolves ~/ prefixes and leaves absolute paths alone.
func ExpandPath(path string) string {
	if path == "~" {
		return filesystem.UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return path
}
