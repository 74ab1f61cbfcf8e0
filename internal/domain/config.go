package domain

// Config mirrors ~/.calltrail/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Archive             ArchiveSettings   `yaml:"archive"`
	Redaction           RedactionSettings `yaml:"redaction"`
	Journal             JournalSettings   `yaml:"journal"`
	Cache               CacheSettings     `yaml:"cache"`
}

// ArchiveSettings controls where records land and how they are compacted.
type ArchiveSettings struct {
	Dir           string `yaml:"dir"`
	Namespace     string `yaml:"namespace"`
	CompressorDir string `yaml:"compressor_dir"`
}

// RedactionSettings configures secret masking.
type RedactionSettings struct {
	// ExtraSecrets are literal strings always masked before persistence.
	ExtraSecrets []string `yaml:"extra_secrets"`
}

// JournalSettings controls the archive-run journal. Enabled is a pointer
// so an explicit "enabled: false" is distinguishable from an absent key.
type JournalSettings struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// On reports whether journaling is switched on.
func (s JournalSettings) On() bool {
	return s.Enabled != nil && *s.Enabled
}

// CacheSettings controls the tool-path cache.
type CacheSettings struct {
	TTLMinutes int `yaml:"ttl_minutes"`
}
