package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
)

// Configuration supplies defaults for every flag plus the settings that
// have no flag equivalent (filters, rate limit, notifications). Flags
// override config values.
type Configuration struct {
	Verbose        bool                 `koanf:"verbose"`
	DryRun         bool                 `koanf:"dry_run"`
	Recursive      bool                 `koanf:"recursive"`
	FollowSymlinks bool                 `koanf:"follow_symlinks"`
	IgnoreOwner    bool                 `koanf:"ignore_owner"`
	IgnoreGroup    bool                 `koanf:"ignore_group"`
	IgnorePerms    bool                 `koanf:"ignore_perms"`
	IgnoreEmpty    bool                 `koanf:"ignore_empty"`
	RateLimit      int                  `koanf:"rate_limit"` // replace ops per second, 0 = unlimited
	ExcludePaths   []string             `koanf:"exclude_paths"`
	Filters        FiltersConfiguration `koanf:"filters"`
	Notifications  NotificationsConfig  `koanf:"notifications"`
}

type FiltersConfiguration struct {
	// Ignore holds expressions evaluated against every candidate; a match
	// keeps the file out of the run entirely.
	Ignore []string `koanf:"ignore"`
}

var (
	Config Configuration

	k = koanf.New(".")
)

// Default returns the default config file location.
func Default() string {
	return filepath.Join(xdg.ConfigHome, "ratl", "config.yaml")
}

// Init loads the configuration file when it exists. A missing file leaves
// the zero defaults in place.
func Init(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return errors.Wrapf(err, "load config %q", path)
	}

	if err := k.Unmarshal("", &Config); err != nil {
		return errors.Wrapf(err, "unmarshal config %q", path)
	}

	return nil
}
