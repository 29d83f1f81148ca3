package cli

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ardnew/hbs/pkg"
)

// configFile is the base name of the YAML config file.
const configFile = "config.yaml"

const dirMode os.FileMode = 0o700

// userDir returns the per-user directory for pkg.Name below the directory
// returned by base, falling back to fallback below the home directory and
// then to the working directory.
func userDir(base func() (string, error), fallback string) string {
	dir, err := base()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, pkg.Name)
}

var (
	configDir = sync.OnceValue(func() string { return userDir(os.UserConfigDir, ".config") })
	cacheDir  = sync.OnceValue(func() string { return userDir(os.UserCacheDir, ".cache") })
)

// configPath returns the path of the config file.
func configPath() string { return filepath.Join(configDir(), configFile) }

// mkdirAll creates the config and cache directories.
func mkdirAll() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return err
		}
	}

	return nil
}
