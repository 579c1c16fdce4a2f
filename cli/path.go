package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/macro/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config.yaml"

// defaultDirMode is the permission mode for created directories.
const defaultDirMode os.FileMode = 0o700

// userDir returns the directory given by primary, or else the named
// subdirectory of the home directory, or else the working directory.
func userDir(primary func() (string, error), home string) string {
	dir, err := primary()
	if err == nil {
		return dir
	}

	dir, err = os.UserHomeDir()
	if err == nil {
		return filepath.Join(dir, home)
	}

	dir, err = os.Getwd()
	if err != nil {
		return "."
	}

	return dir
}

// configDir returns the configuration directory path.
func configDir() string {
	return filepath.Join(userDir(os.UserConfigDir, ".config"), pkg.Name)
}

// cacheDir returns the cache directory path used for transient files such as
// REPL history and profiles.
func cacheDir() string {
	return filepath.Join(userDir(os.UserCacheDir, ".cache"), pkg.Name)
}

// configPath returns the path formed by joining the configuration directory
// with the given path elements.
//
// If no elements are given, it is equivalent to calling [configDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
