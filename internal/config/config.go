// Package config resolves where the application keeps its state on disk.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/tman-org/tman/internal/build"
	"github.com/tman-org/tman/internal/fileutil"
)

// EnvHome overrides the configuration directory when set.
const EnvHome = "TMAN_HOME"

// Paths holds the file system locations used by the application.
type Paths struct {
	// ConfigDir holds the registry file and the default cron log.
	ConfigDir string
	// RegistryFile is the full path to the registry JSON document.
	RegistryFile string
	// CronLogFile is the default log target for the scheduled update job.
	CronLogFile string
}

// PathsFor returns the paths rooted at an explicitly chosen configuration
// directory, as set with the --config flag.
func PathsFor(configDir string) Paths {
	return pathsIn(fileutil.MustResolvePath(configDir))
}

// ResolvePaths determines the configuration directory.
//
// Resolution logic:
//  1. If TMAN_HOME is set, use its value.
//  2. Else, if the historical ~/.tman directory exists, use it.
//  3. Otherwise, fall back to the XDG config home.
func ResolvePaths() Paths {
	legacy := filepath.Join(fileutil.MustGetUserHomeDir(), "."+build.Slug)

	switch {
	case os.Getenv(EnvHome) != "":
		return pathsIn(fileutil.MustResolvePath(os.Getenv(EnvHome)))
	case fileutil.IsDir(legacy):
		return pathsIn(legacy)
	default:
		return pathsIn(filepath.Join(xdg.ConfigHome, build.Slug))
	}
}

func pathsIn(configDir string) Paths {
	return Paths{
		ConfigDir:    configDir,
		RegistryFile: filepath.Join(configDir, "config.json"),
		CronLogFile:  filepath.Join(configDir, build.Slug+"-cron.log"),
	}
}
