package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".symposium"

// Paths holds resolved filesystem paths for symposium data.
type Paths struct {
	Base   string // ~/.symposium
	Config string // ~/.symposium/config.yaml
	Store  string // ~/.symposium/symposium.db
	Logs   string // ~/.symposium/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If SYMPOSIUM_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("SYMPOSIUM_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Store:  filepath.Join(base, "symposium.db"),
		Logs:   filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
