// Package manifest loads the optional hobby.toml project file that supplies
// default build settings for the driver.
package manifest

import (
	"os"

	"github.com/pelletier/go-toml"
)

// Build holds the [build] table of hobby.toml. Each field mirrors a driver
// flag and is only a default: a flag explicitly passed on the command line
// always overrides it.
type Build struct {
	Output  string `toml:"output"`
	Execute bool   `toml:"execute"`
	Verbose bool   `toml:"verbose"`
}

// Manifest is the root of hobby.toml.
type Manifest struct {
	Build Build `toml:"build"`
}

// Load reads and parses the manifest at path. A missing file is not an
// error — it yields a zero-value Manifest, so callers can unconditionally
// merge its (all-default) fields without special-casing "no manifest
// present".
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, nil
		}
		return nil, err
	}

	m := &Manifest{}
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
