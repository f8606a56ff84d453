// Package manifest handles glass.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project manifest.
const FileName = "glass.toml"

// SourceExt is the extension of glass source files.
const SourceExt = ".gls"

// Manifest represents a glass.toml project configuration.
type Manifest struct {
	Project Project     `toml:"project"`
	Source  Source      `toml:"source"`
	VM      VMConfig    `toml:"vm"`
	Image   ImageConfig `toml:"image"`

	// Dir is the directory containing the glass.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source file locations. Files are run in the order
// listed, followed by the *.gls files of each directory in name order.
type Source struct {
	Files []string `toml:"files"`
	Dirs  []string `toml:"dirs"`
	Entry string   `toml:"entry"`
}

// VMConfig configures the virtual machine.
type VMConfig struct {
	StackSize int  `toml:"stack-size"`
	Trace     bool `toml:"trace"`
}

// ImageConfig configures image output.
type ImageConfig struct {
	Output string `toml:"output"`
}

const (
	defaultEntry     = "main"
	defaultStackSize = 64 * 1024
)

// Load parses a glass.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(m.Source.Files) == 0 && len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if m.Source.Entry == "" {
		m.Source.Entry = defaultEntry
	}
	if m.VM.StackSize == 0 {
		m.VM.StackSize = defaultStackSize
	}
	if m.VM.StackSize < 8 {
		return nil, fmt.Errorf("%s: vm.stack-size %d is too small", path, m.VM.StackSize)
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a glass.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// SourcePaths returns the absolute paths of every source file of the
// project. Missing directories are skipped.
func (m *Manifest) SourcePaths() ([]string, error) {
	var paths []string
	for _, f := range m.Source.Files {
		paths = append(paths, m.abs(f))
	}
	for _, d := range m.Source.Dirs {
		entries, err := os.ReadDir(m.abs(d))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cannot list %s: %w", d, err)
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), SourceExt) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			paths = append(paths, filepath.Join(m.abs(d), name))
		}
	}
	return paths, nil
}

// ImagePath returns the absolute path of the configured image output, or
// "" if none is configured.
func (m *Manifest) ImagePath() string {
	if m.Image.Output == "" {
		return ""
	}
	return m.abs(m.Image.Output)
}

func (m *Manifest) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
