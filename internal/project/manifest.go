package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/FuelLabs/sway-sub019/internal/ast"
)

// ManifestName is the file the project loader walks up looking for.
const ManifestName = "sway.toml"

// Manifest is a located, validated sway.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the TOML layout.
type Config struct {
	Package PackageConfig `toml:"package"`
	Check   CheckConfig   `toml:"check"`
}

// PackageConfig names the package and its program kind, and lists the
// parsed-tree inputs relative to the manifest's directory.
type PackageConfig struct {
	Name string `toml:"name"`
	// Kind is one of script, contract, predicate, library.
	Kind string `toml:"kind"`
	// Trees are *.ast.json interchange files, pre-parsed upstream.
	Trees []string `toml:"trees"`
}

// CheckConfig tunes the check pipeline.
type CheckConfig struct {
	MaxDiagnostics int `toml:"max_diagnostics"`
	Jobs           int `toml:"jobs"`
}

// FindManifest walks up from startDir to locate sway.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load walks up from startDir, parses the manifest it finds, and
// validates the fields every pipeline run needs. ok is false when no
// manifest exists anywhere above startDir.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadFile(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// LoadFile parses and validates one manifest file.
func LoadFile(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := validate(path, meta, &cfg); err != nil {
		return nil, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

func validate(path string, meta toml.MetaData, cfg *Config) error {
	if !meta.IsDefined("package") {
		return fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return fmt.Errorf("%s: missing [package].name", path)
	}
	if !meta.IsDefined("package", "kind") {
		return fmt.Errorf("%s: missing [package].kind", path)
	}
	if _, err := ParseProgramKind(cfg.Package.Kind); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, tree := range cfg.Package.Trees {
		if strings.TrimSpace(tree) == "" {
			return fmt.Errorf("%s: empty entry in [package].trees", path)
		}
		if filepath.IsAbs(tree) {
			return fmt.Errorf("%s: [package].trees entry %q must be relative", path, tree)
		}
	}
	if cfg.Check.MaxDiagnostics < 0 {
		return fmt.Errorf("%s: [check].max_diagnostics must not be negative", path)
	}
	if cfg.Check.Jobs < 0 {
		return fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	return nil
}

// ParseProgramKind maps a manifest kind string onto the tree's kind.
func ParseProgramKind(s string) (ast.ProgramKind, error) {
	switch strings.TrimSpace(s) {
	case "script":
		return ast.ProgramScript, nil
	case "contract":
		return ast.ProgramContract, nil
	case "predicate":
		return ast.ProgramPredicate, nil
	case "library":
		return ast.ProgramLibrary, nil
	default:
		return 0, fmt.Errorf("unknown [package].kind %q (want script, contract, predicate, or library)", s)
	}
}

// Kind returns the validated program kind.
func (m *Manifest) Kind() ast.ProgramKind {
	k, err := ParseProgramKind(m.Config.Package.Kind)
	if err != nil {
		// LoadFile rejected unknown kinds already.
		panic(err)
	}
	return k
}

// TreePaths resolves the tree entries against the manifest root. The
// result is sorted so pipeline input order does not depend on TOML
// table order.
func (m *Manifest) TreePaths() []string {
	out := make([]string, 0, len(m.Config.Package.Trees))
	for _, tree := range m.Config.Package.Trees {
		out = append(out, filepath.Join(m.Root, filepath.FromSlash(tree)))
	}
	sort.Strings(out)
	return out
}
