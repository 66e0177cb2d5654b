package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/tool"
)

const (
	registryFileName = "config.json"

	dirPermissions  = 0750
	filePermissions = 0600
)

// ErrConfigMissing is returned by LoadForImport when no prior configuration
// directory exists; the caller must run the first-configuration flow
// explicitly.
var ErrConfigMissing = errors.New("registry: configuration not found")

// Setup collects the first-run settings from the user. It is a collaborator
// so the store stays free of prompt mechanics.
type Setup interface {
	// FirstRun returns the default installation directory and the
	// automatic-install flag for a fresh configuration. The suggested
	// directory is the configuration directory itself.
	FirstRun(suggestedDir string) (defaultDir string, autoInstall bool, err error)
}

// Store loads and saves the registry as a single JSON document.
type Store struct {
	configDir string
	file      string
}

// NewStore creates a store rooted at the given configuration directory.
func NewStore(configDir string) *Store {
	return &Store{
		configDir: configDir,
		file:      filepath.Join(configDir, registryFileName),
	}
}

// Path returns the registry file path.
func (s *Store) Path() string { return s.file }

// ConfigDir returns the configuration directory.
func (s *Store) ConfigDir() string { return s.configDir }

// record is the storage representation of a tool.
type record struct {
	Name           string   `json:"name"`
	URL            string   `json:"url"`
	Tags           []string `json:"tags"`
	Type           string   `json:"type"`
	Directory      string   `json:"directory"`
	AddDate        *int64   `json:"add_date"`
	InstallDate    *int64   `json:"install_date"`
	LastUpdateDate *int64   `json:"last_update_date"`
}

// document is the persisted top-level JSON structure.
type document struct {
	DefaultInstallDir string   `json:"default_installation_directory"`
	AutoInstall       bool     `json:"automatic_install"`
	Tools             []record `json:"tools"`
}

// Load reads the registry, running the first-run setup when the file does
// not exist yet.
func (s *Store) Load(ctx context.Context, setup Setup) (*Registry, error) {
	reg, err := s.read()
	if err == nil {
		return reg, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	return s.FirstConfiguration(ctx, setup)
}

// LoadForImport reads the registry for an import operation. Unlike Load it
// does not start the wizard: a missing configuration directory is reported
// as ErrConfigMissing and the caller decides how to proceed.
func (s *Store) LoadForImport() (*Registry, error) {
	if !fileutil.IsDir(s.configDir) {
		return nil, ErrConfigMissing
	}
	reg, err := s.read()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigMissing
		}
		return nil, err
	}
	return reg, nil
}

// FirstConfiguration runs the wizard through the setup collaborator and
// persists the fresh registry.
func (s *Store) FirstConfiguration(_ context.Context, setup Setup) (*Registry, error) {
	if err := os.MkdirAll(s.configDir, dirPermissions); err != nil {
		return nil, fmt.Errorf("registry: failed to create %s: %w", s.configDir, err)
	}

	defaultDir, autoInstall, err := setup.FirstRun(s.configDir)
	if err != nil {
		return nil, err
	}

	reg := &Registry{
		DefaultInstallDir: defaultDir,
		AutoInstall:       autoInstall,
	}
	if err := s.Save(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Save serializes the whole registry, atomically replacing the previous
// file content. The containing directory is created when missing.
func (s *Store) Save(reg *Registry) error {
	if err := os.MkdirAll(s.configDir, dirPermissions); err != nil {
		return fmt.Errorf("registry: failed to create %s: %w", s.configDir, err)
	}

	doc := document{
		DefaultInstallDir: reg.DefaultInstallDir,
		AutoInstall:       reg.AutoInstall,
		Tools:             make([]record, 0, len(reg.Tools)),
	}
	for _, t := range reg.Tools {
		doc.Tools = append(doc.Tools, toRecord(t))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: failed to encode: %w", err)
	}

	tmp := s.file + ".tmp"
	if err := os.WriteFile(tmp, data, filePermissions); err != nil {
		return fmt.Errorf("registry: failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.file); err != nil {
		return fmt.Errorf("registry: failed to replace %s: %w", s.file, err)
	}
	return nil
}

func (s *Store) read() (*Registry, error) {
	data, err := os.ReadFile(s.file) //nolint:gosec // path constructed from configDir
	if err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("registry: corrupt file %s: %w", s.file, err)
	}

	reg := &Registry{
		DefaultInstallDir: doc.DefaultInstallDir,
		AutoInstall:       doc.AutoInstall,
	}
	for _, rec := range doc.Tools {
		reg.Tools = append(reg.Tools, fromRecord(rec))
	}
	return reg, nil
}

func toRecord(t *tool.Tool) record {
	return record{
		Name:           t.Name,
		URL:            t.URL,
		Tags:           t.Tags,
		Type:           string(t.Kind),
		Directory:      t.Directory,
		AddDate:        t.AddDate,
		InstallDate:    t.InstallDate,
		LastUpdateDate: t.LastUpdateDate,
	}
}

func fromRecord(rec record) *tool.Tool {
	if rec.URL != tool.LocalURL {
		return tool.NewRepository(rec.URL, rec.Directory,
			tool.WithName(rec.Name),
			tool.WithTags(rec.Tags),
			tool.WithDates(rec.AddDate, rec.InstallDate, rec.LastUpdateDate),
		)
	}
	return tool.NewLocalFile(rec.Directory,
		tool.WithName(rec.Name),
		tool.WithTags(rec.Tags),
		tool.WithDates(rec.AddDate, rec.InstallDate, rec.LastUpdateDate),
	)
}
