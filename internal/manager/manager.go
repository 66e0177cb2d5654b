// Package manager implements the add/install/update lifecycle of managed
// tools on top of the registry store and the git sync client. Every
// operation returns a closed outcome value; nothing is reported silently.
package manager

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/gitsync"
	"github.com/tman-org/tman/internal/logger"
	"github.com/tman-org/tman/internal/registry"
	"github.com/tman-org/tman/internal/tool"
)

// Manager drives tool state transitions and persists the registry after
// each mutation.
type Manager struct {
	store *registry.Store
	reg   *registry.Registry
	sync  gitsync.Client
	now   func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates a manager over the given store, registry and sync client.
func New(store *registry.Store, reg *registry.Registry, sync gitsync.Client, opts ...Option) *Manager {
	m := &Manager{store: store, reg: reg, sync: sync, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the managed registry.
func (m *Manager) Registry() *registry.Registry { return m.reg }

// Save persists the registry.
func (m *Manager) Save() error { return m.store.Save(m.reg) }

// Add registers a candidate tool. Local candidates must exist on disk; a
// local directory must not contain repositories managed elsewhere in the
// registry, and any managed local files it does contain are absorbed into
// the new entry. With auto-install on, repositories are cloned immediately.
func (m *Manager) Add(ctx context.Context, t *tool.Tool) (AddOutcome, error) {
	var absorb []*tool.Tool

	if t.IsLocalFile() {
		if !fileutil.FileExists(t.Directory) {
			return AddMissingSource, nil
		}
		if fileutil.IsDir(t.Directory) {
			for _, repo := range m.reg.List(true) {
				if strings.HasPrefix(repo.Directory, t.Directory) {
					return AddNestedManaged, nil
				}
			}
			for _, existing := range m.reg.List(false) {
				if existing.IsLocalFile() && strings.HasPrefix(existing.Directory, t.Directory) {
					absorb = append(absorb, existing)
				}
			}
		}
	}

	if m.reg.AlreadyManaged(t) {
		return AddAlreadyManaged, nil
	}

	for _, old := range absorb {
		m.reg.Remove(old)
		logger.Debug(ctx, "Absorbed nested local tool", "name", old.Name)
	}

	if m.reg.AutoInstall && t.IsRepository() {
		status, err := m.sync.Clone(ctx, t.URL, t.Directory)
		switch status {
		case gitsync.StatusDestinationExists:
			return AddDestinationExists, nil
		case gitsync.StatusOK:
			t.MarkInstalled(m.now())
		default:
			return AddCloneFailed, err
		}
	}

	m.reg.Add(t)
	if err := m.store.Save(m.reg); err != nil {
		return AddOK, err
	}
	return AddOK, nil
}

// PlaceLocal prepares a local candidate whose destination differs from its
// source: the source is moved under destDir, overwriting an existing
// destination only after confirmation. When the derived name is already
// registered as a tool, the move is skipped and the candidate dropped.
func (m *Manager) PlaceLocal(ctx context.Context, src, destDir string, confirm Confirmer) (*tool.Tool, AddOutcome, error) {
	name := fileutil.BaseName(src)
	dst := filepath.Join(destDir, name)

	if m.reg.HasTool(name) {
		return nil, AddAlreadyManaged, nil
	}

	if src != dst {
		if fileutil.FileExists(dst) {
			if !confirm.Confirm(fmt.Sprintf("%s already exists, overwrite it?", dst), false) {
				return nil, AddSkipped, nil
			}
			if err := fileutil.Delete(dst); err != nil {
				return nil, AddSkipped, fmt.Errorf("failed to remove %s: %w", dst, err)
			}
		}
		if err := fileutil.Move(src, dst); err != nil {
			return nil, AddSkipped, fmt.Errorf("failed to move %s: %w", src, err)
		}
		logger.Debug(ctx, "Moved local tool", "src", src, "dst", dst)
	}

	sec := m.now().Unix()
	return tool.NewLocalFile(dst, tool.WithAddDate(sec)), AddOK, nil
}

// Install clones a repository tool. A destination-exists collision is
// resolved through the supplied resolver; on update-in-place the install
// date is stamped only when it was never set.
func (m *Manager) Install(ctx context.Context, t *tool.Tool, resolver CollisionResolver) (InstallOutcome, error) {
	if !t.IsRepository() {
		return InstallNotRepository, nil
	}

	status, err := m.sync.Clone(ctx, t.URL, t.Directory)
	switch status {
	case gitsync.StatusOK:
		t.MarkInstalled(m.now())
		return InstallCloned, m.persist(t)

	case gitsync.StatusDestinationExists:
		return m.resolveCollision(ctx, t, resolver)

	default:
		return InstallFailed, err
	}
}

func (m *Manager) resolveCollision(ctx context.Context, t *tool.Tool, resolver CollisionResolver) (InstallOutcome, error) {
	switch resolver.Resolve(t.Name, t.Directory) {
	case ResolutionReinstall:
		logger.Infof(ctx, "removing %q..", t.Name)
		if err := fileutil.Delete(t.Directory); err != nil {
			return InstallFailed, fmt.Errorf("failed to remove %s: %w", t.Directory, err)
		}
		logger.Infof(ctx, "cloning %q..", t.Name)
		status, err := m.sync.Clone(ctx, t.URL, t.Directory)
		if status != gitsync.StatusOK {
			return InstallFailed, err
		}
		t.MarkInstalled(m.now())
		return InstallReinstalled, m.persist(t)

	case ResolutionUpdateInPlace:
		status, err := m.sync.Pull(ctx, t.Directory)
		switch status {
		case gitsync.StatusOK:
			t.MarkUpdated(m.now())
			return InstallUpdated, m.persist(t)
		case gitsync.StatusUpToDate:
			t.MarkUpdated(m.now())
			return InstallUpToDate, m.persist(t)
		default:
			return InstallFailed, err
		}

	default:
		return InstallLeft, nil
	}
}

// Update pulls an installed repository tool. Local files are flagged as
// skipped by design; a tool that was never materialized is not touched.
func (m *Manager) Update(ctx context.Context, t *tool.Tool) (UpdateOutcome, error) {
	if t.IsLocalFile() {
		return UpdateLocalSkipped, nil
	}
	if !t.IsInstalled() {
		return UpdateNotInstalled, nil
	}

	status, err := m.sync.Pull(ctx, t.Directory)
	switch status {
	case gitsync.StatusUpToDate:
		return UpdateUpToDate, nil
	case gitsync.StatusOK:
		t.MarkUpdated(m.now())
		return UpdateOK, m.persist(t)
	default:
		return UpdateFailed, err
	}
}

// AutoInstall clones every repository entry that is not yet on disk,
// persisting after each successful clone. Returns the number of
// repositories cloned.
func (m *Manager) AutoInstall(ctx context.Context) int {
	if !m.reg.AutoInstall {
		return 0
	}

	total := 0
	for _, repo := range m.reg.List(true) {
		status, err := m.sync.Clone(ctx, repo.URL, repo.Directory)
		if status != gitsync.StatusOK {
			if err != nil {
				logger.Warn(ctx, "Auto-install failed", "name", repo.Name, "err", err)
			}
			continue
		}
		repo.MarkInstalled(m.now())
		m.reg.Update(repo)
		if err := m.store.Save(m.reg); err != nil {
			logger.Error(ctx, "Failed to save registry", "err", err)
			break
		}
		total++
	}
	return total
}

func (m *Manager) persist(t *tool.Tool) error {
	m.reg.Update(t)
	return m.store.Save(m.reg)
}
