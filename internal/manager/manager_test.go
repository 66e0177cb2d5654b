package manager_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tman-org/tman/internal/gitsync"
	"github.com/tman-org/tman/internal/manager"
	"github.com/tman-org/tman/internal/registry"
	"github.com/tman-org/tman/internal/tool"
)

// fakeSync scripts the git client: each Clone / Pull consumes the next
// status from its queue and records the call.
type fakeSync struct {
	cloneStatuses []gitsync.Status
	pullStatuses  []gitsync.Status
	cloneCalls    []string
	pullCalls     []string
	materialize   bool
}

func (f *fakeSync) Clone(_ context.Context, url, dir string) (gitsync.Status, error) {
	f.cloneCalls = append(f.cloneCalls, url)
	status := gitsync.StatusOK
	if len(f.cloneStatuses) > 0 {
		status = f.cloneStatuses[0]
		f.cloneStatuses = f.cloneStatuses[1:]
	}
	if status == gitsync.StatusOK && f.materialize {
		_ = os.MkdirAll(dir, 0750)
	}
	return status, nil
}

func (f *fakeSync) Pull(_ context.Context, dir string) (gitsync.Status, error) {
	f.pullCalls = append(f.pullCalls, dir)
	status := gitsync.StatusOK
	if len(f.pullStatuses) > 0 {
		status = f.pullStatuses[0]
		f.pullStatuses = f.pullStatuses[1:]
	}
	return status, nil
}

func (f *fakeSync) RemoteURL(string) (string, error) { return "", nil }

type confirmAnswer bool

func (c confirmAnswer) Confirm(string, bool) bool { return bool(c) }

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newManager(t *testing.T, reg *registry.Registry, sync gitsync.Client) *manager.Manager {
	t.Helper()
	store := registry.NewStore(t.TempDir())
	return manager.New(store, reg, sync, manager.WithClock(func() time.Time { return fixedTime }))
}

func TestAdd(t *testing.T) {
	t.Parallel()

	t.Run("RepositoryWithoutAutoInstall", func(t *testing.T) {
		t.Parallel()
		sync := &fakeSync{}
		reg := &registry.Registry{DefaultInstallDir: t.TempDir()}
		mgr := newManager(t, reg, sync)

		widget := tool.NewRepository("https://github.com/acme/widget", filepath.Join(t.TempDir(), "widget"))
		outcome, err := mgr.Add(context.Background(), widget)
		require.NoError(t, err)
		assert.Equal(t, manager.AddOK, outcome)
		assert.True(t, reg.HasTool("widget"))
		assert.Empty(t, sync.cloneCalls)
		assert.Nil(t, widget.InstallDate)
	})

	t.Run("RepositoryWithAutoInstall", func(t *testing.T) {
		t.Parallel()
		sync := &fakeSync{}
		reg := &registry.Registry{DefaultInstallDir: t.TempDir(), AutoInstall: true}
		mgr := newManager(t, reg, sync)

		widget := tool.NewRepository("https://github.com/acme/widget", filepath.Join(t.TempDir(), "widget"))
		outcome, err := mgr.Add(context.Background(), widget)
		require.NoError(t, err)
		assert.Equal(t, manager.AddOK, outcome)
		assert.Equal(t, []string{"https://github.com/acme/widget.git"}, sync.cloneCalls)
		require.NotNil(t, widget.InstallDate)
		assert.Equal(t, fixedTime.Unix(), *widget.InstallDate)
		require.NotNil(t, widget.LastUpdateDate)
	})

	t.Run("AutoInstallDestinationExists", func(t *testing.T) {
		t.Parallel()
		sync := &fakeSync{cloneStatuses: []gitsync.Status{gitsync.StatusDestinationExists}}
		reg := &registry.Registry{AutoInstall: true}
		mgr := newManager(t, reg, sync)

		widget := tool.NewRepository("https://github.com/acme/widget", filepath.Join(t.TempDir(), "other", "widget"))
		outcome, err := mgr.Add(context.Background(), widget)
		require.NoError(t, err)
		assert.Equal(t, manager.AddDestinationExists, outcome)
		assert.False(t, reg.HasTool("widget"))
	})

	t.Run("AlreadyManagedByName", func(t *testing.T) {
		t.Parallel()
		reg := &registry.Registry{}
		reg.Add(tool.NewRepository("https://github.com/acme/widget", "/opt/tools/widget"))
		mgr := newManager(t, reg, &fakeSync{})

		dup := tool.NewRepository("https://gitlab.com/other/widget", "/srv/widget")
		outcome, err := mgr.Add(context.Background(), dup)
		require.NoError(t, err)
		assert.Equal(t, manager.AddAlreadyManaged, outcome)
		assert.Len(t, reg.Tools, 1)
	})

	t.Run("LocalFileMissingSource", func(t *testing.T) {
		t.Parallel()
		reg := &registry.Registry{}
		mgr := newManager(t, reg, &fakeSync{})

		ghost := tool.NewLocalFile(filepath.Join(t.TempDir(), "missing.sh"))
		outcome, err := mgr.Add(context.Background(), ghost)
		require.NoError(t, err)
		assert.Equal(t, manager.AddMissingSource, outcome)
	})

	t.Run("LocalDirContainingManagedRepoIsRejected", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()
		repoDir := filepath.Join(base, "widget")
		require.NoError(t, os.MkdirAll(repoDir, 0750))

		reg := &registry.Registry{}
		reg.Add(tool.NewRepository("https://github.com/acme/widget", repoDir))
		mgr := newManager(t, reg, &fakeSync{})

		outcome, err := mgr.Add(context.Background(), tool.NewLocalFile(base))
		require.NoError(t, err)
		assert.Equal(t, manager.AddNestedManaged, outcome)
	})

	t.Run("LocalDirAbsorbsNestedLocalFiles", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()
		inner := filepath.Join(base, "script.sh")
		require.NoError(t, os.WriteFile(inner, []byte("#!/bin/sh\n"), 0600))

		reg := &registry.Registry{}
		reg.Add(tool.NewLocalFile(inner))
		mgr := newManager(t, reg, &fakeSync{})

		outcome, err := mgr.Add(context.Background(), tool.NewLocalFile(base))
		require.NoError(t, err)
		assert.Equal(t, manager.AddOK, outcome)
		assert.False(t, reg.HasTool("script.sh"))
		assert.True(t, reg.HasTool(filepath.Base(base)))
		assert.Len(t, reg.Tools, 1)
	})
}

func TestPlaceLocal(t *testing.T) {
	t.Parallel()

	t.Run("MovesSourceUnderDestination", func(t *testing.T) {
		t.Parallel()
		src := filepath.Join(t.TempDir(), "script.sh")
		require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\n"), 0600))
		destDir := t.TempDir()

		mgr := newManager(t, &registry.Registry{}, &fakeSync{})
		placed, outcome, err := mgr.PlaceLocal(context.Background(), src, destDir, confirmAnswer(false))
		require.NoError(t, err)
		assert.Equal(t, manager.AddOK, outcome)
		assert.Equal(t, filepath.Join(destDir, "script.sh"), placed.Directory)
		assert.NoFileExists(t, src)
		assert.FileExists(t, placed.Directory)
		require.NotNil(t, placed.AddDate)
		assert.Equal(t, fixedTime.Unix(), *placed.AddDate)
	})

	t.Run("NameClashDropsCandidate", func(t *testing.T) {
		t.Parallel()
		src := filepath.Join(t.TempDir(), "script.sh")
		require.NoError(t, os.WriteFile(src, nil, 0600))

		reg := &registry.Registry{}
		reg.Add(tool.NewLocalFile("/elsewhere/script.sh"))
		mgr := newManager(t, reg, &fakeSync{})

		placed, outcome, err := mgr.PlaceLocal(context.Background(), src, t.TempDir(), confirmAnswer(true))
		require.NoError(t, err)
		assert.Equal(t, manager.AddAlreadyManaged, outcome)
		assert.Nil(t, placed)
		assert.FileExists(t, src)
	})

	t.Run("ExistingDestinationNeedsConfirmation", func(t *testing.T) {
		t.Parallel()
		src := filepath.Join(t.TempDir(), "script.sh")
		require.NoError(t, os.WriteFile(src, []byte("new"), 0600))
		destDir := t.TempDir()
		dst := filepath.Join(destDir, "script.sh")
		require.NoError(t, os.WriteFile(dst, []byte("old"), 0600))

		mgr := newManager(t, &registry.Registry{}, &fakeSync{})

		_, outcome, err := mgr.PlaceLocal(context.Background(), src, destDir, confirmAnswer(false))
		require.NoError(t, err)
		assert.Equal(t, manager.AddSkipped, outcome)
		assert.FileExists(t, src)

		placed, outcome, err := mgr.PlaceLocal(context.Background(), src, destDir, confirmAnswer(true))
		require.NoError(t, err)
		assert.Equal(t, manager.AddOK, outcome)
		data, err := os.ReadFile(placed.Directory)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})
}

func TestInstall(t *testing.T) {
	t.Parallel()

	t.Run("Clones", func(t *testing.T) {
		t.Parallel()
		sync := &fakeSync{}
		reg := &registry.Registry{}
		widget := tool.NewRepository("https://github.com/acme/widget", filepath.Join(t.TempDir(), "widget"))
		reg.Add(widget)
		mgr := newManager(t, reg, sync)

		outcome, err := mgr.Install(context.Background(), widget, manager.FixedResolution(manager.ResolutionKeep))
		require.NoError(t, err)
		assert.Equal(t, manager.InstallCloned, outcome)
		require.NotNil(t, widget.InstallDate)
		assert.Equal(t, fixedTime.Unix(), *widget.InstallDate)
	})

	t.Run("LocalFileIsNotARepository", func(t *testing.T) {
		t.Parallel()
		mgr := newManager(t, &registry.Registry{}, &fakeSync{})
		outcome, err := mgr.Install(context.Background(), tool.NewLocalFile("/tmp/script.sh"), manager.FixedResolution(manager.ResolutionKeep))
		require.NoError(t, err)
		assert.Equal(t, manager.InstallNotRepository, outcome)
	})

	t.Run("CollisionKeep", func(t *testing.T) {
		t.Parallel()
		sync := &fakeSync{cloneStatuses: []gitsync.Status{gitsync.StatusDestinationExists}}
		widget := tool.NewRepository("https://github.com/acme/widget", filepath.Join(t.TempDir(), "widget"))
		mgr := newManager(t, &registry.Registry{}, sync)

		outcome, err := mgr.Install(context.Background(), widget, manager.FixedResolution(manager.ResolutionKeep))
		require.NoError(t, err)
		assert.Equal(t, manager.InstallLeft, outcome)
		assert.Nil(t, widget.InstallDate)
	})

	t.Run("CollisionReinstall", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()
		dir := filepath.Join(base, "widget")
		require.NoError(t, os.MkdirAll(dir, 0750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "stale"), nil, 0600))

		sync := &fakeSync{cloneStatuses: []gitsync.Status{gitsync.StatusDestinationExists, gitsync.StatusOK}, materialize: true}
		widget := tool.NewRepository("https://github.com/acme/widget", dir)
		reg := &registry.Registry{}
		reg.Add(widget)
		mgr := newManager(t, reg, sync)

		outcome, err := mgr.Install(context.Background(), widget, manager.FixedResolution(manager.ResolutionReinstall))
		require.NoError(t, err)
		assert.Equal(t, manager.InstallReinstalled, outcome)
		assert.NoFileExists(t, filepath.Join(dir, "stale"))
		assert.Len(t, sync.cloneCalls, 2)
		require.NotNil(t, widget.InstallDate)
	})

	t.Run("CollisionUpdateInPlace", func(t *testing.T) {
		t.Parallel()
		sync := &fakeSync{cloneStatuses: []gitsync.Status{gitsync.StatusDestinationExists}}
		widget := tool.NewRepository("https://github.com/acme/widget", filepath.Join(t.TempDir(), "widget"))
		reg := &registry.Registry{}
		reg.Add(widget)
		mgr := newManager(t, reg, sync)

		outcome, err := mgr.Install(context.Background(), widget, manager.FixedResolution(manager.ResolutionUpdateInPlace))
		require.NoError(t, err)
		assert.Equal(t, manager.InstallUpdated, outcome)
		// Update-in-place on a never-installed tool counts as the install.
		require.NotNil(t, widget.InstallDate)
		assert.Equal(t, fixedTime.Unix(), *widget.InstallDate)
	})

	t.Run("UpdateInPlaceKeepsExistingInstallDate", func(t *testing.T) {
		t.Parallel()
		sync := &fakeSync{cloneStatuses: []gitsync.Status{gitsync.StatusDestinationExists}, pullStatuses: []gitsync.Status{gitsync.StatusUpToDate}}
		installed := int64(1600000000)
		widget := tool.NewRepository("https://github.com/acme/widget", filepath.Join(t.TempDir(), "widget"),
			tool.WithDates(nil, &installed, &installed))
		reg := &registry.Registry{}
		reg.Add(widget)
		mgr := newManager(t, reg, sync)

		outcome, err := mgr.Install(context.Background(), widget, manager.FixedResolution(manager.ResolutionUpdateInPlace))
		require.NoError(t, err)
		assert.Equal(t, manager.InstallUpToDate, outcome)
		assert.Equal(t, installed, *widget.InstallDate)
		assert.Equal(t, fixedTime.Unix(), *widget.LastUpdateDate)
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	t.Run("LocalFileSkipped", func(t *testing.T) {
		t.Parallel()
		mgr := newManager(t, &registry.Registry{}, &fakeSync{})
		outcome, err := mgr.Update(context.Background(), tool.NewLocalFile("/tmp/script.sh"))
		require.NoError(t, err)
		assert.Equal(t, manager.UpdateLocalSkipped, outcome)
	})

	t.Run("NotInstalled", func(t *testing.T) {
		t.Parallel()
		mgr := newManager(t, &registry.Registry{}, &fakeSync{})
		widget := tool.NewRepository("https://github.com/acme/widget", filepath.Join(t.TempDir(), "widget"))
		outcome, err := mgr.Update(context.Background(), widget)
		require.NoError(t, err)
		assert.Equal(t, manager.UpdateNotInstalled, outcome)
	})

	t.Run("UpToDate", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "widget")
		require.NoError(t, os.MkdirAll(dir, 0750))
		sync := &fakeSync{pullStatuses: []gitsync.Status{gitsync.StatusUpToDate}}
		widget := tool.NewRepository("https://github.com/acme/widget", dir)
		mgr := newManager(t, &registry.Registry{}, sync)

		outcome, err := mgr.Update(context.Background(), widget)
		require.NoError(t, err)
		assert.Equal(t, manager.UpdateUpToDate, outcome)
		assert.Nil(t, widget.LastUpdateDate)
	})

	t.Run("PulledStampsLastUpdate", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "widget")
		require.NoError(t, os.MkdirAll(dir, 0750))
		widget := tool.NewRepository("https://github.com/acme/widget", dir)
		reg := &registry.Registry{}
		reg.Add(widget)
		mgr := newManager(t, reg, &fakeSync{})

		outcome, err := mgr.Update(context.Background(), widget)
		require.NoError(t, err)
		assert.Equal(t, manager.UpdateOK, outcome)
		require.NotNil(t, widget.LastUpdateDate)
		assert.Equal(t, fixedTime.Unix(), *widget.LastUpdateDate)
	})
}

func TestAutoInstall(t *testing.T) {
	t.Parallel()

	t.Run("DisabledDoesNothing", func(t *testing.T) {
		t.Parallel()
		sync := &fakeSync{}
		reg := &registry.Registry{}
		reg.Add(tool.NewRepository("https://github.com/acme/widget", filepath.Join(t.TempDir(), "widget")))
		mgr := newManager(t, reg, sync)

		assert.Zero(t, mgr.AutoInstall(context.Background()))
		assert.Empty(t, sync.cloneCalls)
	})

	t.Run("ClonesMissingRepositories", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()
		sync := &fakeSync{cloneStatuses: []gitsync.Status{gitsync.StatusOK, gitsync.StatusDestinationExists}}
		reg := &registry.Registry{AutoInstall: true}
		widget := tool.NewRepository("https://github.com/acme/widget", filepath.Join(base, "widget"))
		gadget := tool.NewRepository("https://github.com/acme/gadget", filepath.Join(base, "gadget"))
		reg.Add(widget)
		reg.Add(gadget)
		reg.Add(tool.NewLocalFile("/tmp/script.sh"))
		mgr := newManager(t, reg, sync)

		assert.Equal(t, 1, mgr.AutoInstall(context.Background()))
		assert.Len(t, sync.cloneCalls, 2)
		require.NotNil(t, widget.InstallDate)
		assert.Nil(t, gadget.InstallDate)
	})
}
