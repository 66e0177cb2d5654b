package codec_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tman-org/tman/internal/codec"
	"github.com/tman-org/tman/internal/registry"
	"github.com/tman-org/tman/internal/tool"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	add := int64(1700000000)
	reg := &registry.Registry{DefaultInstallDir: "/opt/tools/", AutoInstall: true}
	widget := tool.NewRepository("https://github.com/acme/widget", "/opt/tools",
		tool.WithTags([]string{"recon", "dns"}),
		tool.WithDates(&add, &add, &add))
	notes := tool.NewLocalFile("/home/user/notes")

	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, reg, []*tool.Tool{widget, notes}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "default_installation_directory-/opt/tools/,automatic_install-True", lines[0])
	assert.Equal(t,
		"name-widget,url-https://github.com/acme/widget.git,tags-[recon,dns],type-git,directory-/opt/tools/widget",
		lines[1])
	assert.Equal(t, "name-notes,url--,tags-[],type-local,directory-/home/user/notes", lines[2])

	// Dates never appear in the textual format.
	assert.NotContains(t, buf.String(), "1700000000")
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("RoundTrip", func(t *testing.T) {
		t.Parallel()
		reg := &registry.Registry{DefaultInstallDir: "/opt/tools/", AutoInstall: false}
		widget := tool.NewRepository("https://github.com/acme/widget", "/opt/tools",
			tool.WithTags([]string{"recon"}))

		var buf bytes.Buffer
		require.NoError(t, codec.Encode(&buf, reg, []*tool.Tool{widget}))

		snap, err := codec.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, "/opt/tools/", snap.DefaultInstallDir)
		assert.False(t, snap.AutoInstall)
		require.Len(t, snap.Tools, 1)
		assert.Equal(t, "widget", snap.Tools[0].Name)
		assert.Equal(t, "https://github.com/acme/widget.git", snap.Tools[0].URL)
		assert.Equal(t, []string{"recon"}, snap.Tools[0].Tags)
	})

	t.Run("PythonBooleans", func(t *testing.T) {
		t.Parallel()
		snap, err := codec.Decode(strings.NewReader(
			"default_installation_directory-/opt,automatic_install-True\n"))
		require.NoError(t, err)
		assert.True(t, snap.AutoInstall)

		snap, err = codec.Decode(strings.NewReader(
			"default_installation_directory-/opt,automatic_install-False\n"))
		require.NoError(t, err)
		assert.False(t, snap.AutoInstall)
	})

	t.Run("QuotedTags", func(t *testing.T) {
		t.Parallel()
		in := "default_installation_directory-/opt,automatic_install-False\n" +
			"name-widget,url-https://github.com/acme/widget.git,tags-['t1', 't2'],type-git,directory-/opt/widget\n"
		snap, err := codec.Decode(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, snap.Tools, 1)
		assert.Equal(t, []string{"t1", "t2"}, snap.Tools[0].Tags)
	})

	t.Run("LocalSentinel", func(t *testing.T) {
		t.Parallel()
		in := "default_installation_directory-/opt,automatic_install-False\n" +
			"name-notes,url--,tags-[],type-local,directory-/home/user/notes\n"
		snap, err := codec.Decode(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, snap.Tools, 1)
		assert.True(t, snap.Tools[0].IsLocalFile())
		assert.Equal(t, "notes", snap.Tools[0].Name)
	})

	t.Run("BlankLinesIgnored", func(t *testing.T) {
		t.Parallel()
		in := "default_installation_directory-/opt,automatic_install-False\n\n\n" +
			"name-notes,url--,tags-[],type-local,directory-/home/user/notes\n\n"
		snap, err := codec.Decode(strings.NewReader(in))
		require.NoError(t, err)
		assert.Len(t, snap.Tools, 1)
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		t.Parallel()
		in := "default_installation_directory-/opt,automatic_install-False\n" +
			"name-widget,url-https://github.com/acme/widget.git,tags-[],type-git\n"
		_, err := codec.Decode(strings.NewReader(in))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "directory")
	})

	t.Run("UnterminatedTags", func(t *testing.T) {
		t.Parallel()
		in := "default_installation_directory-/opt,automatic_install-False\n" +
			"name-widget,url-x.git,tags-[t1,t2,type-git,directory-/opt/widget\n"
		_, err := codec.Decode(strings.NewReader(in))
		require.Error(t, err)
	})

	t.Run("DecodedTimestampsUnset", func(t *testing.T) {
		t.Parallel()
		in := "default_installation_directory-/opt,automatic_install-False\n" +
			"name-widget,url-https://github.com/acme/widget.git,tags-[],type-git,directory-/opt/widget\n"
		snap, err := codec.Decode(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, snap.Tools, 1)
		assert.Nil(t, snap.Tools[0].AddDate)
		assert.Nil(t, snap.Tools[0].InstallDate)
		assert.Nil(t, snap.Tools[0].LastUpdateDate)
	})
}
