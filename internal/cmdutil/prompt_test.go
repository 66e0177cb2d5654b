package cmdutil_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tman-org/tman/internal/cmdutil"
)

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		def    bool
		expect bool
	}{
		{"Yes", "y\n", false, true},
		{"YesWord", "yes\n", false, true},
		{"No", "n\n", true, false},
		{"EmptyPicksDefaultTrue", "\n", true, true},
		{"EmptyPicksDefaultFalse", "\n", false, false},
		{"GarbagePicksDefault", "maybe\n", false, false},
		{"NoInputPicksDefault", "", true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			p := cmdutil.NewPrompter(strings.NewReader(tc.input), &out, false)
			assert.Equal(t, tc.expect, p.Confirm("Proceed?", tc.def))
			assert.Contains(t, out.String(), "Proceed?")
		})
	}

	t.Run("AssumeYesSkipsPrompt", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		p := cmdutil.NewPrompter(strings.NewReader("n\n"), &out, true)
		assert.True(t, p.Confirm("Proceed?", false))
		assert.Empty(t, out.String())
	})

	t.Run("DefaultHint", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		cmdutil.NewPrompter(strings.NewReader("\n"), &out, false).Confirm("Proceed?", true)
		assert.Contains(t, out.String(), "[Y/n]")
	})
}

func TestPrompt(t *testing.T) {
	t.Parallel()

	t.Run("Answer", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		p := cmdutil.NewPrompter(strings.NewReader("  /opt/tools  \n"), &out, false)
		assert.Equal(t, "/opt/tools", p.Prompt("Directory", "/home/user/tools"))
		assert.Contains(t, out.String(), "[/home/user/tools]")
	})

	t.Run("EmptyPicksDefault", func(t *testing.T) {
		t.Parallel()
		p := cmdutil.NewPrompter(strings.NewReader("\n"), &bytes.Buffer{}, false)
		assert.Equal(t, "/home/user/tools", p.Prompt("Directory", "/home/user/tools"))
	})

	t.Run("NoDefault", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		p := cmdutil.NewPrompter(strings.NewReader("\n"), &out, false)
		assert.Equal(t, "", p.Prompt("Directory", ""))
		assert.NotContains(t, out.String(), "[")
	})
}

func TestSelectIndexes(t *testing.T) {
	t.Parallel()

	t.Run("ParsesInput", func(t *testing.T) {
		t.Parallel()
		p := cmdutil.NewPrompter(strings.NewReader("1, 3, 7\n"), &bytes.Buffer{}, false)
		assert.Equal(t, []int{0, 2}, p.SelectIndexes("Which ones?", 3))
	})

	t.Run("AssumeYesSelectsAll", func(t *testing.T) {
		t.Parallel()
		p := cmdutil.NewPrompter(strings.NewReader(""), &bytes.Buffer{}, true)
		assert.Equal(t, []int{0, 1, 2}, p.SelectIndexes("Which ones?", 3))
	})
}

func TestFirstRun(t *testing.T) {
	t.Parallel()

	t.Run("AcceptsDefaults", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		p := cmdutil.NewPrompter(strings.NewReader("\n\n"), &out, false)

		dir, auto, err := p.FirstRun("/opt/tools")
		require.NoError(t, err)
		assert.Equal(t, "/opt/tools", dir)
		assert.True(t, auto)
		assert.Contains(t, out.String(), "first time")
	})

	t.Run("CustomAnswers", func(t *testing.T) {
		t.Parallel()
		p := cmdutil.NewPrompter(strings.NewReader("/srv/tooling\nn\n"), &bytes.Buffer{}, false)

		dir, auto, err := p.FirstRun("/opt/tools")
		require.NoError(t, err)
		assert.Equal(t, "/srv/tooling", dir)
		assert.False(t, auto)
	})
}
