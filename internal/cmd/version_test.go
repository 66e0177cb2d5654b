package cmd_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tman-org/tman/internal/build"
	"github.com/tman-org/tman/internal/cmd"
)

func TestCmdVersion(t *testing.T) {
	build.Version = "1.2.3"

	var out bytes.Buffer
	c := cmd.CmdVersion()
	c.SetOut(&out)
	c.SetArgs(nil)

	require.NoError(t, c.Execute())
	assert.Equal(t, "1.2.3\n", out.String())
}
