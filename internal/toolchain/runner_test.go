package toolchain

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCmdRunner_CapturesOutput runs a real process and checks output capture and tee-ing.
func TestCmdRunner_CapturesOutput(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("test shells out to a POSIX echo")
	}

	var tee bytes.Buffer

	result, err := CmdRunner{}.Run(context.Background(), "echo", []string{"hello"}, RunOptions{Stdout: &tee})
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(result.Stdout))
	require.Equal(t, "hello\n", tee.String())
}

// TestCmdRunner_NonZeroExit surfaces the exec error.
func TestCmdRunner_NonZeroExit(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("test shells out to a POSIX false")
	}

	_, err := CmdRunner{}.Run(context.Background(), "false", nil, RunOptions{})
	require.Error(t, err)
}
