package runner

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesStdoutAndExitCode(t *testing.T) {
	res := Run("sh", []string{"-c", "echo hello; exit 0"})
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
}

func TestRunCapturesNonZeroExitCode(t *testing.T) {
	res := Run("sh", []string{"-c", "echo oops 1>&2; exit 7"})
	assert.Equal(t, 7, res.ExitCode)
	assert.Equal(t, "oops\n", res.Stderr)
}

func TestRunUnknownCommandReturnsMinusOne(t *testing.T) {
	res := Run("nob-definitely-not-a-real-binary", nil)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRunDoesNotAppendColorFlagForNonCompilers(t *testing.T) {
	res := Run("sh", []string{"-c", "echo $@", "--"})
	require.Equal(t, 0, res.ExitCode)
	assert.NotContains(t, res.Stdout, "fdiagnostics")
}

func TestRunStreamingTeesOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	res := RunStreaming("sh", []string{"-c", "echo teed"}, &out, &errOut)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "teed\n", out.String())
	assert.Equal(t, "teed\n", res.Stdout)
}
