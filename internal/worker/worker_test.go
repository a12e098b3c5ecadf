package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levuro/jobqueue/internal/worker"
)

func TestExecRunner_CapturesStdoutAndZeroExit(t *testing.T) {
	var runner worker.ExecRunner
	result, err := runner.Run(context.Background(), "/bin/sh", []string{"-c", "echo hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", result.Output)
	assert.Equal(t, 0, result.ExitCode)
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	var runner worker.ExecRunner
	result, err := runner.Run(context.Background(), "/bin/sh", []string{"-c", "echo oops 1>&2; exit 3"})
	require.NoError(t, err, "a non-zero exit status is reported via ExitCode, not err")
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "oops\n", result.ErrorOutput)
}

func TestExecRunner_ContextDeadlineStopsTheProcess(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var runner worker.ExecRunner
	result, err := runner.Run(ctx, "/bin/sh", []string{"-c", "sleep 5"})
	require.NoError(t, err, "a process killed at the deadline is reported via ExitCode, not err")
	assert.Equal(t, -1, result.ExitCode)
}

func TestNew_AppliesDefaults(t *testing.T) {
	w := worker.New(nil, nil, nil, worker.Config{})
	require.NotNil(t, w)
}
