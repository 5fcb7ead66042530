package builder

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecutorRunsUnprivilegedCommand(t *testing.T) {
	e := &Executor{Context: context.Background()}
	marker := filepath.Join(t.TempDir(), "ran")

	cmd := exec.Command("sh", "-c", "echo ok > "+marker)
	require.NoError(t, e.Run(cmd))
	require.FileExists(t, marker)
}

func TestExecutorReportsCommandFailure(t *testing.T) {
	e := &Executor{Context: context.Background()}
	require.Error(t, e.Run(exec.Command("sh", "-c", "exit 3")))
}

func TestExecutorKillsCommandOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Executor{Context: ctx}

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := e.Run(exec.Command("sleep", "30"))
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}
